// Package storage defines the persistence contract for players, their
// profiles and macros, fast channels, and Telnet accounts.
//
// Players and channels are identified by transport-qualified external ids
// such as "telnet:alice" or "telegram:123456". Profile and macro names are
// case-insensitive and stored lowercased.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/fate/internal/game/key"
)

var (
	// ErrProfileNotFound is returned when a named profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when creating a profile whose name is taken.
	ErrProfileExists = errors.New("profile already exists")
	// ErrNoActiveProfile is returned when no profile has been loaded.
	ErrNoActiveProfile = errors.New("no profile selected")
	// ErrMacroNotFound is returned when a macro lookup yields no results.
	ErrMacroNotFound = errors.New("macro not found")
	// ErrAccountNotFound is returned when an account lookup yields no results.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when attempting to create a duplicate username.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Profile is a character sheet owned by one player.
type Profile struct {
	ID       int64
	Name     string
	LongName string
	Entries  map[key.Key]int
}

// Get returns the value recorded for k.
func (p *Profile) Get(k key.Key) (int, bool) {
	v, ok := p.Entries[k]
	return v, ok
}

// DisplayName returns the long name.
func (p *Profile) DisplayName() string { return p.LongName }

// Keys returns the recorded keys in registry order.
func (p *Profile) Keys() []key.Key {
	out := make([]key.Key, 0, len(p.Entries))
	for _, k := range key.All() {
		if _, ok := p.Entries[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Account is a Telnet login.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ProfileStore manages profiles. An empty profile name means the player's
// active profile.
type ProfileStore interface {
	// CreateProfile creates a profile. longName defaults to name.
	//
	// Postcondition: Returns ErrProfileExists if the player already owns name.
	CreateProfile(ctx context.Context, userID, name, longName string) (*Profile, error)
	// Profile returns a profile with its entries.
	//
	// Postcondition: Returns ErrNoActiveProfile or ErrProfileNotFound.
	Profile(ctx context.Context, userID, name string) (*Profile, error)
	// RenameProfile changes a profile's long name.
	RenameProfile(ctx context.Context, userID, name, longName string) error
	// SwitchProfile makes name the player's active profile.
	SwitchProfile(ctx context.Context, userID, name string) (*Profile, error)
	// SetEntry records value for k on a profile, replacing any prior value.
	SetEntry(ctx context.Context, userID, name string, k key.Key, value int) (*Profile, error)
	// ListProfiles returns the player's profile names in creation order.
	ListProfiles(ctx context.Context, userID string) ([]string, error)
}

// MacroStore manages saved commands.
type MacroStore interface {
	// Macro returns the command saved under name, or ErrMacroNotFound.
	Macro(ctx context.Context, userID, name string) (string, error)
	// SaveMacro stores command under name and returns the command it replaced.
	SaveMacro(ctx context.Context, userID, name, command string) (previous string, replaced bool, err error)
	// ListMacros returns the player's macro names in name order.
	ListMacros(ctx context.Context, userID string) ([]string, error)
}

// ChannelStore manages per-channel flags.
type ChannelStore interface {
	// IsFast reports whether every message in the channel is rolled.
	IsFast(ctx context.Context, channelID string) (bool, error)
	// ToggleFast flips the channel's fast flag and returns the new value.
	ToggleFast(ctx context.Context, channelID string) (bool, error)
}

// AccountStore manages Telnet logins.
type AccountStore interface {
	CreateAccount(ctx context.Context, username, password string) (Account, error)
	Authenticate(ctx context.Context, username, password string) (Account, error)
}

// Store is the full persistence contract.
type Store interface {
	ProfileStore
	MacroStore
	ChannelStore
	AccountStore
	// Close releases the backend's resources.
	Close() error
}

// NormalizeName returns the stored form of a profile or macro name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DecodeEntry resolves a stored entry code back to its key.
func DecodeEntry(code string) (key.Key, bool) {
	return key.ByAnyCode(code)
}
