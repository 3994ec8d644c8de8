package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/storage"
)

// Store implements storage.Store on SQLite.
type Store struct {
	db *sql.DB
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ensureUser returns the row id for externalID, creating the user on first use.
func ensureUser(ctx context.Context, q execQuerier, externalID string) (int64, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO users (external_id) VALUES (?) ON CONFLICT (external_id) DO NOTHING`,
		externalID,
	); err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	var id int64
	if err := q.QueryRowContext(ctx,
		`SELECT id FROM users WHERE external_id = ?`, externalID,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying user: %w", err)
	}
	return id, nil
}

// CreateProfile implements storage.ProfileStore.
func (s *Store) CreateProfile(ctx context.Context, userID, name, longName string) (*storage.Profile, error) {
	name = storage.NormalizeName(name)
	if longName == "" {
		longName = name
	}
	uid, err := ensureUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, name, long_name) VALUES (?, ?, ?)`,
		uid, name, longName,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrProfileExists
		}
		return nil, fmt.Errorf("inserting profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading profile id: %w", err)
	}
	return &storage.Profile{ID: id, Name: name, LongName: longName, Entries: map[key.Key]int{}}, nil
}

func (s *Store) findProfile(ctx context.Context, userID, name string) (*storage.Profile, error) {
	p := &storage.Profile{}
	var row *sql.Row
	if name == "" {
		row = s.db.QueryRowContext(ctx,
			`SELECT p.id, p.name, p.long_name
			 FROM users u JOIN profiles p ON p.id = u.active_profile_id
			 WHERE u.external_id = ?`,
			userID,
		)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT p.id, p.name, p.long_name
			 FROM users u JOIN profiles p ON p.user_id = u.id
			 WHERE u.external_id = ? AND p.name = ?`,
			userID, storage.NormalizeName(name),
		)
	}
	if err := row.Scan(&p.ID, &p.Name, &p.LongName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if name == "" {
				return nil, storage.ErrNoActiveProfile
			}
			return nil, storage.ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

func (s *Store) loadEntries(ctx context.Context, p *storage.Profile) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_key, value FROM entries WHERE profile_id = ?`, p.ID,
	)
	if err != nil {
		return fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	p.Entries = make(map[key.Key]int)
	for rows.Next() {
		var code string
		var value int
		if err := rows.Scan(&code, &value); err != nil {
			return fmt.Errorf("scanning entry: %w", err)
		}
		if k, ok := storage.DecodeEntry(code); ok {
			p.Entries[k] = value
		}
	}
	return rows.Err()
}

// Profile implements storage.ProfileStore.
func (s *Store) Profile(ctx context.Context, userID, name string) (*storage.Profile, error) {
	p, err := s.findProfile(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if err := s.loadEntries(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RenameProfile implements storage.ProfileStore.
func (s *Store) RenameProfile(ctx context.Context, userID, name, longName string) error {
	p, err := s.findProfile(ctx, userID, name)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE profiles SET long_name = ? WHERE id = ?`, longName, p.ID); err != nil {
		return fmt.Errorf("renaming profile: %w", err)
	}
	return nil
}

// SwitchProfile implements storage.ProfileStore.
func (s *Store) SwitchProfile(ctx context.Context, userID, name string) (*storage.Profile, error) {
	p, err := s.findProfile(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET active_profile_id = ? WHERE external_id = ?`, p.ID, userID,
	); err != nil {
		return nil, fmt.Errorf("switching profile: %w", err)
	}
	if err := s.loadEntries(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetEntry implements storage.ProfileStore.
func (s *Store) SetEntry(ctx context.Context, userID, name string, k key.Key, value int) (*storage.Profile, error) {
	p, err := s.findProfile(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (profile_id, entry_key, value) VALUES (?, ?, ?)
		 ON CONFLICT (profile_id, entry_key) DO UPDATE SET value = excluded.value`,
		p.ID, k.Code(), value,
	); err != nil {
		return nil, fmt.Errorf("upserting entry: %w", err)
	}
	if err := s.loadEntries(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProfiles implements storage.ProfileStore.
func (s *Store) ListProfiles(ctx context.Context, userID string) ([]string, error) {
	return s.names(ctx,
		`SELECT p.name FROM users u JOIN profiles p ON p.user_id = u.id
		 WHERE u.external_id = ? ORDER BY p.id`,
		userID,
	)
}

// Macro implements storage.MacroStore.
func (s *Store) Macro(ctx context.Context, userID, name string) (string, error) {
	var command string
	err := s.db.QueryRowContext(ctx,
		`SELECT m.command FROM users u JOIN macros m ON m.user_id = u.id
		 WHERE u.external_id = ? AND m.name = ?`,
		userID, storage.NormalizeName(name),
	).Scan(&command)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrMacroNotFound
		}
		return "", fmt.Errorf("querying macro: %w", err)
	}
	return command, nil
}

// SaveMacro implements storage.MacroStore.
func (s *Store) SaveMacro(ctx context.Context, userID, name, command string) (string, bool, error) {
	name = storage.NormalizeName(name)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	uid, err := ensureUser(ctx, tx, userID)
	if err != nil {
		return "", false, err
	}

	var previous string
	replaced := true
	err = tx.QueryRowContext(ctx,
		`SELECT command FROM macros WHERE user_id = ? AND name = ?`, uid, name,
	).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		replaced = false
	} else if err != nil {
		return "", false, fmt.Errorf("querying macro: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO macros (user_id, name, command) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, name) DO UPDATE SET command = excluded.command`,
		uid, name, command,
	); err != nil {
		return "", false, fmt.Errorf("upserting macro: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("committing macro: %w", err)
	}
	return previous, replaced, nil
}

// ListMacros implements storage.MacroStore.
func (s *Store) ListMacros(ctx context.Context, userID string) ([]string, error) {
	return s.names(ctx,
		`SELECT m.name FROM users u JOIN macros m ON m.user_id = u.id
		 WHERE u.external_id = ? ORDER BY m.name`,
		userID,
	)
}

func (s *Store) names(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// IsFast implements storage.ChannelStore.
func (s *Store) IsFast(ctx context.Context, channelID string) (bool, error) {
	var fast bool
	err := s.db.QueryRowContext(ctx,
		`SELECT is_fast FROM channels WHERE external_id = ?`, channelID,
	).Scan(&fast)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("querying channel: %w", err)
	}
	return fast, nil
}

// ToggleFast implements storage.ChannelStore.
func (s *Store) ToggleFast(ctx context.Context, channelID string) (bool, error) {
	var fast bool
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO channels (external_id, is_fast) VALUES (?, 1)
		 ON CONFLICT (external_id) DO UPDATE SET is_fast = NOT is_fast
		 RETURNING is_fast`,
		channelID,
	).Scan(&fast)
	if err != nil {
		return false, fmt.Errorf("toggling channel: %w", err)
	}
	return fast, nil
}
