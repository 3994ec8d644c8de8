package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/storage"
)

// Store implements storage.Store on PostgreSQL.
type Store struct {
	pool *Pool
	db   *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool. The Store owns the
// pool and closes it on Close.
//
// Precondition: pool must be open and migrated.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool, db: pool.DB()}
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ensureUser returns the row id for externalID, creating the user on first use.
func ensureUser(ctx context.Context, q querier, externalID string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO users (external_id) VALUES ($1)
		 ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		 RETURNING id`,
		externalID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user: %w", err)
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

	p := &storage.Profile{Name: name, LongName: longName, Entries: map[key.Key]int{}}
	err = s.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, name, long_name) VALUES ($1, $2, $3) RETURNING id`,
		uid, name, longName,
	).Scan(&p.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrProfileExists
		}
		return nil, fmt.Errorf("inserting profile: %w", err)
	}
	return p, nil
}

// findProfile resolves a profile header. An empty name selects the active profile.
func (s *Store) findProfile(ctx context.Context, userID, name string) (*storage.Profile, error) {
	p := &storage.Profile{}
	var err error
	if name == "" {
		err = s.db.QueryRow(ctx,
			`SELECT p.id, p.name, p.long_name
			 FROM users u JOIN profiles p ON p.id = u.active_profile_id
			 WHERE u.external_id = $1`,
			userID,
		).Scan(&p.ID, &p.Name, &p.LongName)
	} else {
		err = s.db.QueryRow(ctx,
			`SELECT p.id, p.name, p.long_name
			 FROM users u JOIN profiles p ON p.user_id = u.id
			 WHERE u.external_id = $1 AND p.name = $2`,
			userID, storage.NormalizeName(name),
		).Scan(&p.ID, &p.Name, &p.LongName)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	rows, err := s.db.Query(ctx,
		`SELECT entry_key, value FROM entries WHERE profile_id = $1`,
		p.ID,
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
	if _, err := s.db.Exec(ctx, `UPDATE profiles SET long_name = $1 WHERE id = $2`, longName, p.ID); err != nil {
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
	if _, err := s.db.Exec(ctx,
		`UPDATE users SET active_profile_id = $1 WHERE external_id = $2`,
		p.ID, userID,
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
	if _, err := s.db.Exec(ctx,
		`INSERT INTO entries (profile_id, entry_key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (profile_id, entry_key) DO UPDATE SET value = EXCLUDED.value`,
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
		 WHERE u.external_id = $1 ORDER BY p.id`,
		userID,
	)
}

// Macro implements storage.MacroStore.
func (s *Store) Macro(ctx context.Context, userID, name string) (string, error) {
	var command string
	err := s.db.QueryRow(ctx,
		`SELECT m.command FROM users u JOIN macros m ON m.user_id = u.id
		 WHERE u.external_id = $1 AND m.name = $2`,
		userID, storage.NormalizeName(name),
	).Scan(&command)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrMacroNotFound
		}
		return "", fmt.Errorf("querying macro: %w", err)
	}
	return command, nil
}

// SaveMacro implements storage.MacroStore.
func (s *Store) SaveMacro(ctx context.Context, userID, name, command string) (string, bool, error) {
	name = storage.NormalizeName(name)
	var previous string
	replaced := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		uid, err := ensureUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx,
			`SELECT command FROM macros WHERE user_id = $1 AND name = $2 FOR UPDATE`,
			uid, name,
		).Scan(&previous)
		switch {
		case err == nil:
			replaced = true
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("querying macro: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO macros (user_id, name, command) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, name) DO UPDATE SET command = EXCLUDED.command`,
			uid, name, command,
		)
		if err != nil {
			return fmt.Errorf("upserting macro: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return previous, replaced, nil
}

// ListMacros implements storage.MacroStore.
func (s *Store) ListMacros(ctx context.Context, userID string) ([]string, error) {
	return s.names(ctx,
		`SELECT m.name FROM users u JOIN macros m ON m.user_id = u.id
		 WHERE u.external_id = $1 ORDER BY m.name`,
		userID,
	)
}

func (s *Store) names(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning names: %w", err)
	}
	return names, nil
}

// IsFast implements storage.ChannelStore.
func (s *Store) IsFast(ctx context.Context, channelID string) (bool, error) {
	var fast bool
	err := s.db.QueryRow(ctx,
		`SELECT is_fast FROM channels WHERE external_id = $1`,
		channelID,
	).Scan(&fast)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("querying channel: %w", err)
	}
	return fast, nil
}

// ToggleFast implements storage.ChannelStore.
func (s *Store) ToggleFast(ctx context.Context, channelID string) (bool, error) {
	var fast bool
	err := s.db.QueryRow(ctx,
		`INSERT INTO channels (external_id, is_fast) VALUES ($1, TRUE)
		 ON CONFLICT (external_id) DO UPDATE SET is_fast = NOT channels.is_fast
		 RETURNING is_fast`,
		channelID,
	).Scan(&fast)
	if err != nil {
		return false, fmt.Errorf("toggling channel: %w", err)
	}
	return fast, nil
}
