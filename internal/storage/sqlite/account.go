package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/fate/internal/storage"
)

// CreateAccount inserts a new account with a bcrypt-hashed password.
//
// Precondition: username must be non-empty; password must be non-empty.
// Postcondition: Returns the created Account with ID and CreatedAt set,
// or storage.ErrAccountExists if the username is taken.
func (s *Store) CreateAccount(ctx context.Context, username, password string) (storage.Account, error) {
	hash, err := storage.HashPassword(password)
	if err != nil {
		return storage.Account{}, fmt.Errorf("hashing password: %w", err)
	}

	acct := storage.Account{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, hash, acct.CreatedAt.Unix(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Account{}, storage.ErrAccountExists
		}
		return storage.Account{}, fmt.Errorf("inserting account: %w", err)
	}
	if acct.ID, err = res.LastInsertId(); err != nil {
		return storage.Account{}, fmt.Errorf("reading account id: %w", err)
	}
	return acct, nil
}

// Authenticate verifies credentials and returns the matching account.
//
// Postcondition: Returns the Account if credentials are valid,
// storage.ErrAccountNotFound if the username doesn't exist,
// or storage.ErrInvalidCredentials if the password is wrong.
func (s *Store) Authenticate(ctx context.Context, username, password string) (storage.Account, error) {
	var acct storage.Account
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM accounts WHERE username = ?`,
		username,
	).Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Account{}, storage.ErrAccountNotFound
		}
		return storage.Account{}, fmt.Errorf("querying account: %w", err)
	}
	acct.CreatedAt = time.Unix(created, 0).UTC()

	if !storage.CheckPassword(password, acct.PasswordHash) {
		return storage.Account{}, storage.ErrInvalidCredentials
	}
	return acct, nil
}
