package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

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

	var acct storage.Account
	err = s.db.QueryRow(ctx,
		`INSERT INTO accounts (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, username, password_hash, created_at`,
		username, hash,
	).Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &acct.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Account{}, storage.ErrAccountExists
		}
		return storage.Account{}, fmt.Errorf("inserting account: %w", err)
	}

	return acct, nil
}

// Authenticate verifies credentials and returns the matching account.
//
// Precondition: username and password must be non-empty.
// Postcondition: Returns the Account if credentials are valid,
// storage.ErrAccountNotFound if the username doesn't exist,
// or storage.ErrInvalidCredentials if the password is wrong.
func (s *Store) Authenticate(ctx context.Context, username, password string) (storage.Account, error) {
	var acct storage.Account
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM accounts WHERE username = $1`,
		username,
	).Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Account{}, storage.ErrAccountNotFound
		}
		return storage.Account{}, fmt.Errorf("querying account: %w", err)
	}

	if !storage.CheckPassword(password, acct.PasswordHash) {
		return storage.Account{}, storage.ErrInvalidCredentials
	}

	return acct, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
