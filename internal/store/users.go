package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateUserIfAbsent registers a user on first contact. Idempotent: a second
// call with the same id is a no-op. Returns true when a new row was created,
// which drives the welcome-new vs welcome-back messaging.
func (s *Store) CreateUserIfAbsent(ctx context.Context, userID int64, firstName, username string) (bool, error) {
	var created bool
	err := retryOnBusy(ctx, 5, func() error {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO users (user_id, username, first_name, created_at)
			VALUES (?, NULLIF(?, ''), ?, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO NOTHING;
		`, userID, username, firstName)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("user rows affected: %w", err)
		}
		created = affected == 1
		return nil
	})
	return created, err
}

// GetUser returns the user record, or ErrNotFound if the id has never been
// seen.
func (s *Store) GetUser(ctx context.Context, userID int64) (*User, error) {
	var u User
	var username sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, first_name, created_at
		FROM users
		WHERE user_id = ?;
	`, userID).Scan(&u.UserID, &username, &u.FirstName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	if username.Valid {
		u.Username = username.String
	}
	return &u, nil
}

// DeleteUser removes a user and all their tasks inside one transaction.
// Tasks are deleted in bounded batches so a pathological backlog cannot
// hold the write lock for the whole scan.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	const batchSize = 500
	return retryOnBusy(ctx, 5, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin delete user tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM tasks
				WHERE id IN (SELECT id FROM tasks WHERE user_id = ? LIMIT ?);
			`, userID, batchSize)
			if err != nil {
				return fmt.Errorf("delete user tasks: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("delete user tasks rows affected: %w", err)
			}
			if affected < batchSize {
				break
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?;`, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return tx.Commit()
	})
}
