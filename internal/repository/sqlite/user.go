package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
	"github.com/sakif/exercise-tracker/internal/repository"
)

var _ repository.UserStore = (*DB)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// InsertUser stores a new user with an xid identifier and sets user.ID.
// A username that already exists fails with apperror.ErrConflict.
func (db *DB) InsertUser(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning insert: %w", err)
	}
	defer tx.Rollback()

	id := xid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)`,
		id, user.Username, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateUsername()
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	if err := insertActivities(ctx, tx, id, user.Activities); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing insert: %w", err)
	}

	user.ID = id
	return nil
}

// FindUserByID loads a user and its full activity log.
func (db *DB) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.findUser(ctx, `SELECT id, username FROM users WHERE id = ?`, id, apperror.UserNotFound())
}

// FindUserByUsername loads a user by exact (case-sensitive) username.
func (db *DB) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.findUser(ctx, `SELECT id, username FROM users WHERE username = ?`, username,
		apperror.NotFound("user", username))
}

func (db *DB) findUser(ctx context.Context, query, arg string, notFound error) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", arg, err)
	}

	activities, err := loadActivities(ctx, db.conn, u.ID)
	if err != nil {
		return nil, err
	}
	u.Activities = activities

	return &u, nil
}

// SaveUser replaces the stored user document. The activity rows are rewritten
// in one transaction: either the whole new log is stored or nothing changes.
func (db *DB) SaveUser(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning save: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET username = ? WHERE id = ?`,
		user.Username, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateUsername()
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.UserNotFound()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE user_id = ?`, user.ID); err != nil {
		return fmt.Errorf("sqlite: clearing activities of %s: %w", user.ID, err)
	}
	if err := insertActivities(ctx, tx, user.ID, user.Activities); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing save of %s: %w", user.ID, err)
	}
	return nil
}

// ListUsers returns every user's id and username in insertion order.
func (db *DB) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, username FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.UserSummary, 0)
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

func insertActivities(ctx context.Context, tx *sql.Tx, userID string, activities []model.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO activities (user_id, position, description, duration, date_ms)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: preparing activity insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range activities {
		if _, err := stmt.ExecContext(ctx, userID, i, a.Description, a.Duration, a.Date.UnixMilli()); err != nil {
			return fmt.Errorf("sqlite: inserting activity %d of %s: %w", i, userID, err)
		}
	}
	return nil
}

func loadActivities(ctx context.Context, q querier, userID string) ([]model.Activity, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT description, duration, date_ms
		 FROM activities
		 WHERE user_id = ?
		 ORDER BY position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading activities of %s: %w", userID, err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0)
	for rows.Next() {
		var (
			a      model.Activity
			dateMS int64
		)
		if err := rows.Scan(&a.Description, &a.Duration, &dateMS); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		a.Date = time.UnixMilli(dateMS).UTC()
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activities: %w", err)
	}

	return activities, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
