package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inotebook/inotebook-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = `id, name, email, password_hash, last_password_change, created_at, updated_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A missing ID is generated and zero timestamps
// are set to the current time.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate user id: %w", err)
		}
		user.ID = id.String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	if user.LastPasswordChange.IsZero() {
		user.LastPasswordChange = user.CreatedAt
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		toMillis(user.LastPasswordChange), toMillis(user.CreatedAt), toMillis(user.UpdatedAt),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpdateName sets a new display name.
func (r *UserRepository) UpdateName(ctx context.Context, id, name string, at time.Time) error {
	return r.updateByID(ctx, id, `name = ?, updated_at = ?`, name, toMillis(at))
}

// UpdateEmail sets a new email address. A unique-key violation maps to ErrDuplicateEmail.
func (r *UserRepository) UpdateEmail(ctx context.Context, id, email string, at time.Time) error {
	err := r.updateByID(ctx, id, `email = ?, updated_at = ?`, email, toMillis(at))
	if isDuplicateEntryError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// UpdatePassword stores a new hash and records the change time.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	return r.updateByID(ctx, id, `password_hash = ?, last_password_change = ?, updated_at = ?`,
		passwordHash, toMillis(at), toMillis(at))
}

// ResetPassword consumes the reset code and stores the new hash in one
// transaction, so a failed update leaves the code usable. It returns
// ErrOTPNotFound when the code was already consumed or replaced.
func (r *UserRepository) ResetPassword(ctx context.Context, id string, otp *model.OTP, passwordHash string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM otps WHERE email = ? AND code = ?`, otp.Email, otp.Code)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOTPNotFound
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, last_password_change = ?, updated_at = ? WHERE id = ?`,
		passwordHash, toMillis(at), toMillis(at), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}

	return tx.Commit()
}

// Delete removes a user together with their notes and any pending OTP.
func (r *UserRepository) Delete(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ?`, user.ID); err != nil {
		return fmt.Errorf("delete notes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM otps WHERE email = ?`, user.Email); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, user.ID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}

	return tx.Commit()
}

// updateByID applies the SET clause to one user row.
func (r *UserRepository) updateByID(ctx context.Context, id, set string, args ...any) error {
	query := `UPDATE users SET ` + set + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the values did not change.
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var lastChange, created, updated int64
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &lastChange, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.LastPasswordChange = fromMillis(lastChange)
	user.CreatedAt = fromMillis(created)
	user.UpdatedAt = fromMillis(updated)
	return &user, nil
}
