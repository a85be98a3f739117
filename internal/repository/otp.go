package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inotebook/inotebook-go/internal/model"
)

var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository handles password reset code persistence.
type OTPRepository struct {
	db *sql.DB
}

// NewOTPRepository creates a new OTPRepository.
func NewOTPRepository(db *sql.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Replace removes any code stored for otp.Email and stores otp in its place.
func (r *OTPRepository) Replace(ctx context.Context, otp *model.OTP) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM otps WHERE email = ?`, otp.Email); err != nil {
		return fmt.Errorf("delete previous otp: %w", err)
	}

	query := `INSERT INTO otps (email, code, created_at, expires_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		otp.Email, otp.Code, toMillis(otp.CreatedAt), toMillis(otp.ExpiresAt),
	); err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}

	return tx.Commit()
}

// GetByEmail retrieves the code stored for an email.
func (r *OTPRepository) GetByEmail(ctx context.Context, email string) (*model.OTP, error) {
	query := `SELECT email, code, attempts, created_at, expires_at FROM otps WHERE email = ?`

	var otp model.OTP
	var created, expires int64
	err := r.db.QueryRowContext(ctx, query, email).Scan(&otp.Email, &otp.Code, &otp.Attempts, &created, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}

	otp.CreatedAt = fromMillis(created)
	otp.ExpiresAt = fromMillis(expires)
	return &otp, nil
}

// Delete removes the code stored for an email. Deleting a missing code is not an error.
func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE email = ?`, email); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

// RecordFailure counts a wrong guess against the stored code and deletes the
// code once limit wrong guesses have been made. It reports whether the code
// was deleted, and returns ErrOTPNotFound when the code is no longer stored.
func (r *OTPRepository) RecordFailure(ctx context.Context, otp *model.OTP, limit int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE otps SET attempts = attempts + 1 WHERE email = ? AND code = ?`, otp.Email, otp.Code)
	if err != nil {
		return false, fmt.Errorf("count otp attempt: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected == 0 {
		return false, ErrOTPNotFound
	}

	var attempts int
	if err := tx.QueryRowContext(ctx,
		`SELECT attempts FROM otps WHERE email = ? AND code = ?`, otp.Email, otp.Code,
	).Scan(&attempts); err != nil {
		return false, fmt.Errorf("read otp attempts: %w", err)
	}

	exhausted := attempts >= limit
	if exhausted {
		if _, err := tx.ExecContext(ctx, `DELETE FROM otps WHERE email = ? AND code = ?`, otp.Email, otp.Code); err != nil {
			return false, fmt.Errorf("delete exhausted otp: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	otp.Attempts = attempts
	return exhausted, nil
}
