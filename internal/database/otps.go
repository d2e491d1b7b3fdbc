package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"passvault/internal/models"
)

// UpsertOTP stores code for email, replacing any pending one.
func (q *Queries) UpsertOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	query := `
		INSERT INTO otps (email, otp_code, expires_at, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (email) DO UPDATE
		SET otp_code = EXCLUDED.otp_code, expires_at = EXCLUDED.expires_at, created_at = now(), failed_attempts = 0`

	if _, err := q.db.Exec(ctx, query, email, code, expiresAt); err != nil {
		return oops.Code("OTP_UPSERT_FAILED").Wrap(err)
	}
	return nil
}

func (q *Queries) GetOTP(ctx context.Context, email string) (*models.OTP, error) {
	query := `SELECT email, otp_code, expires_at, created_at FROM otps WHERE email = $1`

	var otp models.OTP
	err := q.db.QueryRow(ctx, query, email).Scan(&otp.Email, &otp.Code, &otp.ExpiresAt, &otp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("OTP_GET_FAILED").Wrap(err)
	}
	return &otp, nil
}

// RecordOTPFailure counts a wrong guess against the pending code for email and returns
// the new total. It returns 0 when no code is pending.
func (q *Queries) RecordOTPFailure(ctx context.Context, email string) (int, error) {
	query := `UPDATE otps SET failed_attempts = failed_attempts + 1 WHERE email = $1 RETURNING failed_attempts`

	var attempts int
	err := q.db.QueryRow(ctx, query, email).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, oops.Code("OTP_RECORD_FAILURE_FAILED").With("email", email).Wrap(err)
	}
	return attempts, nil
}

func (q *Queries) DeleteOTP(ctx context.Context, email string) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM otps WHERE email = $1`, email); err != nil {
		return oops.Code("OTP_DELETE_FAILED").Wrap(err)
	}
	return nil
}

func (q *Queries) CreateResetGrant(ctx context.Context, email string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_grants (email, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET expires_at = EXCLUDED.expires_at`

	if _, err := q.db.Exec(ctx, query, email, expiresAt); err != nil {
		return oops.Code("RESET_GRANT_CREATE_FAILED").Wrap(err)
	}
	return nil
}

// ConsumeResetGrant deletes the grant for email and reports whether it was still
// valid at now.
func (q *Queries) ConsumeResetGrant(ctx context.Context, email string, now time.Time) (bool, error) {
	query := `DELETE FROM password_reset_grants WHERE email = $1 RETURNING expires_at`

	var expiresAt time.Time
	err := q.db.QueryRow(ctx, query, email).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, oops.Code("RESET_GRANT_CONSUME_FAILED").Wrap(err)
	}
	return !now.After(expiresAt), nil
}
