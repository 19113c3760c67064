package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studentgov/election-api/internal/models"
)

// OTPRepository stores hashed one-time passwords for email verification.
type OTPRepository struct {
	db *sqlx.DB
}

// NewOTPRepository creates a new instance of OTPRepository.
func NewOTPRepository(db *sqlx.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Create inserts a new OTP row for an email address.
func (r *OTPRepository) Create(ctx context.Context, otp *models.OTP) error {
	if otp.ID == "" {
		otp.ID = uuid.NewString()
	}
	otp.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO email_otps (id, email, otp_hash, expires_at, consumed, created_at)
VALUES (:id, :email, :otp_hash, :expires_at, :consumed, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, otp); err != nil {
		return fmt.Errorf("create otp: %w", err)
	}
	return nil
}

// FindLatestByEmail returns the most recent unconsumed OTP for an email.
func (r *OTPRepository) FindLatestByEmail(ctx context.Context, email string) (*models.OTP, error) {
	const query = `SELECT id, email, otp_hash, expires_at, consumed, created_at
FROM email_otps
WHERE email = $1 AND consumed = FALSE
ORDER BY created_at DESC
LIMIT 1`
	var otp models.OTP
	if err := r.db.GetContext(ctx, &otp, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest otp: %w", err)
	}
	return &otp, nil
}

// MarkConsumed flags an OTP so it cannot be replayed.
func (r *OTPRepository) MarkConsumed(ctx context.Context, id string) error {
	const query = `UPDATE email_otps SET consumed = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark otp consumed: %w", err)
	}
	return nil
}

// DeleteExpired removes OTP rows past their expiry. Called periodically.
func (r *OTPRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM email_otps WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
