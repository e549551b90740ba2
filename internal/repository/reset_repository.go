package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wadhahbr/room-reservation/internal/utils"
)

// ErrResetInvalid is returned when a password-reset token is unknown,
// expired or already used.
var ErrResetInvalid = errors.New("invalid reset token")

// ResetRepo manages single-use password-reset tokens.  The raw token sent
// to the user by email is a UUID; only its SHA-256 hash is stored, the
// same discipline applied to refresh tokens.
type ResetRepo struct{ DB *sql.DB }

func NewResetRepo(db *sql.DB) *ResetRepo { return &ResetRepo{DB: db} }

// ResetTTL is how long a reset token remains redeemable.
const ResetTTL = time.Hour

// Issue creates a reset token for the user and returns the raw value to
// be emailed.  Previous unused tokens for the user are invalidated.
func (r *ResetRepo) Issue(ctx context.Context, userID uint64) (string, error) {
	raw := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE password_resets SET used_at=NOW() WHERE user_id=? AND used_at IS NULL",
		userID); err != nil {
		return "", err
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, utils.HashRefreshRaw(raw), time.Now().UTC().Add(ResetTTL))
	if err != nil {
		return "", err
	}
	return raw, nil
}

// Redeem consumes a raw token and returns the owning user ID.  A token
// can be redeemed once; expired, used or unknown tokens all yield
// ErrResetInvalid so callers leak nothing about which case occurred.
func (r *ResetRepo) Redeem(ctx context.Context, raw string) (uint64, error) {
	hash := utils.HashRefreshRaw(raw)
	var (
		id        uint64
		userID    uint64
		expiresAt time.Time
		usedAt    sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, used_at FROM password_resets WHERE token_hash=? LIMIT 1",
		hash).Scan(&id, &userID, &expiresAt, &usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrResetInvalid
		}
		return 0, err
	}
	if usedAt.Valid || time.Now().UTC().After(expiresAt) {
		return 0, ErrResetInvalid
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE password_resets SET used_at=NOW() WHERE id=? AND used_at IS NULL", id)
	if err != nil {
		return 0, err
	}
	// A concurrent redeem may have won the race; rows affected settles it.
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrResetInvalid
	}
	return userID, nil
}
