package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rezonate/auth-service/internal/model"
)

// SessionRepo persists session rows (access + refresh token hashes).
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionColumns = "id,user_id,token_hash,refresh_token_hash,device_info,ip_address,user_agent,expires_at,last_activity,is_active,created_at"

// Insert stores a new session row created at login.
func (r *SessionRepo) Insert(ctx context.Context, s *model.SessionToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO session_tokens (id, user_id, token_hash, refresh_token_hash, device_info, ip_address, user_agent, expires_at, last_activity, is_active) VALUES (?,?,?,?,?,?,?,?,?,?)",
		s.ID, s.UserID, s.TokenHash, s.RefreshTokenHash, s.DeviceInfo, s.IPAddress, s.UserAgent, s.ExpiresAt, s.LastActivity, s.IsActive)
	return err
}

func (r *SessionRepo) scanRow(row *sql.Row) (model.SessionToken, error) {
	var s model.SessionToken
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.RefreshTokenHash, &s.DeviceInfo,
		&s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.LastActivity, &s.IsActive, &s.CreatedAt)
	return s, err
}

// GetByTokenHash fetches a session by the access token hash.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, hash string) (model.SessionToken, error) {
	return r.scanRow(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM session_tokens WHERE token_hash=? LIMIT 1", hash))
}

// GetByRefreshHash fetches a session by the refresh token hash.
func (r *SessionRepo) GetByRefreshHash(ctx context.Context, hash string) (model.SessionToken, error) {
	return r.scanRow(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM session_tokens WHERE refresh_token_hash=? LIMIT 1", hash))
}

// Rotate replaces both token hashes and extends the expiry of an existing
// session row.  Used on refresh so the session identity survives while
// the stale tokens stop resolving.
func (r *SessionRepo) Rotate(ctx context.Context, id, tokenHash, refreshHash string, expiresAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE session_tokens SET token_hash=?, refresh_token_hash=?, expires_at=?, last_activity=? WHERE id=? AND is_active=1",
		tokenHash, refreshHash, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Touch updates last_activity on a verified request.
func (r *SessionRepo) Touch(ctx context.Context, id string, t time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE session_tokens SET last_activity=? WHERE id=?", t, id)
	return err
}

// Revoke flips a single session inactive.
func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE session_tokens SET is_active=0 WHERE id=?", id)
	return err
}

// RevokeAllForUser flips every active session of a user inactive and
// returns how many rows changed.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE session_tokens SET is_active=0 WHERE user_id=? AND is_active=1", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpired removes rows past their expiry.  Called by the hourly
// sweep; revoked-but-unexpired rows are kept for audit.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM session_tokens WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListActiveForUser returns the user's valid sessions, newest first.
func (r *SessionRepo) ListActiveForUser(ctx context.Context, userID string) ([]model.SessionToken, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM session_tokens WHERE user_id=? AND is_active=1 AND expires_at > ? ORDER BY created_at DESC",
		userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.SessionToken
	for rows.Next() {
		var s model.SessionToken
		if err := rows.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.RefreshTokenHash, &s.DeviceInfo,
			&s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.LastActivity, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
