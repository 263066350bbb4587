package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rezonate/auth-service/internal/model"
)

// UserRepo persists account records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,password_hash,role,is_active,last_login,created_at,updated_at"

// Create inserts a user row.  Email and username are normalized to
// lower-case before writing.  Collisions with the unique indexes map to
// ErrEmailExists / ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, username, password_hash, role, is_active) VALUES (?,?,?,?,?,?)",
		u.ID, u.Email, u.Username, u.PasswordHash, string(u.Role), u.IsActive)
	if err != nil {
		// MySQL 1062 = duplicate entry; the index name tells us which field collided.
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "username") {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *UserRepo) scanRow(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role,
		&u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanRow(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsernameOrEmail fetches a user whose username or email matches the
// normalized identifier.  Login accepts either form.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, ident string) (model.User, error) {
	ident = strings.ToLower(strings.TrimSpace(ident))
	return r.scanRow(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1", ident, ident))
}

// UpdateLastLogin stamps the most recent successful login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=? WHERE id=?", t, id)
	return err
}

// UpdateProfile changes the account's own email and username.  The same
// unique-index mapping as Create applies.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, email, username string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, username=? WHERE id=?", email, username, id)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "username") {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
	}
	return err
}

// UpdatePasswordHash replaces the stored bcrypt digest.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// SetActive flips the soft-disable flag.  Accounts are never hard-deleted.
func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}

// CountByRole returns how many users hold the given role.  Used by the
// bootstrap check for an existing super_admin.
func (r *UserRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=?", string(role)).Scan(&n)
	return n, err
}

// List returns all users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			u         model.User
			role      string
			lastLogin sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role,
			&u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		if lastLogin.Valid {
			t := lastLogin.Time
			u.LastLogin = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
