package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/rezonate/auth-service/internal/model"
)

// ProfileRepo persists admin profiles in the 'admin_profiles' table.  The
// two permission maps are stored as JSON columns.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Create inserts a profile row.  A second profile for the same user maps
// to ErrProfileExists.
func (r *ProfileRepo) Create(ctx context.Context, p *model.AdminProfile) error {
	obd2, err := json.Marshal(p.OBD2Permissions)
	if err != nil {
		return err
	}
	sys, err := json.Marshal(p.SystemAccess)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO admin_profiles (user_id, admin_level, obd2_permissions, system_access, updated_by) VALUES (?,?,?,?,?)",
		p.UserID, p.AdminLevel, obd2, sys, p.UpdatedBy)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrProfileExists
	}
	return err
}

// Get fetches the profile for a user.  sql.ErrNoRows is returned when the
// user has no profile.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.AdminProfile, error) {
	var (
		p    model.AdminProfile
		obd2 []byte
		sys  []byte
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, admin_level, obd2_permissions, system_access, updated_by, created_at, updated_at FROM admin_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &p.AdminLevel, &obd2, &sys, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.AdminProfile{}, err
	}
	if err := json.Unmarshal(obd2, &p.OBD2Permissions); err != nil {
		return model.AdminProfile{}, err
	}
	if err := json.Unmarshal(sys, &p.SystemAccess); err != nil {
		return model.AdminProfile{}, err
	}
	return p, nil
}

// UpdateOBD2 replaces the OBD2 permission map.
func (r *ProfileRepo) UpdateOBD2(ctx context.Context, userID string, perms map[string]bool, updatedBy string) error {
	return r.updateMap(ctx, "obd2_permissions", userID, perms, updatedBy)
}

// UpdateSystemAccess replaces the system access map.
func (r *ProfileRepo) UpdateSystemAccess(ctx context.Context, userID string, access map[string]bool, updatedBy string) error {
	return r.updateMap(ctx, "system_access", userID, access, updatedBy)
}

func (r *ProfileRepo) updateMap(ctx context.Context, column, userID string, m map[string]bool, updatedBy string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admin_profiles SET "+column+"=?, updated_by=? WHERE user_id=?",
		data, updatedBy, userID)
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

// UpdateLevel sets the admin tier for a profile.
func (r *ProfileRepo) UpdateLevel(ctx context.Context, userID string, level int, updatedBy string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admin_profiles SET admin_level=?, updated_by=? WHERE user_id=?",
		level, updatedBy, userID)
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

// Delete removes the profile row.  Deleting a missing profile maps to
// sql.ErrNoRows so handlers can answer 404.
func (r *ProfileRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM admin_profiles WHERE user_id=?", userID)
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
