package auth

import (
	"context"
	"strings"

	"github.com/rezonate/auth-service/internal/model"
)

// Bootstrap seeds the first super_admin when none exists.  Credentials
// must be supplied by the operator through BOOTSTRAP_ADMIN_EMAIL and
// BOOTSTRAP_ADMIN_PASSWORD; the service refuses to invent a default
// password and instead logs a warning and leaves the instance without a
// super_admin until one is provided.
func (m *Manager) Bootstrap(ctx context.Context) error {
	n, err := m.users.CountByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	email := strings.TrimSpace(m.cfg.BootstrapAdminEmail)
	password := m.cfg.BootstrapAdminPassword
	if email == "" || password == "" {
		m.logger.Warn().Msg("no super_admin exists and bootstrap credentials are not set; skipping seed")
		return nil
	}

	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}
	u, err := m.CreateUser(ctx, email, username, password, model.RoleSuperAdmin, 3, "bootstrap")
	if err != nil {
		return err
	}
	m.logger.Info().Str("user_id", u.ID).Msg("seeded super_admin from bootstrap credentials")
	return nil
}
