package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/config"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/roles"
	"github.com/bandesk/bandesk/internal/uniuri"
)

// seed creates the initial admin account when the user table is empty. The
// generated password is printed once to the log; the operator is expected to
// change it right after first login.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		return
	}

	password := uniuri.NewLen(24)

	err := db.Create(
		&models.User{
			Username: "admin",
			Email:    "admin@localhost",
			Password: models.HashPassword(password),
			Active:   true,
			Role:     roles.RoleAdmin,
		},
	).Error
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}

	log.Warn().Msgf("created initial admin user with password %q, change it after first login", password)
}
