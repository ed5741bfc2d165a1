package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/access-management/internal"
	requestDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/request"
	softwareDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/software"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"github.com/frahmantamala/access-management/pkg/logger"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users and software for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		return seed(cmd.Context(), gormDB, cfg.Security.BCryptCost, clearData)
	},
}

type seedUser struct {
	username string
	fullName string
	email    string
	role     internal.Role
}

var seedUsers = []seedUser{
	{"admin", "System Admin", "admin@example.com", internal.RoleAdmin},
	{"bob", "Bob Manager", "bob@example.com", internal.RoleManager},
	{"alice", "Alice Employee", "alice@example.com", internal.RoleEmployee},
	{"carol", "Carol Employee", "carol@example.com", internal.RoleEmployee},
}

var seedSoftware = []softwareDatamodel.Software{
	{Name: "CRM", Description: "Customer relationship management", AccessLevels: []string{"Read", "Write"}},
	{Name: "Payroll", Description: "Salary and benefits administration", AccessLevels: []string{"Read", "Write", "Admin"}},
	{Name: "Wiki", Description: "Internal knowledge base", AccessLevels: []string{"Read"}},
}

func seed(ctx context.Context, db *gorm.DB, bcryptCost int, clear bool) error {
	lg := logger.L()
	if ctx == nil {
		ctx = context.Background()
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			for _, model := range []interface{}{&requestDatamodel.Request{}, &softwareDatamodel.Software{}, &userDatamodel.User{}} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return fmt.Errorf("clear %T: %w", model, err)
				}
			}
			lg.Info("cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		for _, su := range seedUsers {
			var existing userDatamodel.User
			err := tx.Where("username = ?", su.username).First(&existing).Error
			if err == nil {
				lg.Info("user already exists", "username", su.username)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("look up user %s: %w", su.username, err)
			}

			email, fullName := su.email, su.fullName
			u := &userDatamodel.User{
				Username:     su.username,
				PasswordHash: string(hash),
				Email:        &email,
				FullName:     &fullName,
				Role:         string(su.role),
			}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("insert user %s: %w", su.username, err)
			}
			lg.Info("seeded user", "username", su.username, "role", su.role)
		}

		for i := range seedSoftware {
			sw := seedSoftware[i]
			var existing softwareDatamodel.Software
			err := tx.Where("name = ?", sw.Name).First(&existing).Error
			if err == nil {
				lg.Info("software already exists", "name", sw.Name)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("look up software %s: %w", sw.Name, err)
			}

			if err := tx.Create(&sw).Error; err != nil {
				return fmt.Errorf("insert software %s: %w", sw.Name, err)
			}
			lg.Info("seeded software", "name", sw.Name, "access_levels", sw.AccessLevels)
		}

		return nil
	})
}
