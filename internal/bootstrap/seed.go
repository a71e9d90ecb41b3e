package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codetutor/internal/db"
	"github.com/codetutor/internal/domain"
	"github.com/codetutor/internal/password"
	"github.com/codetutor/internal/validation"
)

// SeedFile describes the optional YAML bootstrap file. It exists so a fresh
// install has an admin account without manual database edits.
type SeedFile struct {
	Admins []SeedUser `yaml:"admins"`
}

// SeedUser is one bootstrap account entry
type SeedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Apply loads the seed file and creates any admin accounts that do not exist
// yet. Idempotent: accounts whose email is already registered are skipped.
func Apply(path string, database *db.DB, hasher *password.Hasher, logger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	for _, entry := range seed.Admins {
		email := validation.NormalizeEmail(entry.Email)

		// Format check only; seed files are operator-controlled, so
		// reserved usernames like "admin" are allowed here
		if err := validation.ValidateUsernameFormat(entry.Username); err != nil {
			return fmt.Errorf("seed entry %q: %w", entry.Username, err)
		}
		if err := validation.ValidateEmail(email); err != nil {
			return fmt.Errorf("seed entry %q: %w", entry.Username, err)
		}
		if err := validation.ValidatePassword(entry.Password); err != nil {
			return fmt.Errorf("seed entry %q: %w", entry.Username, err)
		}

		if _, err := database.GetUserByEmail(email); err == nil {
			logger.Debug("seed account already exists", "email", email)
			continue
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		hash, err := hasher.Hash(entry.Password)
		if err != nil {
			return err
		}

		user := db.NewUser(entry.Username, email, hash)
		user.Role = domain.RoleAdmin
		if err := database.CreateUser(user); err != nil {
			return err
		}
		logger.Info("seeded admin account", "username", entry.Username)
	}

	return nil
}
