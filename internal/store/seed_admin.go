package store

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/google/uuid"
)

// EnsureAdmin creates the configured admin account when it does not exist yet.
// It goes through Create so the admin gets the same validation and hashing as
// everyone else.
func EnsureAdmin(ctx context.Context, s *AccountStore, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := s.FindByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return nil
	}

	if !errors.Is(err, account.ErrNotFound) {
		return err
	}

	answer := cfg.AdminAnswer

	// no recovery answer configured: make one nobody can guess
	if answer == "" {
		answer = uuid.NewString()
	}

	_, err = s.Create(ctx, account.CreateAccountRequest{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Answer:   answer,
		Role:     account.RoleAdmin,
	})

	// lost a race with another instance seeding the same admin
	if errors.Is(err, account.ErrDuplicateEmail) {
		return nil
	}

	return err
}
