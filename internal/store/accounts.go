// Package store is the only writer of account and category records. It
// validates input, hashes secrets and maps backend errors onto the modeled
// outcomes before anything reaches the caller. Uniqueness is left to the
// backing store's unique indexes; nothing here takes a lock or retries.
package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/storefront/internal/actorctx"
	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/domain/validation"
)

type AccountRepository interface {
	Insert(ctx context.Context, a account.Account) error
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Update(ctx context.Context, a account.Account) error
	DeleteByEmail(ctx context.Context, email string) error
	List(ctx context.Context) ([]account.Account, error)
}

type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, storedHash string) (bool, error)
}

type AccountStore struct {
	repo   AccountRepository
	hasher SecretHasher
	log    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountStore(repo AccountRepository, hasher SecretHasher, log *slog.Logger) *AccountStore {
	if log == nil {
		log = slog.Default()
	}

	return &AccountStore{repo: repo, hasher: hasher, log: log}
}

// Create validates req, hashes its password and answer, and persists a new account.
func (s *AccountStore) Create(ctx context.Context, req account.CreateAccountRequest) (account.Account, error) {
	req.Normalize()

	if err := validation.Struct("account", req); err != nil {
		return account.Account{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return account.Account{}, err
	}

	answerHash, err := s.hasher.Hash(req.Answer)
	if err != nil {
		return account.Account{}, err
	}

	a := account.New(req, passwordHash, answerHash)

	if err := classify("accounts.insert", s.repo.Insert(ctx, a)); err != nil {
		if !errors.Is(err, account.ErrDuplicateEmail) {
			s.log.WarnContext(ctx, "account insert failed", "err", err)
		}
		return account.Account{}, err
	}

	s.log.InfoContext(ctx, "account created", append([]any{"account_id", a.ID, "role", a.Role}, actorctx.LogAttrs(ctx)...)...)

	return a, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (account.Account, error) {
	email = account.NormalizeEmail(email)
	if email == "" {
		return account.Account{}, validation.Required("account", "email")
	}

	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return account.Account{}, classify("accounts.get_by_email", err)
	}

	return a, nil
}

// DeleteByEmail removes the account. A nil error means it was deleted;
// account.ErrNotFound means there was nothing to delete.
func (s *AccountStore) DeleteByEmail(ctx context.Context, email string) error {
	email = account.NormalizeEmail(email)
	if email == "" {
		return validation.Required("account", "email")
	}

	if err := classify("accounts.delete_by_email", s.repo.DeleteByEmail(ctx, email)); err != nil {
		if !errors.Is(err, account.ErrNotFound) {
			s.log.WarnContext(ctx, "account delete failed", "err", err)
		}
		return err
	}

	s.log.InfoContext(ctx, "account deleted", actorctx.LogAttrs(ctx)...)

	return nil
}

func (s *AccountStore) List(ctx context.Context) ([]account.Account, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, classify("accounts.list", err)
	}

	return items, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both yield account.ErrInvalidCredentials after the same amount of bcrypt work.
func (s *AccountStore) Authenticate(ctx context.Context, email, password string) (account.Account, error) {
	a, err := s.FindByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, account.ErrNotFound) || isValidation(err) {
			s.burnVerify(password)
			return account.Account{}, account.ErrInvalidCredentials
		}
		return account.Account{}, err
	}

	ok, err := s.hasher.Verify(password, a.PasswordHash)
	if err != nil {
		return account.Account{}, err
	}

	if !ok {
		return account.Account{}, account.ErrInvalidCredentials
	}

	return a, nil
}

// ResetPassword replaces the password when answer matches the stored answer hash.
func (s *AccountStore) ResetPassword(ctx context.Context, req account.ResetPasswordRequest) error {
	req.Email = account.NormalizeEmail(req.Email)

	if err := validation.Struct("password_reset", req); err != nil {
		return err
	}

	a, err := s.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			s.burnVerify(req.Answer)
			return account.ErrInvalidAnswer
		}
		return err
	}

	ok, err := s.hasher.Verify(strings.TrimSpace(req.Answer), a.AnswerHash)
	if err != nil {
		return err
	}

	if !ok {
		return account.ErrInvalidAnswer
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()

	if err := classify("accounts.update", s.repo.Update(ctx, a)); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "account password reset", "account_id", a.ID)

	return nil
}

// UpdateProfile applies the non-empty fields of req. Email and role are immutable here.
func (s *AccountStore) UpdateProfile(ctx context.Context, email string, req account.UpdateProfileRequest) (account.Account, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)

	if err := validation.Struct("profile", req); err != nil {
		return account.Account{}, err
	}

	a, err := s.FindByEmail(ctx, email)
	if err != nil {
		return account.Account{}, err
	}

	if req.Name != "" {
		a.Name = req.Name
	}
	if req.Phone != "" {
		a.Phone = req.Phone
	}
	if req.Address != "" {
		a.Address = req.Address
	}

	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return account.Account{}, err
		}
		a.PasswordHash = hash
	}

	a.UpdatedAt = time.Now().UTC()

	if err := classify("accounts.update", s.repo.Update(ctx, a)); err != nil {
		return account.Account{}, err
	}

	return a, nil
}

// burnVerify spends one bcrypt comparison so that a miss costs about as much as a hit.
func (s *AccountStore) burnVerify(secret string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("storefront-timing-equalizer")
	})

	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(secret, s.dummyHash)
	}
}

func isValidation(err error) bool {
	var verr *validation.Error
	return errors.As(err, &verr)
}
