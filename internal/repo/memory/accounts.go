package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/storefront/internal/domain/account"
)

// AccountsRepo keeps accounts keyed by email. The mutex is the unique index:
// a check and insert happen under one lock, like a database constraint would.
type AccountsRepo struct {
	mu    sync.RWMutex
	items map[string]account.Account // {"email": account}
}

func NewAccountsRepo() *AccountsRepo {
	return &AccountsRepo{
		items: make(map[string]account.Account),
	}
}

func (r *AccountsRepo) Insert(ctx context.Context, a account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[a.Email]; exists {
		return account.ErrDuplicateEmail
	}

	r.items[a.Email] = a

	return nil
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	if err := ctx.Err(); err != nil {
		return account.Account{}, err
	}

	r.mu.RLock()
	a, ok := r.items[email]
	r.mu.RUnlock()

	if !ok {
		return account.Account{}, account.ErrNotFound
	}

	return a, nil
}

func (r *AccountsRepo) Update(ctx context.Context, a account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[a.Email]
	if !ok || current.ID != a.ID {
		return account.ErrNotFound
	}

	r.items[a.Email] = a

	return nil
}

func (r *AccountsRepo) DeleteByEmail(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[email]; !ok {
		return account.ErrNotFound
	}

	delete(r.items, email)

	return nil
}

func (r *AccountsRepo) List(ctx context.Context) ([]account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]account.Account, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *AccountsRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}
