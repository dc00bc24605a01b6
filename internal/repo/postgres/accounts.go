package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, name, email, password_hash, phone, address, answer_hash, role, created_at, updated_at`

type AccountsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{pool: pool, prom: prom}
}

func (r *AccountsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Insert relies on the accounts_email_key constraint; two concurrent inserts
// for one email leave exactly one row.
func (r *AccountsRepo) Insert(ctx context.Context, a account.Account) error {
	err := r.observe("accounts.insert", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO accounts (`+accountColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			a.ID, a.Name, a.Email, a.PasswordHash, a.Phone, a.Address, a.AnswerHash, a.Role, a.CreatedAt, a.UpdatedAt,
		)
		return e
	})

	if isUniqueViolation(err, accountsEmailKey) {
		return account.ErrDuplicateEmail
	}

	return err
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	var a account.Account

	err := r.observe("accounts.get_by_email", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+accountColumns+`
			FROM accounts
			WHERE email = $1`,
			email,
		).Scan(scanAccount(&a)...)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}

		return account.Account{}, err
	}

	return a, nil
}

func (r *AccountsRepo) Update(ctx context.Context, a account.Account) error {
	var affected int64

	err := r.observe("accounts.update", func() error {
		tag, e := r.pool.Exec(ctx, `
			UPDATE accounts
			SET name = $2, password_hash = $3, phone = $4, address = $5, answer_hash = $6, role = $7, updated_at = $8
			WHERE id = $1`,
			a.ID, a.Name, a.PasswordHash, a.Phone, a.Address, a.AnswerHash, a.Role, a.UpdatedAt,
		)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (r *AccountsRepo) DeleteByEmail(ctx context.Context, email string) error {
	var affected int64

	err := r.observe("accounts.delete_by_email", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM accounts WHERE email = $1`, email)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (r *AccountsRepo) List(ctx context.Context) ([]account.Account, error) {
	out := []account.Account{}

	err := r.observe("accounts.list", func() error {
		rows, e := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, email`)
		if e != nil {
			return e
		}
		defer rows.Close()

		for rows.Next() {
			var a account.Account
			if e := rows.Scan(scanAccount(&a)...); e != nil {
				return e
			}
			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AccountsRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanAccount(a *account.Account) []any {
	return []any{
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.Phone,
		&a.Address,
		&a.AnswerHash,
		&a.Role,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}
