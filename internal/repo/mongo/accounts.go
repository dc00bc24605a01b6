package mongo

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AccountsRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewAccountsRepo(d *DB, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{coll: d.db.Collection(accountsCollection), prom: prom}
}

func (r *AccountsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *AccountsRepo) Insert(ctx context.Context, a account.Account) error {
	err := r.observe("accounts.insert", func() error {
		_, e := r.coll.InsertOne(ctx, a)
		return e
	})

	if mongo.IsDuplicateKeyError(err) {
		return account.ErrDuplicateEmail
	}

	return err
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	var a account.Account

	err := r.observe("accounts.get_by_email", func() error {
		return r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}

	return a, nil
}

func (r *AccountsRepo) Update(ctx context.Context, a account.Account) error {
	var matched int64

	err := r.observe("accounts.update", func() error {
		res, e := r.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
		if res != nil {
			matched = res.MatchedCount
		}
		return e
	})

	if err != nil {
		return err
	}

	if matched == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (r *AccountsRepo) DeleteByEmail(ctx context.Context, email string) error {
	var deleted int64

	err := r.observe("accounts.delete_by_email", func() error {
		res, e := r.coll.DeleteOne(ctx, bson.M{"email": email})
		if res != nil {
			deleted = res.DeletedCount
		}
		return e
	})

	if err != nil {
		return err
	}

	if deleted == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (r *AccountsRepo) List(ctx context.Context) ([]account.Account, error) {
	out := []account.Account{}

	err := r.observe("accounts.list", func() error {
		cur, e := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "email", Value: 1}}))
		if e != nil {
			return e
		}
		return cur.All(ctx, &out)
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
