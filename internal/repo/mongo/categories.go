package mongo

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/category"
	"github.com/geocoder89/storefront/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoriesRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewCategoriesRepo(d *DB, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{coll: d.db.Collection(categoriesCollection), prom: prom}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) Insert(ctx context.Context, c category.Category) error {
	err := r.observe("categories.insert", func() error {
		_, e := r.coll.InsertOne(ctx, c)
		return e
	})

	if mongo.IsDuplicateKeyError(err) {
		return category.ErrDuplicateName
	}

	return err
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id string) (category.Category, error) {
	return r.findOne(ctx, "categories.get_by_id", bson.M{"_id": id})
}

func (r *CategoriesRepo) GetBySlug(ctx context.Context, slug string) (category.Category, error) {
	return r.findOne(ctx, "categories.get_by_slug", bson.M{"slug": slug})
}

func (r *CategoriesRepo) findOne(ctx context.Context, op string, filter bson.M) (category.Category, error) {
	var c category.Category

	err := r.observe(op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&c)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) Update(ctx context.Context, c category.Category) error {
	var matched int64

	err := r.observe("categories.update", func() error {
		res, e := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
		if res != nil {
			matched = res.MatchedCount
		}
		return e
	})

	if mongo.IsDuplicateKeyError(err) {
		return category.ErrDuplicateName
	}

	if err != nil {
		return err
	}

	if matched == 0 {
		return category.ErrNotFound
	}

	return nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, id string) error {
	var deleted int64

	err := r.observe("categories.delete", func() error {
		res, e := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if res != nil {
			deleted = res.DeletedCount
		}
		return e
	})

	if err != nil {
		return err
	}

	if deleted == 0 {
		return category.ErrNotFound
	}

	return nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	out := []category.Category{}

	err := r.observe("categories.list", func() error {
		cur, e := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
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
