package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection   = "accounts"
	categoriesCollection = "categories"
)

// DB owns the client and the database handle shared by the repositories.
type DB struct {
	Client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, url, database string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &DB{Client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the unique indexes the stores depend on. It is safe to
// call on every start.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	_, err := d.db.Collection(accountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("accounts_email_unique"),
	})
	if err != nil {
		return err
	}

	_, err = d.db.Collection(categoriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("categories_slug_unique"),
	})

	return err
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

func (d *DB) Disconnect(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
