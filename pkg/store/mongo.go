package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per table in the "tables" collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type tableDoc struct {
	Name      string     `bson:"_id"`
	Rows      [][]string `bson:"rows"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Println("✅ Connected to MongoDB")
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("tables"),
	}, nil
}

func (m *MongoStore) Load(ctx context.Context, name string) ([][]string, error) {
	var doc tableDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		log.Printf("Error: table %s not found.", name)
		return [][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading table %s: %w", name, err)
	}
	if doc.Rows == nil {
		return [][]string{}, nil
	}
	for i, r := range doc.Rows {
		if r == nil {
			doc.Rows[i] = []string{}
		}
	}
	return doc.Rows, nil
}

func (m *MongoStore) Save(ctx context.Context, name string, rows [][]string) error {
	doc := tableDoc{Name: name, Rows: cloneRows(rows), UpdatedAt: time.Now()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving table %s: %w", name, err)
	}
	return nil
}

func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}
