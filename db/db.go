package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect dials Mongo and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the app's invariants depend on:
// unique user emails, one vote per (event, voter email), unique share
// URLs, and the lookup paths the webhook and jobs query on.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	database := client.Database(dbName)

	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := database.Collection("users").Indexes().CreateOne(ctx,
		unique(bson.D{{Key: "email", Value: 1}})); err != nil {
		return err
	}
	if _, err := database.Collection("votes").Indexes().CreateOne(ctx,
		unique(bson.D{{Key: "event_id", Value: 1}, {Key: "voter_email", Value: 1}})); err != nil {
		return err
	}
	if _, err := database.Collection("events").Indexes().CreateOne(ctx,
		unique(bson.D{{Key: "share_url", Value: 1}})); err != nil {
		return err
	}
	if _, err := database.Collection("contributions").Indexes().CreateOne(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "payment_intent_id", Value: 1}}}); err != nil {
		return err
	}
	if _, err := database.Collection("events").Indexes().CreateOne(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}}); err != nil {
		return err
	}
	if _, err := database.Collection("password_reset_tokens").Indexes().CreateOne(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "token", Value: 1}}}); err != nil {
		return err
	}
	return nil
}
