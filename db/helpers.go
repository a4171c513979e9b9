package db

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.vocdoni.io/dvote/log"
)

// initCollections creates the collections in the MongoDB database if they
// don't exist and keeps references to them in the storage struct.
func (ms *MongoStorage) initCollections(database string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// get the current collections names to create only the missing ones
	currentCollections, err := ms.collectionNames(ctx, database)
	if err != nil {
		return err
	}
	// aux method to get a collection if it exists, or create it if it doesn't
	getCollection := func(name string) (*mongo.Collection, error) {
		alreadyCreated := false
		for _, c := range currentCollections {
			if c == name {
				alreadyCreated = true
				break
			}
		}
		if !alreadyCreated {
			if err := ms.client.Database(database).CreateCollection(ctx, name); err != nil {
				return nil, err
			}
		}
		return ms.client.Database(database).Collection(name), nil
	}
	// users collection
	if ms.users, err = getCollection("users"); err != nil {
		return err
	}
	// transactions collection
	if ms.transactions, err = getCollection("transactions"); err != nil {
		return err
	}
	// matches collection
	if ms.matches, err = getCollection("matches"); err != nil {
		return err
	}
	return nil
}

// collectionNames returns the names of the collections in the given database.
func (ms *MongoStorage) collectionNames(ctx context.Context, database string) ([]string, error) {
	collectionsCursor, err := ms.client.Database(database).ListCollections(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := collectionsCursor.Close(ctx); err != nil {
			log.Warnw("failed to close collections cursor", "error", err)
		}
	}()
	collections := []bson.D{}
	if err := collectionsCursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	names := []string{}
	for _, col := range collections {
		for _, v := range col {
			if v.Key == "name" {
				names = append(names, v.Value.(string))
			}
		}
	}
	return names, nil
}

// createIndexes creates the indexes for the collections in the MongoDB
// database. Add more indexes here as needed.
func (ms *MongoStorage) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	// create an unique index for the 'email' field on users
	userEmailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}}, // 1 for ascending order
		Options: options.Index().SetUnique(true),
	}
	if _, err := ms.users.Indexes().CreateOne(ctx, userEmailIndex); err != nil {
		return fmt.Errorf("failed to create index on email for users: %w", err)
	}
	// create an index on the leaderboard sort keys
	leaderboardIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "stats.tokensWon", Value: -1},
			{Key: "stats.wins", Value: -1},
		},
	}
	if _, err := ms.users.Indexes().CreateOne(ctx, leaderboardIndex); err != nil {
		return fmt.Errorf("failed to create leaderboard index for users: %w", err)
	}
	// create an unique sparse index for the 'paymentID' field on transactions,
	// it is the durable guard against double-crediting a replayed gateway event
	paymentIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "paymentID", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
	if _, err := ms.transactions.Indexes().CreateOne(ctx, paymentIDIndex); err != nil {
		return fmt.Errorf("failed to create index on paymentID for transactions: %w", err)
	}
	// create an index for the ('userID', 'createdAt') tuple on transactions
	txUserIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userID", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}
	if _, err := ms.transactions.Indexes().CreateOne(ctx, txUserIndex); err != nil {
		return fmt.Errorf("failed to create index on userID for transactions: %w", err)
	}
	// create an index for the 'status' field on matches
	matchStatusIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	if _, err := ms.matches.Indexes().CreateOne(ctx, matchStatusIndex); err != nil {
		return fmt.Errorf("failed to create index on status for matches: %w", err)
	}
	return nil
}

// dynamicUpdateDocument creates a BSON update document from a struct, including only non-zero fields.
// It uses reflection to iterate over the struct fields and create the update document.
// The struct fields must have a bson tag to be included in the update document.
// The _id field is skipped.
func dynamicUpdateDocument(item any, alwaysUpdateTags []string) (bson.M, error) {
	val := reflect.ValueOf(item)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if !val.IsValid() || val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input must be a valid struct")
	}
	update := bson.M{}
	typ := val.Type()
	// create a map for quick lookup
	alwaysUpdateMap := make(map[string]bool, len(alwaysUpdateTags))
	for _, tag := range alwaysUpdateTags {
		alwaysUpdateMap[tag] = true
	}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() {
			continue
		}
		fieldType := typ.Field(i)
		tag := fieldType.Tag.Get("bson")
		if tag == "" || tag == "-" || tag == "_id" {
			continue
		}
		// skip tag options such as omitempty
		tag = strings.Split(tag, ",")[0]
		if tag == "" || tag == "_id" {
			continue
		}
		if !field.IsZero() || alwaysUpdateMap[tag] {
			update[tag] = field.Interface()
		}
	}
	return bson.M{"$set": update}, nil
}
