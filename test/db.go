// Package test provides testing utilities for the arena-backend service,
// including test containers for MongoDB and mail services.
package test

import (
	"context"
	"fmt"
	"strings"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.vocdoni.io/dvote/util"
)

// StartMongoContainer starts a MongoDB container configured as a single node
// replica set, which is required for multi-document transactions. It returns
// the container and any error encountered during startup.
func StartMongoContainer(ctx context.Context) (*mongodb.MongoDBContainer, error) {
	return mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
}

// MongoURI returns the connection string of the running container, with the
// direct connection flag so the driver does not try to resolve the replica
// set members through the container hostname.
func MongoURI(ctx context.Context, container *mongodb.MongoDBContainer) (string, error) {
	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get MongoDB connection string: %w", err)
	}
	if strings.Contains(uri, "?") {
		return uri + "&directConnection=true", nil
	}
	return uri + "/?directConnection=true", nil
}

// RandomDatabaseName returns a random database name, so every test run works
// on a clean database without clashing with a previous one.
func RandomDatabaseName() string {
	return fmt.Sprintf("arenatest_%s", util.RandomHex(8))
}
