// Package testutil starts the throwaway databases store tests run against.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoRepository   = "mongo"
	mongoVersion      = "7.0"
	containerAutoKill = 120 // seconds

	// MongoURIEnv points the tests at an already running server instead
	// of starting a container.
	MongoURIEnv = "TEST_MONGO_URI"
)

// StartMongo runs a disposable MongoDB container and waits until it
// answers a ping. It returns the connection URI and a cleanup function.
func StartMongo() (uri string, cleanup func(), err error) {
	if uri := os.Getenv(MongoURIEnv); uri != "" {
		return uri, func() {}, nil
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", nil, errors.Wrap(err, "could not connect to docker")
	}
	if err := pool.Client.Ping(); err != nil {
		return "", nil, errors.Wrap(err, "docker daemon not reachable")
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: mongoRepository,
		Tag:        mongoVersion,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", nil, errors.Wrap(err, "could not start mongo container")
	}
	_ = resource.Expire(containerAutoKill)

	cleanup = func() {
		if err := pool.Purge(resource); err != nil {
			fmt.Printf("Could not purge resource: %s\n", err)
		}
	}

	uri = fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))

	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		return client.Ping(ctx, nil)
	})
	if err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, "mongo never became ready")
	}

	return uri, cleanup, nil
}

// RunWithMongo is a TestMain helper: it starts MongoDB, stores the URI in
// *uri and runs the tests. Without Docker the tests still run and
// RequireMongo skips the ones that need it.
func RunWithMongo(m *testing.M, uri *string) int {
	var cleanup func()
	var err error

	*uri, cleanup, err = StartMongo()
	if err != nil {
		fmt.Printf("MongoDB tests disabled: %v\n", err)
		*uri = ""
		return m.Run()
	}
	defer cleanup()

	return m.Run()
}

// RequireMongo skips t when no MongoDB is available.
func RequireMongo(t *testing.T, uri string) {
	t.Helper()
	if uri == "" {
		t.Skip("MongoDB not available")
	}
}

// DatabaseName returns a fresh database name so tests never share state.
func DatabaseName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
