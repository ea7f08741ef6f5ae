package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dan47bennett/typescript-reddit/internal/db"
)

// StartPostgres runs a postgres container, applies the migrations and
// returns the DSN with an open connection. Everything is cleaned up when
// the test finishes.
func StartPostgres(t *testing.T) (string, *sqlx.DB) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := db.DSN(host, port.Int(), "postgres", "password", "testdb")

	var conn *sqlx.DB
	for i := 0; i < 10; i++ {
		conn, err = db.Connect(ctx, dsn, 5, 2)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(dsn))

	return dsn, conn
}

// StartRedis runs a redis container and returns a connected client.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

// Truncate empties the given tables and resets their sequences.
func Truncate(t *testing.T, conn *sqlx.DB, tables ...string) {
	t.Helper()
	for _, table := range tables {
		_, err := conn.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		require.NoError(t, err)
	}
}
