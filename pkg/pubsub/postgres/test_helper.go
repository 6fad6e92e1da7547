package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pg "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresContainer struct {
	DSN       string
	container *pg.PostgresContainer
}

func SetupPostgres(t testing.TB) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	postgresContainer, err := pg.Run(
		ctx,
		"postgres:16-alpine",
		pg.WithDatabase("testdb"),
		pg.WithUsername("testuser"),
		pg.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatal(err)
	}

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	return &PostgresContainer{
		DSN:       dsn,
		container: postgresContainer,
	}
}

func (r *PostgresContainer) Teardown(t testing.TB) {
	if err := r.container.Terminate(context.Background()); err != nil {
		t.Fatal(err)
	}
}
