//go:build integration

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/domain"
)

func setupNeo4jContainer(t *testing.T) (config.GraphConfig, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5-community",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/testpassword",
		},
		WaitingFor: wait.ForLog("Bolt enabled").WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start neo4j container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	cfg := config.GraphConfig{
		URI:      fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		Username: "neo4j",
		Password: "testpassword",
	}
	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating neo4j container: %v", err)
		}
	}
	return cfg, cleanup
}

func TestStore_Integration_UpsertIsIdempotent(t *testing.T) {
	cfg, cleanup := setupNeo4jContainer(t)
	defer cleanup()

	ctx := context.Background()
	store, err := New(ctx, cfg)
	require.NoError(t, err)
	defer store.Close(ctx)
	require.NoError(t, store.EnsureIndexes(ctx))

	c := Candidate{
		Identifiers: domain.Identifiers{DOI: "10.1/abc"},
		Metadata:    domain.Metadata{Title: "A Paper"},
	}
	lid1, created1, err := store.UpsertLiterature(ctx, c)
	require.NoError(t, err)
	assert.True(t, created1)

	lid2, created2, err := store.UpsertLiterature(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, lid1, lid2)
	assert.False(t, created2)
}

func TestStore_Integration_AliasResolveAndCitesLink(t *testing.T) {
	cfg, cleanup := setupNeo4jContainer(t)
	defer cleanup()

	ctx := context.Background()
	store, err := New(ctx, cfg)
	require.NoError(t, err)
	defer store.Close(ctx)
	require.NoError(t, store.EnsureIndexes(ctx))

	src, _, err := store.UpsertLiterature(ctx, Candidate{
		Identifiers: domain.Identifiers{DOI: "10.1/src"},
		Metadata:    domain.Metadata{Title: "Source Paper"},
	})
	require.NoError(t, err)
	require.NoError(t, store.AddAlias(ctx, src, domain.AliasDOI, "10.1/src"))

	resolved, ok, err := store.ResolveAlias(ctx, domain.AliasDOI, "10.1/src")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, src, resolved)

	dst, _, err := store.UpsertLiterature(ctx, Candidate{
		Identifiers: domain.Identifiers{DOI: "10.1/dst"},
		Metadata:    domain.Metadata{Title: "Cited Paper"},
	})
	require.NoError(t, err)

	require.NoError(t, store.LinkCites(ctx, src, dst, false, 0.95, "api"))
}
