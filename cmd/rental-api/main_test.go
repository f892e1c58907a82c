package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"carrental/internal/modules/catalog"
)

type fakeCatalogStore struct {
	loaded  catalog.Fixture
	seedErr error
	seeded  int
}

func (f *fakeCatalogStore) Load(context.Context) (catalog.Fixture, error) { return f.loaded, nil }

func (f *fakeCatalogStore) Seed(_ context.Context, fx catalog.Fixture) error {
	if f.seedErr != nil {
		return f.seedErr
	}
	f.seeded = len(fx.Vehicles)
	return nil
}

func TestLoadOrSeed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	store := &fakeCatalogStore{}

	fx, err := loadOrSeed(context.Background(), store, zap.New(core))
	require.NoError(t, err)
	assert.NotEmpty(t, fx.Vehicles)
	assert.Equal(t, len(fx.Vehicles), store.seeded)
	assert.Equal(t, 1, logs.FilterMessage("seeded catalog into postgres").Len())
}

func TestLoadOrSeedFailureIsNotLoggedAsSeeded(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	store := &fakeCatalogStore{seedErr: errors.New("permission denied")}

	_, err := loadOrSeed(context.Background(), store, zap.New(core))
	require.ErrorIs(t, err, store.seedErr)
	assert.Zero(t, logs.FilterMessage("seeded catalog into postgres").Len())
}

func TestLoadOrSeedKeepsExistingCatalog(t *testing.T) {
	existing, err := catalog.DefaultFixture()
	require.NoError(t, err)
	existing.Vehicles = existing.Vehicles[:1]
	store := &fakeCatalogStore{loaded: existing, seedErr: errors.New("must not seed")}

	fx, err := loadOrSeed(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, fx.Vehicles, 1)
}
