package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/andrewpark3412/gift-tracking/internal/config"
	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/outbox"
	"github.com/andrewpark3412/gift-tracking/internal/profile"
	"github.com/andrewpark3412/gift-tracking/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHome(t *testing.T) {
	t.Helper()
	t.Setenv("GIFTTRACKER_HOME", t.TempDir())
	cfg := config.Default()
	cfg.Remote.URL = config.MemoryRemoteURL
	cfg.Storage.Driver = config.DriverSQLite
	require.NoError(t, config.Save(profile.ConfigPath(), cfg))
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) error {
	t.Helper()
	profileFlag, configFlag, offlineFlag, jsonFlag = "", "", false, false
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func queued(t *testing.T) []outbox.Operation {
	t.Helper()
	db, err := store.Open(profile.SQLitePath(profile.DefaultName))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	data, err := db.Get(context.Background(), outbox.SnapshotKey)
	require.NoError(t, err)
	var ops []outbox.Operation
	require.NoError(t, json.Unmarshal(data, &ops))
	return ops
}

func TestOfflineGiftAddIsQueued(t *testing.T) {
	setupHome(t)

	require.NoError(t, run(t, "--offline", "gift", "add", "--person", "p1", "--description", "Board game", "--price", "24.5"))

	ops := queued(t)
	require.Len(t, ops, 1)
	assert.Equal(t, outbox.KindInsert, ops[0].Kind)
	assert.Equal(t, household.CollectionGifts, ops[0].Collection)
	assert.Equal(t, "Board game", ops[0].Payload["description"])
	assert.EqualValues(t, 24.5, ops[0].Payload["price"])
}

func TestInvalidInputIsNotQueued(t *testing.T) {
	setupHome(t)

	require.NoError(t, run(t, "--offline", "person", "add", "--list", "l1", "--name", "Ana"))
	err := run(t, "--offline", "person", "update", "x1", "--budget=-5")
	require.ErrorIs(t, err, household.ErrValidation)

	assert.Len(t, queued(t), 1)
}

func TestQueueClearDiscardsEverything(t *testing.T) {
	setupHome(t)

	require.NoError(t, run(t, "--offline", "gift", "rm", "g1"))
	require.NoError(t, run(t, "--offline", "list", "rm", "l1"))
	require.Len(t, queued(t), 2)

	require.NoError(t, run(t, "--offline", "queue", "clear"))
	assert.Empty(t, queued(t))
}

func TestInvalidProfileNameRejected(t *testing.T) {
	setupHome(t)

	require.Error(t, run(t, "--profile", "Bad Name", "--offline", "queue"))
	assert.NoDirExists(t, profile.Dir("Bad Name"))
}

func TestInterruptedCommandDoesNothing(t *testing.T) {
	setupHome(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runContext(t, ctx, "gift", "add", "--person", "p1", "--description", "Board game")
	require.ErrorIs(t, err, context.Canceled)

	db, err := store.Open(profile.SQLitePath(profile.DefaultName))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, err = db.Get(context.Background(), outbox.SnapshotKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
