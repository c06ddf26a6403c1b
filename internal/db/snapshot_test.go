//go:build integration

package db_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakelens/stakesync/internal/db"
	"github.com/stakelens/stakesync/internal/db/model"
)

func randomSnapshot(t *testing.T, fetchedAt time.Time) *model.SnapshotDocument {
	t.Helper()

	var units []model.UnitStatusDocument
	var ids []uint64
	for range gofakeit.Number(1, 5) {
		unit := model.UnitStatusDocument{
			UnitID:       gofakeit.Uint64(),
			StakedAt:     int64(gofakeit.Number(1, 1_000_000)),
			LastActionAt: int64(gofakeit.Number(0, 1_000_000)),
			ActionCount:  uint64(gofakeit.Number(0, 100)),
			Locked:       gofakeit.Bool(),
			FetchedAt:    fetchedAt,
		}
		units = append(units, unit)
		ids = append(ids, unit.UnitID)
	}

	return &model.SnapshotDocument{
		Address:   gofakeit.LetterN(40),
		UnitIDs:   ids,
		Units:     units,
		FetchedAt: fetchedAt,
	}
}

func TestSnapshot(t *testing.T) {
	ctx := t.Context()
	// mongo stores time with millisecond precision
	fetchedAt := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("get missing", func(t *testing.T) {
		doc, err := testDB.GetSnapshot(ctx, gofakeit.LetterN(40))
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, doc)
	})

	t.Run("upsert and get", func(t *testing.T) {
		doc := randomSnapshot(t, fetchedAt)
		err := testDB.UpsertSnapshot(ctx, doc)
		require.NoError(t, err)

		stored, err := testDB.GetSnapshot(ctx, doc.Address)
		require.NoError(t, err)
		assert.Equal(t, doc, stored)
	})

	t.Run("newer snapshot replaces older", func(t *testing.T) {
		doc := randomSnapshot(t, fetchedAt)
		require.NoError(t, testDB.UpsertSnapshot(ctx, doc))

		newer := randomSnapshot(t, fetchedAt.Add(time.Second))
		newer.Address = doc.Address
		require.NoError(t, testDB.UpsertSnapshot(ctx, newer))

		stored, err := testDB.GetSnapshot(ctx, doc.Address)
		require.NoError(t, err)
		assert.Equal(t, newer, stored)
	})

	t.Run("older snapshot never replaces newer", func(t *testing.T) {
		doc := randomSnapshot(t, fetchedAt)
		require.NoError(t, testDB.UpsertSnapshot(ctx, doc))

		older := randomSnapshot(t, fetchedAt.Add(-time.Minute))
		older.Address = doc.Address
		err := testDB.UpsertSnapshot(ctx, older)
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKeyError(err))

		stored, err := testDB.GetSnapshot(ctx, doc.Address)
		require.NoError(t, err)
		assert.Equal(t, doc, stored)
	})

	t.Run("delete", func(t *testing.T) {
		doc := randomSnapshot(t, fetchedAt)
		require.NoError(t, testDB.UpsertSnapshot(ctx, doc))
		require.NoError(t, testDB.DeleteSnapshot(ctx, doc.Address))

		_, err := testDB.GetSnapshot(ctx, doc.Address)
		assert.True(t, db.IsNotFoundError(err))
	})
}
