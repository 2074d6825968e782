//go:build integration

package repository

// Integration tests for the folio counter against real Postgres via
// testcontainers. The counter upsert is the serialization point for folio
// minting, so it has to be exercised with genuinely concurrent transactions.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/infra"
	"github.com/lechug1122/LuisITRepair/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("ledger_test"),
		tcPostgres.WithUsername("ledger"),
		tcPostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	return db
}

func TestNextSequenceTxConcurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFolioRepository(db)
	const n = 25

	// n transactions race on one (brand slug, day) counter row. Each must
	// come back with its own sequence: together exactly 1..n.
	seqs := make([]int, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Transaction(func(tx *gorm.DB) error {
				seq, err := repo.NextSequenceTx(tx, "len", "290826")
				seqs[i] = seq
				return err
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "tx %d", i)
	}

	sort.Ints(seqs)
	for i, seq := range seqs {
		assert.Equal(t, i+1, seq, "sequences must be contiguous with no duplicates")
	}

	var counter model.FolioCounter
	require.NoError(t, db.First(&counter, "brand_slug = ? AND day_key = ?", "len", "290826").Error)
	assert.Equal(t, n, counter.Seq)
}

func TestNextSequenceTxIndependentCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFolioRepository(db)

	// A different brand and a different day each start their own sequence.
	err := db.Transaction(func(tx *gorm.DB) error {
		seq, err := repo.NextSequenceTx(tx, "len", "290826")
		require.NoError(t, err)
		assert.Equal(t, 1, seq)

		seq, err = repo.NextSequenceTx(tx, "hp", "290826")
		require.NoError(t, err)
		assert.Equal(t, 1, seq)

		seq, err = repo.NextSequenceTx(tx, "len", "300826")
		require.NoError(t, err)
		assert.Equal(t, 1, seq)

		seq, err = repo.NextSequenceTx(tx, "len", "290826")
		require.NoError(t, err)
		assert.Equal(t, 2, seq)
		return nil
	})
	require.NoError(t, err)
}
