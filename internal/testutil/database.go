// Package testutil provides shared fixtures for tests: chart builders and
// migrated chart libraries.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/service"
	"github.com/Veraticus/stellium/internal/storage"
)

// TestDB is a migrated chart library seeded with test charts.
type TestDB struct {
	Storage service.ChartStore
	t       *testing.T
	Charts  []model.ChartRecord
}

// SetupTestDB creates a new in-memory chart library seeded with records.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.TSquare(t).Named("Ada").Record())
func SetupTestDB(t *testing.T, records ...model.ChartRecord) *TestDB {
	t.Helper()
	return SetupTestDBAt(t, ":memory:", records...)
}

// SetupTestDBAt is SetupTestDB for a database file, so a command under test
// can open the same library afterwards.
func SetupTestDBAt(t *testing.T, path string, records ...model.ChartRecord) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seeded := make([]model.ChartRecord, 0, len(records))
	for _, record := range records {
		if err := store.SaveChart(ctx, &record); err != nil {
			t.Fatalf("failed to seed chart %q: %v", record.Name, err)
		}
		seeded = append(seeded, record)
	}

	return &TestDB{
		Storage: store,
		Charts:  seeded,
		t:       t,
	}
}

// MustGetChart returns the seeded chart with the given name or fails the test.
func (db *TestDB) MustGetChart(name string) model.ChartRecord {
	db.t.Helper()
	for _, record := range db.Charts {
		if record.Name == name {
			return record
		}
	}
	db.t.Fatalf("chart %q not found in test data", name)
	return model.ChartRecord{}
}
