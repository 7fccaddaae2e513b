// +build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/funktionslust/goconsolidate"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestMySQLStateStore(t *testing.T) {
	store, err := buildStateStore("run-states-test", true)
	if err != nil {
		t.Fatalf("store build error: %v", err)
	}
	defer store.Shutdown()
	state := goconsolidate.ConsolidatorState{
		ResourceUID: "res-states-test",
		Mimetype:    "text/csv",
		DataKey:     "table",
		NumRows:     3,
		SeqIndex:    map[int]int{1: 0, 2: 1, 3: 2},
		DatumShape:  []int{1},
		JoinMethod:  goconsolidate.JoinConcat,
		JoinChunks:  true,
		DataType:    goconsolidate.DataType{Scalar: "float64"},
		Assets:      []goconsolidate.Asset{{URI: "file:///data/table.csv", ParameterName: "data_uri"}},
	}
	t.Run("RoundTrip", func(t *testing.T) {
		assert.Nilf(t, store.SaveState(state), "save error")
		loaded, err := store.LoadState(state.ResourceUID)
		assert.Nilf(t, err, "load error")
		if assert.NotNilf(t, loaded, "loaded state mismatch") {
			assert.Equalf(t, state, *loaded, "result states mismatch")
		}
	})
	if t.Failed() {
		return
	}
	t.Run("SaveReplacesPreviousState", func(t *testing.T) {
		grown := state
		grown.NumRows = 5
		assert.Nilf(t, store.SaveState(grown), "save error")
		loaded, err := store.LoadState(state.ResourceUID)
		assert.Nilf(t, err, "load error")
		if assert.NotNilf(t, loaded, "loaded state mismatch") {
			assert.Equalf(t, 5, loaded.NumRows, "replaced state mismatch")
		}
	})
	t.Run("MissingResource", func(t *testing.T) {
		loaded, err := store.LoadState("res-states-missing")
		assert.Nilf(t, err, "load error")
		assert.Nilf(t, loaded, "missing resource state mismatch")
	})
	t.Run("CleanupOnStart", func(t *testing.T) {
		cleaned, err := buildStateStore("run-states-test", true)
		if err != nil {
			t.Fatalf("store build error: %v", err)
		}
		defer cleaned.Shutdown()
		loaded, err := cleaned.LoadState(state.ResourceUID)
		assert.Nilf(t, err, "load error")
		assert.Nilf(t, loaded, "cleaned up state mismatch")
	})
}

// buildStateStore builds a state store instance with default settings.
func buildStateStore(runID string, cleanupOnStart bool) (*MySQLStateStore, error) {
	store := NewMySQLStateStore(GORMStateStoreConfig{
		Host:           os.Getenv("MYSQL_STATES_HOST"),
		Database:       os.Getenv("MYSQL_STATES_DATABASE"),
		User:           os.Getenv("MYSQL_STATES_USER"),
		Password:       os.Getenv("MYSQL_STATES_PASSWORD"),
		Port:           os.Getenv("MYSQL_STATES_PORT"),
		Logger:         logger.Default.LogMode(logger.Silent),
		CleanupOnStart: cleanupOnStart,
	})
	if err := goconsolidate.InitStorage(store, context.Background(), runID, zap.NewNop()); err != nil {
		return nil, err
	}
	return store, nil
}
