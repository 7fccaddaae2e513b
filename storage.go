package goconsolidate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

// InitStorage sets the storage base properties, validates it and sets it up.
func InitStorage(storage Storage, ctx context.Context, runID string, logger *zap.Logger) error {
	if err := storage.Prepare(ctx, runID, logger); err != nil {
		return err
	}
	if err := validator.New().Struct(storage); err != nil {
		return fmt.Errorf("storage validation error: %v", err)
	}
	if err := storage.Setup(); err != nil {
		return fmt.Errorf("storage setup error: %v", err)
	}
	return nil
}

// Storage is the base interface for all state stores, snapshot stores and
// asset locators.
type Storage interface {
	// Prepare validates the config and sets the base properties.
	Prepare(ctx context.Context, runID string, logger *zap.Logger) error
	// Setup contains the storage preparations like connection etc. Is called
	// only once at the very beginning of the work with the storage.
	Setup() error
	// Shutdown is called only once at the very end of the work with the
	// storage. It is meant to perform cleanups, close connections and so on.
	Shutdown()
}

// BaseStorage contains base fields and methods for all state stores,
// snapshot stores and asset locators. It must be embedded into them.
type BaseStorage struct {
	RunID   string `validate:"required"`
	Context context.Context
	Logger  *zap.Logger `validate:"required"`
}

// Prepare sets the storage base properties.
func (b *BaseStorage) Prepare(ctx context.Context, runID string, logger *zap.Logger) error {
	b.RunID = runID
	b.Context = ctx
	b.Logger = logger
	return nil
}

// Shutdown is called only once at the very end of the work with the storage.
// As for the BaseStorage, the method does nothing. It can be redefined in the
// concrete storage to set the behaviour.
func (b *BaseStorage) Shutdown() {}

// StateStore persists serialized consolidator state once the owning run is
// closed and restores it when a run resumes.
type StateStore interface {
	Storage
	// SaveState persists the serialized state of one consolidator.
	SaveState(state ConsolidatorState) error
	// LoadState retrieves the serialized state of the passed resource, or
	// nil when the resource has no persisted state.
	LoadState(resourceUID string) (*ConsolidatorState, error)
}

// SnapshotStore records point-in-time data source snapshots for search-facing
// consumers.
type SnapshotStore interface {
	Storage
	// SaveSnapshot persists the snapshot of the passed resource.
	SaveSnapshot(resourceUID string, snapshot DataSourceSnapshot) error
}

// AssetInfo is the location metadata of one physical asset, as reported by
// an asset locator. Locators look at file metadata only; the bytes of the
// scientific data are never read by this core.
type AssetInfo struct {
	URI          string
	Size         int64
	LastModified time.Time
}

// AssetLocator checks that asset URIs point at existing physical files.
type AssetLocator interface {
	Storage
	// Locate resolves the passed URI to its location metadata, failing when
	// no file exists there.
	Locate(uri string) (*AssetInfo, error)
}
