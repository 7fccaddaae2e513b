package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/funktionslust/goconsolidate"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GORMStateStoreConfig represents the GORMStateStore config structure.
type GORMStateStoreConfig struct {
	Host     string `validate:"required"`
	Database string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`
	Port     string `validate:"required"`
	Logger   logger.Interface
	// CleanupOnStart drops previously persisted states of the run on Setup.
	CleanupOnStart bool
}

// GORMStateStore persists serialized consolidator state using the gorm
// library. It carries everything except the connection setup, which a
// concrete driver binding provides.
type GORMStateStore struct {
	goconsolidate.BaseStorage
	Cfg    GORMStateStoreConfig
	client *gorm.DB
}

// consolidatorState is the database model of one persisted consolidator.
type consolidatorState struct {
	ResourceUID string `gorm:"primaryKey;size:191"`
	RunID       string `gorm:"index;size:191"`
	Mimetype    string `gorm:"size:255"`
	DataKey     string `gorm:"size:255"`
	NumRows     int
	State       []byte `gorm:"type:longblob"`
	Updated     time.Time
}

// SaveState persists the serialized state of one consolidator, replacing a
// previously saved state of the same resource.
func (s *GORMStateStore) SaveState(state goconsolidate.ConsolidatorState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize the state of resource %s: %v", state.ResourceUID, err)
	}
	row := consolidatorState{
		ResourceUID: state.ResourceUID,
		RunID:       s.RunID,
		Mimetype:    state.Mimetype,
		DataKey:     state.DataKey,
		NumRows:     state.NumRows,
		State:       data,
		Updated:     time.Now(),
	}
	return s.client.Save(&row).Error
}

// LoadState retrieves the serialized state of the passed resource, or nil
// when the resource has no persisted state.
func (s *GORMStateStore) LoadState(resourceUID string) (*goconsolidate.ConsolidatorState, error) {
	var row consolidatorState
	err := s.client.First(&row, "resource_uid = ?", resourceUID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state goconsolidate.ConsolidatorState
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, fmt.Errorf("failed to deserialize the state of resource %s: %v", resourceUID, err)
	}
	return &state, nil
}

// Shutdown closes the underlying database connection.
func (s *GORMStateStore) Shutdown() {
	if s.client == nil {
		return
	}
	if db, err := s.client.DB(); err == nil {
		db.Close()
	}
}

// cleanup removes the persisted states of the store's run.
func (s *GORMStateStore) cleanup() error {
	return s.client.Where("run_id = ?", s.RunID).Delete(&consolidatorState{}).Error
}
