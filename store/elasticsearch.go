package store

import (
	"time"

	"github.com/funktionslust/goconsolidate"

	"github.com/olivere/elastic/v7"
)

// ElasticsearchSnapshotStoreConfig represents the ElasticsearchSnapshotStore
// configurable fields model.
type ElasticsearchSnapshotStoreConfig struct {
	// ServerURL is the ES server URL with protocol and port.
	// E.g. https://my.es.instance:9200.
	ServerURL string `validate:"required,url"`
	// Index is the name of the index snapshots are recorded in.
	Index string `validate:"required"`
}

// NewElasticsearchSnapshotStore returns a new instance of the
// ElasticsearchSnapshotStore.
func NewElasticsearchSnapshotStore(cfg ElasticsearchSnapshotStoreConfig) *ElasticsearchSnapshotStore {
	return &ElasticsearchSnapshotStore{Cfg: cfg}
}

// ElasticsearchSnapshotStore records data source snapshots in Elasticsearch
// so search-facing consumers can find resources by shape, mimetype or asset
// location without touching the consolidators.
type ElasticsearchSnapshotStore struct {
	goconsolidate.BaseStorage
	Cfg    ElasticsearchSnapshotStoreConfig
	client *elastic.Client
}

// snapshotDocument is the indexed form of one recorded snapshot.
type snapshotDocument struct {
	ResourceUID string                           `json:"resource_uid"`
	RunID       string                           `json:"run_id"`
	Snapshot    goconsolidate.DataSourceSnapshot `json:"snapshot"`
	Updated     time.Time                        `json:"updated"`
}

// Setup contains the storage preparations like connection etc. Is called only
// once at the very beginning of the work with the storage. As for the
// ElasticsearchSnapshotStore, it sets up the internal client and the
// snapshot index.
func (s *ElasticsearchSnapshotStore) Setup() error {
	client, err := elastic.NewClient(elastic.SetURL(s.Cfg.ServerURL), elastic.SetSniff(false))
	if err != nil {
		return err
	}
	if _, _, err := client.Ping(s.Cfg.ServerURL).Do(s.Context); err != nil {
		return err
	}
	s.client = client
	exists, err := s.client.IndexExists(s.Cfg.Index).Do(s.Context)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := s.client.CreateIndex(s.Cfg.Index).Do(s.Context); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot persists the snapshot of the passed resource, replacing the
// previously recorded one.
func (s *ElasticsearchSnapshotStore) SaveSnapshot(resourceUID string, snapshot goconsolidate.DataSourceSnapshot) error {
	doc := snapshotDocument{
		ResourceUID: resourceUID,
		RunID:       s.RunID,
		Snapshot:    snapshot,
		Updated:     time.Now(),
	}
	_, err := s.client.Index().
		Index(s.Cfg.Index).
		Id(resourceUID).
		BodyJson(doc).
		Do(s.Context)
	return err
}

// Shutdown stops the underlying Elasticsearch client.
func (s *ElasticsearchSnapshotStore) Shutdown() {
	if s.client != nil {
		s.client.Stop()
	}
}
