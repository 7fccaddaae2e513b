package goconsolidate

import (
	"fmt"
	"sync"
	"time"

	"github.com/paulbellamy/ratecounter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	runnerIngestMetricName   = "runner_arrival_ingest"
	runnerValidateMetricName = "runner_resource_validate"
)

var (
	ingestRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "consolidation_ingest_rate",
		Help: "Arrival notifications per minute rate",
	})
	rowsConsolidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consolidation_rows_total",
		Help: "Total number of rows registered across all consolidators",
	})
	activeConsolidators = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "consolidation_active_consolidators",
		Help: "Number of consolidators currently accepting arrivals",
	})
)

// RunnerOpt is a type that modifies the default Runner behaviour.
type RunnerOpt func(r *Runner)

// RunnerWithRegistry makes the runner construct consolidators through the
// passed registry instead of the default one.
var RunnerWithRegistry = func(registry *Registry) func(r *Runner) {
	return func(r *Runner) {
		r.registry = registry
	}
}

// RunnerWithStateStore makes the runner restore consolidator state on
// resource creation and persist it on close.
var RunnerWithStateStore = func(states StateStore) func(r *Runner) {
	return func(r *Runner) {
		r.states = states
	}
}

// RunnerWithSnapshotStore makes PublishSnapshot record snapshots in the
// passed store.
var RunnerWithSnapshotStore = func(snapshots SnapshotStore) func(r *Runner) {
	return func(r *Runner) {
		r.snapshots = snapshots
	}
}

// RunnerWithAssetLocator makes ValidateResource check that all asset URIs
// point at existing files before the structure reader is constructed.
var RunnerWithAssetLocator = func(locator AssetLocator) func(r *Runner) {
	return func(r *Runner) {
		r.locator = locator
	}
}

// RunnerWithMetricsTracker makes the runner track step durations using the
// passed MetricsTracker.
var RunnerWithMetricsTracker = func(tracker MetricsTracker) func(r *Runner) {
	return func(r *Runner) {
		r.metrics = tracker
	}
}

// RunnerWithLogger enhances the runner with the passed logger.
var RunnerWithLogger = func(logger *zap.Logger) func(r *Runner) {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner returns a new instance of Runner for one run of arrivals.
func NewRunner(runID string, opts ...RunnerOpt) *Runner {
	r := &Runner{
		runID:         runID,
		registry:      DefaultRegistry,
		consolidators: make(map[string]Consolidator),
		metrics:       emptyMetricsTracker{},
		ingests:       ratecounter.NewRateCounter(time.Minute),
		logger:        buildDefaultLogger("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.metrics.Add(runnerIngestMetricName, "Time taken to ingest one arrival notification")
	r.metrics.Add(runnerValidateMetricName, "Time taken to validate one resource against its physical data")
	return r
}

// Runner owns the consolidators of one run: it creates a consolidator per
// resource-creation notification, routes every subsequent arrival for that
// resource to the same instance, and persists serialized consolidator state
// once the run is closed. Distinct resources are independent; the runner
// serializes access so that each consolidator still sees a single writer.
type Runner struct {
	runID         string
	registry      *Registry
	mu            sync.Mutex
	consolidators map[string]Consolidator
	states        StateStore
	snapshots     SnapshotStore
	locator       AssetLocator
	metrics       MetricsTracker
	ingests       *ratecounter.RateCounter
	logger        *zap.Logger
}

// AddResource creates the consolidator for a newly declared resource. When a
// state store is configured and holds state for the resource, the
// consolidator resumes from it.
func (r *Runner) AddResource(resource Resource, key DataKey) (Consolidator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.consolidators[resource.UID]; ok {
		return nil, NewIssue(IssueTypeInconsistentResource, StepConstruct,
			fmt.Sprintf("resource %s already has a consolidator; extensions go through ExtendResource", resource.UID), nil)
	}
	consolidator, err := r.registry.New(resource, key, ConsolidatorWithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	if r.states != nil {
		state, err := r.states.LoadState(resource.UID)
		if err != nil {
			return nil, err
		}
		if state != nil {
			if err := consolidator.LoadState(*state); err != nil {
				return nil, err
			}
			r.logger.Info("consolidator state restored",
				zap.String("resource", resource.UID),
				zap.Int("num_rows", consolidator.NumRows()),
			)
		}
	}
	r.consolidators[resource.UID] = consolidator
	activeConsolidators.Set(float64(len(r.consolidators)))
	r.logger.Info("consolidator created",
		zap.String("resource", resource.UID),
		zap.String("mimetype", resource.Mimetype),
		zap.String("data_key", resource.DataKey),
	)
	return consolidator, nil
}

// ExtendResource registers an additional resource covering the logical
// target of an existing consolidator.
func (r *Runner) ExtendResource(uid string, resource Resource) error {
	consolidator, err := r.consolidator(uid)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return consolidator.Extend(resource)
}

// IngestArrival routes an arrival notification to the consolidator of the
// passed resource and returns the patch of newly covered rows.
func (r *Runner) IngestArrival(uid string, notification ArrivalNotification) (Patch, error) {
	consolidator, err := r.consolidator(uid)
	if err != nil {
		return Patch{}, err
	}
	r.metrics.Start(runnerIngestMetricName)
	defer r.metrics.Stop(runnerIngestMetricName)
	r.mu.Lock()
	patch, err := consolidator.Ingest(notification)
	r.mu.Unlock()
	if err != nil {
		return Patch{}, err
	}
	r.ingests.Incr(1)
	ingestRate.Set(float64(r.ingests.Rate()))
	rowsConsolidated.Add(float64(notification.Indices.Len()))
	r.logger.Debug("arrival ingested",
		zap.String("resource", uid),
		zap.Int("rows", notification.Indices.Len()),
	)
	return patch, nil
}

// SnapshotResource returns the current catalog-facing description of the
// passed resource.
func (r *Runner) SnapshotResource(uid string) (DataSourceSnapshot, error) {
	consolidator, err := r.consolidator(uid)
	if err != nil {
		return DataSourceSnapshot{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return consolidator.Snapshot()
}

// PublishSnapshot records the current snapshot of the passed resource in the
// configured snapshot store.
func (r *Runner) PublishSnapshot(uid string) error {
	if r.snapshots == nil {
		return fmt.Errorf("no snapshot store configured for run %s", r.runID)
	}
	snapshot, err := r.SnapshotResource(uid)
	if err != nil {
		return err
	}
	return r.snapshots.SaveSnapshot(uid, snapshot)
}

// ValidateResource validates the consolidator of the passed resource against
// its physical data. With a configured asset locator, every asset URI is
// checked to exist first, so an incomplete write surfaces before the reader
// is constructed.
func (r *Runner) ValidateResource(uid string, fixErrors bool, rc ReaderConstructor) ([]string, error) {
	consolidator, err := r.consolidator(uid)
	if err != nil {
		return nil, err
	}
	r.metrics.Start(runnerValidateMetricName)
	defer r.metrics.Stop(runnerValidateMetricName)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locator != nil {
		for _, asset := range consolidator.Assets() {
			if _, err := r.locator.Locate(asset.URI); err != nil {
				return nil, fmt.Errorf("asset %s cannot be located: %v", asset.URI, err)
			}
		}
	}
	return consolidator.Validate(fixErrors, rc)
}

// Close persists the serialized state of every consolidator of the run
// through the configured state store. The consolidators stay usable; the
// caller decides when to discard the runner.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states == nil {
		return nil
	}
	for uid, consolidator := range r.consolidators {
		if err := r.states.SaveState(consolidator.State()); err != nil {
			return fmt.Errorf("failed to persist the state of resource %s: %v", uid, err)
		}
		r.logger.Info("consolidator state persisted",
			zap.String("resource", uid),
			zap.Int("num_rows", consolidator.NumRows()),
		)
	}
	return nil
}

// consolidator looks up the consolidator of the passed resource.
func (r *Runner) consolidator(uid string) (Consolidator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	consolidator, ok := r.consolidators[uid]
	if !ok {
		return nil, fmt.Errorf("no consolidator exists for resource %s in run %s", uid, r.runID)
	}
	return consolidator, nil
}
