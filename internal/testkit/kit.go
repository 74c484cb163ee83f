package testkit

import (
	"context"
	"sync"
	"testing"

	"vbtlab/adapters/rng"
	"vbtlab/app"
	"vbtlab/domain/core"
	"vbtlab/domain/study"
	"vbtlab/internal/synth"
	"vbtlab/ports"
)

// Service builds a generation service wired to the production RNG adapter.
func Service() *app.GenerationService {
	return app.NewGenerationService(func(seed int64) ports.RNG {
		return rng.New(seed)
	})
}

// GenerateDataset runs the full generation pipeline with the default
// configuration, overriding only the participant count and seed. The same
// inputs always produce the same fixture.
func GenerateDataset(n int, seed int64) (*study.Dataset, *study.QualityReport, error) {
	cfg := synth.DefaultConfig()
	cfg.ParticipantCount = n
	cfg.Seed = seed

	result, err := Service().Generate(context.Background(), app.GenerationRequest{Config: cfg})
	if err != nil {
		return nil, nil, err
	}
	return result.Dataset, result.Quality, nil
}

// MustGenerateDataset is GenerateDataset for tests that treat a fixture
// failure as fatal.
func MustGenerateDataset(t testing.TB, n int, seed int64) (*study.Dataset, *study.QualityReport) {
	t.Helper()
	ds, report, err := GenerateDataset(n, seed)
	if err != nil {
		t.Fatalf("generate fixture dataset: %v", err)
	}
	return ds, report
}

// InMemoryDatasetRepository implements ports.DatasetRepository with
// map-backed storage so handler and service tests run without a database.
type InMemoryDatasetRepository struct {
	mu       sync.RWMutex
	datasets map[core.DatasetID]*study.Dataset
	reports  map[core.DatasetID]*study.QualityReport
	order    []core.DatasetID
}

var _ ports.DatasetRepository = (*InMemoryDatasetRepository)(nil)

func NewInMemoryDatasetRepository() *InMemoryDatasetRepository {
	return &InMemoryDatasetRepository{
		datasets: make(map[core.DatasetID]*study.Dataset),
		reports:  make(map[core.DatasetID]*study.QualityReport),
	}
}

func (r *InMemoryDatasetRepository) SaveDataset(ctx context.Context, ds *study.Dataset, report *study.QualityReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.datasets[ds.ID]; !exists {
		r.order = append(r.order, ds.ID)
	}
	r.datasets[ds.ID] = ds
	r.reports[ds.ID] = report
	return nil
}

func (r *InMemoryDatasetRepository) GetManifest(ctx context.Context, id core.DatasetID) (*study.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	if !ok {
		return nil, core.NewNotFoundError("dataset", string(id))
	}
	m := ds.Manifest
	return &m, nil
}

func (r *InMemoryDatasetRepository) GetQualityReport(ctx context.Context, id core.DatasetID) (*study.QualityReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, core.NewNotFoundError("quality report", string(id))
	}
	return report, nil
}

func (r *InMemoryDatasetRepository) ListParticipants(ctx context.Context, id core.DatasetID) ([]study.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	if !ok {
		return nil, core.NewNotFoundError("dataset", string(id))
	}
	return ds.Participants, nil
}

func (r *InMemoryDatasetRepository) ListMeasurements(ctx context.Context, id core.DatasetID) ([]study.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	if !ok {
		return nil, core.NewNotFoundError("dataset", string(id))
	}
	return ds.Measurements, nil
}

func (r *InMemoryDatasetRepository) ListManifests(ctx context.Context, limit, offset int) ([]study.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	manifests := make([]study.Manifest, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		manifests = append(manifests, r.datasets[r.order[i]].Manifest)
	}
	if offset >= len(manifests) {
		return []study.Manifest{}, nil
	}
	end := min(offset+limit, len(manifests))
	return manifests[offset:end], nil
}

func (r *InMemoryDatasetRepository) DeleteDataset(ctx context.Context, id core.DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[id]; !ok {
		return core.NewNotFoundError("dataset", string(id))
	}
	delete(r.datasets, id)
	delete(r.reports, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
