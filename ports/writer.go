package ports

import (
	"context"

	"vbtlab/domain/study"
)

// DatasetWriter renders an assembled dataset as file artifacts.
type DatasetWriter interface {
	// Write produces the writer's artifacts for the dataset and returns the
	// paths written. Failures are wrapped with context and propagated;
	// generation is deterministic so callers never retry.
	Write(ctx context.Context, ds *study.Dataset, report *study.QualityReport) ([]string, error)
}
