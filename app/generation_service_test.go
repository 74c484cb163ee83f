package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vbtlab/adapters/rng"
	"vbtlab/domain/core"
	"vbtlab/domain/protocol"
	"vbtlab/internal/synth"
	"vbtlab/ports"
)

func newTestService() *GenerationService {
	return NewGenerationService(func(seed int64) ports.RNG {
		return rng.New(seed)
	})
}

func testRequest(count int, seed int64) GenerationRequest {
	cfg := synth.DefaultConfig()
	cfg.ParticipantCount = count
	cfg.Seed = seed
	return GenerationRequest{Config: cfg}
}

func TestGenerateProducesCompleteRun(t *testing.T) {
	service := newTestService()

	result, err := service.Generate(context.Background(), testRequest(10, 42))
	require.NoError(t, err)
	require.NotNil(t, result.Dataset)
	require.NotNil(t, result.Quality)

	assert.Len(t, result.Dataset.Participants, 10)
	assert.Len(t, result.Dataset.Measurements, 10*45)

	manifest := result.Dataset.Manifest
	require.NoError(t, manifest.Validate())
	assert.Equal(t, int64(42), manifest.Seed)
	assert.Equal(t, 10, manifest.ParticipantCount)
	assert.Equal(t, 10*45, manifest.MeasurementCount)
	assert.False(t, core.Hash(manifest.Fingerprint).IsEmpty())

	assert.Equal(t, 10, result.Quality.ParticipantRows)
	assert.Equal(t, 10*45, result.Quality.MeasurementRows)
}

func TestGenerateIsDeterministic(t *testing.T) {
	service := newTestService()

	first, err := service.Generate(context.Background(), testRequest(12, 99))
	require.NoError(t, err)
	second, err := service.Generate(context.Background(), testRequest(12, 99))
	require.NoError(t, err)

	assert.True(t, first.Dataset.Manifest.Fingerprint.Equals(second.Dataset.Manifest.Fingerprint),
		"identical seed and count must reproduce the fingerprint")
	assert.Equal(t, first.Dataset.Participants, second.Dataset.Participants)
	assert.Equal(t, first.Dataset.Measurements, second.Dataset.Measurements)
}

func TestGenerateSeedMovesFingerprint(t *testing.T) {
	service := newTestService()

	first, err := service.Generate(context.Background(), testRequest(5, 1))
	require.NoError(t, err)
	second, err := service.Generate(context.Background(), testRequest(5, 2))
	require.NoError(t, err)

	assert.False(t, first.Dataset.Manifest.Fingerprint.Equals(second.Dataset.Manifest.Fingerprint))
}

func TestGenerateConcurrentMatchesSequential(t *testing.T) {
	service := newTestService()

	sequential, err := service.Generate(context.Background(), testRequest(30, 42))
	require.NoError(t, err)
	concurrent, err := service.GenerateConcurrent(context.Background(), testRequest(30, 42))
	require.NoError(t, err)

	assert.True(t, sequential.Dataset.Manifest.Fingerprint.Equals(concurrent.Dataset.Manifest.Fingerprint),
		"concurrent generation must be byte-identical to sequential")
	assert.Equal(t, sequential.Dataset.Participants, concurrent.Dataset.Participants)
	assert.Equal(t, sequential.Dataset.Measurements, concurrent.Dataset.Measurements)
	assert.Equal(t, sequential.Quality.VelocityLoadCorrelations, concurrent.Quality.VelocityLoadCorrelations)
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	service := newTestService()

	_, err := service.Generate(context.Background(), testRequest(0, 42))
	assert.True(t, core.IsInvalidParameterError(err))

	req := testRequest(5, 42)
	req.Config.LoadPercentages = []float64{50, 65}
	_, err = service.Generate(context.Background(), req)
	assert.True(t, core.IsInvalidParameterError(err))

	_, err = service.GenerateConcurrent(context.Background(), testRequest(-1, 42))
	assert.True(t, core.IsInvalidParameterError(err))
}

func TestGenerateUsesProvidedRunID(t *testing.T) {
	service := newTestService()

	req := testRequest(2, 42)
	req.RunID = core.RunID("run-fixed")
	result, err := service.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, core.RunID("run-fixed"), result.Dataset.Manifest.RunID)

	result, err = service.Generate(context.Background(), testRequest(2, 42))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Dataset.Manifest.RunID.String())
}

func TestVerifyDataset(t *testing.T) {
	service := newTestService()

	result, err := service.Generate(context.Background(), testRequest(6, 7))
	require.NoError(t, err)

	require.NoError(t, service.VerifyDataset(result.Dataset))

	result.Dataset.Measurements[3].PeakVelocity *= 1.0001
	err = service.VerifyDataset(result.Dataset)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFingerprintMismatch)
}

func TestPlanSplitFromManifestSeed(t *testing.T) {
	service := newTestService()

	result, err := service.Generate(context.Background(), testRequest(20, 42))
	require.NoError(t, err)

	first, err := service.PlanSplit(result.Dataset, protocol.DefaultSplitRatios())
	require.NoError(t, err)
	second, err := service.PlanSplit(result.Dataset, protocol.DefaultSplitRatios())
	require.NoError(t, err)

	assert.Equal(t, first, second, "split must be reproducible from the manifest seed")

	trainN, validationN, testN := first.Sizes()
	assert.Equal(t, 20, trainN+validationN+testN)
	assert.Equal(t, 14, trainN)

	_, err = service.PlanSplit(result.Dataset, protocol.SplitRatios{Train: 0.9, Validation: 0.2, Test: 0.1})
	assert.True(t, core.IsProtocolError(err))
}
