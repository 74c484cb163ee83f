package app

import (
	"context"
	"fmt"
	"time"

	"vbtlab/domain/core"
	"vbtlab/domain/protocol"
	"vbtlab/domain/study"
	"vbtlab/internal/dataset"
	"vbtlab/internal/synth"
	"vbtlab/ports"

	"golang.org/x/sync/errgroup"
)

// GenerationService orchestrates a dataset run: participants, measurements,
// assembly, quality report, manifest. Generation itself is pure computation;
// persistence belongs to the writer and repository adapters.
type GenerationService struct {
	newStreams func(seed int64) ports.RNG
	assembler  *dataset.Assembler
	analyzer   *dataset.QualityAnalyzer
}

// GenerationRequest defines the inputs for one deterministic run
type GenerationRequest struct {
	Config synth.Config
	RunID  core.RunID // optional, generated if empty
}

// GenerationResult contains the complete output of a run
type GenerationResult struct {
	Dataset   *study.Dataset       `json:"dataset"`
	Quality   *study.QualityReport `json:"quality"`
	RuntimeMs int64                `json:"runtime_ms"`
}

// NewGenerationService creates a generation service. The stream factory
// builds the run's RNG from its master seed.
func NewGenerationService(newStreams func(seed int64) ports.RNG) *GenerationService {
	return &GenerationService{
		newStreams: newStreams,
		assembler:  dataset.NewAssembler(),
		analyzer:   dataset.NewQualityAnalyzer(),
	}
}

// Generate runs the sequential path: participants in index order, each
// drawing demographics and measurements from their own sub-stream.
func (s *GenerationService) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	startTime := time.Now()

	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	streams := s.newStreams(req.Config.Seed)
	generator := synth.NewParticipantGenerator(req.Config)
	synthesizer := synth.NewMeasurementSynthesizer(req.Config)

	participants := make([]study.Participant, req.Config.ParticipantCount)
	measurements := make([][]study.Measurement, req.Config.ParticipantCount)
	for i := 1; i <= req.Config.ParticipantCount; i++ {
		p, ms, err := generateParticipant(i, streams, generator, synthesizer)
		if err != nil {
			return nil, err
		}
		participants[i-1] = p
		measurements[i-1] = ms
	}

	return s.finish(req, startTime, participants, measurements)
}

// GenerateConcurrent runs the same computation with one goroutine per
// participant. Sub-streams derive from (seed, index) alone, so scheduling
// cannot change any draw and the output is identical to Generate's.
func (s *GenerationService) GenerateConcurrent(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	startTime := time.Now()

	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	streams := s.newStreams(req.Config.Seed)
	generator := synth.NewParticipantGenerator(req.Config)
	synthesizer := synth.NewMeasurementSynthesizer(req.Config)

	participants := make([]study.Participant, req.Config.ParticipantCount)
	measurements := make([][]study.Measurement, req.Config.ParticipantCount)

	g, _ := errgroup.WithContext(ctx)
	for i := 1; i <= req.Config.ParticipantCount; i++ {
		g.Go(func() error {
			p, ms, err := generateParticipant(i, streams, generator, synthesizer)
			if err != nil {
				return err
			}
			participants[i-1] = p
			measurements[i-1] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.finish(req, startTime, participants, measurements)
}

// generateParticipant produces one participant and their measurement block
// from the participant's sub-stream.
func generateParticipant(
	index int,
	streams ports.RNG,
	generator *synth.ParticipantGenerator,
	synthesizer *synth.MeasurementSynthesizer,
) (study.Participant, []study.Measurement, error) {
	src := streams.ParticipantStream(index)

	p, err := generator.GenerateOne(index, src)
	if err != nil {
		return study.Participant{}, nil, fmt.Errorf("generating participant %d: %w", index, err)
	}
	ms, err := synthesizer.SynthesizeFor(p, src)
	if err != nil {
		return study.Participant{}, nil, fmt.Errorf("synthesizing measurements for %s: %w", p.ID, err)
	}
	return p, ms, nil
}

// finish assembles the tables in index order and attaches quality report and
// manifest.
func (s *GenerationService) finish(
	req GenerationRequest,
	startTime time.Time,
	participants []study.Participant,
	measurements [][]study.Measurement,
) (*GenerationResult, error) {
	flat := make([]study.Measurement, 0, len(participants)*req.Config.MeasurementsPerParticipant())
	for _, ms := range measurements {
		flat = append(flat, ms...)
	}

	ds, fingerprint, err := s.assembler.Assemble(participants, flat)
	if err != nil {
		return nil, fmt.Errorf("assembling dataset: %w", err)
	}

	report, err := s.analyzer.BuildReport(ds)
	if err != nil {
		return nil, fmt.Errorf("building quality report: %w", err)
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}
	ds.Manifest = study.NewManifest(
		runID,
		ds.ID,
		req.Config.Seed,
		len(participants),
		len(flat),
		req.Config.StudyStartDate,
		fingerprint,
	)
	if err := ds.Manifest.Validate(); err != nil {
		return nil, err
	}

	return &GenerationResult{
		Dataset:   ds,
		Quality:   report,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}

// VerifyDataset recomputes the dataset's fingerprint and compares it to the
// manifest, guarding stored or exported data against mutation.
func (s *GenerationService) VerifyDataset(ds *study.Dataset) error {
	if ds == nil {
		return core.NewInvalidParameterError("dataset", "cannot be nil")
	}
	_, fingerprint, err := s.assembler.Assemble(ds.Participants, ds.Measurements)
	if err != nil {
		return err
	}
	if !fingerprint.Equals(ds.Manifest.Fingerprint) {
		return fmt.Errorf("%w: manifest %s, recomputed %s",
			core.ErrFingerprintMismatch, ds.Manifest.Fingerprint, fingerprint)
	}
	return nil
}

// PlanSplit partitions the dataset's participants per the ML protocol,
// drawing the shuffle from the run's named split stream so the assignment is
// reproducible from the manifest alone.
func (s *GenerationService) PlanSplit(ds *study.Dataset, ratios protocol.SplitRatios) (protocol.SplitAssignment, error) {
	if ds == nil || len(ds.Participants) == 0 {
		return protocol.SplitAssignment{}, core.NewInvalidParameterError("dataset", "cannot be empty")
	}

	ids := make([]core.ParticipantID, len(ds.Participants))
	for i, p := range ds.Participants {
		ids[i] = p.ID
	}

	streams := s.newStreams(ds.Manifest.Seed)
	assignment, err := protocol.PlanSplit(ids, ratios, streams.Stream("split"))
	if err != nil {
		return protocol.SplitAssignment{}, err
	}
	if err := assignment.Validate(ids); err != nil {
		return protocol.SplitAssignment{}, err
	}
	return assignment, nil
}
