package protocol

import (
	"fmt"
	"math"
	"math/rand/v2"

	"vbtlab/domain/core"
)

// ratioTolerance absorbs float addition error when checking that split
// proportions sum to one.
const ratioTolerance = 1e-9

// SplitRatios are the train/validation/test proportions of a split plan.
type SplitRatios struct {
	Train      float64 `json:"train"`
	Validation float64 `json:"validation"`
	Test       float64 `json:"test"`
}

// DefaultSplitRatios returns the protocol's 70/15/15 proportions.
func DefaultSplitRatios() SplitRatios {
	return SplitRatios{Train: 0.70, Validation: 0.15, Test: 0.15}
}

// Validate checks that each ratio is positive and they sum to one.
func (r SplitRatios) Validate() error {
	if r.Train <= 0 || r.Validation <= 0 || r.Test <= 0 {
		return core.NewProtocolError("split_ratios", "each ratio must be positive")
	}
	if math.Abs(r.Train+r.Validation+r.Test-1.0) > ratioTolerance {
		return core.NewProtocolError("split_ratios",
			fmt.Sprintf("must sum to 1, got %g", r.Train+r.Validation+r.Test))
	}
	return nil
}

// SplitAssignment partitions participants into the three splits. Because the
// unit of assignment is the participant, no participant's measurements can
// leak across splits.
type SplitAssignment struct {
	Train      []core.ParticipantID `json:"train"`
	Validation []core.ParticipantID `json:"validation"`
	Test       []core.ParticipantID `json:"test"`
}

// PlanSplit shuffles the participants with the provided stream and partitions
// them by the given ratios. The same stream state always yields the same
// assignment. Sizes are rounded; the test split absorbs the remainder.
func PlanSplit(participants []core.ParticipantID, ratios SplitRatios, rng *rand.Rand) (SplitAssignment, error) {
	if len(participants) == 0 {
		return SplitAssignment{}, core.NewInvalidParameterError("participants", "cannot be empty")
	}
	if rng == nil {
		return SplitAssignment{}, core.NewInvalidParameterError("rng", "cannot be nil")
	}
	if err := ratios.Validate(); err != nil {
		return SplitAssignment{}, err
	}

	shuffled := make([]core.ParticipantID, len(participants))
	copy(shuffled, participants)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	trainN := int(math.Round(float64(n) * ratios.Train))
	validationN := int(math.Round(float64(n) * ratios.Validation))
	if trainN+validationN > n {
		validationN = n - trainN
	}

	return SplitAssignment{
		Train:      shuffled[:trainN],
		Validation: shuffled[trainN : trainN+validationN],
		Test:       shuffled[trainN+validationN:],
	}, nil
}

// Validate checks that the assignment is a true partition of the given
// participants: pairwise disjoint and jointly covering.
func (s SplitAssignment) Validate(participants []core.ParticipantID) error {
	seen := make(map[core.ParticipantID]int, len(participants))
	for _, split := range [][]core.ParticipantID{s.Train, s.Validation, s.Test} {
		for _, id := range split {
			seen[id]++
		}
	}

	for _, id := range participants {
		switch seen[id] {
		case 0:
			return core.NewProtocolError("split_assignment",
				fmt.Sprintf("participant %s not assigned to any split", id))
		case 1:
			// assigned exactly once
		default:
			return core.NewProtocolError("split_assignment",
				fmt.Sprintf("participant %s assigned to multiple splits", id))
		}
		delete(seen, id)
	}
	for id := range seen {
		return core.NewProtocolError("split_assignment",
			fmt.Sprintf("unknown participant %s in assignment", id))
	}
	return nil
}

// Sizes returns the split sizes in train/validation/test order.
func (s SplitAssignment) Sizes() (int, int, int) {
	return len(s.Train), len(s.Validation), len(s.Test)
}

// LeaveOneOutFold is one fold of leave-one-participant-out cross-validation.
type LeaveOneOutFold struct {
	HoldOut core.ParticipantID   `json:"hold_out"`
	Train   []core.ParticipantID `json:"train"`
}

// PlanLeaveOneOut produces one fold per participant, each holding out exactly
// that participant and training on all others in their original order.
func PlanLeaveOneOut(participants []core.ParticipantID) ([]LeaveOneOutFold, error) {
	if len(participants) < 2 {
		return nil, core.NewInvalidParameterError("participants",
			"leave-one-out requires at least 2 participants")
	}

	folds := make([]LeaveOneOutFold, 0, len(participants))
	for i, holdOut := range participants {
		train := make([]core.ParticipantID, 0, len(participants)-1)
		train = append(train, participants[:i]...)
		train = append(train, participants[i+1:]...)
		folds = append(folds, LeaveOneOutFold{HoldOut: holdOut, Train: train})
	}
	return folds, nil
}
