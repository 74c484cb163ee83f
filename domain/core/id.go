package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// ParticipantID is the dense, human-readable study identifier
	// ("P001", "P002", ...). Assignment order matches generation order.
	ParticipantID string

	// RunID identifies a single generation run
	RunID ID

	// DatasetID identifies an assembled dataset
	DatasetID ID
)

// NewParticipantID builds the zero-padded identifier for a 1-based participant index
func NewParticipantID(index int) ParticipantID {
	return ParticipantID(fmt.Sprintf("P%03d", index))
}

// String conversions for domain IDs
func (id ParticipantID) String() string { return string(id) }
func (id RunID) String() string         { return ID(id).String() }
func (id DatasetID) String() string     { return ID(id).String() }

// ParseParticipantID parses a string into ParticipantID
func ParseParticipantID(s string) (ParticipantID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("participant ID cannot be empty")
	}
	if !strings.HasPrefix(s, "P") {
		return "", fmt.Errorf("participant ID %q must start with 'P'", s)
	}
	return ParticipantID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseDatasetID parses a string into DatasetID
func ParseDatasetID(s string) (DatasetID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	return DatasetID(s), nil
}
