package labrequest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medilab/lims/internal/domain/billing"
)

var (
	ErrNotFound = errors.New("lab request not found")
	// ErrConflict is returned when a concurrent writer changed the record
	// between read and save.
	ErrConflict = errors.New("lab request was modified concurrently")
)

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// ErrInvalidTransition matches any InvalidTransitionError via errors.Is.
var ErrInvalidTransition = errors.New("invalid status transition")

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ValidationError reports the fields or rules that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Status is the workflow state of a lab request.
type Status string

const (
	StatusRegistered Status = "REGISTERED"
	StatusCollected  Status = "COLLECTED"
	StatusAnalyzed   Status = "ANALYZED"
	StatusVerified   Status = "VERIFIED"
)

// statusTransitions is the forward-only workflow order. VERIFIED is
// terminal.
var statusTransitions = map[Status][]Status{
	StatusRegistered: {StatusCollected},
	StatusCollected:  {StatusAnalyzed},
	StatusAnalyzed:   {StatusVerified},
	StatusVerified:   {},
}

// ValidateTransition checks whether from may advance to to.
func ValidateTransition(from, to Status) error {
	for _, next := range statusTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// TestResult is a single entered value. Flag is computed at entry time from
// the parameter's reference range and stored.
type TestResult struct {
	ParameterID string `json:"parameterId"`
	Value       string `json:"value"`
	Flag        string `json:"flag"`
}

// LabRequest is one patient visit's order, tracked through the workflow.
// Results, Payment and CollectedSamples are stored as JSONB. Version backs
// compare-and-swap saves.
type LabRequest struct {
	ID                 uuid.UUID               `json:"id"`
	LabNo              string                  `json:"lab_no"`
	PatientID          string                  `json:"patient_id"`
	PatientName        string                  `json:"patient_name"`
	TestIDs            []string                `json:"test_ids"`
	Status             Status                  `json:"status"`
	Results            map[string][]TestResult `json:"results"`
	Payment            billing.PaymentDetails  `json:"payment"`
	ReferredBy         string                  `json:"referred_by"`
	Comments           string                  `json:"comments"`
	AIInterpretation   string                  `json:"ai_interpretation"`
	CollectedSamples   []string                `json:"collected_samples"`
	PhlebotomyComments string                  `json:"phlebotomy_comments"`
	Version            int                     `json:"version"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// HasTest reports whether the request includes the given catalog test.
func (lr *LabRequest) HasTest(testID string) bool {
	for _, id := range lr.TestIDs {
		if id == testID {
			return true
		}
	}
	return false
}

// SampleCollected reports whether the given sample type was collected.
func (lr *LabRequest) SampleCollected(sampleTypeID string) bool {
	for _, id := range lr.CollectedSamples {
		if id == sampleTypeID {
			return true
		}
	}
	return false
}

// StatusHistory records one status transition.
type StatusHistory struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"request_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
}
