package labrequest

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists lab requests. Create assigns the id and lab number.
// Update is compare-and-swap on Version and returns ErrConflict when the
// stored version no longer matches.
type Repository interface {
	Create(ctx context.Context, lr *LabRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabRequest, error)
	List(ctx context.Context, limit, offset int) ([]*LabRequest, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabRequest, int, error)
	Update(ctx context.Context, lr *LabRequest) error
	SetAIInterpretation(ctx context.Context, id uuid.UUID, text string) error
	AddStatusHistory(ctx context.Context, h *StatusHistory) error
	GetStatusHistory(ctx context.Context, requestID uuid.UUID) ([]*StatusHistory, error)
	SyncPatientName(ctx context.Context, patientID, name string) error
}
