package labrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medilab/lims/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const requestCols = `id, lab_no, patient_id, patient_name, test_ids, status,
	results, payment, referred_by, comments, ai_interpretation,
	collected_samples, phlebotomy_comments, version, created_at, updated_at`

// Create assigns the id and the next lab number. Lab numbers are the
// current date plus a zero-padded counter from lab_no_seq, which is global
// and never reset, so numbers stay unique even across date rollovers.
func (r *repoPG) Create(ctx context.Context, lr *LabRequest) error {
	var seq int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('lab_no_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("next lab number: %w", err)
	}
	lr.ID = uuid.New()
	lr.LabNo = fmt.Sprintf("%s-%04d", time.Now().UTC().Format("060102"), seq)
	lr.Version = 1

	results, payment, err := marshalJSONB(lr)
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_request (
			id, lab_no, patient_id, patient_name, test_ids, status,
			results, payment, referred_by, comments, ai_interpretation,
			collected_samples, phlebotomy_comments, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		lr.ID, lr.LabNo, lr.PatientID, lr.PatientName, lr.TestIDs, lr.Status,
		results, payment, lr.ReferredBy, lr.Comments, lr.AIInterpretation,
		lr.CollectedSamples, lr.PhlebotomyComments, lr.Version,
	).Scan(&lr.CreatedAt, &lr.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabRequest, error) {
	lr, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM lab_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return lr, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*LabRequest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_request`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM lab_request ORDER BY created_at DESC, lab_no DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRequests(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabRequest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_request WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM lab_request WHERE patient_id = $1 ORDER BY created_at DESC, lab_no DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRequests(rows, total)
}

// Update saves the record only if the stored version still matches the one
// the caller read, then bumps it. A version mismatch means a concurrent
// writer won and the caller must re-read.
func (r *repoPG) Update(ctx context.Context, lr *LabRequest) error {
	results, payment, err := marshalJSONB(lr)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_request SET
			patient_name=$3, status=$4, results=$5, payment=$6, referred_by=$7,
			comments=$8, ai_interpretation=$9, collected_samples=$10,
			phlebotomy_comments=$11, version=version+1, updated_at=NOW()
		WHERE id = $1 AND version = $2`,
		lr.ID, lr.Version,
		lr.PatientName, lr.Status, results, payment, lr.ReferredBy,
		lr.Comments, lr.AIInterpretation, lr.CollectedSamples,
		lr.PhlebotomyComments)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	lr.Version++
	return nil
}

// SetAIInterpretation writes only the interpretation column. It skips the
// version check on purpose: interpretation can run concurrently with result
// entry, and a slow model call must not fail or clobber anything else.
func (r *repoPG) SetAIInterpretation(ctx context.Context, id uuid.UUID, text string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_request SET ai_interpretation=$2, updated_at=NOW()
		WHERE id = $1`,
		id, text)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) AddStatusHistory(ctx context.Context, h *StatusHistory) error {
	h.ID = uuid.New()
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_request_status_history (id, request_id, from_status, to_status, changed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		h.ID, h.RequestID, h.FromStatus, h.ToStatus, h.ChangedAt)
	return err
}

func (r *repoPG) GetStatusHistory(ctx context.Context, requestID uuid.UUID) ([]*StatusHistory, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, request_id, from_status, to_status, changed_at
		FROM lab_request_status_history
		WHERE request_id = $1 ORDER BY changed_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*StatusHistory
	for rows.Next() {
		var h StatusHistory
		if err := rows.Scan(&h.ID, &h.RequestID, &h.FromStatus, &h.ToStatus, &h.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}

// SyncPatientName refreshes the denormalized patient name on the patient's
// requests. Verified reports are frozen and keep the name they were issued
// under.
func (r *repoPG) SyncPatientName(ctx context.Context, patientID, name string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_request SET patient_name = $2, updated_at = NOW()
		WHERE patient_id = $1 AND status <> 'VERIFIED'`,
		patientID, name)
	return err
}

func marshalJSONB(lr *LabRequest) (results, payment []byte, err error) {
	if lr.Results == nil {
		lr.Results = map[string][]TestResult{}
	}
	results, err = json.Marshal(lr.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal results: %w", err)
	}
	payment, err = json.Marshal(lr.Payment)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal payment: %w", err)
	}
	return results, payment, nil
}

func scanRequest(row pgx.Row) (*LabRequest, error) {
	var lr LabRequest
	var results, payment []byte
	err := row.Scan(
		&lr.ID, &lr.LabNo, &lr.PatientID, &lr.PatientName, &lr.TestIDs, &lr.Status,
		&results, &payment, &lr.ReferredBy, &lr.Comments, &lr.AIInterpretation,
		&lr.CollectedSamples, &lr.PhlebotomyComments, &lr.Version, &lr.CreatedAt, &lr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(results, &lr.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	if err := json.Unmarshal(payment, &lr.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	return &lr, nil
}

func collectRequests(rows pgx.Rows, total int) ([]*LabRequest, int, error) {
	var requests []*LabRequest
	for rows.Next() {
		lr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
