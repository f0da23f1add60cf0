package patient

import (
	"context"
	"errors"
	"fmt"

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

const patientCols = `id, name, age, gender, phone, email, created_at, updated_at`

// Create assigns the next id from patient_id_seq, zero-padded to at least
// three digits.
func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	var seq int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('patient_id_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("next patient id: %w", err)
	}
	p.ID = fmt.Sprintf("P%03d", seq)
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, name, age, gender, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Age, p.Gender, p.Phone, p.Email,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// CreateWithID inserts a patient with a preassigned id, skipping if it
// already exists. Used by the seeder.
func (r *repoPG) CreateWithID(ctx context.Context, p *Patient) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, name, age, gender, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, p.Age, p.Gender, p.Phone, p.Email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Update rewrites the record in place and refreshes the caller's struct with
// the stored timestamps so handlers can echo the full row back.
func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET name=$2, age=$3, gender=$4, phone=$5, email=$6, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Age, p.Gender, p.Phone, p.Email,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Patient, error) {
	var p Patient
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}
