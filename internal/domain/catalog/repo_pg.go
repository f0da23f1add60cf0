package catalog

import (
	"context"

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

func (r *repoPG) ListTests(ctx context.Context) ([]*LabTest, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, price, category, sample_type_id FROM lab_test ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []*LabTest
	byID := make(map[string]*LabTest)
	for rows.Next() {
		var t LabTest
		if err := rows.Scan(&t.ID, &t.Name, &t.Price, &t.Category, &t.SampleTypeID); err != nil {
			return nil, err
		}
		tests = append(tests, &t)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.conn(ctx).Query(ctx,
		`SELECT test_id, id, name, unit, reference_range FROM test_parameter ORDER BY test_id, position`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var testID string
		var p TestParameter
		if err := prows.Scan(&testID, &p.ID, &p.Name, &p.Unit, &p.ReferenceRange); err != nil {
			return nil, err
		}
		if t, ok := byID[testID]; ok {
			t.Parameters = append(t.Parameters, p)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *repoPG) ListSampleTypes(ctx context.Context) ([]*SampleType, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, tube_color FROM sample_type ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*SampleType
	for rows.Next() {
		var st SampleType
		if err := rows.Scan(&st.ID, &st.Name, &st.TubeColor); err != nil {
			return nil, err
		}
		types = append(types, &st)
	}
	return types, rows.Err()
}

// SeedSampleType inserts the sample type if absent. Returns whether a row
// was created.
func (r *repoPG) SeedSampleType(ctx context.Context, st *SampleType) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sample_type (id, name, tube_color)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		st.ID, st.Name, st.TubeColor)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SeedTest inserts the test and its parameters if absent. Returns whether a
// row was created.
func (r *repoPG) SeedTest(ctx context.Context, t *LabTest) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_test (id, name, price, category, sample_type_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.Name, t.Price, t.Category, t.SampleTypeID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	for i, p := range t.Parameters {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO test_parameter (test_id, id, name, unit, reference_range, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (test_id, id) DO NOTHING`,
			t.ID, p.ID, p.Name, p.Unit, p.ReferenceRange, i); err != nil {
			return false, err
		}
	}
	return true, nil
}
