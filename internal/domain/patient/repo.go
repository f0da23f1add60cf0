package patient

import "context"

// Repository persists patients. Create assigns the next sequential id.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	CreateWithID(ctx context.Context, p *Patient) (bool, error)
	Update(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
