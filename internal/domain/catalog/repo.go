package catalog

import "context"

// Repository loads and seeds the catalog tables. The running server reads
// catalog data from the in-memory Store, not from here.
type Repository interface {
	ListTests(ctx context.Context) ([]*LabTest, error)
	ListSampleTypes(ctx context.Context) ([]*SampleType, error)
	SeedSampleType(ctx context.Context, st *SampleType) (bool, error)
	SeedTest(ctx context.Context, t *LabTest) (bool, error)
}
