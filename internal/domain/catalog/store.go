package catalog

import "context"

// Store holds the catalog in memory. Built once at startup and never
// mutated, so lookups need no locking.
type Store struct {
	tests       []*LabTest
	sampleTypes []*SampleType
	testByID    map[string]*LabTest
	sampleByID  map[string]*SampleType
}

// NewStore builds a Store from already-loaded catalog data.
func NewStore(tests []*LabTest, sampleTypes []*SampleType) *Store {
	s := &Store{
		tests:       tests,
		sampleTypes: sampleTypes,
		testByID:    make(map[string]*LabTest, len(tests)),
		sampleByID:  make(map[string]*SampleType, len(sampleTypes)),
	}
	for _, t := range tests {
		s.testByID[t.ID] = t
	}
	for _, st := range sampleTypes {
		s.sampleByID[st.ID] = st
	}
	return s
}

// LoadStore reads the catalog tables and builds the Store.
func LoadStore(ctx context.Context, repo Repository) (*Store, error) {
	tests, err := repo.ListTests(ctx)
	if err != nil {
		return nil, err
	}
	sampleTypes, err := repo.ListSampleTypes(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(tests, sampleTypes), nil
}

// Tests returns all tests in catalog order.
func (s *Store) Tests() []*LabTest { return s.tests }

// SampleTypes returns all sample types.
func (s *Store) SampleTypes() []*SampleType { return s.sampleTypes }

// TestByID looks up a test by catalog id.
func (s *Store) TestByID(id string) (*LabTest, bool) {
	t, ok := s.testByID[id]
	return t, ok
}

// SampleTypeByID looks up a sample type by catalog id.
func (s *Store) SampleTypeByID(id string) (*SampleType, bool) {
	st, ok := s.sampleByID[id]
	return st, ok
}
