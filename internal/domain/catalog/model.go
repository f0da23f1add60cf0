package catalog

// SampleType identifies the specimen a test requires, with the tube color
// used on the collection UI.
type SampleType struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	TubeColor string `db:"tube_color" json:"tube_color"`
}

// TestParameter is a single measured value within a LabTest.
type TestParameter struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Unit           string `db:"unit" json:"unit"`
	ReferenceRange string `db:"reference_range" json:"reference_range"`
}

// LabTest is an orderable test from the catalog. Reference data, immutable
// at runtime.
type LabTest struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Price        float64         `db:"price" json:"price"`
	Category     string          `db:"category" json:"category"`
	SampleTypeID string          `db:"sample_type_id" json:"sample_type_id"`
	Parameters   []TestParameter `json:"parameters"`
}

// ParameterByID returns the parameter with the given id, if the test has it.
func (t *LabTest) ParameterByID(id string) (TestParameter, bool) {
	for _, p := range t.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return TestParameter{}, false
}
