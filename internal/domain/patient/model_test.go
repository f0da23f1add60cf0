package patient

import "testing"

func TestPatientValidate(t *testing.T) {
	valid := Patient{Name: "John Doe", Age: 34, Gender: "Male", Phone: "0300-1234567"}

	tests := []struct {
		name   string
		mutate func(*Patient)
		ok     bool
	}{
		{"valid", func(p *Patient) {}, true},
		{"missing name", func(p *Patient) { p.Name = "" }, false},
		{"blank name", func(p *Patient) { p.Name = "   " }, false},
		{"zero age", func(p *Patient) { p.Age = 0 }, false},
		{"negative age", func(p *Patient) { p.Age = -3 }, false},
		{"bad gender", func(p *Patient) { p.Gender = "unknown" }, false},
		{"other gender", func(p *Patient) { p.Gender = "Other" }, true},
		{"missing phone", func(p *Patient) { p.Phone = "" }, false},
		{"phone too short", func(p *Patient) { p.Phone = "12345" }, false},
		{"phone with letters", func(p *Patient) { p.Phone = "0300-CALLME" }, false},
		{"phone with parens", func(p *Patient) { p.Phone = "+92 (300) 1234567" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateReportsAllFields(t *testing.T) {
	p := Patient{}
	err := p.Validate()
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(ve.Fields), ve.Fields)
	}
}
