package patient

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var ErrNotFound = errors.New("patient not found")

// ValidationError reports the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

var validGenders = map[string]bool{
	"Male":   true,
	"Female": true,
	"Other":  true,
}

var phonePattern = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)

// Patient is a registered patient. IDs look like P001 and are assigned from
// a database sequence on create.
type Patient struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       int       `db:"age" json:"age"`
	Gender    string    `db:"gender" json:"gender"`
	Phone     string    `db:"phone" json:"phone"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the writable fields. Returns a *ValidationError listing
// every problem, or nil.
func (p *Patient) Validate() error {
	var fields []string
	if strings.TrimSpace(p.Name) == "" {
		fields = append(fields, "name is required")
	}
	if p.Age <= 0 {
		fields = append(fields, "age must be positive")
	}
	if !validGenders[p.Gender] {
		fields = append(fields, "gender must be Male, Female or Other")
	}
	if p.Phone == "" {
		fields = append(fields, "phone is required")
	} else if !phonePattern.MatchString(p.Phone) {
		fields = append(fields, "phone format is invalid")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
