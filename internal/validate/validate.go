// Package validate checks decoded JSON request bodies against declarative
// per-resource schemas before anything reaches storage.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// Kind is the expected JSON type of a field.
type Kind int

const (
	String Kind = iota
	Number
	Int
	Bool
	Date // string in 2006-01-02 form
)

// Field is one declarative rule set. Zero values mean "no constraint".
type Field struct {
	Name     string
	Kind     Kind
	Required bool // enforced on create only
	MinLen   int
	MaxLen   int
	Enum     []string
	Min      *float64
	Max      *float64
	NonNeg   bool
	URL      bool // string must parse as an absolute URL
}

// DatePair requires the Later field to be >= the Earlier field when both
// are present.
type DatePair struct {
	Earlier string
	Later   string
}

// Schema describes one resource's accepted fields.
type Schema struct {
	Fields    []Field
	DatePairs []DatePair
}

// Create validates a creation payload: required fields must be present,
// unknown fields are stripped, and every violation is reported. The returned
// map holds only recognized fields with normalized values.
func (s Schema) Create(in map[string]any) (map[string]any, error) {
	clean, violations := s.check(in)
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		if _, ok := clean[f.Name]; !ok {
			if _, present := in[f.Name]; !present {
				violations = append(violations,
					trackerrors.FieldViolation{Field: f.Name, Message: "is required"})
			}
		}
	}
	if len(violations) > 0 {
		return nil, trackerrors.Validation(violations)
	}
	return clean, nil
}

// Update validates a partial-update payload: unknown fields are stripped, a
// payload with zero recognized fields is rejected, and nothing is required.
func (s Schema) Update(in map[string]any) (map[string]any, error) {
	clean, violations := s.check(in)
	if len(violations) > 0 {
		return nil, trackerrors.Validation(violations)
	}
	if len(clean) == 0 {
		return nil, trackerrors.ValidationMsg("fields", "no recognized fields provided")
	}
	return clean, nil
}

// check validates every recognized field present in the payload and returns
// the cleaned map plus all violations found.
func (s Schema) check(in map[string]any) (map[string]any, []trackerrors.FieldViolation) {
	clean := map[string]any{}
	var violations []trackerrors.FieldViolation

	// Schema order, not payload order, so the violation list is deterministic.
	for _, f := range s.Fields {
		raw, ok := in[f.Name]
		if !ok {
			continue
		}
		val, msg := f.normalize(raw)
		if msg != "" {
			violations = append(violations,
				trackerrors.FieldViolation{Field: f.Name, Message: msg})
			continue
		}
		clean[f.Name] = val
	}

	for _, p := range s.DatePairs {
		earlier, eok := clean[p.Earlier].(string)
		later, lok := clean[p.Later].(string)
		if eok && lok && later < earlier {
			violations = append(violations, trackerrors.FieldViolation{
				Field:   p.Later,
				Message: fmt.Sprintf("must not be before %s", p.Earlier),
			})
		}
	}
	return clean, violations
}

// normalize type-checks raw, applies the field's rules, and returns the
// normalized value or a violation message.
func (f Field) normalize(raw any) (any, string) {
	switch f.Kind {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, "must be a string"
		}
		return s, f.checkString(s)

	case Date:
		s, ok := raw.(string)
		if !ok {
			return nil, "must be a date string"
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, "must be a date in YYYY-MM-DD form"
		}
		return s, ""

	case Number:
		n, ok := asFloat(raw)
		if !ok {
			return nil, "must be a number"
		}
		return n, f.checkNumber(n)

	case Int:
		n, ok := asFloat(raw)
		if !ok || n != float64(int64(n)) {
			return nil, "must be an integer"
		}
		if msg := f.checkNumber(n); msg != "" {
			return nil, msg
		}
		return int64(n), ""

	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, "must be a boolean"
		}
		return b, ""
	}
	return nil, "unsupported field kind"
}

func (f Field) checkString(s string) string {
	if f.MinLen > 0 && len(s) < f.MinLen {
		return fmt.Sprintf("must be at least %d characters", f.MinLen)
	}
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		return fmt.Sprintf("must be at most %d characters", f.MaxLen)
	}
	if len(f.Enum) > 0 {
		for _, e := range f.Enum {
			if s == e {
				return ""
			}
		}
		return "must be one of " + strings.Join(f.Enum, ", ")
	}
	if f.URL {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "must be a valid URL"
		}
	}
	return ""
}

func (f Field) checkNumber(n float64) string {
	if f.NonNeg && n < 0 {
		return "must not be negative"
	}
	if f.Min != nil && n < *f.Min {
		return fmt.Sprintf("must be at least %v", *f.Min)
	}
	if f.Max != nil && n > *f.Max {
		return fmt.Sprintf("must be at most %v", *f.Max)
	}
	return ""
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func fptr(v float64) *float64 { return &v }
