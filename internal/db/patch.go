package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// PatchSpec parameterizes the generic partial-update primitive: which table,
// which id column, and which fields the caller may touch. Every resource
// shares this one implementation instead of hand-building its own SET clause.
type PatchSpec struct {
	Table    string
	IDColumn string
	Allowed  []string
}

// allows reports whether field is on the allow-list.
func (s PatchSpec) allows(field string) bool {
	for _, f := range s.Allowed {
		if f == field {
			return true
		}
	}
	return false
}

// Patch updates exactly the supplied allow-listed fields of one row.
// Fields outside the allow-list are ignored; if none remain the patch is a
// validation error, and zero affected rows surface as not-found.
func (d *DB) Patch(ctx context.Context, spec PatchSpec, id any, fields map[string]any) error {
	cols := make([]string, 0, len(fields))
	for name := range fields {
		if spec.allows(name) {
			cols = append(cols, name)
		}
	}
	if len(cols) == 0 {
		return trackerrors.ValidationMsg("fields", "no updatable fields provided")
	}
	// Deterministic SET order keeps queries stable for logging and tests.
	sort.Strings(cols)

	setParts := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, name := range cols {
		setParts[i] = name + " = ?"
		args = append(args, fields[name])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		spec.Table, strings.Join(setParts, ", "), spec.IDColumn)

	res, err := d.Exec(ctx, query, args...)
	if err != nil {
		return classify("update "+spec.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return trackerrors.Internal("update "+spec.Table, err)
	}
	if n == 0 {
		return trackerrors.NotFound(spec.Table, id)
	}
	return nil
}
