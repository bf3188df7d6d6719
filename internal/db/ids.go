package db

import (
	"strings"

	"github.com/google/uuid"
)

// Two id strategies coexist: most tables use AUTOINCREMENT integers, the
// checklist family uses opaque string tokens so nested rows can be created
// without a round trip to the autoincrement counter.

// NewToken returns an opaque unique id for checklist-family rows.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
