package db

import (
	"context"
	"database/sql"
	"fmt"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// ChildSpec describes one owned child table: where its rows live, which
// column references the parent, and any grandchildren below it.
type ChildSpec struct {
	Table    string
	FKColumn string
	Children []ChildSpec
}

// CascadeSpec describes a parent table and its owned children. One generic
// routine consumes these instead of each resource hand-rolling its own
// multi-statement transaction.
type CascadeSpec struct {
	Table    string
	IDColumn string
	Children []ChildSpec
}

// CascadeDelete removes a parent row and all its owned children inside a
// single transaction. Grandchild deletion is driven by a sub-select on the
// child table, so the whole cascade is all-or-nothing even where the engine's
// own FK cascade could not express it. Zero parent rows affected is not-found.
func (d *DB) CascadeDelete(ctx context.Context, spec CascadeSpec, id any) error {
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		for _, child := range spec.Children {
			if err := deleteChildren(ctx, tx, child, "", id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE %s = ?", spec.Table, spec.IDColumn), id)
		if err != nil {
			return classify("delete "+spec.Table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return trackerrors.Internal("delete "+spec.Table, err)
		}
		if n == 0 {
			return trackerrors.NotFound(spec.Table, id)
		}
		return nil
	})
}

// deleteChildren deletes child rows bottom-up. parentFilter selects the rows
// of the *parent* table that belong to the cascade root; for direct children
// it is empty and the FK column is compared to the root id itself.
func deleteChildren(ctx context.Context, tx *sql.Tx, child ChildSpec, parentFilter string, id any) error {
	var filter string
	if parentFilter == "" {
		filter = fmt.Sprintf("%s = ?", child.FKColumn)
	} else {
		filter = fmt.Sprintf("%s IN (%s)", child.FKColumn, parentFilter)
	}

	// Grandchildren first: their filter is a sub-select over this child table.
	subSelect := fmt.Sprintf("SELECT id FROM %s WHERE %s", child.Table, filter)
	for _, grandchild := range child.Children {
		if err := deleteChildren(ctx, tx, grandchild, subSelect, id); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s", child.Table, filter), id); err != nil {
		return classify("delete "+child.Table, err)
	}
	return nil
}
