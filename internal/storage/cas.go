// Package storage holds the conditional-update primitive every balance and
// status mutator goes through. A write targets a row by id AND by the
// previously-read value of the guarded field, so a concurrent writer makes
// the update affect zero rows instead of silently losing it.
package storage

import (
	"whitelotus/models"

	"github.com/pocketbase/dbx"
)

// UpdateIf sets guardField to next, but only when the row still holds the
// value the caller read. Zero affected rows means another writer got there
// first: the caller gets ErrConcurrentUpdate and must re-read, never retry
// blindly.
func UpdateIf(db dbx.Builder, table, id, guardField string, expected, next any) error {
	return UpdateFieldsIf(db, table, id, dbx.Params{guardField: next}, guardField, expected)
}

// UpdateFieldsIf writes several columns guarded by a single field's
// previously-read value.
func UpdateFieldsIf(db dbx.Builder, table, id string, cols dbx.Params, guardField string, expected any) error {
	res, err := db.Update(table, cols, dbx.HashExp{"id": id, guardField: expected}).Execute()
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrConcurrentUpdate
	}
	return nil
}
