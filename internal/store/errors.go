package store

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced entity does not exist. Callers
// surface it as an empty/"not found" state, never as a crash.
var ErrNotFound = errors.New("record not found")

// SchemaError marks a write rejected because the backing store's schema is
// missing an expected column. It is distinguishable from generic failures so
// callers can show the remediation instead of a vague error.
type SchemaError struct {
	Column string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("backing store schema mismatch: missing column %q (restart the service so startup migrations run, or add the column manually): %v", e.Column, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

var (
	// sqlite: `no such column: show_in_condo`
	sqliteMissingColRe = regexp.MustCompile(`no such column:?\s+([\w.]+)`)
	// postgres: `column "show_in_condo" of relation "reports" does not exist`
	pgMissingColRe = regexp.MustCompile(`column "([^"]+)" .*does not exist`)
)

// classify maps driver-level errors into the store's error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	msg := err.Error()
	if m := sqliteMissingColRe.FindStringSubmatch(msg); m != nil {
		return &SchemaError{Column: m[1], Err: err}
	}
	if m := pgMissingColRe.FindStringSubmatch(msg); m != nil {
		return &SchemaError{Column: m[1], Err: err}
	}
	return err
}
