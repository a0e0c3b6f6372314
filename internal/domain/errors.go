package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTitleNotFound signals that a title is absent from the similarity index.
	ErrTitleNotFound = errors.New("book not found")
	// ErrIndexDegenerate signals that fewer than two titles survived the density filters.
	ErrIndexDegenerate = errors.New("similarity index has no data")
	// ErrConfiguration signals malformed collaborator data or settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrConsistency signals a broken build invariant.
	ErrConsistency = errors.New("consistency error")
	// ErrInvalidArgument signals a malformed query parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// MissingColumnsError wraps ErrConfiguration with the columns a table lacks.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s table is missing columns: %s",
		ErrConfiguration.Error(), e.Table, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrConfiguration }

// NewMissingColumns creates a missing-columns configuration error.
func NewMissingColumns(table string, columns []string) error {
	return &MissingColumnsError{Table: table, Columns: columns}
}
