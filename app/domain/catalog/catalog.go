// Package catalog lists the schemas of a database and the tables inside them.
//
// CatalogCache sits in front of a Source and remembers the table list of every schema it has
// fetched successfully for its whole lifetime. Failures are never remembered.
package catalog

import (
	"context"
	"errors"
)

// DefaultSchema is preferred by SelectDefaultSchema when the source reports it.
const DefaultSchema = "public"

// Source is the remote, read-only catalog.
type Source interface {
	ListSchemas(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]string, error)
}

var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrEmptySchema = errors.New("schema name must not be empty")
)

const (
	OpSchemas = "schemas"
	OpTables  = "tables"
)

// FetchError is returned for every failed remote lookup.
type FetchError struct {
	Op      string
	Schema  string
	Message string
	Err     error
}

func newFetchError(op, schema string, err error) *FetchError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		if op == OpSchemas {
			msg = "Failed to fetch schemas"
		} else {
			msg = "Failed to fetch tables"
		}
	}
	return &FetchError{Op: op, Schema: schema, Message: msg, Err: err}
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}
