package models

import "fmt"

// SchemaExtractionError reports that introspection failed or that the active
// dataset has no tables. No schema-dependent operation can proceed while this
// condition holds.
type SchemaExtractionError struct {
	Reason string
	Err    error
}

func (e *SchemaExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("schema extraction failed: %s", e.Reason)
}

func (e *SchemaExtractionError) Unwrap() error { return e.Err }

// FilterValidationError reports a filter referencing a nonexistent table or
// column, or an operator invalid for the column's type. The whole request is
// rejected, never partially applied.
type FilterValidationError struct {
	Table    string
	Column   string
	Operator FilterOperator
	Reason   string
}

func (e *FilterValidationError) Error() string {
	return fmt.Sprintf("invalid filter on %s.%s: %s", e.Table, e.Column, e.Reason)
}

// FilterPathError reports that no relationship path connects a filter's table
// to the query's target table. This is a user-facing validation failure, not
// a fatal condition.
type FilterPathError struct {
	FromTable string
	ToTable   string
}

func (e *FilterPathError) Error() string {
	return fmt.Sprintf("no relationship path found between %q and %q", e.FromTable, e.ToTable)
}

// QueryExecutionError wraps a failure reported by the underlying query
// engine. It is surfaced as-is and never retried.
type QueryExecutionError struct {
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// UploadValidationError reports a rejected dataset upload.
type UploadValidationError struct {
	Reason string
}

func (e *UploadValidationError) Error() string { return e.Reason }

// SessionNotFoundError reports a reference to an unknown session ID.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// InvalidSessionError reports a session that exists but cannot be used or
// modified as requested.
type InvalidSessionError struct {
	SessionID string
	Reason    string
}

func (e *InvalidSessionError) Error() string {
	return fmt.Sprintf("invalid session %s: %s", e.SessionID, e.Reason)
}
