package domain

import (
	"fmt"
	"strings"
)

// ConfigError reports a malformed or inconsistent program definition.
// It is fatal: configuration errors surface at startup, before any processing.
type ConfigError struct {
	Key    string // program key, empty for document-level problems
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("program config: %s", e.Reason)
	}
	return fmt.Sprintf("program config %q: %s", e.Key, e.Reason)
}

// NotFoundError reports a registry lookup for a program key that was never loaded.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("program %q not found", e.Key)
}

// DataSourceError reports an upstream fetch failure: transport error, timeout,
// or malformed response. It aborts the batch unless a fallback policy is
// explicitly enabled.
type DataSourceError struct {
	Source string // source name, e.g. "county-assessor", "usda-sda"
	Op     string // operation that failed, e.g. "fetch parcels"
	Err    error  // underlying cause
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// InvalidRecordError reports a structurally invalid raw record. It lists every
// violation, not just the first, so diagnostics can show the full picture.
// Recovered locally: the record is skipped and the batch continues.
type InvalidRecordError struct {
	APN        string // best-effort identifier; empty when the APN itself is missing
	Violations []string
}

func (e *InvalidRecordError) Error() string {
	id := e.APN
	if id == "" {
		id = "<no apn>"
	}
	return fmt.Sprintf("invalid record %s: %s", id, strings.Join(e.Violations, "; "))
}
