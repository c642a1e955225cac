package driven

import (
	"context"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// Extractor fetches raw records from one supplier.
// Each supplier plugin (midocean, jsonfeed, etc.) implements this interface.
type Extractor interface {
	// SupplierID returns the configured supplier ID.
	SupplierID() string

	// Capabilities returns what this extractor supports.
	Capabilities() ExtractorCapabilities

	// Validate checks the extractor is configured and can reach its supplier.
	// For API suppliers this typically makes a cheap test call.
	// Returns nil if ready to extract, error describing the problem otherwise.
	Validate(ctx context.Context) error

	// Extract opens a stream of raw records.
	// When opts.Since is set and SupportsIncremental is false, Extract
	// returns domain.ErrUnsupportedOperation without fetching anything.
	Extract(ctx context.Context, opts ExtractOptions) (RecordStream, error)

	// Close releases resources.
	Close() error
}

// ExtractOptions narrows an extraction.
type ExtractOptions struct {
	// Since restricts extraction to records modified at or after this time.
	// Nil means a full extraction.
	Since *time.Time
}

// Incremental reports whether the options request incremental extraction.
func (o ExtractOptions) Incremental() bool {
	return o.Since != nil
}

// RecordStream yields raw records one page at a time.
//
// Next returns io.EOF once the stream is exhausted. A Next call that fails
// does not advance the stream, so calling Next again re-requests the same
// page. Streams cannot be rewound.
type RecordStream interface {
	Next(ctx context.Context) ([]domain.RawRecord, error)
}

// ExtractorCapabilities describes what an extractor supports.
type ExtractorCapabilities struct {
	// SupportsIncremental indicates the extractor can filter by modification time.
	SupportsIncremental bool

	// SupportsValidation indicates Validate() performs an actual check.
	SupportsValidation bool

	// Feeds lists the record kinds this extractor emits (informational).
	Feeds []domain.RecordKind
}
