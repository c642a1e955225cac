// Package services implements the driving port interfaces.
//
// The orchestrator validates configuration, builds one pipeline per supplier
// from the component registry and runs them with bounded parallelism
// (golang.org/x/sync/errgroup). The executor streams extractor pages through
// the correlation cache, the transformer and the loader, retrying transport
// failures with exponential backoff and recording every record that does not
// load.
//
// Services depend only on domain and the port interfaces; concrete suppliers
// and sinks are wired in cmd/pim-etl.
package services
