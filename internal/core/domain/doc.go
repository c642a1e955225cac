// Package domain defines the core business entities for the catalogue ETL.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SupplierDescriptor: Static configuration of one supplier
//   - RawRecord: An untyped payload from one supplier feed
//   - CorrelatedRecord: Base and side payloads merged by correlation key
//   - UnifiedProduct: A product in the normalised catalogue schema
//   - RunOutcome / RunReport: Per-supplier and per-run results
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
