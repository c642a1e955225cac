// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// and supplier plugins implement them.
//
// # Pipeline Interfaces
//
// Registered per supplier (or per sink type for loaders):
//
//   - Extractor: Fetches raw records from a supplier, page by page
//   - Transformer: Maps correlated records to the unified schema
//   - Loader: Upserts unified products into a sink
//   - ExtractorFactory / TransformerFactory / LoaderFactory: Build the above
//
// # Supporting Interfaces
//
//   - ConfigStore: Application configuration
//   - RunReportStore: Run report persistence. Optional.
//   - RunObserver: Outcome notifications (metrics). Optional.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or supplier package
package driven
