// Package jsonfeed implements a generic file-backed supplier.
//
// A feed is a directory holding one JSON-lines file per record kind:
// base.jsonl for products and any number of side files such as
// price.jsonl or stock.jsonl. Each line has the form
//
//	{"key": "P1", "modified_at": "2024-05-01T10:00:00Z", "payload": {...}}
//
// modified_at is optional; lines without it are always included, so
// incremental runs over such lines behave like full runs.
//
// Payload fields use the unified product names (name, price, ...), which
// makes the plugin useful for suppliers that deliver flat exports and for
// exercising the pipeline without network access.
package jsonfeed
