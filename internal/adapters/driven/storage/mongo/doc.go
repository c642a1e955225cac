// Package mongo provides the MongoDB product sink.
//
// Products are written with unordered bulk ReplaceOne upserts keyed by
// product_id, so loading the same batch twice leaves one document per
// product. Validate pings the server and creates the catalogue indexes.
package mongo
