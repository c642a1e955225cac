// Package midocean implements the MidOcean supplier plugin.
//
// MidOcean publishes its catalogue over four gateway endpoints:
//
//   - products: one entry per master product with its colour variants
//   - pricelist: one unit price per variant SKU
//   - printdata: printing positions and techniques per master product
//   - printpricelist: setup and per-unit costs per printing technique
//
// The extractor emits one base record per master code plus price,
// print-option and print-price side records keyed by the same master code.
// The products and printdata responses are cached for the lifetime of the
// extractor since later feeds are derived from them.
//
// MidOcean does not expose modification times, so incremental extraction is
// not supported.
package midocean
