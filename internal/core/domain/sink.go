package domain

// SinkStats summarises the contents of a product sink.
type SinkStats struct {
	Total      int64            `json:"total"`
	BySupplier map[string]int64 `json:"by_supplier"`
	ByStatus   map[string]int64 `json:"by_status"`
}
