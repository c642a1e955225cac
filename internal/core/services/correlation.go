package services

import (
	"fmt"
	"strings"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// CorrelationCache merges raw records of one supplier by correlation key.
// It is not safe for concurrent use; each supplier run owns its own cache.
type CorrelationCache struct {
	supplierID string
	entries    map[string]*domain.CorrelatedRecord
	order      []string
}

// NewCorrelationCache creates a cache scoped to one supplier.
func NewCorrelationCache(supplierID string) *CorrelationCache {
	return &CorrelationCache{
		supplierID: supplierID,
		entries:    make(map[string]*domain.CorrelatedRecord),
	}
}

// Add merges a raw record. A base record replaces any earlier base for the
// key; a side record replaces any earlier side record of the same kind.
func (c *CorrelationCache) Add(supplierID string, rec domain.RawRecord) error {
	if supplierID != c.supplierID {
		return fmt.Errorf("%w: record for supplier %q added to cache of %q",
			domain.ErrInvalidInput, supplierID, c.supplierID)
	}
	key := strings.TrimSpace(rec.CorrelationKey)
	if key == "" {
		return fmt.Errorf("%w: %s record has no correlation key", domain.ErrInvalidInput, rec.Kind)
	}

	entry, ok := c.entries[key]
	if !ok {
		entry = &domain.CorrelatedRecord{
			SupplierID:     c.supplierID,
			CorrelationKey: key,
			Side:           make(map[domain.RecordKind]map[string]any),
		}
		c.entries[key] = entry
		c.order = append(c.order, key)
	}

	if rec.Kind.IsBase() {
		entry.Base = rec.Payload
		if entry.Base == nil {
			entry.Base = map[string]any{}
		}
	} else {
		entry.Side[rec.Kind] = rec.Payload
	}
	entry.Sources++
	return nil
}

// Drain returns every key that has a base record, in first-seen order,
// and the keys that only received side records. The cache is emptied.
func (c *CorrelationCache) Drain() ([]domain.CorrelatedRecord, []string) {
	records := make([]domain.CorrelatedRecord, 0, len(c.order))
	var orphans []string

	for _, key := range c.order {
		entry := c.entries[key]
		if entry.Base == nil {
			orphans = append(orphans, key)
			continue
		}
		records = append(records, *entry)
	}

	c.entries = make(map[string]*domain.CorrelatedRecord)
	c.order = nil
	return records, orphans
}

// Len returns the number of keys held.
func (c *CorrelationCache) Len() int {
	return len(c.order)
}
