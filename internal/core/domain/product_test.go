package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedProduct_Validate(t *testing.T) {
	valid := UnifiedProduct{
		ExternalID: "midocean_AR1249",
		Supplier:   SupplierRef{ID: "midocean", Name: "MidOcean"},
		Name:       "Mug",
	}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.ExternalID = ""
	assert.True(t, errors.Is(noID.Validate(), ErrValidation))

	noSupplier := valid
	noSupplier.Supplier.ID = " "
	assert.True(t, errors.Is(noSupplier.Validate(), ErrValidation))

	noName := valid
	noName.Name = ""
	assert.True(t, errors.Is(noName.Validate(), ErrValidation))
}

func TestUnifiedProduct_SKUs(t *testing.T) {
	p := UnifiedProduct{Variants: []Variant{{SKU: "A-1"}, {SKU: ""}, {SKU: "A-2"}}}
	assert.Equal(t, []string{"A-1", "A-2"}, p.SKUs())
}

func TestCorrelatedRecord_SidePayload(t *testing.T) {
	rec := CorrelatedRecord{
		Base: map[string]any{"name": "Mug"},
		Side: map[RecordKind]map[string]any{KindPrice: {"price": 5}},
	}

	p, ok := rec.SidePayload(KindPrice)
	assert.True(t, ok)
	assert.Equal(t, 5, p["price"])

	_, ok = rec.SidePayload(KindStock)
	assert.False(t, ok)
	assert.True(t, KindBase.IsBase())
	assert.False(t, KindPrice.IsBase())
}
