package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordKind_IsBase(t *testing.T) {
	assert.True(t, KindBase.IsBase())
	for _, k := range []RecordKind{KindPrice, KindPrintOption, KindPrintPrice, KindStock, KindMedia, "custom"} {
		assert.False(t, k.IsBase(), k)
	}
}

func TestRawRecord_ZeroModifiedAt(t *testing.T) {
	rec := RawRecord{SupplierID: "acme", Kind: KindBase, CorrelationKey: "P1"}
	assert.True(t, rec.ModifiedAt.IsZero())
	assert.Nil(t, rec.Payload)
}
