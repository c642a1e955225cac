package jsonfeed

import (
	"fmt"

	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driving"
)

// Register binds the feed extractor and transformer to supplierID.
// The plugin is generic, so it is registered once per configured supplier.
func Register(reg driving.ComponentRegistry, supplierID string) error {
	if err := reg.Register(driven.RoleExtractor, supplierID, driven.ExtractorFactory(NewExtractor)); err != nil {
		return fmt.Errorf("register jsonfeed extractor for %s: %w", supplierID, err)
	}
	if err := reg.Register(driven.RoleTransformer, supplierID, driven.TransformerFactory(NewTransformer)); err != nil {
		return fmt.Errorf("register jsonfeed transformer for %s: %w", supplierID, err)
	}
	return nil
}
