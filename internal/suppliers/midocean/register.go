package midocean

import (
	"fmt"

	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driving"
)

// Register binds the MidOcean extractor and transformer to supplierID.
// Pass SupplierID for the standard configuration.
func Register(reg driving.ComponentRegistry, supplierID string) error {
	if err := reg.Register(driven.RoleExtractor, supplierID, driven.ExtractorFactory(NewExtractor)); err != nil {
		return fmt.Errorf("register midocean extractor: %w", err)
	}
	if err := reg.Register(driven.RoleTransformer, supplierID, driven.TransformerFactory(NewTransformer)); err != nil {
		return fmt.Errorf("register midocean transformer: %w", err)
	}
	return nil
}
