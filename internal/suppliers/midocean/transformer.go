package midocean

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

// Supplier metadata stamped on every product.
const (
	APIVersion = "2.0"
	Website    = "https://www.midocean.com"

	// openEndedDiscontinuation is the date MidOcean uses for "not discontinued".
	openEndedDiscontinuation = "2099-12-31"
)

// techniqueCodes maps MidOcean printing technique IDs to unified techniques.
var techniqueCodes = map[string]domain.PrintTechnique{
	"B":   domain.TechniqueDebossing,
	"E":   domain.TechniqueEmbroidery,
	"RL":  domain.TechniqueLaserEngraving,
	"ST":  domain.TechniqueScreenPrint,
	"T1":  domain.TechniqueTransfer,
	"TC":  domain.TechniqueTransfer,
	"TD":  domain.TechniqueTransfer,
	"TD1": domain.TechniqueTransfer,
	"TDT": domain.TechniqueTransfer,
	"TR":  domain.TechniqueTransfer,
	"TT":  domain.TechniqueTransfer,
	"TS":  domain.TechniqueSublimation,
	"TS1": domain.TechniqueSublimation,
	"TS2": domain.TechniqueSublimation,
	"TS3": domain.TechniqueSublimation,
	"TS4": domain.TechniqueSublimation,
	"TSM": domain.TechniqueSublimation,
	"TST": domain.TechniqueSublimation,
}

// techniquePrefixes maps numbered technique families ("P0".."P7") by prefix.
// Longer prefixes are checked first.
var techniquePrefixes = []struct {
	prefix    string
	technique domain.PrintTechnique
	max       int
}{
	{"PD", domain.TechniqueDigitalPrint, 7},
	{"RD", domain.TechniqueDigitalPrint, 3},
	{"RS", domain.TechniqueScreenPrint, 7},
	{"ST", domain.TechniqueScreenPrint, 2},
	{"L", domain.TechniqueLaserEngraving, 7},
	{"P", domain.TechniquePadPrint, 7},
	{"S", domain.TechniqueScreenPrint, 7},
}

// MapTechnique returns the unified technique for a MidOcean technique ID.
func MapTechnique(id string) (domain.PrintTechnique, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if t, ok := techniqueCodes[id]; ok {
		return t, true
	}
	for _, p := range techniquePrefixes {
		rest, ok := strings.CutPrefix(id, p.prefix)
		if !ok || len(rest) != 1 || rest[0] < '0' || rest[0] > '9' {
			continue
		}
		if int(rest[0]-'0') <= p.max {
			return p.technique, true
		}
	}
	return "", false
}

// Ensure Transformer implements the interface.
var _ driven.Transformer = (*Transformer)(nil)

// Transformer maps correlated MidOcean records to unified products.
type Transformer struct {
	supplierID   string
	supplierName string
	title        cases.Caser
	now          func() time.Time
}

// NewTransformer adapts New to driven.TransformerFactory.
func NewTransformer(desc domain.SupplierDescriptor) (driven.Transformer, error) {
	lang := DefaultLanguage
	if desc.Language != "" {
		lang = desc.Language
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("%w: supplier %s: invalid language %q: %w", domain.ErrConfig, desc.ID, lang, err)
	}

	return &Transformer{
		supplierID:   desc.ID,
		supplierName: desc.DisplayName(),
		title:        cases.Title(tag),
		now:          time.Now,
	}, nil
}

// SupplierID returns the supplier this transformer understands.
func (t *Transformer) SupplierID() string {
	return t.supplierID
}

// Transform maps one master product and its side feeds.
func (t *Transformer) Transform(_ context.Context, rec domain.CorrelatedRecord) (domain.UnifiedProduct, error) {
	base := rec.Base
	master := str(base, "master_code")
	if master == "" {
		return domain.UnifiedProduct{}, fmt.Errorf("%w: master_code is missing", domain.ErrValidation)
	}

	prices := unitPrices(rec.Side[domain.KindPrice])
	variants := t.variants(base, prices)

	p := domain.UnifiedProduct{
		ExternalID: t.supplierID + "_" + master,
		Supplier: domain.SupplierRef{
			ID:         rec.SupplierID,
			Name:       t.supplierName,
			APIVersion: APIVersion,
			Website:    Website,
		},
		SupplierProductCode: master,

		Name:             str(base, "product_name"),
		ShortDescription: str(base, "short_description"),
		LongDescription:  str(base, "long_description"),
		Keywords:         []string{},
		Categories:       categories(base),
		Brand:            str(base, "brand"),

		Dimensions:      dimensions(base),
		Weight:          weight(base),
		Material:        str(base, "material"),
		ColorsAvailable: colors(variants),
		Variants:        variants,
		BasePrices:      []domain.Price{},

		IsPrintable:    strings.EqualFold(str(base, "printable"), "yes"),
		PrintPositions: printPositions(rec.Side[domain.KindPrintOption]),
		PrintOptions:   t.printOptions(rec.Side[domain.KindPrintOption], rec.Side[domain.KindPrintPrice]),

		Images:           []domain.Image{},
		ArtworkTemplates: []string{},

		MinimumOrderQuantity: 1,
		CartonQuantity:       parseInt(base["outer_carton_quantity"]),
		ShippingOptions:      []domain.ShippingOption{},

		CountryOfOrigin: str(base, "country_of_origin"),
		TariffCode:      str(base, "commodity_code"),
		CommodityCode:   str(base, "commodity_code"),

		Status:   productStatus(variants),
		LastSync: t.now().UTC(),
	}
	if p.Name != "" {
		p.Title = t.title.String(strings.ToLower(p.Name))
	}

	// The first variant stands in for the product.
	if len(variants) > 0 {
		p.Images = variants[0].Images
		if len(variants[0].Prices) > 0 {
			p.BasePrices = variants[0].Prices[:1]
		}
	}

	if err := p.Validate(); err != nil {
		return domain.UnifiedProduct{}, err
	}
	return p, nil
}

func (t *Transformer) variants(base map[string]any, prices map[string]domain.Price) []domain.Variant {
	raw := list(base, "variants")
	variants := make([]domain.Variant, 0, len(raw))
	for _, v := range raw {
		images := t.images(v)
		status := variantStatus(v)
		sku := str(v, "sku")

		variant := domain.Variant{
			SKU:       sku,
			VariantID: str(v, "variant_id"),
			Color: &domain.ColorVariant{
				Code:     str(v, "color_code"),
				Name:     str(v, "color_description"),
				PMSColor: str(v, "pms_color"),
				Images:   images,
				Status:   status,
			},
			Prices: []domain.Price{},
			Images: images,
			Status: status,
			GTIN:   str(v, "gtin"),
		}
		if price, ok := prices[sku]; ok {
			variant.Prices = append(variant.Prices, price)
		}
		variants = append(variants, variant)
	}
	return variants
}

func (t *Transformer) images(variant map[string]any) []domain.Image {
	images := []domain.Image{}
	for _, asset := range list(variant, "digital_assets") {
		if str(asset, "type") != "image" {
			continue
		}
		subtype := str(asset, "subtype")
		images = append(images, domain.Image{
			URL:          str(asset, "url"),
			Type:         subtype,
			Description:  t.title.String(strings.ReplaceAll(subtype, "_", " ")),
			ColorVariant: str(variant, "color_code"),
		})
	}
	return images
}

// printOptions builds one option per priced technique. The technique's
// colour limit is the largest any printing position allows.
func (t *Transformer) printOptions(printData, printPrices map[string]any) []domain.PrintOption {
	options := []domain.PrintOption{}
	if printPrices == nil {
		return options
	}

	maxColors := make(map[string]int)
	for _, pos := range list(printData, "printing_positions") {
		for _, tech := range list(pos, "printing_techniques") {
			if n := parseInt(tech["max_colours"]); n != nil && *n > maxColors[str(tech, "id")] {
				maxColors[str(tech, "id")] = *n
			}
		}
	}

	currency := currencyOf(printPrices)
	for _, tech := range list(printPrices, "print_techniques") {
		id := str(tech, "id")
		technique, ok := MapTechnique(id)
		if !ok {
			continue
		}

		option := domain.PrintOption{
			Technique:   technique,
			Position:    "various",
			MaxColors:   maxColors[id],
			SetupCharge: parseFloat(tech["setup"]),
			Prices:      []domain.Price{},
		}
		for _, cost := range list(tech, "var_costs") {
			for _, scale := range list(cost, "scales") {
				value := parseFloat(scale["price"])
				qty := parseInt(scale["minimum_quantity"])
				if value == nil || qty == nil || *value == 0 || *qty == 0 {
					continue
				}
				option.Prices = append(option.Prices, domain.Price{
					Value:       *value,
					Currency:    currency,
					MinQuantity: *qty,
					Type:        domain.PriceUnit,
					Description: str(tech, "description"),
				})
			}
		}
		options = append(options, option)
	}
	return options
}

// unitPrices indexes the price side payload by SKU.
func unitPrices(payload map[string]any) map[string]domain.Price {
	prices := make(map[string]domain.Price)
	if payload == nil {
		return prices
	}

	currency := currencyOf(payload)
	for _, item := range list(payload, "prices") {
		value := parseFloat(item["price"])
		if value == nil {
			continue
		}
		prices[str(item, "sku")] = domain.Price{
			Value:       *value,
			Currency:    currency,
			MinQuantity: 1,
			Type:        domain.PriceUnit,
			ValidUntil:  parseDate(str(item, "valid_until")),
		}
	}
	return prices
}

func currencyOf(payload map[string]any) domain.Currency {
	if c := str(payload, "currency"); c != "" {
		return domain.Currency(strings.ToUpper(c))
	}
	return domain.CurrencyGBP
}

func categories(base map[string]any) []domain.Category {
	cats := []domain.Category{}
	if class := str(base, "product_class"); class != "" {
		cats = append(cats, domain.Category{Name: class, Level: 1})
	}

	variants := list(base, "variants")
	if len(variants) == 0 {
		return cats
	}
	for level, key := range []string{"category_level1", "category_level2", "category_level3"} {
		if name := str(variants[0], key); name != "" {
			cats = append(cats, domain.Category{Name: name, Level: level + 1})
		}
	}
	return cats
}

func dimensions(base map[string]any) *domain.Dimensions {
	d := &domain.Dimensions{
		Length: parseFloat(base["length"]),
		Width:  parseFloat(base["width"]),
		Height: parseFloat(base["height"]),
		Unit:   dimensionUnit(str(base, "length_unit")),
	}
	if d.Length == nil && d.Width == nil && d.Height == nil {
		return nil
	}
	return d
}

func dimensionUnit(s string) domain.DimensionUnit {
	switch strings.ToLower(s) {
	case "mm":
		return domain.UnitMM
	case "m":
		return domain.UnitM
	case "in", "inch":
		return domain.UnitInch
	default:
		return domain.UnitCM
	}
}

// weight prefers gross over net weight.
func weight(base map[string]any) *domain.Weight {
	value := parseFloat(base["gross_weight"])
	unitKey := "gross_weight_unit"
	if value == nil || *value == 0 {
		value = parseFloat(base["net_weight"])
		unitKey = "net_weight_unit"
	}
	if value == nil || *value == 0 {
		return nil
	}

	unit := domain.UnitKG
	switch strings.ToLower(str(base, unitKey)) {
	case "g":
		unit = domain.UnitG
	case "lb":
		unit = domain.UnitLB
	case "oz":
		unit = domain.UnitOZ
	}
	return &domain.Weight{Value: *value, Unit: unit}
}

func printPositions(printData map[string]any) []domain.PrintPosition {
	positions := []domain.PrintPosition{}
	for _, pos := range list(printData, "printing_positions") {
		id := str(pos, "position_id")
		position := domain.PrintPosition{
			ID:         id,
			Name:       id,
			MaxWidth:   parseFloat(pos["max_print_size_width"]),
			MaxHeight:  parseFloat(pos["max_print_size_height"]),
			Unit:       domain.UnitMM,
			Techniques: []domain.PrintTechnique{},
			Images:     []domain.Image{},
		}

		seen := make(map[domain.PrintTechnique]bool)
		for _, tech := range list(pos, "printing_techniques") {
			technique, ok := MapTechnique(str(tech, "id"))
			if ok && !seen[technique] {
				seen[technique] = true
				position.Techniques = append(position.Techniques, technique)
			}
		}

		for _, img := range list(pos, "images") {
			if u := str(img, "print_position_image_with_area"); u != "" {
				position.Images = append(position.Images, domain.Image{
					URL:         u,
					Type:        "print_position",
					Description: "Print position: " + id,
				})
			}
		}
		positions = append(positions, position)
	}
	return positions
}

// variantStatus treats a real discontinuation date or a DISCONTINUED
// lifecycle status as discontinued.
func variantStatus(v map[string]any) domain.ProductStatus {
	if d := str(v, "discontinued_date"); d != "" && d != openEndedDiscontinuation {
		return domain.ProductDiscontinued
	}
	if strings.Contains(strings.ToUpper(str(v, "plc_status_description")), "DISCONTINUED") {
		return domain.ProductDiscontinued
	}
	return domain.ProductActive
}

// productStatus is discontinued only when every variant is.
func productStatus(variants []domain.Variant) domain.ProductStatus {
	if len(variants) == 0 {
		return domain.ProductActive
	}
	for _, v := range variants {
		if v.Status != domain.ProductDiscontinued {
			return domain.ProductActive
		}
	}
	return domain.ProductDiscontinued
}

func colors(variants []domain.Variant) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, v := range variants {
		if v.Color == nil || v.Color.Name == "" || seen[v.Color.Name] {
			continue
		}
		seen[v.Color.Name] = true
		out = append(out, v.Color.Name)
	}
	return out
}
