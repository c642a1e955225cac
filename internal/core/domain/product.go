package domain

import (
	"fmt"
	"strings"
	"time"
)

// PriceType classifies a price line.
type PriceType string

// Price types.
const (
	PriceUnit       PriceType = "unit"
	PriceSetup      PriceType = "setup"
	PriceAdditional PriceType = "additional"
	PriceShipping   PriceType = "shipping"
)

// PrintTechnique is a decoration method.
type PrintTechnique string

// Print techniques.
const (
	TechniqueScreenPrint    PrintTechnique = "screen_print"
	TechniquePadPrint       PrintTechnique = "pad_print"
	TechniqueEmbroidery     PrintTechnique = "embroidery"
	TechniqueLaserEngraving PrintTechnique = "laser_engraving"
	TechniqueDigitalPrint   PrintTechnique = "digital_print"
	TechniqueFullColor      PrintTechnique = "full_color"
	TechniqueDebossing      PrintTechnique = "debossing"
	TechniqueSublimation    PrintTechnique = "sublimation"
	TechniqueTransfer       PrintTechnique = "transfer"
)

// DimensionUnit is a length unit.
type DimensionUnit string

// Length units.
const (
	UnitMM   DimensionUnit = "mm"
	UnitCM   DimensionUnit = "cm"
	UnitM    DimensionUnit = "m"
	UnitInch DimensionUnit = "in"
)

// WeightUnit is a mass unit.
type WeightUnit string

// Mass units.
const (
	UnitG  WeightUnit = "g"
	UnitKG WeightUnit = "kg"
	UnitLB WeightUnit = "lb"
	UnitOZ WeightUnit = "oz"
)

// Currency is an ISO 4217 code.
type Currency string

// Supported currencies.
const (
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

// ProductStatus is the catalogue lifecycle state.
type ProductStatus string

// Product states.
const (
	ProductActive       ProductStatus = "active"
	ProductDiscontinued ProductStatus = "discontinued"
	ProductOutOfStock   ProductStatus = "out_of_stock"
)

// Dimensions of a product or variant.
type Dimensions struct {
	Length   *float64      `json:"length,omitempty" bson:"length,omitempty"`
	Width    *float64      `json:"width,omitempty" bson:"width,omitempty"`
	Height   *float64      `json:"height,omitempty" bson:"height,omitempty"`
	Diameter *float64      `json:"diameter,omitempty" bson:"diameter,omitempty"`
	Unit     DimensionUnit `json:"unit" bson:"unit"`
}

// Weight of a product or variant.
type Weight struct {
	Value float64    `json:"value" bson:"value"`
	Unit  WeightUnit `json:"unit" bson:"unit"`
}

// Price is one price line, optionally tiered by quantity.
type Price struct {
	Value       float64    `json:"value" bson:"value"`
	Currency    Currency   `json:"currency" bson:"currency"`
	MinQuantity int        `json:"min_quantity" bson:"min_quantity"`
	MaxQuantity *int       `json:"max_quantity,omitempty" bson:"max_quantity,omitempty"`
	Type        PriceType  `json:"type" bson:"type"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
}

// Image is a product media asset.
type Image struct {
	URL          string `json:"url" bson:"url"`
	Type         string `json:"type,omitempty" bson:"type,omitempty"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
	ColorVariant string `json:"color_variant,omitempty" bson:"color_variant,omitempty"`
}

// PrintPosition is an area of a product that can be decorated.
type PrintPosition struct {
	ID         string           `json:"id" bson:"id"`
	Name       string           `json:"name" bson:"name"`
	MaxWidth   *float64         `json:"max_width,omitempty" bson:"max_width,omitempty"`
	MaxHeight  *float64         `json:"max_height,omitempty" bson:"max_height,omitempty"`
	MaxArea    *float64         `json:"max_area,omitempty" bson:"max_area,omitempty"`
	Unit       DimensionUnit    `json:"unit" bson:"unit"`
	Techniques []PrintTechnique `json:"techniques" bson:"techniques"`
	MaxColors  *int             `json:"max_colors,omitempty" bson:"max_colors,omitempty"`
	Images     []Image          `json:"images" bson:"images"`
}

// PrintOption is a priced decoration offer.
type PrintOption struct {
	Technique   PrintTechnique `json:"technique" bson:"technique"`
	Position    string         `json:"position" bson:"position"`
	MaxColors   int            `json:"max_colors" bson:"max_colors"`
	SetupCharge *float64       `json:"setup_charge,omitempty" bson:"setup_charge,omitempty"`
	Prices      []Price        `json:"prices" bson:"prices"`
	LeadTime    string         `json:"lead_time,omitempty" bson:"lead_time,omitempty"`
	IsDefault   bool           `json:"is_default" bson:"is_default"`
}

// ColorVariant describes the colour of a variant.
type ColorVariant struct {
	Code     string        `json:"code" bson:"code"`
	Name     string        `json:"name" bson:"name"`
	HexColor string        `json:"hex_color,omitempty" bson:"hex_color,omitempty"`
	PMSColor string        `json:"pms_color,omitempty" bson:"pms_color,omitempty"`
	Images   []Image       `json:"images" bson:"images"`
	Status   ProductStatus `json:"status" bson:"status"`
}

// StockInfo is availability for a variant.
type StockInfo struct {
	Available   int        `json:"available" bson:"available"`
	LastUpdated *time.Time `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
}

// Variant is a sellable SKU of a product.
type Variant struct {
	SKU             string        `json:"sku" bson:"sku"`
	VariantID       string        `json:"variant_id,omitempty" bson:"variant_id,omitempty"`
	Color           *ColorVariant `json:"color,omitempty" bson:"color,omitempty"`
	Size            string        `json:"size,omitempty" bson:"size,omitempty"`
	MaterialVariant string        `json:"material_variant,omitempty" bson:"material_variant,omitempty"`
	Dimensions      *Dimensions   `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight          *Weight       `json:"weight,omitempty" bson:"weight,omitempty"`
	Prices          []Price       `json:"prices" bson:"prices"`
	Stock           *StockInfo    `json:"stock,omitempty" bson:"stock,omitempty"`
	Images          []Image       `json:"images" bson:"images"`
	Status          ProductStatus `json:"status" bson:"status"`
	GTIN            string        `json:"gtin,omitempty" bson:"gtin,omitempty"`
}

// Category is one node of a supplier category path.
type Category struct {
	ID       string `json:"id,omitempty" bson:"id,omitempty"`
	Name     string `json:"name" bson:"name"`
	Level    int    `json:"level" bson:"level"`
	ParentID string `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
}

// ShippingOption is a delivery offer.
type ShippingOption struct {
	ServiceType string   `json:"service_type" bson:"service_type"`
	ServiceName string   `json:"service_name" bson:"service_name"`
	Cost        float64  `json:"cost" bson:"cost"`
	Currency    Currency `json:"currency" bson:"currency"`
}

// SupplierRef identifies the supplier on a product document.
type SupplierRef struct {
	ID         string `json:"id" bson:"id"`
	Name       string `json:"name" bson:"name"`
	APIVersion string `json:"api_version,omitempty" bson:"api_version,omitempty"`
	Website    string `json:"website,omitempty" bson:"website,omitempty"`
}

// UnifiedProduct is a product in the normalised catalogue schema.
// ExternalID is the idempotency key used by loaders for upserts.
type UnifiedProduct struct {
	ExternalID          string      `json:"product_id" bson:"product_id"`
	Supplier            SupplierRef `json:"supplier" bson:"supplier"`
	SupplierProductCode string      `json:"supplier_product_code" bson:"supplier_product_code"`

	Name             string   `json:"name" bson:"name"`
	Title            string   `json:"title,omitempty" bson:"title,omitempty"`
	ShortDescription string   `json:"short_description,omitempty" bson:"short_description,omitempty"`
	LongDescription  string   `json:"long_description,omitempty" bson:"long_description,omitempty"`
	Keywords         []string `json:"keywords" bson:"keywords"`

	Categories []Category `json:"categories" bson:"categories"`
	Brand      string     `json:"brand,omitempty" bson:"brand,omitempty"`

	Dimensions      *Dimensions `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight          *Weight     `json:"weight,omitempty" bson:"weight,omitempty"`
	Material        string      `json:"material,omitempty" bson:"material,omitempty"`
	ColorsAvailable []string    `json:"colors_available" bson:"colors_available"`

	Variants   []Variant `json:"variants" bson:"variants"`
	BasePrices []Price   `json:"base_prices" bson:"base_prices"`

	IsPrintable    bool            `json:"is_printable" bson:"is_printable"`
	PrintPositions []PrintPosition `json:"print_positions" bson:"print_positions"`
	PrintOptions   []PrintOption   `json:"print_options" bson:"print_options"`

	Images           []Image  `json:"images" bson:"images"`
	ArtworkTemplates []string `json:"artwork_templates" bson:"artwork_templates"`

	MinimumOrderQuantity int              `json:"minimum_order_quantity" bson:"minimum_order_quantity"`
	CartonQuantity       *int             `json:"carton_quantity,omitempty" bson:"carton_quantity,omitempty"`
	LeadTime             string           `json:"lead_time,omitempty" bson:"lead_time,omitempty"`
	ShippingOptions      []ShippingOption `json:"shipping_options" bson:"shipping_options"`

	CountryOfOrigin string `json:"country_of_origin,omitempty" bson:"country_of_origin,omitempty"`
	TariffCode      string `json:"tariff_code,omitempty" bson:"tariff_code,omitempty"`
	CommodityCode   string `json:"commodity_code,omitempty" bson:"commodity_code,omitempty"`

	Status   ProductStatus `json:"status" bson:"status"`
	LastSync time.Time     `json:"last_sync" bson:"last_sync"`
}

// Validate checks the fields loaders depend on.
func (p *UnifiedProduct) Validate() error {
	if strings.TrimSpace(p.ExternalID) == "" {
		return fmt.Errorf("%w: product_id is empty", ErrValidation)
	}
	if strings.TrimSpace(p.Supplier.ID) == "" {
		return fmt.Errorf("%w: product %s: supplier id is empty", ErrValidation, p.ExternalID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product %s: name is empty", ErrValidation, p.ExternalID)
	}
	return nil
}

// SKUs returns the variant SKUs in order.
func (p *UnifiedProduct) SKUs() []string {
	skus := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.SKU != "" {
			skus = append(skus, v.SKU)
		}
	}
	return skus
}
