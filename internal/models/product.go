package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantKey is the specification key whose values define distinct cart lines.
const VariantKey = "Color"

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Product struct {
	ID             uuid.UUID        `json:"id"`
	CategoryID     uuid.UUID        `json:"categoryId"`
	Slug           string           `json:"slug"`
	Name           string           `json:"name"`
	ShortName      string           `json:"shortName,omitempty"`
	Description    string           `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice,omitempty"`
	Discount       *decimal.Decimal `json:"discount,omitempty"`
	AdvancePayment *decimal.Decimal `json:"advancePayment,omitempty"`
	Stock          int              `json:"stock"`
	Specifications []Specification  `json:"specifications,omitempty"`
	Images         []string         `json:"images,omitempty"`
	IsFeatured     bool             `json:"isFeatured"`
	IsPopular      bool             `json:"isPopular"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Variants lists the values of the variant-defining specification.
func (p *Product) Variants() []string {
	var variants []string

	for _, spec := range p.Specifications {
		if strings.EqualFold(spec.Key, VariantKey) {
			for _, v := range strings.Split(spec.Value, ",") {
				if v = strings.TrimSpace(v); v != "" {
					variants = append(variants, v)
				}
			}
		}
	}

	return variants
}

// DisplayName prefers the short name used on cards and cart lines.
func (p *Product) DisplayName() string {
	if p.ShortName != "" {
		return p.ShortName
	}

	return p.Name
}

func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}

	return p.Images[0]
}

type ProductFilter struct {
	CategorySlug string
	Featured     *bool
	Popular      *bool
	Page         int
	PageSize     int
}
