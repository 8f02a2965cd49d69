package domain

import "math"

type (
	Product struct {
		ID            int       `json:"id"`
		Name          string    `json:"name"`
		Description   string    `json:"description"`
		Price         float64   `json:"price"`
		OriginalPrice float64   `json:"original_price,omitempty"`
		CategoryID    int       `json:"category_id"`
		Tags          []string  `json:"tags,omitempty"`
		Rating        float64   `json:"rating,omitempty"`
		Stock         int       `json:"stock"`
		Image         string    `json:"image,omitempty"`
		Variants      []Variant `json:"variants,omitempty"`
		CreatedAt     string    `json:"created_at,omitempty"`
	}

	Variant struct {
		ID    string            `json:"id"`
		Specs map[string]string `json:"specs"`
		Price float64           `json:"price"`
		Stock int               `json:"stock"`
	}

	Category struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
)

// OnSale reports whether the product carries a crossed-out price.
func (p Product) OnSale() bool {
	return p.OriginalPrice > p.Price
}

// DiscountPercent is the rounded sale discount, 0 when not on sale.
func (p Product) DiscountPercent() int {
	if !p.OnSale() {
		return 0
	}
	return int(math.Round((p.OriginalPrice - p.Price) / p.OriginalPrice * 100))
}

func (p Product) Savings() float64 {
	if !p.OnSale() {
		return 0
	}
	return p.OriginalPrice - p.Price
}

// VariantByID returns the matching variant, false when absent.
func (p Product) VariantByID(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
