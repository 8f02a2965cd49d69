package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CartItem is one cart line. Two lines are the same iff they share
// product id, the normalized spec selection and the variant id.
type CartItem struct {
	ProductID int               `json:"product_id"`
	VariantID string            `json:"variant_id,omitempty"`
	Specs     map[string]string `json:"specs,omitempty"`
	Name      string            `json:"name"`
	UnitPrice float64           `json:"unit_price"`
	Quantity  int               `json:"quantity"`
}

// Key returns the deterministic variant key for the line. Spec keys are
// sorted before serialization, so the key does not depend on the order
// the options were selected in.
func (it CartItem) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", it.ProductID)

	keys := make([]string, 0, len(it.Specs))
	for k := range it.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteByte('|')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(it.Specs[k])
	}

	if it.VariantID != "" {
		sb.WriteByte('|')
		sb.WriteString(it.VariantID)
	}
	return sb.String()
}

func (it CartItem) LineTotal() float64 {
	return it.UnitPrice * float64(it.Quantity)
}
