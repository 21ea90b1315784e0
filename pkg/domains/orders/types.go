// Package orders validates customer orders by amount, item count, priority
// and membership tier.
package orders

import (
	"fmt"
	"strings"

	"mercator-hq/guard/pkg/guard"
)

// Tier is the customer's membership tier.
type Tier string

const (
	Standard Tier = "standard"
	Premium  Tier = "premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == Standard || t == Premium
}

// ParseTier parses a tier name case-insensitively. An empty name is Standard.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Standard, nil
	}
	t := Tier(name)
	if !t.Valid() {
		return "", fmt.Errorf("unknown customer tier %q", s)
	}
	return t, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ShapeOrder is the only case of Request.
const ShapeOrder guard.Shape = "order"

// Shapes returns the single case of Request.
func Shapes() []guard.Shape {
	return []guard.Shape{ShapeOrder}
}

// Request is an order submitted for validation. Amount may be zero or
// negative; such orders are rejected by the table, not by construction.
type Request struct {
	ID         string   `json:"id"`
	CustomerID string   `json:"customer_id"`
	Amount     float64  `json:"amount"`
	Items      []string `json:"items"`
	IsPriority bool     `json:"is_priority"`
	Tier       Tier     `json:"tier"`
}

// Shape implements guard.Variant.
func (Request) Shape() guard.Shape { return ShapeOrder }
