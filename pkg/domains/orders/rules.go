package orders

import (
	"fmt"
	"strconv"
	"strings"

	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/guard"
)

// Thresholds configures the order table.
type Thresholds struct {
	// PremiumOnlyAbove is the amount above which only premium customers may
	// order. Default: 10000.
	PremiumOnlyAbove float64

	// ReviewAmount and ReviewItems together trigger manual review when both
	// are exceeded. Defaults: 5000 and 20.
	ReviewAmount float64
	ReviewItems  int

	// MinimumAmount is the amount below which only priority orders pass.
	// Default: 10.
	MinimumAmount float64
}

// DefaultThresholds returns the default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PremiumOnlyAbove: 10000,
		ReviewAmount:     5000,
		ReviewItems:      20,
		MinimumAmount:    10,
	}
}

// NewTable builds the order validation table.
func NewTable(th Thresholds) (*guard.Table[Request], error) {
	return guard.NewTable(domains.Orders, Shapes(), rules(th)...)
}

// Rules are evaluated in order, so an order that breaks several rules is
// reported by the earliest one. The amount and item checks precede the
// structural checks.
func rules(th Thresholds) []guard.Rule[Request] {
	return []guard.Rule[Request]{
		guard.When("orders.premium_required",
			func(o Request) bool { return o.Amount > th.PremiumOnlyAbove && o.Tier != Premium },
			guard.OutcomeError,
			guard.Message[Request]("❌ Large orders require premium membership")),
		guard.When("orders.manual_review",
			func(o Request) bool { return o.Amount > th.ReviewAmount && len(o.Items) > th.ReviewItems },
			guard.OutcomeWarning,
			guard.Message[Request]("❌ Large orders with many items require manual review")),
		guard.When("orders.small_not_priority",
			func(o Request) bool { return o.Amount < th.MinimumAmount && !o.IsPriority },
			guard.OutcomeError,
			guard.Message[Request]("❌ Small orders must be priority orders")),
		guard.When("orders.no_items",
			func(o Request) bool { return len(o.Items) == 0 },
			guard.OutcomeError,
			guard.Message[Request]("❌ Order must contain at least one item")),
		guard.When("orders.missing_customer",
			func(o Request) bool { return strings.TrimSpace(o.CustomerID) == "" },
			guard.OutcomeError,
			guard.Message[Request]("❌ Customer ID is required")),
		guard.When("orders.non_positive_amount",
			func(o Request) bool { return o.Amount <= 0 },
			guard.OutcomeError,
			guard.Message[Request]("❌ Order amount must be positive")),
		guard.When("orders.premium_priority",
			func(o Request) bool { return o.IsPriority && o.Tier == Premium },
			guard.OutcomeSuccess,
			guard.Message[Request]("✅ Premium priority order validated")),
		guard.When("orders.priority",
			func(o Request) bool { return o.IsPriority },
			guard.OutcomeSuccess,
			guard.Message[Request]("✅ Priority order validated")),
		guard.Otherwise("orders.standard",
			guard.OutcomeSuccess,
			guard.Message[Request]("✅ Standard order validated")),
	}
}

// Samples returns the demonstration orders in presentation order.
func Samples() []Request {
	many := make([]string, 25)
	for i := range many {
		many[i] = "item" + strconv.Itoa(i+1)
	}

	return []Request{
		{ID: "1", CustomerID: "cust1", Amount: 15000, Items: []string{"laptop", "mouse"}, Tier: Standard},
		{ID: "2", CustomerID: "cust2", Amount: 8000, Items: many, Tier: Premium},
		{ID: "3", CustomerID: "cust3", Amount: 5, Items: []string{"pen"}, Tier: Standard},
		{ID: "4", CustomerID: "cust4", Amount: 2500, Items: []string{"phone", "case"}, IsPriority: true, Tier: Premium},
		{ID: "5", CustomerID: "", Amount: 100, Items: []string{"book"}, Tier: Standard},
		{ID: "6", CustomerID: "cust6", Amount: -50, Items: []string{"item"}, Tier: Standard},
	}
}

// Label prefixes a rendered decision with the order ID.
func Label(o Request, rendered string) string {
	return fmt.Sprintf("Order %s: %s", o.ID, rendered)
}
