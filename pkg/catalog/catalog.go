// Package catalog builds the five rule tables from configuration and exposes
// them as one immutable set.
package catalog

import (
	"errors"
	"fmt"

	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/domains/access"
	"mercator-hq/guard/pkg/domains/dbquery"
	"mercator-hq/guard/pkg/domains/files"
	"mercator-hq/guard/pkg/domains/network"
	"mercator-hq/guard/pkg/domains/orders"
	"mercator-hq/guard/pkg/guard"
)

// Catalog holds one validated table per domain. It is immutable once built
// and safe for concurrent use.
type Catalog struct {
	Network *guard.Table[network.Response]
	Access  *guard.Table[access.Request]
	Files   *guard.Table[files.Operation]
	DBQuery *guard.Table[dbquery.Query]
	Orders  *guard.Table[orders.Request]
}

// DomainRules describes one table for introspection.
type DomainRules struct {
	Domain string           `json:"domain"`
	Shapes []guard.Shape    `json:"shapes"`
	Rules  []guard.RuleInfo `json:"rules"`
}

// Build constructs every table from cfg. A nil cfg uses the defaults. All
// construction errors are joined so one run reports every broken table.
func Build(cfg *config.Config) (*Catalog, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var (
		c    Catalog
		errs []error
		err  error
	)

	if c.Network, err = network.NewTable(); err != nil {
		errs = append(errs, fmt.Errorf("network table: %w", err))
	}

	c.Access, err = access.NewTable(access.Options{
		Identity:         access.StaticIdentity(cfg.Identity.CurrentUserID),
		ProtectedAccount: cfg.Identity.ProtectedAccount,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("access table: %w", err))
	}

	fc := cfg.Rules.Files
	c.Files, err = files.NewTable(files.Limits{
		MaxReadBytes:  fc.MaxReadBytes,
		MaxWriteBytes: fc.MaxWriteBytes,
		TempSuffix:    fc.TempSuffix,
		SystemPrefix:  fc.SystemPrefix,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("files table: %w", err))
	}

	qc := cfg.Rules.Queries
	c.DBQuery, err = dbquery.NewTable(dbquery.Thresholds{
		GuardedTable: qc.GuardedTable,
		LargeSelect:  qc.LargeSelect,
		BulkDelete:   qc.BulkDelete,
		BulkUpdate:   qc.BulkUpdate,
		HighPriority: qc.HighPriority,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("dbquery table: %w", err))
	}

	oc := cfg.Rules.Orders
	c.Orders, err = orders.NewTable(orders.Thresholds{
		PremiumOnlyAbove: oc.PremiumOnlyAbove,
		ReviewAmount:     oc.ReviewAmount,
		ReviewItems:      oc.ReviewItems,
		MinimumAmount:    oc.MinimumAmount,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("orders table: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &c, nil
}

// Default builds the catalog from default configuration. The default tables
// are always valid, so a failure here is a programming error.
func Default() *Catalog {
	c, err := Build(config.Default())
	if err != nil {
		panic(fmt.Sprintf("catalog: default tables are invalid: %v", err))
	}
	return c
}

// Describe lists every table in presentation order.
func (c *Catalog) Describe() []DomainRules {
	return []DomainRules{
		describe(c.Network),
		describe(c.Access),
		describe(c.Files),
		describe(c.DBQuery),
		describe(c.Orders),
	}
}

// Lookup returns the description of a single domain.
func (c *Catalog) Lookup(domain string) (DomainRules, bool) {
	for _, d := range c.Describe() {
		if d.Domain == domain {
			return d, true
		}
	}
	return DomainRules{}, false
}

// RuleCounts returns the number of rules per domain.
func (c *Catalog) RuleCounts() map[string]int {
	return map[string]int{
		domains.Network: c.Network.Len(),
		domains.Access:  c.Access.Len(),
		domains.Files:   c.Files.Len(),
		domains.DBQuery: c.DBQuery.Len(),
		domains.Orders:  c.Orders.Len(),
	}
}

type describer interface {
	Domain() string
	Shapes() []guard.Shape
	Rules() []guard.RuleInfo
}

func describe(t describer) DomainRules {
	return DomainRules{
		Domain: t.Domain(),
		Shapes: t.Shapes(),
		Rules:  t.Rules(),
	}
}
