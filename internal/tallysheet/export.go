package tallysheet

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mmynk/tallysheet/internal/ledger"
	"github.com/mmynk/tallysheet/internal/models"
)

// CustomerInput is everything fetched for one customer's sessions.
// Entries hold both roles; Allocations may be empty.
type CustomerInput struct {
	CustomerName    string
	Classifications []models.WeightClassification
	Allocations     []models.AllocationView
	Entries         []models.TallyLogEntry
}

// CustomerSheet is one customer's sheet plus any role mismatches found in
// its allocations.
type CustomerSheet struct {
	Sheet
	Mismatches []ledger.Mismatch `json:"mismatches,omitempty"`
}

// ClassificationTotal is one row of the cross-customer grand total table.
type ClassificationTotal struct {
	Category       models.Category `json:"category"`
	Classification string          `json:"classification"`
	Totals
}

// Export is a multi-customer tally sheet export.
type Export struct {
	Role   models.Role     `json:"role"`
	Sheets []CustomerSheet `json:"sheets"`
	// GrandTotals is set only when more than one customer is exported.
	GrandTotals []ClassificationTotal `json:"grand_totals,omitempty"`
	GrandTotal  Totals                `json:"grand_total"`
}

// BuildExport paginates each customer's entries for role and returns the
// sheets sorted by customer name.
func (p *Paginator) BuildExport(customers []CustomerInput, role models.Role, prefs *models.Preferences) *Export {
	sorted := slices.Clone(customers)
	slices.SortStableFunc(sorted, func(a, b CustomerInput) int {
		return byCustomerName(a.CustomerName, b.CustomerName)
	})

	export := &Export{Role: role, Sheets: make([]CustomerSheet, 0, len(sorted))}
	for _, c := range sorted {
		sheet := p.Paginate(c.Entries, c.Classifications, role, prefs)
		sheet.CustomerName = c.CustomerName
		cs := CustomerSheet{Sheet: *sheet}
		if len(c.Allocations) > 0 {
			cs.Mismatches = ledger.New(c.Allocations, c.Entries).Reconcile(p.cfg.AcceptableDifferenceThreshold)
		}
		export.Sheets = append(export.Sheets, cs)
		export.GrandTotal.add(sheet.GrandTotal)
	}

	if len(export.Sheets) > 1 {
		export.GrandTotals = grandTotals(export.Sheets)
	}
	return export
}

// grandTotals merges the sheets' column summaries by category and name.
// Customers may be on different plants, so IDs cannot be used as the key.
// Rows come out in report category order, then first appearance.
func grandTotals(sheets []CustomerSheet) []ClassificationTotal {
	type key struct {
		category models.Category
		name     string
	}
	index := make(map[key]int)
	var rows []ClassificationTotal
	for _, s := range sheets {
		for _, sum := range s.Summaries {
			k := key{sum.Category, strings.ToLower(sum.Classification)}
			i, ok := index[k]
			if !ok {
				i = len(rows)
				index[k] = i
				rows = append(rows, ClassificationTotal{Category: sum.Category, Classification: sum.Classification})
			}
			rows[i].add(sum.Totals)
		}
	}
	slices.SortStableFunc(rows, func(a, b ClassificationTotal) int {
		return cmp.Compare(categoryRank(a.Category), categoryRank(b.Category))
	})
	return rows
}

func categoryRank(c models.Category) int {
	if i := slices.Index(models.Categories, c); i >= 0 {
		return i
	}
	return len(models.Categories)
}

// SummaryItem is the bag count for one classification.
type SummaryItem struct {
	Category       string `json:"category"`
	Classification string `json:"classification"`
	Bags           int    `json:"bags"`
}

// CustomerSummary lists a customer's non-zero classifications.
type CustomerSummary struct {
	CustomerName string        `json:"customer_name"`
	Items        []SummaryItem `json:"items"`
	Subtotal     int           `json:"subtotal"`
}

// Summary is the compact export: allocated bags per customer and
// classification, with grand totals keyed by category code (DC, FR, BP).
type Summary struct {
	Customers   []CustomerSummary `json:"customers"`
	GrandTotals map[string]int    `json:"grand_totals"`
}

// byCustomerName orders customers case-insensitively.
func byCustomerName(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Summarize counts role's allocated bags per customer. Inputs with the
// same customer name are merged. Rows with zero bags are left out.
func Summarize(customers []CustomerInput, role models.Role) *Summary {
	type key struct {
		category models.Category
		name     string
	}
	byCustomer := make(map[string]map[key]int)
	var names []string

	for _, c := range customers {
		lookup := make(map[int64]models.WeightClassification, len(c.Classifications))
		for _, wc := range c.Classifications {
			lookup[wc.ID] = wc
		}
		bags, ok := byCustomer[c.CustomerName]
		if !ok {
			bags = make(map[key]int)
			byCustomer[c.CustomerName] = bags
			names = append(names, c.CustomerName)
		}
		for _, row := range ledger.New(c.Allocations, c.Entries).Rows() {
			wc, ok := lookup[row.WeightClassificationID]
			if !ok {
				continue
			}
			bags[key{wc.Category, wc.Classification}] += row.Allocated(role)
		}
	}
	slices.SortStableFunc(names, byCustomerName)

	summary := &Summary{GrandTotals: make(map[string]int)}
	for _, name := range names {
		cs := CustomerSummary{CustomerName: name, Items: []SummaryItem{}}
		keys := make([]key, 0, len(byCustomer[name]))
		for k, n := range byCustomer[name] {
			if n > 0 {
				keys = append(keys, k)
			}
		}
		slices.SortFunc(keys, func(a, b key) int {
			if c := cmp.Compare(categoryRank(a.category), categoryRank(b.category)); c != 0 {
				return c
			}
			return cmp.Compare(a.name, b.name)
		})
		for _, k := range keys {
			n := byCustomer[name][k]
			cs.Items = append(cs.Items, SummaryItem{Category: k.category.Code(), Classification: k.name, Bags: n})
			cs.Subtotal += n
			summary.GrandTotals[k.category.Code()] += n
		}
		summary.Customers = append(summary.Customers, cs)
	}
	return summary
}
