// Package tallysheet lays tally log entries out into fixed-size report
// pages and computes the per-page, per-category and grand totals.
package tallysheet

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tallysheet/internal/classify"
	"github.com/mmynk/tallysheet/internal/config"
	"github.com/mmynk/tallysheet/internal/models"
)

// Grid shape of one printed page.
const (
	RowsPerPage    = 20
	ColumnsPerPage = 13
)

// Column is one classification slot on a page.
type Column struct {
	ClassificationID int64           `json:"classification_id"`
	Classification   string          `json:"classification"`
	Category         models.Category `json:"category"`
}

// Totals are the bags, heads and kilograms for a set of entries.
//
// For Byproduct, Kilograms holds the heads count, not the weight sum.
// Printed byproduct reports have always shown heads in that column and
// downstream readers expect it.
type Totals struct {
	Bags      int             `json:"bags"`
	Heads     int             `json:"heads"`
	Kilograms decimal.Decimal `json:"kilograms"`
}

func (t *Totals) add(o Totals) {
	t.Bags += o.Bags
	t.Heads += o.Heads
	t.Kilograms = t.Kilograms.Add(o.Kilograms)
}

// ColumnSummary is the totals row under one classification column.
type ColumnSummary struct {
	Column
	Totals
}

// Page is one 20x13 grid of weights. Grid has RowsPerPage rows, each with
// one cell per column; empty cells are nil.
type Page struct {
	PageNumber int             `json:"page_number"`
	TotalPages int             `json:"total_pages"`
	Category   models.Category `json:"category"`
	Columns    []Column        `json:"columns"`
	Grid       [][]*float64    `json:"grid"`
	Summaries  []ColumnSummary `json:"summaries"`
	Totals     Totals          `json:"totals"`
}

// CategoryTotal sums every classification of one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Totals
}

// Sheet is the paginated report for one customer and role.
type Sheet struct {
	CustomerName   string          `json:"customer_name,omitempty"`
	Role           models.Role     `json:"role"`
	Pages          []Page          `json:"pages"`
	Summaries      []ColumnSummary `json:"summaries"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
	GrandTotal     Totals          `json:"grand_total"`
}

// Paginator builds tally sheets.
type Paginator struct {
	cfg config.TallyConfig
}

// New creates a Paginator with the given tally settings.
func New(cfg config.TallyConfig) *Paginator {
	return &Paginator{cfg: cfg}
}

type columnEntries struct {
	column  Column
	entries []models.TallyLogEntry
}

// Paginate builds the sheet for role's entries. Columns follow the
// classification order from prefs; only classifications with at least one
// entry get a column. Each category starts on a fresh page, columns wrap
// every ColumnsPerPage and rows continue on a new page with the same
// headers every RowsPerPage.
func (p *Paginator) Paginate(entries []models.TallyLogEntry, classifications []models.WeightClassification, role models.Role, prefs *models.Preferences) *Sheet {
	byClass := make(map[int64][]models.TallyLogEntry)
	for _, e := range entries {
		if e.Role != role {
			continue
		}
		byClass[e.WeightClassificationID] = append(byClass[e.WeightClassificationID], e)
	}
	for _, list := range byClass {
		slices.SortStableFunc(list, func(a, b models.TallyLogEntry) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}

	var (
		categories []models.Category
		columns    = make(map[models.Category][]columnEntries)
	)
	for _, wc := range classify.OrderAll(classifications, prefs) {
		list, ok := byClass[wc.ID]
		if !ok {
			continue
		}
		delete(byClass, wc.ID)
		if _, seen := columns[wc.Category]; !seen {
			categories = append(categories, wc.Category)
		}
		columns[wc.Category] = append(columns[wc.Category], columnEntries{
			column:  Column{ClassificationID: wc.ID, Classification: wc.Classification, Category: wc.Category},
			entries: list,
		})
	}

	sheet := &Sheet{Role: role}
	for _, category := range categories {
		cols := columns[category]
		total := CategoryTotal{Category: category}
		for start := 0; start < len(cols); start += ColumnsPerPage {
			block := cols[start:min(start+ColumnsPerPage, len(cols))]
			sheet.Pages = append(sheet.Pages, layoutBlock(category, block)...)
		}
		for _, c := range cols {
			s := ColumnSummary{Column: c.column, Totals: summarize(category, c.entries)}
			sheet.Summaries = append(sheet.Summaries, s)
			total.add(s.Totals)
		}
		sheet.CategoryTotals = append(sheet.CategoryTotals, total)
		sheet.GrandTotal.add(total.Totals)
	}

	for i := range sheet.Pages {
		sheet.Pages[i].PageNumber = i + 1
		sheet.Pages[i].TotalPages = len(sheet.Pages)
	}
	return sheet
}

// layoutBlock lays out up to ColumnsPerPage columns, producing as many pages
// as the longest column needs.
func layoutBlock(category models.Category, block []columnEntries) []Page {
	longest := 0
	headers := make([]Column, len(block))
	for i, c := range block {
		headers[i] = c.column
		longest = max(longest, len(c.entries))
	}
	n := max(1, (longest+RowsPerPage-1)/RowsPerPage)

	pages := make([]Page, n)
	for pi := range pages {
		page := Page{
			Category:  category,
			Columns:   headers,
			Grid:      make([][]*float64, RowsPerPage),
			Summaries: make([]ColumnSummary, len(block)),
		}
		for r := range page.Grid {
			page.Grid[r] = make([]*float64, len(block))
		}
		for ci, c := range block {
			lo := min(pi*RowsPerPage, len(c.entries))
			hi := min(lo+RowsPerPage, len(c.entries))
			onPage := c.entries[lo:hi]
			for r, e := range onPage {
				w := e.Weight
				page.Grid[r][ci] = &w
			}
			page.Summaries[ci] = ColumnSummary{Column: c.column, Totals: summarize(category, onPage)}
			page.Totals.add(page.Summaries[ci].Totals)
		}
		pages[pi] = page
	}
	return pages
}

func summarize(category models.Category, entries []models.TallyLogEntry) Totals {
	t := Totals{Bags: len(entries), Kilograms: decimal.Zero}
	for _, e := range entries {
		t.Heads += e.Heads
		t.Kilograms = t.Kilograms.Add(decimal.NewFromFloat(e.Weight))
	}
	if category == models.CategoryByproduct {
		t.Kilograms = byproductKilograms(t.Heads)
	}
	return t
}

func byproductKilograms(heads int) decimal.Decimal {
	return decimal.NewFromInt(int64(heads))
}
