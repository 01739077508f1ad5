// Package report aggregates classification results into a read-only
// reconciliation report with per-category statistics.
package report

import (
	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
)

// CategorySummary holds the aggregate figures for one category.
type CategorySummary struct {
	Category   model.Category
	Count      int
	Percentage float64     // of all transactions processed
	Declared   money.Value // sum of declared spreadsheet values
}

// Report is the outcome of one reconciliation pass. It is built once by
// the engine and never mutated afterwards; identical inputs yield
// identical reports.
type Report struct {
	results    []model.Result
	byCategory map[model.Category][]model.Result
}

// New builds a report from the engine's ordered results.
func New(results []model.Result) *Report {
	byCat := make(map[model.Category][]model.Result)
	for _, r := range results {
		byCat[r.Category] = append(byCat[r.Category], r)
	}
	return &Report{
		results:    results,
		byCategory: byCat,
	}
}

// Results returns all results in classification order.
func (r *Report) Results() []model.Result {
	return r.results
}

// ByCategory returns the results classified under c, in order.
func (r *Report) ByCategory(c model.Category) []model.Result {
	return r.byCategory[c]
}

// Total returns the number of transactions processed.
func (r *Report) Total() int {
	return len(r.results)
}

// Count returns the number of results in category c.
func (r *Report) Count(c model.Category) int {
	return len(r.byCategory[c])
}

// DeclaredTotal sums the declared values of every transaction processed.
func (r *Report) DeclaredTotal() money.Value {
	return declaredSum(r.results)
}

func declaredSum(results []model.Result) money.Value {
	values := make([]money.Value, len(results))
	for i, res := range results {
		values[i] = res.Transaction.Declared
	}
	return money.Sum(values...)
}

// Summary returns per-category count, percentage of total, and sum of
// declared values, in report order. Categories with no results are
// included with zero figures so callers always see the full breakdown.
func (r *Report) Summary() []CategorySummary {
	total := len(r.results)
	summaries := make([]CategorySummary, 0, len(model.Categories))
	for _, cat := range model.Categories {
		results := r.byCategory[cat]
		declared := declaredSum(results)
		pct := 0.0
		if total > 0 {
			pct = float64(len(results)) / float64(total) * 100
		}
		summaries = append(summaries, CategorySummary{
			Category:   cat,
			Count:      len(results),
			Percentage: pct,
			Declared:   declared,
		})
	}
	return summaries
}
