package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
)

func result(cat model.Category, declared string) model.Result {
	return model.Result{
		Category:    cat,
		Transaction: model.Transaction{Declared: money.MustParse(declared)},
	}
}

func TestSummary_CountsAndTotals(t *testing.T) {
	rep := New([]model.Result{
		result(model.CategoryIdentical, "85.35"),
		result(model.CategoryIdentical, "14.65"),
		result(model.CategoryDivergent, "290.00"),
		result(model.CategoryNotFound, "10.00"),
	})

	assert.Equal(t, 4, rep.Total())
	assert.Equal(t, "400.00", rep.DeclaredTotal().String())

	sums := rep.Summary()
	require.Len(t, sums, len(model.Categories))

	byCat := make(map[model.Category]CategorySummary)
	for _, s := range sums {
		byCat[s.Category] = s
	}

	assert.Equal(t, 2, byCat[model.CategoryIdentical].Count)
	assert.InDelta(t, 50.0, byCat[model.CategoryIdentical].Percentage, 0.001)
	assert.Equal(t, "100.00", byCat[model.CategoryIdentical].Declared.String())

	assert.Equal(t, 1, byCat[model.CategoryDivergent].Count)
	assert.Equal(t, "290.00", byCat[model.CategoryDivergent].Declared.String())

	// Empty categories still appear with zero figures.
	assert.Equal(t, 0, byCat[model.CategoryPostponed].Count)
	assert.Equal(t, "0.00", byCat[model.CategoryPostponed].Declared.String())
}

func TestSummary_CountsSumToTotal(t *testing.T) {
	rep := New([]model.Result{
		result(model.CategoryIdentical, "1.00"),
		result(model.CategoryPostponed, "2.00"),
		result(model.CategoryGroupedDivergent, "3.00"),
		result(model.CategoryGroupedDivergent, "4.00"),
		result(model.CategoryNotFound, "5.00"),
	})

	total := 0
	for _, s := range rep.Summary() {
		total += s.Count
	}
	assert.Equal(t, rep.Total(), total)
}

func TestSummary_EmptyReport(t *testing.T) {
	rep := New(nil)
	assert.Equal(t, 0, rep.Total())
	for _, s := range rep.Summary() {
		assert.Zero(t, s.Count)
		assert.Zero(t, s.Percentage)
	}
}

func TestByCategory_PreservesOrder(t *testing.T) {
	first := result(model.CategoryIdentical, "1.00")
	second := result(model.CategoryIdentical, "2.00")
	rep := New([]model.Result{first, second})

	got := rep.ByCategory(model.CategoryIdentical)
	require.Len(t, got, 2)
	assert.Equal(t, "1.00", got[0].Transaction.Declared.String())
	assert.Equal(t, "2.00", got[1].Transaction.Declared.String())
}
