package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
)

func candidate(idx int, issuer, diff string) Candidate {
	return Candidate{
		Index: idx,
		Txn:   model.Transaction{IssuerID: issuer, RecipientID: targetCNPJ},
		Diff:  money.MustParse(diff),
	}
}

func TestValuePairStrategy_SingleMatch(t *testing.T) {
	s := ValuePairStrategy{}
	tol := money.MustParse("1.01")

	subject := candidate(0, stationCNPJ, "-113.80")
	others := []Candidate{
		candidate(1, stationCNPJ, "112.80"),
		candidate(2, stationCNPJ, "40.00"),
	}

	partner, ok := s.PartnerFor(subject, others, tol)
	require.True(t, ok)
	assert.Equal(t, 1, partner.Index)
}

func TestValuePairStrategy_TieDisqualifies(t *testing.T) {
	s := ValuePairStrategy{}
	tol := money.MustParse("1.01")

	subject := candidate(0, stationCNPJ, "-50.00")
	others := []Candidate{
		candidate(1, stationCNPJ, "50.00"),
		candidate(2, stationCNPJ, "49.50"),
	}

	_, ok := s.PartnerFor(subject, others, tol)
	assert.False(t, ok)
}

func TestValuePairStrategy_DifferentIssuerExcluded(t *testing.T) {
	s := ValuePairStrategy{}
	tol := money.MustParse("1.01")

	subject := candidate(0, stationCNPJ, "-50.00")
	others := []Candidate{candidate(1, "98765432000155", "50.00")}

	_, ok := s.PartnerFor(subject, others, tol)
	assert.False(t, ok)
}

func TestValuePairStrategy_NoMatch(t *testing.T) {
	s := ValuePairStrategy{}
	tol := money.MustParse("1.01")

	subject := candidate(0, stationCNPJ, "-50.00")
	_, ok := s.PartnerFor(subject, nil, tol)
	assert.False(t, ok)
}

func TestExplicitGroupStrategy_MatchesByID(t *testing.T) {
	s := ExplicitGroupStrategy{}

	subject := candidate(0, stationCNPJ, "-50.00")
	subject.Txn.GroupID = "G1"
	a := candidate(1, stationCNPJ, "999.00")
	a.Txn.GroupID = "G1"
	b := candidate(2, stationCNPJ, "50.00")
	b.Txn.GroupID = "G2"

	partner, ok := s.PartnerFor(subject, []Candidate{a, b}, money.Zero())
	require.True(t, ok)
	// Values are irrelevant: the declared group wins.
	assert.Equal(t, 1, partner.Index)
}

func TestExplicitGroupStrategy_EmptyIDNeverPairs(t *testing.T) {
	s := ExplicitGroupStrategy{}

	subject := candidate(0, stationCNPJ, "-50.00")
	other := candidate(1, stationCNPJ, "50.00")

	_, ok := s.PartnerFor(subject, []Candidate{other}, money.Zero())
	assert.False(t, ok)
}

func TestEngine_ExplicitGroupingStrategy(t *testing.T) {
	cfg := DefaultConfig(closing, targetCNPJ)
	cfg.Grouping = ExplicitGroupStrategy{}
	e, err := New(cfg)
	require.NoError(t, err)

	txnA := transaction(2, "8001", "10.00", time.Date(2025, time.September, 20, 0, 0, 0, 0, time.UTC))
	txnA.GroupID = "G7"
	txnB := transaction(3, "8002", "190.00", time.Date(2025, time.September, 20, 0, 0, 0, 0, time.UTC))
	txnB.GroupID = "G7"

	rep, err := e.Reconcile(
		[]model.Invoice{invoice("8001", "100.00"), invoice("8002", "100.00")},
		[]model.Transaction{txnA, txnB},
	)
	require.NoError(t, err)

	assert.Equal(t, model.CategoryGroupedDivergent, rep.Results()[0].Category)
	assert.Equal(t, model.CategoryGroupedDivergent, rep.Results()[1].Category)
	// Residual = |(-90.00) + (+90.00)| = 0.
	assert.Equal(t, "0.00", rep.Results()[0].Residual.String())
}
