package engine

import (
	"fmt"
	"time"

	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
)

// DefaultMaxPostponementDays is the business limit for how old an event
// may be, relative to the closing date, before it falls out of the period.
const DefaultMaxPostponementDays = 60

// DefaultValueTolerance is the maximum absolute difference under which
// two values are considered matching.
var DefaultValueTolerance = money.MustParse("1.01")

// Config is the immutable per-run configuration of the matching engine.
type Config struct {
	ClosingDate         time.Time   // reconciliation cutoff
	MaxPostponementDays int         // events older than this are out of period
	ValueTolerance      money.Value // |invoice - declared| above this diverges
	TargetRecipientID   string      // CNPJ all matched records must share
	Grouping            GroupStrategy
}

// DefaultConfig returns a Config with the business defaults and the
// value-negation pair grouping strategy.
func DefaultConfig(closingDate time.Time, targetRecipientID string) Config {
	return Config{
		ClosingDate:         closingDate,
		MaxPostponementDays: DefaultMaxPostponementDays,
		ValueTolerance:      DefaultValueTolerance,
		TargetRecipientID:   targetRecipientID,
		Grouping:            ValuePairStrategy{},
	}
}

func (c Config) validate() error {
	if c.ClosingDate.IsZero() {
		return fmt.Errorf("closing date is required")
	}
	if c.MaxPostponementDays <= 0 {
		return fmt.Errorf("max postponement days must be positive, got %d", c.MaxPostponementDays)
	}
	if c.ValueTolerance.IsNegative() {
		return fmt.Errorf("value tolerance must not be negative, got %s", c.ValueTolerance)
	}
	if !model.ValidCNPJ(c.TargetRecipientID) {
		return fmt.Errorf("target recipient id %q is not a valid CNPJ", c.TargetRecipientID)
	}
	return nil
}
