package signals

// CadenceBand is one accepted recurring-charge cadence: a target gap in days
// and the tolerance around it.
type CadenceBand struct {
	TargetDays    float64
	ToleranceDays float64
}

// Config holds the engine's tunable boundary constants. The defaults are the
// values the persona and recommendation thresholds were calibrated against;
// treat changes as a recalibration, not a tweak.
type Config struct {
	// SubscriptionLookbackDays is the pattern-verification lookback for the
	// short window. Longer windows use the window itself.
	SubscriptionLookbackDays int
	// MinRecurringCount is the minimum charges inside the lookback for a
	// merchant to qualify as recurring.
	MinRecurringCount int
	// CadenceBands are the accepted recurring cadences.
	CadenceBands []CadenceBand
	// CadenceAgreement is the minimum share of inter-charge gaps that must
	// fall inside the matched band.
	CadenceAgreement float64
	// LargeExpenseCutoff excludes abnormally large single expenses from the
	// average-monthly-expense estimate.
	LargeExpenseCutoff float64
	// MinPaymentSlack flags minimum-payment-only behavior when the average
	// payment is at or below slack x the stated minimum.
	MinPaymentSlack float64
	// IncomeDepositFloor treats any deposit at or above this amount as
	// income even without a payroll category or merchant match.
	IncomeDepositFloor float64
	// InterestKeywords mark interest or penalty charges when found in a
	// merchant name or detailed category.
	InterestKeywords []string
	// PayrollKeywords mark payroll deposits in merchant names.
	PayrollKeywords []string
}

// DefaultConfig returns the calibrated engine constants.
func DefaultConfig() Config {
	return Config{
		SubscriptionLookbackDays: 90,
		MinRecurringCount:        3,
		CadenceBands: []CadenceBand{
			{TargetDays: 7, ToleranceDays: 3},
			{TargetDays: 14, ToleranceDays: 4},
			{TargetDays: 30, ToleranceDays: 7},
		},
		CadenceAgreement:   0.7,
		LargeExpenseCutoff: 10000,
		MinPaymentSlack:    1.10,
		IncomeDepositFloor: 500,
		InterestKeywords:   []string{"interest", "finance charge", "late fee"},
		PayrollKeywords:    []string{"payroll", "direct dep", "salary", "employer"},
	}
}
