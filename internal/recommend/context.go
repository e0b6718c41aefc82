package recommend

import (
	"encoding/json"
	"fmt"
	"time"
)

// SignalID identifies one of the eleven fine-grained recommendation
// triggers. These are narrower than persona rules: a persona may be driven
// by several signals, and a signal never belongs to more than one persona.
type SignalID string

const (
	SignalHighUtilization    SignalID = "signal_high_utilization"
	SignalInterestCharges    SignalID = "signal_interest_charges"
	SignalMinimumPaymentOnly SignalID = "signal_minimum_payment_only"
	SignalOverdue            SignalID = "signal_overdue"
	SignalVariableIncome     SignalID = "signal_variable_income_low_buffer"
	SignalSubscriptionHeavy  SignalID = "signal_subscription_heavy"
	SignalSavingsBuilder     SignalID = "signal_savings_builder"
	SignalMortgageDebt       SignalID = "signal_mortgage_high_debt"
	SignalMortgagePayment    SignalID = "signal_mortgage_high_payment"
	SignalStudentDebt        SignalID = "signal_student_loan_high_debt"
	SignalStudentPayment     SignalID = "signal_student_loan_high_payment"
)

var signalNames = map[SignalID]string{
	SignalHighUtilization:    "High Credit Card Utilization",
	SignalInterestCharges:    "Credit Card Interest Charges",
	SignalMinimumPaymentOnly: "Minimum Payment Only",
	SignalOverdue:            "Overdue Credit Card Payment",
	SignalVariableIncome:     "Variable Income with Low Cash Buffer",
	SignalSubscriptionHeavy:  "Subscription-Heavy Spending",
	SignalSavingsBuilder:     "Savings Builder",
	SignalMortgageDebt:       "Mortgage High Debt-to-Income",
	SignalMortgagePayment:    "Mortgage High Payment Burden",
	SignalStudentDebt:        "Student Loan High Debt-to-Income",
	SignalStudentPayment:     "Student Loan High Payment Burden",
}

// ContextData is the tagged-union payload of a triggered signal: one
// concrete variant struct per signal id, so the fields available for a given
// signal are known at compile time. Variables returns the values available
// for template rendering and rationale text.
type ContextData interface {
	SignalID() SignalID
	Variables() map[string]any
}

// SignalContext is a triggered signal together with the concrete numbers
// that triggered it.
type SignalContext struct {
	ID   SignalID    `json:"signal_id"`
	Name string      `json:"signal_name"`
	Data ContextData `json:"context_data"`
}

func newContext(data ContextData) *SignalContext {
	id := data.SignalID()
	return &SignalContext{ID: id, Name: signalNames[id], Data: data}
}

// CardContext is the per-card slice shared by the credit-signal variants.
type CardContext struct {
	AccountID          string     `json:"account_id"`
	CardName           string     `json:"card_name"`
	LastFour           string     `json:"last_four"`
	Balance            float64    `json:"balance"`
	Limit              float64    `json:"limit"`
	UtilizationPercent float64    `json:"utilization_percent"`
	APRPercent         float64    `json:"apr_percent"`
	MinimumPayment     float64    `json:"minimum_payment"`
	MonthlyInterest    float64    `json:"monthly_interest"`
	NextPaymentDue     *time.Time `json:"next_payment_due,omitempty"`
}

func (c CardContext) variables() map[string]any {
	return map[string]any{
		"card_name":        c.CardName,
		"last_four":        c.LastFour,
		"balance":          c.Balance,
		"limit":            c.Limit,
		"utilization":      c.UtilizationPercent,
		"apr":              c.APRPercent,
		"min_payment":      c.MinimumPayment,
		"monthly_interest": c.MonthlyInterest,
	}
}

type HighUtilizationData struct {
	Cards                 []CardContext `json:"triggered_cards"`
	Highest               CardContext   `json:"highest_card"`
	MaxUtilizationPercent float64       `json:"max_utilization_percent"`
	// Payment-plan figures derived from the highest-utilization card.
	TargetPayment float64 `json:"target_payment"`
	PaydownMonths int     `json:"paydown_months"`
}

func (d HighUtilizationData) SignalID() SignalID { return SignalHighUtilization }
func (d HighUtilizationData) Variables() map[string]any {
	vars := d.Highest.variables()
	vars["max_utilization"] = d.MaxUtilizationPercent
	vars["target_payment"] = d.TargetPayment
	vars["months"] = d.PaydownMonths
	return vars
}

type InterestChargesData struct {
	Cards   []CardContext `json:"cards_with_interest"`
	Highest CardContext   `json:"highest_card"`
}

func (d InterestChargesData) SignalID() SignalID { return SignalInterestCharges }
func (d InterestChargesData) Variables() map[string]any { return d.Highest.variables() }

type MinimumPaymentData struct {
	Cards   []CardContext `json:"min_payment_cards"`
	Highest CardContext   `json:"highest_card"`
}

func (d MinimumPaymentData) SignalID() SignalID { return SignalMinimumPaymentOnly }
func (d MinimumPaymentData) Variables() map[string]any { return d.Highest.variables() }

type OverdueData struct {
	Cards   []CardContext `json:"overdue_cards"`
	Primary CardContext   `json:"primary_card"`
}

func (d OverdueData) SignalID() SignalID { return SignalOverdue }
func (d OverdueData) Variables() map[string]any { return d.Primary.variables() }

type VariableIncomeData struct {
	MedianPayGapDays     float64 `json:"median_pay_gap_days"`
	CashFlowBufferMonths float64 `json:"cash_flow_buffer_months"`
	PaymentFrequency     string  `json:"payment_frequency"`
	CheckingBalance      float64 `json:"checking_balance"`
	AvgMonthlyExpenses   float64 `json:"avg_monthly_expenses"`
	TargetEmergencyFund  float64 `json:"target_emergency_fund"`
	TargetMonthlySavings float64 `json:"target_monthly_savings"`
}

func (d VariableIncomeData) SignalID() SignalID { return SignalVariableIncome }
func (d VariableIncomeData) Variables() map[string]any {
	return map[string]any{
		"pay_gap":         d.MedianPayGapDays,
		"buffer_months":   d.CashFlowBufferMonths,
		"frequency":       d.PaymentFrequency,
		"avg_expenses":    d.AvgMonthlyExpenses,
		"target_amount":   d.TargetEmergencyFund,
		"monthly_savings": d.TargetMonthlySavings,
	}
}

type SubscriptionData struct {
	RecurringCount        int      `json:"recurring_count"`
	MonthlyRecurringSpend float64  `json:"monthly_recurring_spend"`
	SharePercent          float64  `json:"subscription_share_percent"`
	AnnualTotal           float64  `json:"annual_total"`
	PotentialSavings      float64  `json:"potential_savings"`
	Merchants             []string `json:"merchants"`
}

func (d SubscriptionData) SignalID() SignalID { return SignalSubscriptionHeavy }
func (d SubscriptionData) Variables() map[string]any {
	return map[string]any{
		"recurring_count":      d.RecurringCount,
		"monthly_total":        d.MonthlyRecurringSpend,
		"subscription_percent": d.SharePercent,
		"annual_total":         d.AnnualTotal,
		"potential_savings":    d.PotentialSavings,
	}
}

type SavingsBuilderData struct {
	GrowthRatePercent        float64 `json:"growth_rate_percent"`
	NetInflow                float64 `json:"net_inflow"`
	SavingsBalance           float64 `json:"savings_balance"`
	EmergencyFundMonths      float64 `json:"emergency_fund_months"`
	AvgMonthlyExpenses       float64 `json:"avg_monthly_expenses"`
	TargetEmergencyFund      float64 `json:"target_emergency_fund"`
	AdditionalInterestYearly float64 `json:"additional_interest_yearly"`
	IncreaseAmount           float64 `json:"increase_amount"`
}

func (d SavingsBuilderData) SignalID() SignalID { return SignalSavingsBuilder }
func (d SavingsBuilderData) Variables() map[string]any {
	return map[string]any{
		"growth_rate":           d.GrowthRatePercent,
		"monthly_savings":       d.NetInflow,
		"current_balance":       d.SavingsBalance,
		"emergency_months":      d.EmergencyFundMonths,
		"emergency_fund_target": d.TargetEmergencyFund,
		"additional_interest":   d.AdditionalInterestYearly,
		"increase_amount":       d.IncreaseAmount,
	}
}

type MortgageDebtData struct {
	MortgageBalance      float64 `json:"mortgage_balance"`
	AnnualIncome         float64 `json:"annual_income"`
	BalanceToIncomeRatio float64 `json:"balance_to_income_ratio"`
	MonthlyPayment       float64 `json:"monthly_payment"`
	InterestRatePercent  float64 `json:"interest_rate_percent"`
}

func (d MortgageDebtData) SignalID() SignalID { return SignalMortgageDebt }
func (d MortgageDebtData) Variables() map[string]any {
	return map[string]any{
		"mortgage_balance":  d.MortgageBalance,
		"annual_income":     d.AnnualIncome,
		"balance_to_income": d.BalanceToIncomeRatio,
		"monthly_payment":   d.MonthlyPayment,
		"interest_rate":     d.InterestRatePercent,
	}
}

type MortgagePaymentData struct {
	MonthlyPayment       float64 `json:"monthly_payment"`
	MonthlyIncome        float64 `json:"monthly_income"`
	PaymentBurdenPercent float64 `json:"payment_burden_percent"`
	MortgageBalance      float64 `json:"mortgage_balance"`
	InterestRatePercent  float64 `json:"interest_rate_percent"`
}

func (d MortgagePaymentData) SignalID() SignalID { return SignalMortgagePayment }
func (d MortgagePaymentData) Variables() map[string]any {
	return map[string]any{
		"monthly_payment":  d.MonthlyPayment,
		"monthly_income":   d.MonthlyIncome,
		"payment_burden":   d.PaymentBurdenPercent,
		"mortgage_balance": d.MortgageBalance,
		"interest_rate":    d.InterestRatePercent,
	}
}

type StudentDebtData struct {
	StudentLoanBalance   float64 `json:"student_loan_balance"`
	AnnualIncome         float64 `json:"annual_income"`
	BalanceToIncomeRatio float64 `json:"balance_to_income_ratio"`
	MonthlyPayment       float64 `json:"monthly_payment"`
	InterestRatePercent  float64 `json:"interest_rate_percent"`
}

func (d StudentDebtData) SignalID() SignalID { return SignalStudentDebt }
func (d StudentDebtData) Variables() map[string]any {
	return map[string]any{
		"student_loan_balance": d.StudentLoanBalance,
		"annual_income":        d.AnnualIncome,
		"balance_to_income":    d.BalanceToIncomeRatio,
		"monthly_payment":      d.MonthlyPayment,
		"interest_rate":        d.InterestRatePercent,
	}
}

type StudentPaymentData struct {
	MonthlyPayment       float64 `json:"monthly_payment"`
	MonthlyIncome        float64 `json:"monthly_income"`
	PaymentBurdenPercent float64 `json:"payment_burden_percent"`
	StudentLoanBalance   float64 `json:"student_loan_balance"`
	InterestRatePercent  float64 `json:"interest_rate_percent"`
	EstimatedIDRPayment  float64 `json:"estimated_idr_payment"`
}

func (d StudentPaymentData) SignalID() SignalID { return SignalStudentPayment }
func (d StudentPaymentData) Variables() map[string]any {
	return map[string]any{
		"monthly_payment":       d.MonthlyPayment,
		"monthly_income":        d.MonthlyIncome,
		"payment_burden":        d.PaymentBurdenPercent,
		"student_loan_balance":  d.StudentLoanBalance,
		"interest_rate":         d.InterestRatePercent,
		"estimated_idr_payment": d.EstimatedIDRPayment,
	}
}

// UnmarshalJSON reconstructs the concrete context variant from the signal id
// tag, so persisted traces round-trip into typed data.
func (c *SignalContext) UnmarshalJSON(raw []byte) error {
	var head struct {
		ID   SignalID        `json:"signal_id"`
		Name string          `json:"signal_name"`
		Data json.RawMessage `json:"context_data"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return err
	}

	var (
		data ContextData
		err  error
	)
	switch head.ID {
	case SignalHighUtilization:
		data, err = decodeData[HighUtilizationData](head.Data)
	case SignalInterestCharges:
		data, err = decodeData[InterestChargesData](head.Data)
	case SignalMinimumPaymentOnly:
		data, err = decodeData[MinimumPaymentData](head.Data)
	case SignalOverdue:
		data, err = decodeData[OverdueData](head.Data)
	case SignalVariableIncome:
		data, err = decodeData[VariableIncomeData](head.Data)
	case SignalSubscriptionHeavy:
		data, err = decodeData[SubscriptionData](head.Data)
	case SignalSavingsBuilder:
		data, err = decodeData[SavingsBuilderData](head.Data)
	case SignalMortgageDebt:
		data, err = decodeData[MortgageDebtData](head.Data)
	case SignalMortgagePayment:
		data, err = decodeData[MortgagePaymentData](head.Data)
	case SignalStudentDebt:
		data, err = decodeData[StudentDebtData](head.Data)
	case SignalStudentPayment:
		data, err = decodeData[StudentPaymentData](head.Data)
	default:
		return fmt.Errorf("unknown signal id %q", head.ID)
	}
	if err != nil {
		return err
	}

	c.ID = head.ID
	c.Name = head.Name
	c.Data = data
	return nil
}

// decodeData unmarshals into a concrete variant and returns it as a value,
// so type switches on ContextData behave the same for freshly detected and
// round-tripped contexts.
func decodeData[T ContextData](raw json.RawMessage) (ContextData, error) {
	var d T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
	}
	return d, nil
}
