package recommend

import (
	"fmt"
	"strings"
)

// Rationale produces the "why am I seeing this" sentence for a triggered
// signal, quoting the concrete values that tripped it.
func Rationale(ctx SignalContext) string {
	switch d := ctx.Data.(type) {
	case HighUtilizationData:
		return fmt.Sprintf("Your %s is at %.1f%% utilization, above the 50%% threshold where credit scores are typically affected.",
			d.Highest.CardName, d.Highest.UtilizationPercent)
	case InterestChargesData:
		return fmt.Sprintf("Interest charges were detected on your %s, costing roughly $%.2f per month at %.1f%% APR.",
			d.Highest.CardName, d.Highest.MonthlyInterest, d.Highest.APRPercent)
	case MinimumPaymentData:
		return fmt.Sprintf("Recent payments on your %s have stayed near the $%.2f minimum, which keeps the balance from shrinking.",
			d.Highest.CardName, d.Highest.MinimumPayment)
	case OverdueData:
		return fmt.Sprintf("Your %s has an overdue payment, which risks late fees and credit-report damage.",
			d.Primary.CardName)
	case VariableIncomeData:
		return fmt.Sprintf("Your income arrives about every %.0f days and your cash buffer covers %.1f months of expenses, below the one-month mark.",
			d.MedianPayGapDays, d.CashFlowBufferMonths)
	case SubscriptionData:
		return fmt.Sprintf("You have %d recurring subscriptions totaling $%.2f per month (%.1f%% of your spending).",
			d.RecurringCount, d.MonthlyRecurringSpend, d.SharePercent)
	case SavingsBuilderData:
		return fmt.Sprintf("Your savings grew %.1f%% this period with about $%.2f per month in net deposits and your cards under 30%% utilization.",
			d.GrowthRatePercent, d.NetInflow)
	case MortgageDebtData:
		return fmt.Sprintf("Your mortgage balance of $%.2f is %.1fx your annual income, above the 4x level where the debt weighs on other goals.",
			d.MortgageBalance, d.BalanceToIncomeRatio)
	case MortgagePaymentData:
		return fmt.Sprintf("Your mortgage payment of $%.2f takes %.1f%% of your monthly income, above the 35%% strain threshold.",
			d.MonthlyPayment, d.PaymentBurdenPercent)
	case StudentDebtData:
		return fmt.Sprintf("Your student loan balance of $%.2f is %.1fx your annual income, above the 1.5x threshold.",
			d.StudentLoanBalance, d.BalanceToIncomeRatio)
	case StudentPaymentData:
		return fmt.Sprintf("Your student loan payment of $%.2f takes %.1f%% of your monthly income, above the 25%% threshold.",
			d.MonthlyPayment, d.PaymentBurdenPercent)
	}
	return fmt.Sprintf("Triggered by %s.", ctx.Name)
}

// OfferRationale extends the signal rationale with why this particular
// product is relevant.
func OfferRationale(offer Offer, ctx SignalContext) string {
	return Rationale(ctx) + " " + fmt.Sprintf("%s from %s addresses this directly.", offer.Title, offer.Partner)
}

// Disclosure variants appended to every recommendation. Appending is
// idempotent: content already carrying the variant is left untouched.
const (
	educationDisclosure = "This is educational content, not financial advice. Consult a licensed advisor for personalized guidance."
	offerDisclosure     = "This is a sponsored offer from a partner, not financial advice. Review the partner's full terms before applying. Consult a licensed advisor for personalized guidance."
)

// WithDisclosure appends the type-appropriate disclosure to content exactly
// once.
func WithDisclosure(content string, isOffer bool) string {
	disclosure := educationDisclosure
	if isOffer {
		disclosure = offerDisclosure
	}
	if strings.Contains(content, disclosure) {
		return content
	}
	if content == "" {
		return disclosure
	}
	return strings.TrimRight(content, " \n") + "\n\n" + disclosure
}
