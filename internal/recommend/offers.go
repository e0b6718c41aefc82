package recommend

import "spendlens/internal/models"

// OfferRequirements are the hard eligibility gates on a partner offer. Nil
// pointer means the requirement does not apply. ExcludeIfHasTypes lists
// account types mutually exclusive with the product: a user already holding
// one is never shown the offer.
type OfferRequirements struct {
	MinCreditScore        *int
	MaxUtilizationPercent *float64
	MinMonthlyIncome      *float64
	RequiredAccountTypes  []models.AccountType
	ExcludeIfHasTypes     []models.AccountType
}

// Offer is one partner product. Signals lists the triggers the offer is
// relevant to; an offer is never shown for a signal outside that list.
type Offer struct {
	ID           string
	ProductType  string
	Partner      string
	Title        string
	Content      string
	Signals      []SignalID
	Requirements OfferRequirements
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// predatoryProductTypes can never be recommended regardless of catalog
// contents or eligibility.
var predatoryProductTypes = map[string]bool{
	"payday_loan": true,
	"title_loan":  true,
	"pawn_shop":   true,
}

// offerCatalog is the full partner inventory. Catalog order within a signal
// is the preference order.
var offerCatalog = []Offer{
	{
		ID:          "offer_balance_transfer",
		ProductType: "balance_transfer_card",
		Partner:     "Meridian Card Services",
		Title:       "0% Intro APR Balance Transfer Card",
		Content: "Move your high-interest balance to a card with 0% intro APR for 18 " +
			"months (3% transfer fee). Paying the same amount each month while no " +
			"interest accrues puts every dollar toward principal.",
		Signals:      []SignalID{SignalHighUtilization, SignalInterestCharges},
		Requirements: OfferRequirements{MinCreditScore: intPtr(670)},
	},
	{
		ID:          "offer_debt_consolidation",
		ProductType: "personal_loan",
		Partner:     "Brightpath Lending",
		Title:       "Debt Consolidation Loan from 8.9% APR",
		Content: "Replace revolving card debt with a fixed-rate installment loan. One " +
			"predictable payment, a firm payoff date, and typically a lower rate than " +
			"card APRs.",
		Signals:      []SignalID{SignalHighUtilization, SignalInterestCharges, SignalMinimumPaymentOnly},
		Requirements: OfferRequirements{MinCreditScore: intPtr(640), MinMonthlyIncome: floatPtr(2000)},
	},
	{
		ID:          "offer_credit_counseling",
		ProductType: "credit_counseling",
		Partner:     "ClearPath Financial Counseling",
		Title:       "Free Session with a Nonprofit Credit Counselor",
		Content: "A certified counselor reviews your debts and budget, and can set up " +
			"a debt management plan with reduced rates negotiated with your issuers. " +
			"The first session is free.",
		Signals: []SignalID{SignalOverdue, SignalMinimumPaymentOnly},
	},
	{
		ID:          "offer_credit_monitoring",
		ProductType: "credit_monitoring",
		Partner:     "ScoreSense",
		Title:       "Free Credit Score Monitoring",
		Content: "Track your score weekly and get alerts when utilization or new " +
			"accounts move it. Useful while paying a balance down, so you can watch " +
			"the recovery.",
		Signals: []SignalID{SignalHighUtilization, SignalOverdue},
	},
	{
		ID:          "offer_budgeting_app",
		ProductType: "budgeting_app",
		Partner:     "Flowline",
		Title:       "Budgeting App Built for Irregular Income",
		Content: "Flowline assigns every deposit to upcoming expenses the moment it " +
			"lands, so lean weeks are planned for in the fat ones. Free for the first " +
			"three months.",
		Signals: []SignalID{SignalVariableIncome},
	},
	{
		ID:          "offer_hysa_boost",
		ProductType: "high_yield_savings",
		Partner:     "Harbor Digital Bank",
		Title:       "High-Yield Savings at 4.50% APY",
		Content: "FDIC-insured savings earning 4.50% APY with no minimums or fees. " +
			"Automatic round-ups and scheduled transfers make the buffer grow without " +
			"thinking about it.",
		Signals:      []SignalID{SignalVariableIncome, SignalSavingsBuilder},
		Requirements: OfferRequirements{ExcludeIfHasTypes: []models.AccountType{models.AccountSavings, models.AccountMoneyMarket}},
	},
	{
		ID:          "offer_subscription_manager",
		ProductType: "subscription_manager",
		Partner:     "Trimly",
		Title:       "Find and Cancel Unused Subscriptions",
		Content: "Trimly lists every recurring charge on your accounts, cancels the " +
			"ones you do not want with one tap, and negotiates bills like internet " +
			"and phone on your behalf.",
		Signals: []SignalID{SignalSubscriptionHeavy},
	},
	{
		ID:          "offer_cd_ladder",
		ProductType: "certificate_of_deposit",
		Partner:     "Harbor Digital Bank",
		Title:       "12-Month CD at 5.00% APY",
		Content: "For savings beyond the emergency fund, a CD locks a guaranteed " +
			"5.00% for twelve months. Laddering several maturities keeps part of the " +
			"money accessible each quarter.",
		Signals:      []SignalID{SignalSavingsBuilder},
		Requirements: OfferRequirements{RequiredAccountTypes: []models.AccountType{models.AccountSavings, models.AccountMoneyMarket}},
	},
	{
		ID:          "offer_investment_starter",
		ProductType: "investment_account",
		Partner:     "Foundry Invest",
		Title:       "Automated Index Investing from $10",
		Content: "Once the emergency fund is on track, low-cost index portfolios put " +
			"the surplus to work. Automatic monthly contributions, no account " +
			"minimum beyond the first $10.",
		Signals:      []SignalID{SignalSavingsBuilder},
		Requirements: OfferRequirements{MinMonthlyIncome: floatPtr(2100)},
	},
	{
		ID:          "offer_financial_planner",
		ProductType: "financial_planning",
		Partner:     "Northstar Advisors",
		Title:       "Flat-Fee Session with a Fiduciary Planner",
		Content: "A one-time flat-fee session with a fiduciary, advice-only planner " +
			"to map goals beyond the emergency fund: retirement accounts, tax " +
			"treatment, and investment ordering.",
		Signals:      []SignalID{SignalSavingsBuilder},
		Requirements: OfferRequirements{MinMonthlyIncome: floatPtr(3400)},
	},
	{
		ID:          "offer_rewards_card",
		ProductType: "rewards_card",
		Partner:     "Meridian Card Services",
		Title:       "2% Flat Cash-Back Card",
		Content: "With your cards consistently below 30% utilization, a flat 2% " +
			"cash-back card turns existing spending into savings contributions. Only " +
			"worthwhile when balances are paid in full.",
		Signals: []SignalID{SignalSavingsBuilder},
		Requirements: OfferRequirements{
			MinCreditScore:        intPtr(700),
			MaxUtilizationPercent: floatPtr(30),
		},
	},
	{
		ID:          "offer_mortgage_refinance",
		ProductType: "mortgage_refinance",
		Partner:     "Keystone Home Lending",
		Title:       "Mortgage Refinance Rate Check",
		Content: "A no-obligation rate check against your current mortgage. Even half " +
			"a point off the rate on a large balance can lower the payment " +
			"meaningfully; the break-even math is shown up front.",
		Signals:      []SignalID{SignalMortgageDebt, SignalMortgagePayment},
		Requirements: OfferRequirements{MinCreditScore: intPtr(620), RequiredAccountTypes: []models.AccountType{models.AccountMortgage}},
	},
	{
		ID:          "offer_student_refinance",
		ProductType: "student_loan_refinance",
		Partner:     "Gradient Lending",
		Title:       "Student Loan Refinancing from 5.2% APR",
		Content: "Refinancing private student loans to a lower fixed rate cuts the " +
			"total cost directly. Note that refinancing federal loans forfeits " +
			"income-driven plans and forgiveness options.",
		Signals:      []SignalID{SignalStudentDebt, SignalStudentPayment},
		Requirements: OfferRequirements{MinCreditScore: intPtr(660), MinMonthlyIncome: floatPtr(2500), RequiredAccountTypes: []models.AccountType{models.AccountStudentLoan}},
	},
}

// OffersForSignal returns catalog entries relevant to a signal, in catalog
// order, with predatory product types already removed.
func OffersForSignal(id SignalID) []Offer {
	var out []Offer
	for _, o := range offerCatalog {
		if predatoryProductTypes[o.ProductType] {
			continue
		}
		for _, s := range o.Signals {
			if s == id {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// OfferByID looks an offer up in the catalog.
func OfferByID(id string) (Offer, bool) {
	for _, o := range offerCatalog {
		if o.ID == id {
			return o, true
		}
	}
	return Offer{}, false
}
