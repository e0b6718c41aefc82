package seed

import (
	"fmt"
	"math/rand"
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
)

// Profile names a synthetic user archetype. Each profile is built to land in
// one persona (or none), so seeded databases exercise every pipeline branch.
type Profile string

const (
	ProfileHighUtilization   Profile = "high_utilization"
	ProfileVariableIncome    Profile = "variable_income"
	ProfileSubscriptionHeavy Profile = "subscription_heavy"
	ProfileDebtBurden        Profile = "debt_burden"
	ProfileSavingsBuilder    Profile = "savings_builder"
	ProfileQuiet             Profile = "quiet" // minimal activity, no persona
)

// Profiles lists every archetype in a stable order.
var Profiles = []Profile{
	ProfileHighUtilization,
	ProfileVariableIncome,
	ProfileSubscriptionHeavy,
	ProfileDebtBurden,
	ProfileSavingsBuilder,
	ProfileQuiet,
}

// UserData is one synthetic user with all their records.
type UserData struct {
	User         models.User
	Accounts     []models.Account
	Transactions []models.Transaction
	Liabilities  []models.Liability
}

// Generator builds synthetic users deterministically: the same seed and
// reference time always produce the same records, ids included via the
// seeded uuid source.
type Generator struct {
	rng       *rand.Rand
	reference time.Time
}

func NewGenerator(seed int64, reference time.Time) *Generator {
	return &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		reference: reference.Truncate(24 * time.Hour),
	}
}

func (g *Generator) uuid() uuid.UUID {
	var b [16]byte
	g.rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b)
}

func (g *Generator) daysAgo(days int) time.Time {
	return g.reference.AddDate(0, 0, -days)
}

// jitter returns base +/- spread, uniformly.
func (g *Generator) jitter(base, spread float64) float64 {
	return base + (g.rng.Float64()*2-1)*spread
}

// Generate builds one user for a profile. The index differentiates users of
// the same profile within a run.
func (g *Generator) Generate(profile Profile, index int) UserData {
	score := 690 + g.rng.Intn(60)
	consentAt := g.daysAgo(40)
	data := UserData{
		User: models.User{
			ID:               g.uuid(),
			Username:         fmt.Sprintf("%s_%02d", profile, index),
			Email:            fmt.Sprintf("%s_%02d@seed.spendlens.dev", profile, index),
			Password:         "$2a$10$seedseedseedseedseedseedseedseedseedseedseedseedseed12", // placeholder hash, not loginable
			CreditScore:      &score,
			ConsentStatus:    true,
			ConsentUpdatedAt: &consentAt,
			CreatedAt:        g.daysAgo(200),
			UpdatedAt:        g.daysAgo(40),
		},
	}

	checking := g.account(&data, "Everyday Checking", models.AccountChecking, 2400, nil)

	switch profile {
	case ProfileHighUtilization:
		g.buildHighUtilization(&data, checking)
	case ProfileVariableIncome:
		g.buildVariableIncome(&data, checking)
	case ProfileSubscriptionHeavy:
		g.buildSubscriptionHeavy(&data, checking)
	case ProfileDebtBurden:
		g.buildDebtBurden(&data, checking)
	case ProfileSavingsBuilder:
		g.buildSavingsBuilder(&data, checking)
	case ProfileQuiet:
		// A single small purchase; nothing should trigger.
		g.expense(&data, checking, 12, 14.99, "Corner Bakery", "FOOD_AND_DRINK", "FOOD_AND_DRINK_RESTAURANT")
	}
	return data
}

func (g *Generator) buildHighUtilization(data *UserData, checking uuid.UUID) {
	limit := 5000.0
	card := g.account(data, "Rewards Visa", models.AccountCreditCard, 4500, &limit)
	data.Liabilities = append(data.Liabilities, models.Liability{
		ID:             g.uuid(),
		AccountID:      card,
		Type:           models.AccountCreditCard,
		APRPercent:     24.99,
		MinimumPayment: 135,
		CreatedAt:      g.daysAgo(180),
	})

	// Steady biweekly payroll so income-dependent branches stay quiet.
	g.payroll(data, checking, 14, 1900, 0)
	// Minimum-only payments and a monthly interest charge on the card.
	for day := 10; day <= 170; day += 30 {
		g.inflow(data, card, day, 140, "Online Payment", "TRANSFER_IN", "TRANSFER_IN_ACCOUNT_TRANSFER")
		g.expense(data, card, day-3, 92.40, "Interest Charge", "BANK_FEES", "BANK_FEES_INTEREST_CHARGE")
	}
	for day := 5; day <= 175; day += 9 {
		g.expense(data, card, day, g.jitter(85, 30), "Various Retail", "GENERAL_MERCHANDISE", "GENERAL_MERCHANDISE_OTHER")
	}
}

func (g *Generator) buildVariableIncome(data *UserData, checking uuid.UUID) {
	// Gig deposits roughly every 50-60 days, balance under one month of
	// expenses.
	for _, day := range []int{8, 62, 118, 172} {
		g.inflow(data, checking, day, g.jitter(2600, 400), "Freelance Clients Payroll", "INCOME", "INCOME_WAGES")
	}
	for day := 2; day <= 178; day += 4 {
		g.expense(data, checking, day, g.jitter(70, 25), "Daily Spend", "GENERAL_MERCHANDISE", "GENERAL_MERCHANDISE_OTHER")
	}
	// Keep the checking balance low relative to spend.
	for i := range data.Accounts {
		if data.Accounts[i].ID == checking {
			data.Accounts[i].BalanceCurrent = 450
			data.Accounts[i].BalanceAvailable = 450
		}
	}
}

func (g *Generator) buildSubscriptionHeavy(data *UserData, checking uuid.UUID) {
	subs := []struct {
		merchant string
		amount   float64
	}{
		{"StreamFlix", 15.99},
		{"TuneBox Premium", 10.99},
		{"CloudDrive Plus", 9.99},
		{"FitTrack Pro", 12.99},
		{"NewsDaily Digital", 8.99},
	}
	for _, sub := range subs {
		for day := 3 + g.rng.Intn(5); day <= 178; day += 30 {
			g.expense(data, checking, day, sub.amount, sub.merchant, "ENTERTAINMENT", "ENTERTAINMENT_STREAMING")
		}
	}
	g.payroll(data, checking, 14, 2100, 0)
	for day := 6; day <= 174; day += 12 {
		g.expense(data, checking, day, g.jitter(45, 15), "Groceries Mart", "FOOD_AND_DRINK", "FOOD_AND_DRINK_GROCERIES")
	}
}

func (g *Generator) buildDebtBurden(data *UserData, checking uuid.UUID) {
	mortgage := g.account(data, "Home Mortgage", models.AccountMortgage, 310000, nil)
	student := g.account(data, "Student Loan", models.AccountStudentLoan, 58000, nil)
	data.Liabilities = append(data.Liabilities,
		models.Liability{
			ID:                  g.uuid(),
			AccountID:           mortgage,
			Type:                models.AccountMortgage,
			InterestRatePercent: 6.8,
			MinimumPayment:      2150,
			CreatedAt:           g.daysAgo(180),
		},
		models.Liability{
			ID:                  g.uuid(),
			AccountID:           student,
			Type:                models.AccountStudentLoan,
			InterestRatePercent: 5.4,
			MinimumPayment:      620,
			CreatedAt:           g.daysAgo(180),
		},
	)
	// Monthly salary: annual income ~66k against a 310k mortgage.
	g.payroll(data, checking, 30, 5500, 2)
	for day := 4; day <= 176; day += 6 {
		g.expense(data, checking, day, g.jitter(60, 20), "Household Spend", "GENERAL_MERCHANDISE", "GENERAL_MERCHANDISE_OTHER")
	}
}

func (g *Generator) buildSavingsBuilder(data *UserData, checking uuid.UUID) {
	savings := g.account(data, "High-Yield Savings", models.AccountSavings, 9800, nil)
	g.payroll(data, checking, 14, 2400, 0)
	// Steady transfers into savings.
	for day := 7; day <= 175; day += 14 {
		g.inflow(data, savings, day, 250, "Automatic Transfer", "TRANSFER_IN", "TRANSFER_IN_SAVINGS")
	}
	for day := 5; day <= 175; day += 5 {
		g.expense(data, checking, day, g.jitter(55, 20), "Everyday Spend", "GENERAL_MERCHANDISE", "GENERAL_MERCHANDISE_OTHER")
	}
	// A card kept well under 30% so the persona gate passes.
	limit := 6000.0
	card := g.account(data, "Cash-Back Card", models.AccountCreditCard, 700, &limit)
	data.Liabilities = append(data.Liabilities, models.Liability{
		ID:             g.uuid(),
		AccountID:      card,
		Type:           models.AccountCreditCard,
		APRPercent:     19.99,
		MinimumPayment: 25,
		CreatedAt:      g.daysAgo(180),
	})
}

func (g *Generator) account(data *UserData, name string, accountType models.AccountType, balance float64, limit *float64) uuid.UUID {
	account := models.Account{
		ID:               g.uuid(),
		UserID:           data.User.ID,
		Name:             name,
		Mask:             fmt.Sprintf("%04d", g.rng.Intn(10000)),
		Type:             accountType,
		BalanceCurrent:   balance,
		BalanceAvailable: balance,
		CreditLimit:      limit,
		CreatedAt:        g.daysAgo(200),
	}
	data.Accounts = append(data.Accounts, account)
	return account.ID
}

// payroll adds deposits every gapDays with optional +/- jitterDays.
func (g *Generator) payroll(data *UserData, account uuid.UUID, gapDays int, amount float64, jitterDays int) {
	for day := 3; day <= 178; day += gapDays {
		actual := day
		if jitterDays > 0 {
			actual += g.rng.Intn(2*jitterDays+1) - jitterDays
		}
		g.inflow(data, account, actual, g.jitter(amount, amount*0.02), "Acme Corp Payroll", "INCOME", "INCOME_WAGES")
	}
}

func (g *Generator) expense(data *UserData, account uuid.UUID, daysAgo int, amount float64, merchant, category, detailed string) {
	g.txn(data, account, daysAgo, amount, merchant, category, detailed)
}

func (g *Generator) inflow(data *UserData, account uuid.UUID, daysAgo int, amount float64, merchant, category, detailed string) {
	g.txn(data, account, daysAgo, -amount, merchant, category, detailed)
}

func (g *Generator) txn(data *UserData, account uuid.UUID, daysAgo int, amount float64, merchant, category, detailed string) {
	if daysAgo < 0 {
		daysAgo = 0
	}
	data.Transactions = append(data.Transactions, models.Transaction{
		ID:               g.uuid(),
		AccountID:        account,
		UserID:           data.User.ID,
		Date:             g.daysAgo(daysAgo),
		Amount:           amount,
		MerchantName:     merchant,
		CategoryPrimary:  category,
		CategoryDetailed: detailed,
		CreatedAt:        g.daysAgo(daysAgo),
	})
}
