package signals

import (
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignalSet is the complete set of behavioral signals for one user and one
// window. Computed fresh on every invocation and never mutated afterwards.
type SignalSet struct {
	UserID       uuid.UUID `json:"user_id"`
	WindowDays   int       `json:"window_days"`
	CalculatedAt time.Time `json:"calculated_at"`

	Subscriptions SubscriptionSignals `json:"subscriptions"`
	Savings       SavingsSignals      `json:"savings"`
	Credit        CreditSignals       `json:"credit"`
	Income        IncomeSignals       `json:"income"`
	Loans         LoanSignals         `json:"loans"`
}

// Engine computes behavioral signals. It holds no per-user state and is safe
// for concurrent use across users.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Compute derives one SignalSet from the user's raw records. It is a pure
// function of its inputs and the reference time: no I/O, deterministic, and
// it returns zeroed signal groups rather than failing on empty input.
func (e *Engine) Compute(
	userID uuid.UUID,
	accounts []models.Account,
	transactions []models.Transaction,
	liabilities []models.Liability,
	windowDays int,
	reference time.Time,
) SignalSet {
	windowTxns := filterWindow(transactions, reference, windowDays)

	var (
		creditAccounts   []models.Account
		savingsAccounts  []models.Account
		checkingAccounts []models.Account
	)
	creditIDs := map[uuid.UUID]bool{}
	savingsIDs := map[uuid.UUID]bool{}
	for _, a := range accounts {
		switch {
		case a.Type == models.AccountCreditCard:
			creditAccounts = append(creditAccounts, a)
			creditIDs[a.ID] = true
		case models.SavingsLikeTypes[a.Type]:
			savingsAccounts = append(savingsAccounts, a)
			savingsIDs[a.ID] = true
		case a.Type == models.AccountChecking:
			checkingAccounts = append(checkingAccounts, a)
		}
	}

	var creditTxns, savingsTxns []models.Transaction
	for _, t := range windowTxns {
		if creditIDs[t.AccountID] {
			creditTxns = append(creditTxns, t)
		} else if savingsIDs[t.AccountID] {
			savingsTxns = append(savingsTxns, t)
		}
	}

	income := e.computeIncome(checkingAccounts, windowTxns, windowDays)

	set := SignalSet{
		UserID:        userID,
		WindowDays:    windowDays,
		CalculatedAt:  reference,
		Subscriptions: e.detectSubscriptions(transactions, reference, windowDays),
		Savings:       e.computeSavings(savingsAccounts, savingsTxns, windowTxns, windowDays),
		Credit:        e.computeCredit(creditAccounts, liabilities, creditTxns, windowDays),
		Income:        income,
		Loans:         e.computeLoans(accounts, liabilities, income.MonthlyIncome),
	}

	e.logger.Debug("signals computed",
		zap.String("user_id", userID.String()),
		zap.Int("window_days", windowDays),
		zap.Int("recurring_merchants", set.Subscriptions.RecurringMerchantCount),
		zap.Float64("max_utilization", set.Credit.MaxUtilizationPercent),
	)
	return set
}

// ComputeBoth returns the 30-day and 180-day SignalSets from the same
// underlying records.
func (e *Engine) ComputeBoth(
	userID uuid.UUID,
	accounts []models.Account,
	transactions []models.Transaction,
	liabilities []models.Liability,
	reference time.Time,
) (SignalSet, SignalSet) {
	short := e.Compute(userID, accounts, transactions, liabilities, WindowShortDays, reference)
	long := e.Compute(userID, accounts, transactions, liabilities, WindowLongDays, reference)
	return short, long
}
