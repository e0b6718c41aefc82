package signals

import (
	"testing"

	"spendlens/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeIncomeBiweeklyPayroll(t *testing.T) {
	checking := models.Account{ID: uuid.New(), Type: models.AccountChecking, BalanceAvailable: 1500}
	txns := []models.Transaction{
		inflow(checking.ID, 1, 2000, "Acme Corp Payroll", "INCOME", "INCOME_WAGES"),
		inflow(checking.ID, 15, 2000, "Acme Corp Payroll", "INCOME", "INCOME_WAGES"),
		inflow(checking.ID, 29, 2000, "Acme Corp Payroll", "INCOME", "INCOME_WAGES"),
		expense(checking.ID, 10, 750, "Rent Co", "RENT_AND_UTILITIES", ""),
	}

	income := testEngine().computeIncome([]models.Account{checking}, txns, WindowShortDays)

	assert.True(t, income.PayrollDetected)
	assert.Equal(t, 3, income.NumIncomeDeposits)
	assert.InDelta(t, 6000, income.TotalIncome, 0.001)
	assert.InDelta(t, 6000, income.MonthlyIncome, 0.001)
	assert.InDelta(t, 14, income.MedianPayGapDays, 0.001)
	assert.Equal(t, FrequencyBiweekly, income.PaymentFrequency)
	// $1500 available against $750/month of expenses.
	assert.InDelta(t, 2.0, income.CashFlowBufferMonths, 0.001)
}

func TestComputeIncomeDepositFloor(t *testing.T) {
	checking := models.Account{ID: uuid.New(), Type: models.AccountChecking}
	txns := []models.Transaction{
		// No income category or payroll merchant; only the first clears the
		// $500 floor.
		inflow(checking.ID, 4, 600, "Zelle Transfer", "TRANSFER_IN", ""),
		inflow(checking.ID, 9, 100, "Zelle Transfer", "TRANSFER_IN", ""),
	}

	income := testEngine().computeIncome([]models.Account{checking}, txns, WindowShortDays)
	assert.True(t, income.PayrollDetected)
	assert.Equal(t, 1, income.NumIncomeDeposits)
	assert.InDelta(t, 600, income.TotalIncome, 0.001)
}

func TestComputeIncomePayrollKeywordWithoutCategory(t *testing.T) {
	checking := models.Account{ID: uuid.New(), Type: models.AccountChecking}
	txns := []models.Transaction{
		inflow(checking.ID, 4, 300, "Globex Direct Dep", "TRANSFER_IN", ""),
	}

	income := testEngine().computeIncome([]models.Account{checking}, txns, WindowShortDays)
	assert.True(t, income.PayrollDetected)
	assert.Equal(t, 1, income.NumIncomeDeposits)
}

func TestComputeIncomeNoDeposits(t *testing.T) {
	checking := models.Account{ID: uuid.New(), Type: models.AccountChecking, BalanceAvailable: 500}
	txns := []models.Transaction{
		expense(checking.ID, 3, 40, "Groceries Mart", "FOOD_AND_DRINK", ""),
	}

	income := testEngine().computeIncome([]models.Account{checking}, txns, WindowShortDays)
	assert.False(t, income.PayrollDetected)
	assert.Zero(t, income.MonthlyIncome)
	assert.Empty(t, income.PaymentFrequency)
}

func TestComputeIncomeVariableGaps(t *testing.T) {
	checking := models.Account{ID: uuid.New(), Type: models.AccountChecking, BalanceAvailable: 400}
	txns := []models.Transaction{
		inflow(checking.ID, 10, 2600, "Freelance Clients Payroll", "INCOME", "INCOME_WAGES"),
		inflow(checking.ID, 65, 2600, "Freelance Clients Payroll", "INCOME", "INCOME_WAGES"),
		inflow(checking.ID, 120, 2600, "Freelance Clients Payroll", "INCOME", "INCOME_WAGES"),
	}
	for day := 2; day <= 178; day += 4 {
		txns = append(txns, expense(checking.ID, day, 70, "Daily Spend", "GENERAL_MERCHANDISE", ""))
	}

	income := testEngine().computeIncome([]models.Account{checking}, txns, WindowLongDays)
	assert.Equal(t, FrequencyVariable, income.PaymentFrequency)
	assert.InDelta(t, 55, income.MedianPayGapDays, 0.001)
	assert.Less(t, income.CashFlowBufferMonths, 1.0)
}

func TestFrequencyFromGap(t *testing.T) {
	assert.Equal(t, FrequencyWeekly, frequencyFromGap(7))
	assert.Equal(t, FrequencyBiweekly, frequencyFromGap(14))
	// Semi-monthly gaps read as biweekly.
	assert.Equal(t, FrequencyBiweekly, frequencyFromGap(15.5))
	assert.Equal(t, FrequencyMonthly, frequencyFromGap(30))
	assert.Equal(t, FrequencyVariable, frequencyFromGap(60))
	assert.Empty(t, frequencyFromGap(20))
}

func TestMedianAndStddev(t *testing.T) {
	assert.InDelta(t, 14, median([]float64{13, 14, 15}), 0.001)
	assert.InDelta(t, 14.5, median([]float64{14, 15}), 0.001)
	assert.Zero(t, median(nil))
	assert.Zero(t, stddev([]float64{5}))
	assert.InDelta(t, 1, stddev([]float64{13, 14, 15}), 0.001)
}
