package application

import (
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

const (
	forecastMinMonths       = 2
	forecastMaxHorizon      = 12
	trailingWindowMonths    = 6
	confidenceFloor         = 0.5
	confidenceDecayPerMonth = 0.04
)

type Projection struct {
	Month             string  `json:"month"`
	ProjectedIncome   float64 `json:"projected_income"`
	ProjectedExpense  float64 `json:"projected_expense"`
	ProjectedBalance  float64 `json:"projected_balance"`
	CumulativeBalance float64 `json:"cumulative_balance"`
	Confidence        float64 `json:"confidence"`
}

type Forecast struct {
	Projections []Projection `json:"projections"`
	Insights    []string     `json:"insights"`
}

// ForecastService projects future cash flow from the trailing window of
// monthly totals plus the known recurring commitments.
type ForecastService struct {
	transactions domain.TransactionRepository
	accounts     domain.AccountRepository
	templates    domain.RecurringTemplateRepository
	now          func() time.Time
}

func NewForecastService(transactions domain.TransactionRepository, accounts domain.AccountRepository, templates domain.RecurringTemplateRepository) *ForecastService {
	return &ForecastService{
		transactions: transactions,
		accounts:     accounts,
		templates:    templates,
		now:          time.Now,
	}
}

// GetForecast projects months ahead of the current month. It refuses to
// extrapolate from fewer than two months of history.
func (s *ForecastService) GetForecast(userID string, months int) (*Forecast, error) {
	if months < 1 || months > forecastMaxHorizon {
		return nil, bankingErrors.NewValidationError("Forecast horizon must be between 1 and 12 months")
	}

	now := s.now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := currentMonth.AddDate(0, -trailingWindowMonths, 0)

	history, err := s.transactions.GetMonthlyTotals(userID, windowStart, currentMonth)
	if err != nil {
		return nil, err
	}
	if len(history) < forecastMinMonths {
		return nil, bankingErrors.ErrInsufficientHistory
	}

	avgIncome, avgExpense := averages(history)
	incomeGrowth := monthlyGrowth(history, func(t domain.MonthlyTotal) float64 { return t.Income })
	expenseGrowth := monthlyGrowth(history, func(t domain.MonthlyTotal) float64 { return t.Expense })

	templates, err := s.templates.FindActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	cumulative, err := s.accounts.TotalBalance(userID)
	if err != nil {
		return nil, err
	}

	projections := make([]Projection, 0, months)
	confidence := 1.0 - confidenceDecayPerMonth
	for i := 1; i <= months; i++ {
		month := currentMonth.AddDate(0, i, 0)

		income := avgIncome + incomeGrowth*float64(i)
		expense := avgExpense + expenseGrowth*float64(i)
		recurringIncome, recurringExpense := recurringContributions(templates, month)
		income += recurringIncome
		expense += recurringExpense
		if income < 0 {
			income = 0
		}
		if expense < 0 {
			expense = 0
		}

		balance := income - expense
		cumulative += balance
		projections = append(projections, Projection{
			Month:             month.Format("2006-01"),
			ProjectedIncome:   income,
			ProjectedExpense:  expense,
			ProjectedBalance:  balance,
			CumulativeBalance: cumulative,
			Confidence:        confidence,
		})

		confidence -= confidenceDecayPerMonth
		if confidence < confidenceFloor {
			confidence = confidenceFloor
		}
	}

	return &Forecast{
		Projections: projections,
		Insights:    buildInsights(projections, incomeGrowth, expenseGrowth),
	}, nil
}

func averages(history []domain.MonthlyTotal) (income, expense float64) {
	for _, month := range history {
		income += month.Income
		expense += month.Expense
	}
	n := float64(len(history))
	return income / n, expense / n
}

// monthlyGrowth is the average per-month change across the window: newest
// minus oldest, divided by the number of month steps between them.
func monthlyGrowth(history []domain.MonthlyTotal, value func(domain.MonthlyTotal) float64) float64 {
	if len(history) < 2 {
		return 0
	}
	return (value(history[len(history)-1]) - value(history[0])) / float64(len(history)-1)
}

// recurringContributions sums the template amounts expected to land in the
// given month, weighted by how many occurrences fit in it.
func recurringContributions(templates []domain.RecurringTemplate, month time.Time) (income, expense float64) {
	for _, template := range templates {
		if template.EndDate != nil && template.EndDate.Before(month) {
			continue
		}
		occurrences := occurrencesInMonth(template, month)
		if occurrences == 0 {
			continue
		}
		total := template.Amount * float64(occurrences)
		switch template.Type {
		case domain.TransactionTypeIncome:
			income += total
		case domain.TransactionTypeExpense:
			expense += total
		}
	}
	return income, expense
}

func occurrencesInMonth(template domain.RecurringTemplate, month time.Time) int {
	interval := template.Interval
	if interval < 1 {
		interval = 1
	}
	days := daysInMonth(month.Year(), month.Month())

	switch template.Frequency {
	case domain.FrequencyDaily:
		return days / interval
	case domain.FrequencyWeekly:
		return days / (7 * interval)
	case domain.FrequencyMonthly:
		elapsed := monthsBetween(template.NextRunDate, month)
		if elapsed < 0 || elapsed%interval != 0 {
			return 0
		}
		return 1
	case domain.FrequencyYearly:
		if template.NextRunDate.Month() != month.Month() {
			return 0
		}
		years := month.Year() - template.NextRunDate.Year()
		if years < 0 || years%interval != 0 {
			return 0
		}
		return 1
	}
	return 0
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func buildInsights(projections []Projection, incomeGrowth, expenseGrowth float64) []string {
	insights := []string{}

	negative := 0
	turnsNegative := false
	for _, projection := range projections {
		if projection.ProjectedBalance < 0 {
			negative++
		}
		if projection.CumulativeBalance < 0 {
			turnsNegative = true
		}
	}
	if negative > 0 {
		if negative == 1 {
			insights = append(insights, "1 dos próximos meses deve fechar no vermelho")
		} else {
			insights = append(insights, "Alguns dos próximos meses devem fechar no vermelho")
		}
	}
	if expenseGrowth > incomeGrowth && expenseGrowth > 0 {
		insights = append(insights, "Suas despesas estão crescendo mais rápido que sua renda")
	}
	if turnsNegative {
		insights = append(insights, "Seu saldo acumulado pode ficar negativo no período projetado")
	}
	return insights
}
