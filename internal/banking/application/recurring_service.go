package application

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type ProcessResult struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// RecurringService materializes due templates into concrete transactions and
// advances their next run date. One failing template never blocks the batch.
type RecurringService struct {
	templates    domain.RecurringTemplateRepository
	transactions domain.TransactionRepository
	categories   domain.CategoryRepository
}

func NewRecurringService(templates domain.RecurringTemplateRepository, transactions domain.TransactionRepository, categories domain.CategoryRepository) *RecurringService {
	return &RecurringService{templates: templates, transactions: transactions, categories: categories}
}

// ProcessDue runs one scheduler pass: every active template due on or before
// asOf spawns a transaction dated at its next run date, then gets its next
// run date advanced by frequency × interval.
func (s *RecurringService) ProcessDue(asOf time.Time) (ProcessResult, error) {
	due, err := s.templates.FindDue(asOf)
	if err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{Total: len(due)}
	for _, template := range due {
		if err := s.materialize(template); err != nil {
			log.Printf("recurring: template %s: %v", template.ID, err)
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *RecurringService) materialize(template domain.RecurringTemplate) error {
	occurrence := domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      template.UserID,
		AccountID:   template.AccountID,
		CategoryID:  template.CategoryID,
		Amount:      template.Amount,
		Type:        template.Type,
		Description: template.Description,
		Date:        template.NextRunDate,
		Tags:        template.Tags,
		Notes:       template.Notes,
		IsRecurring: true,
		TemplateID:  &template.ID,
	}
	// a concurrent pass that already materialized this run date is a no-op
	// thanks to the (template_id, date) uniqueness; we still advance.
	if _, err := s.transactions.InsertIfAbsent(occurrence); err != nil {
		return err
	}

	next := NextRunDate(template.NextRunDate, template.Frequency, template.Interval)
	return s.templates.UpdateNextRunDate(template.ID, next)
}

// NextRunDate advances a run date by frequency × interval. Monthly and yearly
// steps are calendar aware: the day of month clamps to the last day of the
// target month (Jan 31 + 1 month = Feb 29 in a leap year).
func NextRunDate(current time.Time, frequency string, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}
	switch frequency {
	case domain.FrequencyDaily:
		return current.AddDate(0, 0, interval)
	case domain.FrequencyWeekly:
		return current.AddDate(0, 0, 7*interval)
	case domain.FrequencyMonthly:
		return addMonthsClamped(current, interval)
	case domain.FrequencyYearly:
		return addMonthsClamped(current, 12*interval)
	}
	return current.AddDate(0, 0, interval)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CreateTemplate validates and stores a user-defined template. The first run
// happens on the start date.
func (s *RecurringService) CreateTemplate(template *domain.RecurringTemplate) error {
	template.ID = uuid.NewString()
	if template.Interval == 0 {
		template.Interval = 1
	}
	template.NextRunDate = template.StartDate
	template.IsActive = true
	if err := template.Validate(); err != nil {
		return err
	}
	if template.CategoryID != nil {
		exists, err := s.categories.DoesCategoryExistByID(*template.CategoryID, template.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return bankingErrors.ErrInvalidCategory
		}
	}
	return s.templates.Save(*template)
}

func (s *RecurringService) ListTemplates(userID string) ([]domain.RecurringTemplate, error) {
	templates, err := s.templates.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		return []domain.RecurringTemplate{}, nil
	}
	return templates, nil
}

// DeactivateTemplate stops future materialization. Templates are never
// deleted automatically; already-spawned transactions stay untouched.
func (s *RecurringService) DeactivateTemplate(templateID, userID string) error {
	template, err := s.templates.FindByID(templateID)
	if err != nil {
		return err
	}
	if template == nil || template.UserID != userID {
		return bankingErrors.NewNotFoundError("Recurring template not found")
	}
	return s.templates.Deactivate(templateID)
}
