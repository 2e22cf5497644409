package infrastructure

import (
	"database/sql"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

const recurringColumns = `id, user_id, account_id, category_id, amount, type, description, frequency,
        interval_count, start_date, end_date, next_run_date, tags, notes, is_active, created_at`

type RecurringTemplateRepository struct {
	db *sql.DB
}

func NewRecurringTemplateRepository(db *sql.DB) *RecurringTemplateRepository {
	return &RecurringTemplateRepository{db: db}
}

func (r *RecurringTemplateRepository) Save(template domain.RecurringTemplate) error {
	_, err := r.db.Exec(
		`INSERT INTO recurring_templates
        (id, user_id, account_id, category_id, amount, type, description, frequency,
         interval_count, start_date, end_date, next_run_date, tags, notes, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		template.ID, template.UserID, template.AccountID, template.CategoryID,
		template.Amount, template.Type, template.Description, template.Frequency,
		template.Interval, template.StartDate, template.EndDate, template.NextRunDate,
		joinTags(template.Tags), template.Notes, template.IsActive,
	)
	return err
}

func (r *RecurringTemplateRepository) FindByID(templateID string) (*domain.RecurringTemplate, error) {
	row := r.db.QueryRow(
		`SELECT `+recurringColumns+` FROM recurring_templates WHERE id = $1`, templateID)
	return scanTemplate(row)
}

func (r *RecurringTemplateRepository) FindByUser(userID string) ([]domain.RecurringTemplate, error) {
	rows, err := r.db.Query(
		`SELECT `+recurringColumns+` FROM recurring_templates WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func (r *RecurringTemplateRepository) FindActiveByUser(userID string) ([]domain.RecurringTemplate, error) {
	rows, err := r.db.Query(
		`SELECT `+recurringColumns+` FROM recurring_templates
        WHERE user_id = $1 AND is_active ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func (r *RecurringTemplateRepository) FindDue(asOf time.Time) ([]domain.RecurringTemplate, error) {
	rows, err := r.db.Query(
		`SELECT `+recurringColumns+` FROM recurring_templates
        WHERE is_active AND next_run_date <= $1 AND (end_date IS NULL OR end_date >= $1)
        ORDER BY next_run_date`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func (r *RecurringTemplateRepository) UpdateNextRunDate(templateID string, next time.Time) error {
	_, err := r.db.Exec(`UPDATE recurring_templates SET next_run_date = $2 WHERE id = $1`, templateID, next)
	return err
}

func (r *RecurringTemplateRepository) Deactivate(templateID string) error {
	_, err := r.db.Exec(`UPDATE recurring_templates SET is_active = FALSE WHERE id = $1`, templateID)
	return err
}

func scanTemplate(row *sql.Row) (*domain.RecurringTemplate, error) {
	var template domain.RecurringTemplate
	var tags string
	err := row.Scan(&template.ID, &template.UserID, &template.AccountID, &template.CategoryID,
		&template.Amount, &template.Type, &template.Description, &template.Frequency,
		&template.Interval, &template.StartDate, &template.EndDate, &template.NextRunDate,
		&tags, &template.Notes, &template.IsActive, &template.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	template.Tags = splitTags(tags)
	return &template, nil
}

func scanTemplates(rows *sql.Rows) ([]domain.RecurringTemplate, error) {
	var templates []domain.RecurringTemplate
	for rows.Next() {
		var template domain.RecurringTemplate
		var tags string
		if err := rows.Scan(&template.ID, &template.UserID, &template.AccountID, &template.CategoryID,
			&template.Amount, &template.Type, &template.Description, &template.Frequency,
			&template.Interval, &template.StartDate, &template.EndDate, &template.NextRunDate,
			&tags, &template.Notes, &template.IsActive, &template.CreatedAt); err != nil {
			return nil, err
		}
		template.Tags = splitTags(tags)
		templates = append(templates, template)
	}
	return templates, rows.Err()
}
