package infrastructure

import (
	"database/sql"
	"strings"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

const transactionColumns = `id, user_id, account_id, category_id, amount, type, description, date,
        external_id, tags, notes, auto_categorized, confidence_score, is_recurring, template_id, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// InsertIfAbsent relies on the partial unique indexes over external_id and
// (template_id, date): a conflicting insert affects zero rows and is reported
// as not inserted, never as an error.
func (r *TransactionRepository) InsertIfAbsent(transaction domain.Transaction) (bool, error) {
	result, err := r.db.Exec(
		`INSERT INTO transactions
        (id, user_id, account_id, category_id, amount, type, description, date,
         external_id, tags, notes, auto_categorized, confidence_score, is_recurring, template_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT DO NOTHING`,
		transaction.ID, transaction.UserID, transaction.AccountID, transaction.CategoryID,
		transaction.Amount, transaction.Type, transaction.Description, transaction.Date,
		transaction.ExternalID, joinTags(transaction.Tags), transaction.Notes,
		transaction.AutoCategorized, transaction.ConfidenceScore, transaction.IsRecurring, transaction.TemplateID,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *TransactionRepository) FindByID(transactionID string) (*domain.Transaction, error) {
	row := r.db.QueryRow(
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, transactionID)
	return scanTransaction(row)
}

func (r *TransactionRepository) FindByUser(userID, transactionType string, startDate, endDate time.Time, limit, page int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `SELECT ` + transactionColumns + ` FROM transactions
        WHERE user_id = $1 AND date >= $2 AND date <= $3`
	args := []interface{}{userID, startDate, endDate}
	if transactionType != "" {
		query += ` AND type = $4`
		args = append(args, transactionType)
	}
	query += ` ORDER BY date DESC, created_at DESC`
	args = append(args, limit, offset)
	if transactionType != "" {
		query += ` LIMIT $5 OFFSET $6`
	} else {
		query += ` LIMIT $4 OFFSET $5`
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *TransactionRepository) FindUncategorized(userID string, limit int) ([]domain.Transaction, error) {
	rows, err := r.db.Query(
		`SELECT `+transactionColumns+` FROM transactions
        WHERE user_id = $1 AND category_id IS NULL
        ORDER BY date DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *TransactionRepository) FindCategorizedByType(userID, transactionType string, limit int) ([]domain.Transaction, error) {
	rows, err := r.db.Query(
		`SELECT `+transactionColumns+` FROM transactions
        WHERE user_id = $1 AND type = $2 AND category_id IS NOT NULL
        ORDER BY date DESC LIMIT $3`, userID, transactionType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *TransactionRepository) UpdateCategory(transactionID string, categoryID *string, autoCategorized bool, confidence *float64) error {
	_, err := r.db.Exec(
		`UPDATE transactions SET category_id = $2, auto_categorized = $3, confidence_score = $4 WHERE id = $1`,
		transactionID, categoryID, autoCategorized, confidence,
	)
	return err
}

// GetMonthlyTotals aggregates income and expense per calendar month over
// [startMonth, endMonth). Months with no transactions are absent from the
// result.
func (r *TransactionRepository) GetMonthlyTotals(userID string, startMonth, endMonth time.Time) ([]domain.MonthlyTotal, error) {
	rows, err := r.db.Query(
		`SELECT date_trunc('month', date)::date AS month,
            COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0) AS income,
            COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0) AS expense
        FROM transactions
        WHERE user_id = $1 AND date >= $2 AND date < $3
        GROUP BY 1 ORDER BY 1`, userID, startMonth, endMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.MonthlyTotal
	for rows.Next() {
		var total domain.MonthlyTotal
		if err := rows.Scan(&total.Month, &total.Income, &total.Expense); err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

func scanTransaction(row *sql.Row) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var tags string
	err := row.Scan(&transaction.ID, &transaction.UserID, &transaction.AccountID, &transaction.CategoryID,
		&transaction.Amount, &transaction.Type, &transaction.Description, &transaction.Date,
		&transaction.ExternalID, &tags, &transaction.Notes, &transaction.AutoCategorized,
		&transaction.ConfidenceScore, &transaction.IsRecurring, &transaction.TemplateID, &transaction.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	transaction.Tags = splitTags(tags)
	return &transaction, nil
}

func scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		var tags string
		if err := rows.Scan(&transaction.ID, &transaction.UserID, &transaction.AccountID, &transaction.CategoryID,
			&transaction.Amount, &transaction.Type, &transaction.Description, &transaction.Date,
			&transaction.ExternalID, &tags, &transaction.Notes, &transaction.AutoCategorized,
			&transaction.ConfidenceScore, &transaction.IsRecurring, &transaction.TemplateID, &transaction.CreatedAt); err != nil {
			return nil, err
		}
		transaction.Tags = splitTags(tags)
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	return strings.Split(tags, ",")
}
