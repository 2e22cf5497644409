package infrastructure

import (
	"database/sql"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert keys provider-linked accounts on (user_id, external_id). A repeated
// sync refreshes the mutable fields and reactivates the account instead of
// creating a duplicate.
func (r *AccountRepository) Upsert(account domain.Account) (string, error) {
	var id string
	err := r.db.QueryRow(
		`INSERT INTO accounts
        (id, user_id, name, type, balance, currency, bank_name, external_id, is_active, last_sync_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (user_id, external_id) WHERE external_id IS NOT NULL DO UPDATE SET
            name = EXCLUDED.name,
            type = EXCLUDED.type,
            balance = EXCLUDED.balance,
            currency = EXCLUDED.currency,
            bank_name = EXCLUDED.bank_name,
            is_active = TRUE,
            last_sync_at = EXCLUDED.last_sync_at
        RETURNING id`,
		account.ID, account.UserID, account.Name, account.Type, account.Balance,
		account.Currency, account.BankName, account.ExternalID, account.IsActive, account.LastSyncAt,
	).Scan(&id)
	return id, err
}

func (r *AccountRepository) FindByUser(userID string) ([]domain.Account, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, name, type, balance, currency, bank_name, external_id, is_active, last_sync_at, created_at
        FROM accounts WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.Type, &account.Balance,
			&account.Currency, &account.BankName, &account.ExternalID, &account.IsActive,
			&account.LastSyncAt, &account.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) DeactivateByBank(userID, bankName string) (int, error) {
	result, err := r.db.Exec(
		`UPDATE accounts SET is_active = FALSE
        WHERE user_id = $1 AND bank_name = $2 AND external_id IS NOT NULL AND is_active`,
		userID, bankName,
	)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *AccountRepository) TotalBalance(userID string) (float64, error) {
	var total float64
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE user_id = $1 AND is_active`, userID,
	).Scan(&total)
	return total, err
}
