package domain

import "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"

type Category struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Type   string `json:"type"` // "income" or "expense"
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.NewValidationError("Name is required")
	}
	if c.Type != TransactionTypeIncome && c.Type != TransactionTypeExpense {
		return errors.NewValidationError("Type must be 'income' or 'expense'")
	}
	return nil
}

type CategoryRepository interface {
	Save(category Category) error
	FindByUser(userID string) ([]Category, error)
	FindByNameAndType(userID, name, categoryType string) (*Category, error)
	DoesCategoryExistByID(categoryID, userID string) (bool, error)
}
