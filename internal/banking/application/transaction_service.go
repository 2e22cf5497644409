package application

import (
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type TransactionService struct {
	transactions domain.TransactionRepository
}

func NewTransactionService(transactions domain.TransactionRepository) *TransactionService {
	return &TransactionService{transactions: transactions}
}

func (s *TransactionService) GetUserTransactions(userID, transactionType string, startDate, endDate time.Time, limit, page int) ([]domain.Transaction, error) {
	if transactionType != "" && !domain.IsValidTransactionType(transactionType) {
		return nil, bankingErrors.NewValidationError("Type must be 'income', 'expense' or 'transfer'")
	}
	transactions, err := s.transactions.FindByUser(userID, transactionType, startDate, endDate, limit, page)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}
