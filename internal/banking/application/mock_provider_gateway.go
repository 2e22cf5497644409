package application

import (
	"context"
	"errors"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/provider"
)

// MockProviderGateway serves fixture data keyed by item/account id. Setting a
// Fail* flag makes the matching call return an error, for exercising the
// partial-failure paths.
type MockProviderGateway struct {
	AccountsByItem        map[string][]provider.Account
	TransactionsByAccount map[string][]provider.Transaction
	Institutions          []provider.Institution

	FailAuthenticate     bool
	FailListAccounts     bool
	FailTransactionsFor  map[string]bool
	ListAccountsCalls    int
	ListTransactionCalls int
}

func NewMockProviderGateway() *MockProviderGateway {
	return &MockProviderGateway{
		AccountsByItem:        make(map[string][]provider.Account),
		TransactionsByAccount: make(map[string][]provider.Transaction),
		FailTransactionsFor:   make(map[string]bool),
	}
}

func (m *MockProviderGateway) Authenticate(_ context.Context) (string, error) {
	if m.FailAuthenticate {
		return "", errors.New("mock: authentication failed")
	}
	return "mock-api-key", nil
}

func (m *MockProviderGateway) ListAccounts(_ context.Context, itemID string) ([]provider.Account, error) {
	m.ListAccountsCalls++
	if m.FailListAccounts {
		return nil, errors.New("mock: provider unavailable")
	}
	return m.AccountsByItem[itemID], nil
}

func (m *MockProviderGateway) ListTransactions(_ context.Context, accountID string, from, to time.Time) ([]provider.Transaction, error) {
	m.ListTransactionCalls++
	if m.FailTransactionsFor[accountID] {
		return nil, errors.New("mock: provider unavailable")
	}
	var inWindow []provider.Transaction
	for _, transaction := range m.TransactionsByAccount[accountID] {
		if transaction.Date.Before(from) || transaction.Date.After(to) {
			continue
		}
		inWindow = append(inWindow, transaction)
	}
	return inWindow, nil
}

func (m *MockProviderGateway) ListInstitutions(_ context.Context) ([]provider.Institution, error) {
	return m.Institutions, nil
}
