package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/infrastructure"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/provider"
)

func newTestConnection() domain.Connection {
	return domain.Connection{
		ID:              "conn-1",
		UserID:          "user-1",
		InstitutionID:   "201",
		InstitutionName: "Banco Azul",
		ProviderItemID:  "item-1",
		Status:          domain.ConnectionStatusActive,
		CreatedAt:       time.Now(),
	}
}

func TestMergeAccount_CreatesThenUpdates(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	gateway := NewMockProviderGateway()
	service := NewMergeService(accounts, infrastructure.NewMockTransactionRepository(), gateway)

	providerAccount := provider.Account{
		ID:           "acc-ext-1",
		Name:         "Conta Corrente",
		Type:         "BANK",
		Subtype:      "CHECKING_ACCOUNT",
		Balance:      1500.50,
		CurrencyCode: "BRL",
	}

	firstID, err := service.MergeAccount(providerAccount, newTestConnection())
	assert.NoError(t, err)
	assert.NotEmpty(t, firstID)
	assert.Equal(t, 1, len(accounts.Accounts))

	providerAccount.Balance = 1800.00
	secondID, err := service.MergeAccount(providerAccount, newTestConnection())
	assert.NoError(t, err)
	assert.Equal(t, firstID, secondID)
	assert.Equal(t, 1, len(accounts.Accounts))
	assert.Equal(t, 1800.00, accounts.Accounts[firstID].Balance)
	assert.Equal(t, domain.AccountTypeChecking, accounts.Accounts[firstID].Type)
	assert.Equal(t, "Banco Azul", accounts.Accounts[firstID].BankName)
}

func TestMergeAccount_CreditCardUsesAvailableLimit(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewMergeService(accounts, infrastructure.NewMockTransactionRepository(), NewMockProviderGateway())

	available := 4200.00
	providerAccount := provider.Account{
		ID:      "acc-ext-2",
		Name:    "Cartão",
		Type:    "CREDIT",
		Subtype: "CREDIT_CARD",
		Balance: 800.00,
		CreditData: &provider.CreditData{
			AvailableCreditLimit: &available,
		},
	}

	id, err := service.MergeAccount(providerAccount, newTestConnection())
	assert.NoError(t, err)
	assert.Equal(t, 4200.00, accounts.Accounts[id].Balance)
	assert.Equal(t, domain.AccountTypeCreditCard, accounts.Accounts[id].Type)
}

func TestMergeAccount_CreditCardWithoutLimitNegatesBalance(t *testing.T) {
	accounts := infrastructure.NewMockAccountRepository()
	service := NewMergeService(accounts, infrastructure.NewMockTransactionRepository(), NewMockProviderGateway())

	providerAccount := provider.Account{
		ID:      "acc-ext-3",
		Name:    "Cartão",
		Type:    "CREDIT",
		Balance: 800.00,
	}

	id, err := service.MergeAccount(providerAccount, newTestConnection())
	assert.NoError(t, err)
	assert.Equal(t, -800.00, accounts.Accounts[id].Balance)
}

func TestMergeTransactions_IdempotentAcrossOverlappingWindows(t *testing.T) {
	transactions := infrastructure.NewMockTransactionRepository()
	gateway := NewMockProviderGateway()
	gateway.TransactionsByAccount["acc-ext-1"] = []provider.Transaction{
		{ID: "tx-1", AccountID: "acc-ext-1", Description: "Mercado", Amount: -120.00, Date: time.Now().AddDate(0, 0, -2)},
		{ID: "tx-2", AccountID: "acc-ext-1", Description: "Salário", Amount: 5000.00, Date: time.Now().AddDate(0, 0, -1)},
	}
	service := NewMergeService(infrastructure.NewMockAccountRepository(), transactions, gateway)

	fromDate := time.Now().AddDate(0, 0, -30)
	count, err := service.MergeTransactions(context.Background(), "acc-ext-1", "local-acc-1", "user-1", fromDate)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = service.MergeTransactions(context.Background(), "acc-ext-1", "local-acc-1", "user-1", fromDate)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 2, len(transactions.Transactions))
}

func TestMergeTransactions_SignDeterminesType(t *testing.T) {
	transactions := infrastructure.NewMockTransactionRepository()
	gateway := NewMockProviderGateway()
	gateway.TransactionsByAccount["acc-ext-1"] = []provider.Transaction{
		{ID: "tx-1", Description: "Compra", Amount: -99.90, Date: time.Now()},
		{ID: "tx-2", Description: "Depósito", Amount: 250.00, Date: time.Now()},
	}
	service := NewMergeService(infrastructure.NewMockAccountRepository(), transactions, gateway)

	_, err := service.MergeTransactions(context.Background(), "acc-ext-1", "local-acc-1", "user-1", time.Now().AddDate(0, 0, -7))
	assert.NoError(t, err)

	byExternal := make(map[string]domain.Transaction)
	for _, transaction := range transactions.Transactions {
		byExternal[*transaction.ExternalID] = *transaction
	}
	assert.Equal(t, domain.TransactionTypeExpense, byExternal["tx-1"].Type)
	assert.Equal(t, 99.90, byExternal["tx-1"].Amount)
	assert.Equal(t, domain.TransactionTypeIncome, byExternal["tx-2"].Type)
	assert.Equal(t, 250.00, byExternal["tx-2"].Amount)
}

func TestMergeTransactions_ProviderFailureWrapped(t *testing.T) {
	gateway := NewMockProviderGateway()
	gateway.FailTransactionsFor["acc-ext-1"] = true
	service := NewMergeService(infrastructure.NewMockAccountRepository(), infrastructure.NewMockTransactionRepository(), gateway)

	_, err := service.MergeTransactions(context.Background(), "acc-ext-1", "local-acc-1", "user-1", time.Now().AddDate(0, 0, -7))
	assert.Error(t, err)
	assert.True(t, bankingErrors.IsProviderError(err))
}

func TestEnrichDescription_PixAndInstallments(t *testing.T) {
	transaction := provider.Transaction{
		Description: "Transferência recebida",
		PaymentData: &provider.PaymentData{PaymentMethod: "PIX"},
	}
	assert.Equal(t, "PIX Transferência recebida", enrichDescription(transaction))

	transaction = provider.Transaction{
		Description:        "Loja de Roupas",
		CreditCardMetadata: &provider.CreditCardMetadata{InstallmentNumber: 2, TotalInstallments: 10},
	}
	assert.Equal(t, "Loja de Roupas (2/10)", enrichDescription(transaction))

	// description already mentions pix, no duplicate prefix
	transaction = provider.Transaction{
		Description: "Pix enviado",
		PaymentData: &provider.PaymentData{PaymentMethod: "PIX"},
	}
	assert.Equal(t, "Pix enviado", enrichDescription(transaction))
}

func TestEnrichDescription_MerchantPrefix(t *testing.T) {
	transaction := provider.Transaction{
		Description: "Compra no débito",
		Merchant:    &provider.Merchant{Name: "Padaria Sol"},
	}
	assert.Equal(t, "Padaria Sol - Compra no débito", enrichDescription(transaction))

	// merchant already part of the description
	transaction = provider.Transaction{
		Description: "Padaria Sol compra",
		Merchant:    &provider.Merchant{Name: "Padaria Sol"},
	}
	assert.Equal(t, "Padaria Sol compra", enrichDescription(transaction))
}

func TestDeriveTags_DedupedAndOrdered(t *testing.T) {
	transaction := provider.Transaction{
		Status:             "POSTED",
		PaymentData:        &provider.PaymentData{PaymentMethod: "PIX"},
		CreditCardMetadata: &provider.CreditCardMetadata{InstallmentNumber: 1, TotalInstallments: 3},
	}
	assert.Equal(t, []string{"pix", "parcelado", "posted"}, deriveTags(transaction))
}

func TestBuildNotes_Truncated(t *testing.T) {
	transaction := provider.Transaction{
		Category: strings.Repeat("x", 600),
		Status:   "POSTED",
	}
	notes := buildNotes(transaction)
	assert.LessOrEqual(t, len(notes), notesMaxLength)
}
