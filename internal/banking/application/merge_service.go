package application

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/provider"
)

const notesMaxLength = 500

// ProviderGateway is the slice of the aggregator client the sync pipeline
// depends on.
type ProviderGateway interface {
	Authenticate(ctx context.Context) (string, error)
	ListAccounts(ctx context.Context, itemID string) ([]provider.Account, error)
	ListTransactions(ctx context.Context, accountID string, from, to time.Time) ([]provider.Transaction, error)
	ListInstitutions(ctx context.Context) ([]provider.Institution, error)
}

// MergeService reconciles provider accounts and transactions into the local
// ledger. All writes are idempotent: accounts upsert on (user, external id)
// and transactions insert-if-absent on external id.
type MergeService struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	provider     ProviderGateway
}

func NewMergeService(accounts domain.AccountRepository, transactions domain.TransactionRepository, providerGateway ProviderGateway) *MergeService {
	return &MergeService{accounts: accounts, transactions: transactions, provider: providerGateway}
}

// MergeAccount upserts the local account matching the provider account and
// returns its local id.
func (s *MergeService) MergeAccount(providerAccount provider.Account, connection domain.Connection) (string, error) {
	now := time.Now()
	currency := providerAccount.CurrencyCode
	if currency == "" {
		currency = "BRL"
	}
	externalID := providerAccount.ID
	account := domain.Account{
		ID:         uuid.NewString(),
		UserID:     connection.UserID,
		Name:       providerAccount.Name,
		Type:       mapAccountType(providerAccount),
		Balance:    normalizeBalance(providerAccount),
		Currency:   currency,
		BankName:   connection.InstitutionName,
		ExternalID: &externalID,
		IsActive:   true,
		LastSyncAt: &now,
	}
	return s.accounts.Upsert(account)
}

// MergeTransactions pulls provider transactions from fromDate to now and
// inserts the ones not seen before. Returns how many rows were inserted;
// duplicates from overlapping windows are silently skipped.
func (s *MergeService) MergeTransactions(ctx context.Context, providerAccountID, localAccountID, userID string, fromDate time.Time) (int, error) {
	providerTransactions, err := s.provider.ListTransactions(ctx, providerAccountID, fromDate, time.Now())
	if err != nil {
		return 0, bankingErrors.NewProviderError("could not list provider transactions", err)
	}

	count := 0
	for _, providerTransaction := range providerTransactions {
		transaction := buildLocalTransaction(providerTransaction, userID, localAccountID)
		inserted, err := s.transactions.InsertIfAbsent(transaction)
		if err != nil {
			log.Printf("merge: inserting transaction %s for account %s: %v", providerTransaction.ID, localAccountID, err)
			continue
		}
		if inserted {
			count++
		}
	}
	return count, nil
}

// mapAccountType maps the provider's account subtype onto the local taxonomy.
func mapAccountType(providerAccount provider.Account) string {
	switch strings.ToUpper(providerAccount.Subtype) {
	case "CHECKING_ACCOUNT":
		return domain.AccountTypeChecking
	case "SAVINGS_ACCOUNT":
		return domain.AccountTypeSavings
	case "CREDIT_CARD":
		return domain.AccountTypeCreditCard
	case "INVESTMENT", "INVESTMENT_ACCOUNT":
		return domain.AccountTypeInvestment
	}
	if strings.EqualFold(providerAccount.Type, "CREDIT") {
		return domain.AccountTypeCreditCard
	}
	return domain.AccountTypeOther
}

// normalizeBalance keeps the observed provider convention for credit accounts:
// the available credit limit when the provider reports one, otherwise the raw
// balance negated (a credit balance is a liability).
func normalizeBalance(providerAccount provider.Account) float64 {
	if mapAccountType(providerAccount) != domain.AccountTypeCreditCard {
		return providerAccount.Balance
	}
	if providerAccount.CreditData != nil && providerAccount.CreditData.AvailableCreditLimit != nil {
		return *providerAccount.CreditData.AvailableCreditLimit
	}
	return -providerAccount.Balance
}

func buildLocalTransaction(providerTransaction provider.Transaction, userID, localAccountID string) domain.Transaction {
	transactionType := domain.TransactionTypeIncome
	if providerTransaction.Amount < 0 {
		transactionType = domain.TransactionTypeExpense
	}

	externalID := providerTransaction.ID
	return domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   localAccountID,
		Amount:      math.Abs(providerTransaction.Amount),
		Type:        transactionType,
		Description: enrichDescription(providerTransaction),
		Date:        providerTransaction.Date,
		ExternalID:  &externalID,
		Tags:        deriveTags(providerTransaction),
		Notes:       buildNotes(providerTransaction),
	}
}

func enrichDescription(providerTransaction provider.Transaction) string {
	description := strings.TrimSpace(providerTransaction.Description)

	if isPix(providerTransaction) && !strings.Contains(strings.ToLower(description), "pix") {
		description = "PIX " + description
	}

	if meta := providerTransaction.CreditCardMetadata; meta != nil && meta.TotalInstallments > 1 {
		description = fmt.Sprintf("%s (%d/%d)", description, meta.InstallmentNumber, meta.TotalInstallments)
	}

	if merchant := merchantName(providerTransaction); merchant != "" &&
		!strings.Contains(strings.ToLower(description), strings.ToLower(merchant)) {
		description = merchant + " - " + description
	}

	return description
}

func deriveTags(providerTransaction provider.Transaction) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	if providerTransaction.PaymentData != nil {
		add(providerTransaction.PaymentData.PaymentMethod)
	}
	if isPix(providerTransaction) {
		add("pix")
	}
	if meta := providerTransaction.CreditCardMetadata; meta != nil && meta.TotalInstallments > 1 {
		add("parcelado")
	}
	add(providerTransaction.Status)
	return tags
}

func buildNotes(providerTransaction provider.Transaction) string {
	var parts []string
	if data := providerTransaction.PaymentData; data != nil {
		if data.PaymentMethod != "" {
			parts = append(parts, "Método: "+data.PaymentMethod)
		}
		if data.ReferenceNumber != "" {
			parts = append(parts, "Ref: "+data.ReferenceNumber)
		}
	}
	if meta := providerTransaction.CreditCardMetadata; meta != nil && meta.TotalInstallments > 1 {
		parts = append(parts, fmt.Sprintf("Parcela %d/%d", meta.InstallmentNumber, meta.TotalInstallments))
	}
	if providerTransaction.Category != "" {
		parts = append(parts, "Categoria banco: "+providerTransaction.Category)
	}
	if providerTransaction.Status != "" {
		parts = append(parts, "Status: "+providerTransaction.Status)
	}

	notes := strings.Join(parts, " | ")
	if len(notes) > notesMaxLength {
		notes = notes[:notesMaxLength]
	}
	return notes
}

func isPix(providerTransaction provider.Transaction) bool {
	return providerTransaction.PaymentData != nil &&
		strings.EqualFold(providerTransaction.PaymentData.PaymentMethod, "PIX")
}

func merchantName(providerTransaction provider.Transaction) string {
	if providerTransaction.Merchant == nil {
		return ""
	}
	if providerTransaction.Merchant.Name != "" {
		return providerTransaction.Merchant.Name
	}
	return providerTransaction.Merchant.BusinessName
}
