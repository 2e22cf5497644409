package infrastructure

import (
	"errors"
	"sort"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

// In-memory repository doubles for service tests. They honor the same
// contracts as the SQL implementations, including the idempotency keys, and
// expose a FailWith error hook to exercise error paths.

type MockConnectionRepository struct {
	Connections map[string]*domain.Connection
	FailWith    error
}

func NewMockConnectionRepository() *MockConnectionRepository {
	return &MockConnectionRepository{Connections: make(map[string]*domain.Connection)}
}

func (m *MockConnectionRepository) Save(connection domain.Connection) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	for _, existing := range m.Connections {
		if existing.ProviderItemID == connection.ProviderItemID {
			return errors.New("duplicate provider item id")
		}
	}
	stored := connection
	m.Connections[connection.ID] = &stored
	return nil
}

func (m *MockConnectionRepository) FindByID(connectionID string) (*domain.Connection, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	connection, ok := m.Connections[connectionID]
	if !ok {
		return nil, nil
	}
	copied := *connection
	return &copied, nil
}

func (m *MockConnectionRepository) FindByProviderItemID(itemID string) (*domain.Connection, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, connection := range m.Connections {
		if connection.ProviderItemID == itemID {
			copied := *connection
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockConnectionRepository) FindByUser(userID string) ([]domain.Connection, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var connections []domain.Connection
	for _, connection := range m.Connections {
		if connection.UserID == userID {
			connections = append(connections, *connection)
		}
	}
	sort.Slice(connections, func(i, j int) bool { return connections[i].CreatedAt.Before(connections[j].CreatedAt) })
	return connections, nil
}

func (m *MockConnectionRepository) FindActiveOrderedByStaleness(limit int) ([]domain.Connection, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var connections []domain.Connection
	for _, connection := range m.Connections {
		if connection.Status == domain.ConnectionStatusActive {
			connections = append(connections, *connection)
		}
	}
	sort.Slice(connections, func(i, j int) bool {
		a, b := connections[i].LastSyncAt, connections[j].LastSyncAt
		if a == nil {
			return true
		}
		if b == nil {
			return false
		}
		return a.Before(*b)
	})
	if len(connections) > limit {
		connections = connections[:limit]
	}
	return connections, nil
}

func (m *MockConnectionRepository) UpdateStatus(connectionID, status string, errorMessage *string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	connection, ok := m.Connections[connectionID]
	if !ok {
		return errors.New("connection not found")
	}
	connection.Status = status
	connection.ErrorMessage = errorMessage
	return nil
}

func (m *MockConnectionRepository) UpdateLastSync(connectionID string, syncedAt time.Time) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	connection, ok := m.Connections[connectionID]
	if !ok {
		return errors.New("connection not found")
	}
	connection.LastSyncAt = &syncedAt
	return nil
}

func (m *MockConnectionRepository) Delete(connectionID string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	delete(m.Connections, connectionID)
	return nil
}

type MockAccountRepository struct {
	Accounts map[string]*domain.Account
	FailWith error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{Accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Upsert(account domain.Account) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	if account.ExternalID != nil {
		for _, existing := range m.Accounts {
			if existing.UserID == account.UserID && existing.ExternalID != nil && *existing.ExternalID == *account.ExternalID {
				existing.Name = account.Name
				existing.Type = account.Type
				existing.Balance = account.Balance
				existing.Currency = account.Currency
				existing.BankName = account.BankName
				existing.IsActive = true
				existing.LastSyncAt = account.LastSyncAt
				return existing.ID, nil
			}
		}
	}
	stored := account
	m.Accounts[account.ID] = &stored
	return account.ID, nil
}

func (m *MockAccountRepository) FindByUser(userID string) ([]domain.Account, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var accounts []domain.Account
	for _, account := range m.Accounts {
		if account.UserID == userID {
			accounts = append(accounts, *account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockAccountRepository) DeactivateByBank(userID, bankName string) (int, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	deactivated := 0
	for _, account := range m.Accounts {
		if account.UserID == userID && account.BankName == bankName && account.ExternalID != nil && account.IsActive {
			account.IsActive = false
			deactivated++
		}
	}
	return deactivated, nil
}

func (m *MockAccountRepository) TotalBalance(userID string) (float64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	var total float64
	for _, account := range m.Accounts {
		if account.UserID == userID && account.IsActive {
			total += account.Balance
		}
	}
	return total, nil
}

type MockTransactionRepository struct {
	Transactions map[string]*domain.Transaction
	FailWith     error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: make(map[string]*domain.Transaction)}
}

func (m *MockTransactionRepository) InsertIfAbsent(transaction domain.Transaction) (bool, error) {
	if m.FailWith != nil {
		return false, m.FailWith
	}
	for _, existing := range m.Transactions {
		if transaction.ExternalID != nil && existing.ExternalID != nil && *existing.ExternalID == *transaction.ExternalID {
			return false, nil
		}
		if transaction.TemplateID != nil && existing.TemplateID != nil &&
			*existing.TemplateID == *transaction.TemplateID && existing.Date.Equal(transaction.Date) {
			return false, nil
		}
	}
	stored := transaction
	m.Transactions[transaction.ID] = &stored
	return true, nil
}

func (m *MockTransactionRepository) FindByID(transactionID string) (*domain.Transaction, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	transaction, ok := m.Transactions[transactionID]
	if !ok {
		return nil, nil
	}
	copied := *transaction
	return &copied, nil
}

func (m *MockTransactionRepository) FindByUser(userID, transactionType string, startDate, endDate time.Time, limit, page int) ([]domain.Transaction, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var transactions []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if transactionType != "" && transaction.Type != transactionType {
			continue
		}
		if transaction.Date.Before(startDate) || transaction.Date.After(endDate) {
			continue
		}
		transactions = append(transactions, *transaction)
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].Date.After(transactions[j].Date) })
	return transactions, nil
}

func (m *MockTransactionRepository) FindUncategorized(userID string, limit int) ([]domain.Transaction, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var transactions []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID && transaction.CategoryID == nil {
			transactions = append(transactions, *transaction)
		}
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	if len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

func (m *MockTransactionRepository) FindCategorizedByType(userID, transactionType string, limit int) ([]domain.Transaction, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var transactions []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID && transaction.Type == transactionType && transaction.CategoryID != nil {
			transactions = append(transactions, *transaction)
		}
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	if len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

func (m *MockTransactionRepository) UpdateCategory(transactionID string, categoryID *string, autoCategorized bool, confidence *float64) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	transaction, ok := m.Transactions[transactionID]
	if !ok {
		return errors.New("transaction not found")
	}
	transaction.CategoryID = categoryID
	transaction.AutoCategorized = autoCategorized
	transaction.ConfidenceScore = confidence
	return nil
}

func (m *MockTransactionRepository) GetMonthlyTotals(userID string, startMonth, endMonth time.Time) ([]domain.MonthlyTotal, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	byMonth := make(map[time.Time]*domain.MonthlyTotal)
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID || transaction.Date.Before(startMonth) || !transaction.Date.Before(endMonth) {
			continue
		}
		month := time.Date(transaction.Date.Year(), transaction.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		total, ok := byMonth[month]
		if !ok {
			total = &domain.MonthlyTotal{Month: month}
			byMonth[month] = total
		}
		switch transaction.Type {
		case domain.TransactionTypeIncome:
			total.Income += transaction.Amount
		case domain.TransactionTypeExpense:
			total.Expense += transaction.Amount
		}
	}
	var totals []domain.MonthlyTotal
	for _, total := range byMonth {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month.Before(totals[j].Month) })
	return totals, nil
}

type MockRecurringTemplateRepository struct {
	Templates map[string]*domain.RecurringTemplate
	FailWith  error
}

func NewMockRecurringTemplateRepository() *MockRecurringTemplateRepository {
	return &MockRecurringTemplateRepository{Templates: make(map[string]*domain.RecurringTemplate)}
}

func (m *MockRecurringTemplateRepository) Save(template domain.RecurringTemplate) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	stored := template
	m.Templates[template.ID] = &stored
	return nil
}

func (m *MockRecurringTemplateRepository) FindByID(templateID string) (*domain.RecurringTemplate, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	template, ok := m.Templates[templateID]
	if !ok {
		return nil, nil
	}
	copied := *template
	return &copied, nil
}

func (m *MockRecurringTemplateRepository) FindByUser(userID string) ([]domain.RecurringTemplate, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var templates []domain.RecurringTemplate
	for _, template := range m.Templates {
		if template.UserID == userID {
			templates = append(templates, *template)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (m *MockRecurringTemplateRepository) FindActiveByUser(userID string) ([]domain.RecurringTemplate, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var templates []domain.RecurringTemplate
	for _, template := range m.Templates {
		if template.UserID == userID && template.IsActive {
			templates = append(templates, *template)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (m *MockRecurringTemplateRepository) FindDue(asOf time.Time) ([]domain.RecurringTemplate, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var templates []domain.RecurringTemplate
	for _, template := range m.Templates {
		if !template.IsActive || template.NextRunDate.After(asOf) {
			continue
		}
		if template.EndDate != nil && template.EndDate.Before(asOf) {
			continue
		}
		templates = append(templates, *template)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].NextRunDate.Before(templates[j].NextRunDate) })
	return templates, nil
}

func (m *MockRecurringTemplateRepository) UpdateNextRunDate(templateID string, next time.Time) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	template, ok := m.Templates[templateID]
	if !ok {
		return errors.New("template not found")
	}
	template.NextRunDate = next
	return nil
}

func (m *MockRecurringTemplateRepository) Deactivate(templateID string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	template, ok := m.Templates[templateID]
	if !ok {
		return errors.New("template not found")
	}
	template.IsActive = false
	return nil
}

type MockCategoryRepository struct {
	Categories map[string]*domain.Category
	FailWith   error
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[string]*domain.Category)}
}

func (m *MockCategoryRepository) Save(category domain.Category) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	stored := category
	m.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) FindByUser(userID string) ([]domain.Category, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var categories []domain.Category
	for _, category := range m.Categories {
		if category.UserID == userID {
			categories = append(categories, *category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MockCategoryRepository) FindByNameAndType(userID, name, categoryType string) (*domain.Category, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, category := range m.Categories {
		if category.UserID == userID && category.Name == name && category.Type == categoryType {
			copied := *category
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) DoesCategoryExistByID(categoryID, userID string) (bool, error) {
	if m.FailWith != nil {
		return false, m.FailWith
	}
	category, ok := m.Categories[categoryID]
	return ok && category.UserID == userID, nil
}
