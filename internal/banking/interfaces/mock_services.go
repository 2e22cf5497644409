package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/application"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

type MockWebhookService struct {
	events     []application.Event
	shouldFail bool
}

func (m *MockWebhookService) HandleEvent(_ context.Context, event application.Event) error {
	if m.shouldFail {
		return errors.New("service error")
	}
	m.events = append(m.events, event)
	return nil
}

type MockConnectionService struct {
	connection  *domain.Connection
	connections []domain.Connection
	syncResult  application.SyncResult
	err         error

	disconnected []string
	synced       []string
}

func (m *MockConnectionService) Connect(_ context.Context, userID, institutionID, institutionName, providerItemID string) (*domain.Connection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.connection, nil
}

func (m *MockConnectionService) Sync(_ context.Context, userID, connectionID string, windowDays int, force bool) (application.SyncResult, error) {
	if m.err != nil {
		return application.SyncResult{}, m.err
	}
	m.synced = append(m.synced, connectionID)
	return m.syncResult, nil
}

func (m *MockConnectionService) Disconnect(userID, connectionID string) error {
	if m.err != nil {
		return m.err
	}
	m.disconnected = append(m.disconnected, connectionID)
	return nil
}

func (m *MockConnectionService) List(userID string) ([]domain.Connection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.connections, nil
}

type MockSyncAllService struct {
	result application.SyncAllResult
	err    error
	calls  int
}

func (m *MockSyncAllService) SyncAll(_ context.Context, limit int) (application.SyncAllResult, error) {
	m.calls++
	if m.err != nil {
		return application.SyncAllResult{}, m.err
	}
	return m.result, nil
}

type MockRecurringProcessor struct {
	result application.ProcessResult
	err    error
	calls  int
}

func (m *MockRecurringProcessor) ProcessDue(_ time.Time) (application.ProcessResult, error) {
	m.calls++
	if m.err != nil {
		return application.ProcessResult{}, m.err
	}
	return m.result, nil
}

type MockForecastService struct {
	forecast *application.Forecast
	err      error
	months   int
}

func (m *MockForecastService) GetForecast(userID string, months int) (*application.Forecast, error) {
	m.months = months
	if m.err != nil {
		return nil, m.err
	}
	return m.forecast, nil
}

type MockTransactionService struct {
	transactions []domain.Transaction
	err          error
}

func (m *MockTransactionService) GetUserTransactions(userID, transactionType string, startDate, endDate time.Time, limit, page int) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.transactions, nil
}

type MockCategorizerService struct {
	transaction *domain.Transaction
	categorized int
	err         error
}

func (m *MockCategorizerService) CategorizeTransaction(transactionID, userID string) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.transaction, nil
}

func (m *MockCategorizerService) CategorizePending(userID string, limit int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.categorized, nil
}

type MockCategoryService struct {
	categories []domain.Category
	err        error
}

func (m *MockCategoryService) CreateCategory(category *domain.Category) error {
	return m.err
}

func (m *MockCategoryService) GetUserCategories(userID string) ([]domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

type MockRecurringService struct {
	templates   []domain.RecurringTemplate
	err         error
	deactivated []string
}

func (m *MockRecurringService) CreateTemplate(template *domain.RecurringTemplate) error {
	return m.err
}

func (m *MockRecurringService) ListTemplates(userID string) ([]domain.RecurringTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.templates, nil
}

func (m *MockRecurringService) DeactivateTemplate(templateID, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.deactivated = append(m.deactivated, templateID)
	return nil
}
