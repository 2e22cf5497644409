package application

import (
	"log"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

const (
	// a suggestion below this never touches the transaction
	acceptanceThreshold = 0.7
	// minimum normalized string similarity for the history fallback
	similarityThreshold = 0.8
	historyConfidence   = 0.75
	historyLimit        = 500
)

// CategorizationRule maps description keywords to a category name. Rules are
// in-process configuration, not persisted; a rule only fires when the user
// actually owns a category with that name and type.
type CategorizationRule struct {
	Keywords     []string
	CategoryName string
	Type         string
	Confidence   float64
}

// Keywords are matched against the normalized (lowercased, diacritics
// stripped) description, so they are written without accents.
var categorizationRules = []CategorizationRule{
	{Keywords: []string{"ifood", "restaurante", "lanchonete", "padaria", "supermercado", "mercado", "acougue", "hortifruti"}, CategoryName: "Alimentação", Type: domain.TransactionTypeExpense, Confidence: 0.9},
	{Keywords: []string{"uber", "99app", "taxi", "posto", "combustivel", "gasolina", "estacionamento", "pedagio", "metro", "onibus"}, CategoryName: "Transporte", Type: domain.TransactionTypeExpense, Confidence: 0.85},
	{Keywords: []string{"aluguel", "condominio", "energia", "luz", "agua", "gas", "internet", "iptu"}, CategoryName: "Moradia", Type: domain.TransactionTypeExpense, Confidence: 0.9},
	{Keywords: []string{"netflix", "spotify", "disney", "cinema", "ingresso", "steam", "playstation"}, CategoryName: "Entretenimento", Type: domain.TransactionTypeExpense, Confidence: 0.85},
	{Keywords: []string{"farmacia", "drogaria", "hospital", "clinica", "laboratorio", "plano de saude", "dentista"}, CategoryName: "Saúde", Type: domain.TransactionTypeExpense, Confidence: 0.85},
	{Keywords: []string{"faculdade", "universidade", "escola", "curso", "livraria", "mensalidade"}, CategoryName: "Educação", Type: domain.TransactionTypeExpense, Confidence: 0.85},
	{Keywords: []string{"shopping", "magazine", "americanas", "amazon", "mercado livre", "shopee"}, CategoryName: "Compras", Type: domain.TransactionTypeExpense, Confidence: 0.8},
	{Keywords: []string{"salario", "folha de pagamento", "pro-labore", "rendimento", "dividendos", "honorarios"}, CategoryName: "Salário", Type: domain.TransactionTypeIncome, Confidence: 0.9},
}

type CategorizationResult struct {
	CategoryID *string `json:"category_id"`
	Confidence float64 `json:"confidence"`
}

// CategorizerService assigns categories to transactions: keyword rules first,
// then similarity against the user's own categorized history.
type CategorizerService struct {
	transactions domain.TransactionRepository
	categories   domain.CategoryRepository
	rules        []CategorizationRule
}

func NewCategorizerService(transactions domain.TransactionRepository, categories domain.CategoryRepository) *CategorizerService {
	return &CategorizerService{
		transactions: transactions,
		categories:   categories,
		rules:        categorizationRules,
	}
}

// Categorize suggests a category for a description without touching any
// transaction. It keeps the highest-confidence rule whose category exists for
// the user, and falls back to historical similarity when no rule fires.
func (s *CategorizerService) Categorize(userID, description string, transactionType string) (CategorizationResult, error) {
	normalized := normalizeDescription(description)

	var best CategorizationResult
	for _, rule := range s.rules {
		if rule.Type != transactionType || rule.Confidence <= best.Confidence {
			continue
		}
		if !matchesAnyKeyword(normalized, rule.Keywords) {
			continue
		}
		category, err := s.categories.FindByNameAndType(userID, rule.CategoryName, rule.Type)
		if err != nil {
			return CategorizationResult{}, err
		}
		if category == nil {
			continue
		}
		categoryID := category.ID
		best = CategorizationResult{CategoryID: &categoryID, Confidence: rule.Confidence}
	}
	if best.CategoryID != nil {
		return best, nil
	}

	return s.categorizeFromHistory(userID, normalized, transactionType)
}

// CategorizeTransaction applies a suggestion to a stored transaction. A
// category the user picked by hand is never overwritten, and nothing happens
// below the acceptance threshold.
func (s *CategorizerService) CategorizeTransaction(transactionID, userID string) (*domain.Transaction, error) {
	transaction, err := s.transactions.FindByID(transactionID)
	if err != nil {
		return nil, err
	}
	if transaction == nil || transaction.UserID != userID {
		return nil, bankingErrors.NewNotFoundError("Transaction not found")
	}
	if transaction.CategoryID != nil && !transaction.AutoCategorized {
		return transaction, nil
	}

	result, err := s.Categorize(transaction.UserID, transaction.Description, transaction.Type)
	if err != nil {
		return nil, err
	}
	if result.CategoryID == nil || result.Confidence <= acceptanceThreshold {
		return transaction, nil
	}

	confidence := result.Confidence
	if err := s.transactions.UpdateCategory(transaction.ID, result.CategoryID, true, &confidence); err != nil {
		return nil, err
	}
	transaction.CategoryID = result.CategoryID
	transaction.AutoCategorized = true
	transaction.ConfidenceScore = &confidence
	return transaction, nil
}

// CategorizePending walks the user's uncategorized transactions and applies
// whatever suggestions clear the threshold. Returns how many were updated.
func (s *CategorizerService) CategorizePending(userID string, limit int) (int, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	pending, err := s.transactions.FindUncategorized(userID, limit)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, transaction := range pending {
		result, err := s.Categorize(transaction.UserID, transaction.Description, transaction.Type)
		if err != nil {
			log.Printf("categorizer: transaction %s: %v", transaction.ID, err)
			continue
		}
		if result.CategoryID == nil || result.Confidence <= acceptanceThreshold {
			continue
		}
		confidence := result.Confidence
		if err := s.transactions.UpdateCategory(transaction.ID, result.CategoryID, true, &confidence); err != nil {
			log.Printf("categorizer: transaction %s: %v", transaction.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *CategorizerService) categorizeFromHistory(userID, normalized, transactionType string) (CategorizationResult, error) {
	history, err := s.transactions.FindCategorizedByType(userID, transactionType, historyLimit)
	if err != nil {
		return CategorizationResult{}, err
	}

	votes := make(map[string]int)
	for _, transaction := range history {
		if transaction.CategoryID == nil {
			continue
		}
		if stringSimilarity(normalized, normalizeDescription(transaction.Description)) < similarityThreshold {
			continue
		}
		votes[*transaction.CategoryID]++
	}

	var bestCategoryID string
	bestVotes := 0
	for categoryID, count := range votes {
		if count > bestVotes || (count == bestVotes && categoryID < bestCategoryID) {
			bestCategoryID = categoryID
			bestVotes = count
		}
	}
	if bestVotes == 0 {
		return CategorizationResult{}, nil
	}
	return CategorizationResult{CategoryID: &bestCategoryID, Confidence: historyConfidence}, nil
}

func matchesAnyKeyword(normalized string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

// stringSimilarity is 1 minus the normalized Levenshtein distance.
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// normalizeDescription lowercases and strips diacritics so "Açougue" and
// "acougue" categorize the same way.
func normalizeDescription(description string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, description)
	if err != nil {
		normalized = description
	}
	return strings.ToLower(strings.TrimSpace(normalized))
}
