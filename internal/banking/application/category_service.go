package application

import (
	"github.com/google/uuid"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type CategoryService struct {
	categories domain.CategoryRepository
}

func NewCategoryService(categories domain.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) CreateCategory(category *domain.Category) error {
	category.ID = uuid.NewString()
	if err := category.Validate(); err != nil {
		return err
	}
	existing, err := s.categories.FindByNameAndType(category.UserID, category.Name, category.Type)
	if err != nil {
		return err
	}
	if existing != nil {
		return bankingErrors.NewValidationError("Category already exists")
	}
	return s.categories.Save(*category)
}

func (s *CategoryService) GetUserCategories(userID string) ([]domain.Category, error) {
	categories, err := s.categories.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}
