package infrastructure

import (
	"database/sql"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Save(category domain.Category) error {
	_, err := r.db.Exec(
		`INSERT INTO categories (id, user_id, name, type) VALUES ($1, $2, $3, $4)`,
		category.ID, category.UserID, category.Name, category.Type,
	)
	return err
}

func (r *CategoryRepository) FindByUser(userID string) ([]domain.Category, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, name, type FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.Type); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) FindByNameAndType(userID, name, categoryType string) (*domain.Category, error) {
	var category domain.Category
	err := r.db.QueryRow(
		`SELECT id, user_id, name, type FROM categories WHERE user_id = $1 AND name = $2 AND type = $3`,
		userID, name, categoryType,
	).Scan(&category.ID, &category.UserID, &category.Name, &category.Type)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) DoesCategoryExistByID(categoryID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)`,
		categoryID, userID,
	).Scan(&exists)
	return exists, err
}
