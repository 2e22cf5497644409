package infrastructure

import (
	"database/sql"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

type ConnectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func (r *ConnectionRepository) Save(connection domain.Connection) error {
	_, err := r.db.Exec(
		`INSERT INTO connections
        (id, user_id, institution_id, institution_name, provider_item_id, status, error_message, last_sync_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		connection.ID, connection.UserID, connection.InstitutionID, connection.InstitutionName,
		connection.ProviderItemID, connection.Status, connection.ErrorMessage, connection.LastSyncAt, connection.CreatedAt,
	)
	return err
}

func (r *ConnectionRepository) FindByID(connectionID string) (*domain.Connection, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, institution_id, institution_name, provider_item_id, status, error_message, last_sync_at, created_at
        FROM connections WHERE id = $1`, connectionID)
	return scanConnection(row)
}

func (r *ConnectionRepository) FindByProviderItemID(itemID string) (*domain.Connection, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, institution_id, institution_name, provider_item_id, status, error_message, last_sync_at, created_at
        FROM connections WHERE provider_item_id = $1`, itemID)
	return scanConnection(row)
}

func (r *ConnectionRepository) FindByUser(userID string) ([]domain.Connection, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, institution_id, institution_name, provider_item_id, status, error_message, last_sync_at, created_at
        FROM connections WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

// FindActiveOrderedByStaleness returns active connections, never-synced
// first, then oldest sync first.
func (r *ConnectionRepository) FindActiveOrderedByStaleness(limit int) ([]domain.Connection, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, institution_id, institution_name, provider_item_id, status, error_message, last_sync_at, created_at
        FROM connections WHERE status = 'active'
        ORDER BY last_sync_at ASC NULLS FIRST LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

func (r *ConnectionRepository) UpdateStatus(connectionID, status string, errorMessage *string) error {
	_, err := r.db.Exec(
		`UPDATE connections SET status = $2, error_message = $3 WHERE id = $1`,
		connectionID, status, errorMessage,
	)
	return err
}

func (r *ConnectionRepository) UpdateLastSync(connectionID string, syncedAt time.Time) error {
	_, err := r.db.Exec(`UPDATE connections SET last_sync_at = $2 WHERE id = $1`, connectionID, syncedAt)
	return err
}

func (r *ConnectionRepository) Delete(connectionID string) error {
	_, err := r.db.Exec(`DELETE FROM connections WHERE id = $1`, connectionID)
	return err
}

func scanConnection(row *sql.Row) (*domain.Connection, error) {
	var connection domain.Connection
	err := row.Scan(&connection.ID, &connection.UserID, &connection.InstitutionID, &connection.InstitutionName,
		&connection.ProviderItemID, &connection.Status, &connection.ErrorMessage, &connection.LastSyncAt, &connection.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

func scanConnections(rows *sql.Rows) ([]domain.Connection, error) {
	var connections []domain.Connection
	for rows.Next() {
		var connection domain.Connection
		if err := rows.Scan(&connection.ID, &connection.UserID, &connection.InstitutionID, &connection.InstitutionName,
			&connection.ProviderItemID, &connection.Status, &connection.ErrorMessage, &connection.LastSyncAt, &connection.CreatedAt); err != nil {
			return nil, err
		}
		connections = append(connections, connection)
	}
	return connections, rows.Err()
}
