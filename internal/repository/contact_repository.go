package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/wikizap/wikizap-backend/internal/model"
)

// ContactRepositoryInterface defines methods used by handlers
type ContactRepositoryInterface interface {
	ListByUser(userID string) ([]model.Contact, error)
	CreateBatch(contacts []*model.Contact) error
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

// ListByUser fetches all contacts in a user's contact book
func (r *ContactRepository) ListByUser(userID string) ([]model.Contact, error) {
	query := `
        SELECT id, user_id, name, phone, email, created_at
        FROM contacts
        WHERE user_id = $1
        ORDER BY name
    `
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// CreateBatch stores imported contacts
func (r *ContactRepository) CreateBatch(contacts []*model.Contact) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}

	query := `
        INSERT INTO contacts (id, user_id, name, phone, email, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	now := time.Now()
	for _, c := range contacts {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = now
		if _, err := tx.Exec(query, c.ID, c.UserID, c.Name, c.Phone, c.Email, c.CreatedAt); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
