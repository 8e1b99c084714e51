package store

import (
	"context"

	"shop-service/internal/models"
)

// CreateContact inserts a new inquiry
func (s *Store) CreateContact(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (id, name, email, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return s.db.GetContext(ctx, &contact.CreatedAt, query,
		contact.ID, contact.Name, contact.Email, contact.Subject,
		contact.Message, contact.Status)
}

// GetContacts retrieves all inquiries, newest first
func (s *Store) GetContacts(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.db.SelectContext(ctx, &contacts,
		"SELECT * FROM contacts ORDER BY created_at DESC")
	return contacts, err
}

// MarkContactRead transitions an inquiry to Read
func (s *Store) MarkContactRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE contacts SET status = $1 WHERE id = $2",
		models.ContactStatusRead, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteContact hard-deletes an inquiry
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
