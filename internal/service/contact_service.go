package service

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactService manages the visitor inquiry inbox
type ContactService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewContactService creates a new contact service
func NewContactService(store *store.Store) *ContactService {
	return &ContactService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ContactRequest represents an inquiry submission
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Create records a new inquiry. A blank subject gets the default.
func (s *ContactService) Create(ctx context.Context, req *ContactRequest) (*models.Contact, error) {
	subject := req.Subject
	if subject == "" {
		subject = models.DefaultContactSubject
	}

	contact := &models.Contact{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Email:   req.Email,
		Subject: subject,
		Message: req.Message,
		Status:  models.ContactStatusUnread,
	}

	if err := s.store.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	util.ContactsCreatedTotal.Inc()
	s.logger.Info("Contact inquiry received", zap.String("contact_id", contact.ID))
	return contact, nil
}

// List retrieves all inquiries for admin display
func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	return s.store.GetContacts(ctx)
}

// MarkRead transitions an inquiry Unread -> Read
func (s *ContactService) MarkRead(ctx context.Context, id string) error {
	err := s.store.MarkContactRead(ctx, id)
	if errors.Is(err, store.ErrNoRows) {
		return fmt.Errorf("%w: contact %s", ErrNotFound, id)
	}
	return err
}

// Delete hard-deletes an inquiry
func (s *ContactService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteContact(ctx, id)
	if errors.Is(err, store.ErrNoRows) {
		return fmt.Errorf("%w: contact %s", ErrNotFound, id)
	}
	return err
}
