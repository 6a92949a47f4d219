package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type contactResolver interface {
	ContactsFor(ctx context.Context, userID string, role models.UserRole) ([]models.User, error)
}

type messageStore interface {
	ListConversation(ctx context.Context, userID, otherID string) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
}

// SendMessageRequest is the payload for sending a message.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// ContactService exposes the messaging surface: who a principal may talk
// to, conversation history, and sending.
type ContactService struct {
	authz     authorizer
	resolver  contactResolver
	messages  messageStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(authz authorizer, resolver contactResolver, messages messageStore, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{authz: authz, resolver: resolver, messages: messages, validator: validate, logger: logger}
}

// Contacts returns the users the principal may message.
func (s *ContactService) Contacts(ctx context.Context, principal *models.JWTClaims) ([]models.User, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewContacts, policy.Target{}); err != nil {
		return nil, err
	}
	contacts, err := s.resolver.ContactsFor(ctx, principal.UserID, principal.Role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve contacts")
	}
	if contacts == nil {
		contacts = []models.User{}
	}
	return contacts, nil
}

// Conversation returns the two-way message history with a contact, oldest
// first. The contact gate applies to reading just as it does to sending.
func (s *ContactService) Conversation(ctx context.Context, principal *models.JWTClaims, contactID string) ([]models.Message, error) {
	if strings.TrimSpace(contactID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "contactId is required")
	}
	if err := s.authz.Authorize(ctx, principal, policy.ActionSendMessage, policy.Target{ReceiverID: contactID}); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListConversation(ctx, principal.UserID, contactID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conversation")
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// Send stores a new message after verifying the receiver is a contact.
func (s *ContactService) Send(ctx context.Context, principal *models.JWTClaims, req SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if err := s.authz.Authorize(ctx, principal, policy.ActionSendMessage, policy.Target{ReceiverID: req.ReceiverID}); err != nil {
		return nil, err
	}
	message := &models.Message{
		SenderID:   principal.UserID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store message")
	}
	return message, nil
}
