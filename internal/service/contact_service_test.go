package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type mockContactResolver struct {
	contacts map[string][]models.User
}

func (m *mockContactResolver) ContactsFor(ctx context.Context, userID string, role models.UserRole) ([]models.User, error) {
	return m.contacts[userID], nil
}

type mockMessageStore struct {
	conversations map[string][]models.Message
	created       *models.Message
}

func (m *mockMessageStore) ListConversation(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	return m.conversations[userID+":"+otherID], nil
}

func (m *mockMessageStore) Create(ctx context.Context, message *models.Message) error {
	message.ID = "m-new"
	m.created = message
	return nil
}

func contactFixture() (*ContactService, *mockAuthorizer, *mockMessageStore) {
	authz := &mockAuthorizer{}
	resolver := &mockContactResolver{contacts: map[string][]models.User{
		"p1": {{ID: "t1", FullName: "Cô Lan", Role: models.RoleTeacher}},
	}}
	messages := &mockMessageStore{conversations: map[string][]models.Message{
		"p1:t1": {{ID: "m1", SenderID: "t1", ReceiverID: "p1", Content: "Chào anh chị"}},
	}}
	svc := NewContactService(authz, resolver, messages, nil, nil)
	return svc, authz, messages
}

func TestContacts(t *testing.T) {
	svc, authz, _ := contactFixture()

	contacts, err := svc.Contacts(context.Background(), parentClaims("p1"))
	require.NoError(t, err)
	assert.Equal(t, policy.ActionViewContacts, authz.lastAction)
	require.Len(t, contacts, 1)
	assert.Equal(t, "t1", contacts[0].ID)
}

func TestContactsEmptySliceNotNil(t *testing.T) {
	svc, _, _ := contactFixture()

	contacts, err := svc.Contacts(context.Background(), adminClaims("a1"))
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestConversation(t *testing.T) {
	svc, authz, _ := contactFixture()

	messages, err := svc.Conversation(context.Background(), parentClaims("p1"), "t1")
	require.NoError(t, err)
	assert.Equal(t, policy.ActionSendMessage, authz.lastAction)
	assert.Equal(t, "t1", authz.lastTarget.ReceiverID)
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].ID)
}

func TestConversationRequiresContactID(t *testing.T) {
	svc, authz, _ := contactFixture()

	_, err := svc.Conversation(context.Background(), parentClaims("p1"), "  ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, authz.calls)
}

func TestConversationGatedLikeSending(t *testing.T) {
	svc, authz, _ := contactFixture()
	authz.err = appErrors.ErrForbidden

	_, err := svc.Conversation(context.Background(), parentClaims("p1"), "t-stranger")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestSendMessage(t *testing.T) {
	svc, authz, messages := contactFixture()

	message, err := svc.Send(context.Background(), parentClaims("p1"), SendMessageRequest{
		ReceiverID: "t1",
		Content:    "Cháu nghỉ ốm hôm nay",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.ActionSendMessage, authz.lastAction)
	assert.Equal(t, "m-new", message.ID)
	assert.Equal(t, "p1", messages.created.SenderID)
	assert.Equal(t, "t1", messages.created.ReceiverID)
}

func TestSendMessageToStrangerForbidden(t *testing.T) {
	svc, authz, messages := contactFixture()
	authz.err = appErrors.ErrForbidden

	_, err := svc.Send(context.Background(), parentClaims("p1"), SendMessageRequest{
		ReceiverID: "p-other",
		Content:    "x",
	})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Nil(t, messages.created)
}

func TestSendMessageValidatesPayload(t *testing.T) {
	svc, _, _ := contactFixture()

	_, err := svc.Send(context.Background(), parentClaims("p1"), SendMessageRequest{ReceiverID: "t1"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
