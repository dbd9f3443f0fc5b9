package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"

	"github.com/kataras/iris/v12"
)

func createTestListing(t *testing.T, ownerID uint) *models.Property {
	t.Helper()
	property := models.Property{
		OwnerID:  ownerID,
		Title:    "Silivri Satılık Tarla",
		Category: "field",
		Status:   models.PropertyStatusPublished,
		Price:    750000,
		AreaM2:   1200,
	}
	if err := storage.DB.Create(&property).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}
	return &property
}

func TestCreateConversationIdempotent(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	visitor := createTestUser(t, "visitor@example.com", "user")
	property := createTestListing(t, owner.ID)

	token := signTestToken(visitor.ID, visitor.Role)
	body := iris.Map{"propertyID": property.ID, "initialMessage": "Arsa hâlâ satılık mı?"}

	resp := doRequest(app, http.MethodPost, "/api/messages/conversations", token, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("first create: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var first models.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}

	resp = doRequest(app, http.MethodPost, "/api/messages/conversations", token,
		iris.Map{"propertyID": property.ID, "initialMessage": "Fiyatta pazarlık payı var mı?"})
	if resp.Code != http.StatusOK {
		t.Fatalf("second create: expected 200, got %d", resp.Code)
	}
	var second models.Conversation
	json.Unmarshal(resp.Body.Bytes(), &second)

	if first.ID != second.ID {
		t.Fatalf("expected the same conversation, got %d and %d", first.ID, second.ID)
	}

	var conversations int64
	storage.DB.Model(&models.Conversation{}).Count(&conversations)
	if conversations != 1 {
		t.Fatalf("expected 1 conversation, got %d", conversations)
	}

	var messages int64
	storage.DB.Model(&models.Message{}).Where("conversation_id = ?", first.ID).Count(&messages)
	if messages != 2 {
		t.Fatalf("expected both initial messages appended, got %d", messages)
	}

	var participants int64
	storage.DB.Model(&models.ConversationParticipant{}).Where("conversation_id = ?", first.ID).Count(&participants)
	if participants != 2 {
		t.Fatalf("expected 2 participants, got %d", participants)
	}
}

func TestConversationSelfMessageRejected(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	property := createTestListing(t, owner.ID)

	resp := doRequest(app, http.MethodPost, "/api/messages/conversations",
		signTestToken(owner.ID, owner.Role),
		iris.Map{"propertyID": property.ID})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for owner messaging own listing, got %d", resp.Code)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	visitor := createTestUser(t, "visitor@example.com", "user")
	property := createTestListing(t, owner.ID)

	visitorToken := signTestToken(visitor.ID, visitor.Role)
	ownerToken := signTestToken(owner.ID, owner.Role)

	resp := doRequest(app, http.MethodPost, "/api/messages/conversations", visitorToken,
		iris.Map{"propertyID": property.ID, "initialMessage": "Merhaba"})
	if resp.Code != http.StatusOK {
		t.Fatalf("create conversation: got %d", resp.Code)
	}
	var conversation models.Conversation
	json.Unmarshal(resp.Body.Bytes(), &conversation)

	resp = doRequest(app, http.MethodPost, "/api/messages", visitorToken,
		iris.Map{"conversationID": conversation.ID, "receiverID": owner.ID, "content": "Tapu durumu nedir?"})
	if resp.Code != http.StatusOK && resp.Code != http.StatusCreated {
		t.Fatalf("send message: got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(app, http.MethodGet, "/api/messages/unread-count", ownerToken, nil)
	var unread struct {
		UnreadCount int64 `json:"unreadCount"`
	}
	json.Unmarshal(resp.Body.Bytes(), &unread)
	if unread.UnreadCount != 2 {
		t.Fatalf("expected 2 unread for owner, got %d", unread.UnreadCount)
	}

	resp = doRequest(app, http.MethodPut, "/api/messages/conversations/"+itoa(conversation.ID)+"/read", ownerToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("mark read: got %d", resp.Code)
	}

	resp = doRequest(app, http.MethodGet, "/api/messages/unread-count", ownerToken, nil)
	json.Unmarshal(resp.Body.Bytes(), &unread)
	if unread.UnreadCount != 0 {
		t.Fatalf("expected 0 unread after mark read, got %d", unread.UnreadCount)
	}

	// The sender's own messages never count as unread for them
	resp = doRequest(app, http.MethodGet, "/api/messages/unread-count", visitorToken, nil)
	json.Unmarshal(resp.Body.Bytes(), &unread)
	if unread.UnreadCount != 0 {
		t.Fatalf("expected 0 unread for sender, got %d", unread.UnreadCount)
	}

	var participant models.ConversationParticipant
	storage.DB.Where("conversation_id = ? AND user_id = ?", conversation.ID, owner.ID).First(&participant)
	if participant.LastReadAt == nil {
		t.Fatal("expected last_read_at to be stamped")
	}
}

func TestConversationAccessControl(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	visitor := createTestUser(t, "visitor@example.com", "user")
	stranger := createTestUser(t, "stranger@example.com", "user")
	property := createTestListing(t, owner.ID)

	resp := doRequest(app, http.MethodPost, "/api/messages/conversations",
		signTestToken(visitor.ID, visitor.Role),
		iris.Map{"propertyID": property.ID, "initialMessage": "Selam"})
	var conversation models.Conversation
	json.Unmarshal(resp.Body.Bytes(), &conversation)

	strangerToken := signTestToken(stranger.ID, stranger.Role)

	resp = doRequest(app, http.MethodGet, "/api/messages/conversations/"+itoa(conversation.ID)+"/messages", strangerToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant read, got %d", resp.Code)
	}

	resp = doRequest(app, http.MethodDelete, "/api/messages/conversations/"+itoa(conversation.ID), strangerToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant delete, got %d", resp.Code)
	}

	resp = doRequest(app, http.MethodPost, "/api/messages", strangerToken,
		iris.Map{"conversationID": conversation.ID, "receiverID": owner.ID, "content": "merhaba"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant send, got %d", resp.Code)
	}

	resp = doRequest(app, http.MethodGet, "/api/messages/conversations/9999/messages", strangerToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown conversation, got %d", resp.Code)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	visitor := createTestUser(t, "visitor@example.com", "user")
	property := createTestListing(t, owner.ID)

	visitorToken := signTestToken(visitor.ID, visitor.Role)
	resp := doRequest(app, http.MethodPost, "/api/messages/conversations", visitorToken,
		iris.Map{"propertyID": property.ID, "initialMessage": "Merhaba"})
	var conversation models.Conversation
	json.Unmarshal(resp.Body.Bytes(), &conversation)

	resp = doRequest(app, http.MethodDelete, "/api/messages/conversations/"+itoa(conversation.ID), visitorToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: got %d", resp.Code)
	}

	var messages int64
	storage.DB.Model(&models.Message{}).Where("conversation_id = ?", conversation.ID).Count(&messages)
	if messages != 0 {
		t.Fatalf("expected messages removed, got %d", messages)
	}

	var participants int64
	storage.DB.Model(&models.ConversationParticipant{}).Where("conversation_id = ?", conversation.ID).Count(&participants)
	if participants != 0 {
		t.Fatalf("expected participants removed, got %d", participants)
	}

	resp = doRequest(app, http.MethodGet, "/api/messages/conversations/"+itoa(conversation.ID)+"/messages", visitorToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestConversationRecreateAfterDelete(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	visitor := createTestUser(t, "visitor@example.com", "user")
	property := createTestListing(t, owner.ID)

	visitorToken := signTestToken(visitor.ID, visitor.Role)
	resp := doRequest(app, http.MethodPost, "/api/messages/conversations", visitorToken,
		iris.Map{"propertyID": property.ID, "initialMessage": "Merhaba"})
	if resp.Code != http.StatusOK {
		t.Fatalf("create: got %d", resp.Code)
	}
	var first models.Conversation
	json.Unmarshal(resp.Body.Bytes(), &first)

	resp = doRequest(app, http.MethodDelete, "/api/messages/conversations/"+itoa(first.ID), visitorToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: got %d", resp.Code)
	}

	// The (property, owner, visitor) slot must be free again after delete
	resp = doRequest(app, http.MethodPost, "/api/messages/conversations", visitorToken,
		iris.Map{"propertyID": property.ID, "initialMessage": "Tekrar merhaba"})
	if resp.Code != http.StatusOK {
		t.Fatalf("re-create after delete: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var second models.Conversation
	json.Unmarshal(resp.Body.Bytes(), &second)
	if second.ID == first.ID {
		t.Fatalf("expected a fresh conversation, got the deleted ID %d again", first.ID)
	}

	var conversations int64
	storage.DB.Model(&models.Conversation{}).Count(&conversations)
	if conversations != 1 {
		t.Fatalf("expected 1 conversation, got %d", conversations)
	}

	var messages int64
	storage.DB.Model(&models.Message{}).Where("conversation_id = ?", second.ID).Count(&messages)
	if messages != 1 {
		t.Fatalf("expected only the new initial message, got %d", messages)
	}
}

func TestConversationListSummaries(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	visitor := createTestUser(t, "visitor@example.com", "user")
	property := createTestListing(t, owner.ID)

	visitorToken := signTestToken(visitor.ID, visitor.Role)
	doRequest(app, http.MethodPost, "/api/messages/conversations", visitorToken,
		iris.Map{"propertyID": property.ID, "initialMessage": "Merhaba"})

	resp := doRequest(app, http.MethodGet, "/api/messages/conversations", signTestToken(owner.ID, owner.Role), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: got %d", resp.Code)
	}

	var body struct {
		Conversations []struct {
			Property struct {
				Title string `json:"title"`
			} `json:"property"`
			Participant struct {
				ID uint `json:"ID"`
			} `json:"participant"`
			LastMessage *struct {
				Content string `json:"content"`
			} `json:"lastMessage"`
			UnreadCount int64 `json:"unreadCount"`
		} `json:"conversations"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(body.Conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(body.Conversations))
	}
	summary := body.Conversations[0]
	if summary.Property.Title != property.Title {
		t.Fatalf("expected property title %q, got %q", property.Title, summary.Property.Title)
	}
	if summary.Participant.ID != visitor.ID {
		t.Fatalf("expected peer %d, got %d", visitor.ID, summary.Participant.ID)
	}
	if summary.LastMessage == nil || summary.LastMessage.Content != "Merhaba" {
		t.Fatal("expected last message to be the initial message")
	}
	if summary.UnreadCount != 1 {
		t.Fatalf("expected unread 1 for owner, got %d", summary.UnreadCount)
	}
}
