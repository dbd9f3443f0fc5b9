package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"
)

// NotificationService handles all push notification logic
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData is the data payload attached to a push, used by the
// client for deep linking.
type NotificationData struct {
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	PropertyID string `json:"propertyId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	Screen     string `json:"screen"`
	Params     string `json:"params,omitempty"`
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}
	return tokens, nil
}

// SendNotificationToUser sends a notification to every device of one user.
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("Failed to get push tokens for user %d: %v", userID, err)
		return err
	}

	dataMap := map[string]string{
		"type":       data.Type,
		"id":         data.ID,
		"propertyId": data.PropertyID,
		"userId":     data.UserID,
		"screen":     data.Screen,
		"params":     data.Params,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// SendMessageNotification notifies the receiver about a new message
// concerning one of the listings.
func (ns *NotificationService) SendMessageNotification(receiverID, senderID, propertyID uint) error {
	var sender models.User
	if err := storage.DB.Select("id, first_name, last_name").First(&sender, senderID).Error; err != nil {
		return err
	}

	propertyTitle := "bir ilan"
	var property models.Property
	if err := storage.DB.Select("id, title").First(&property, propertyID).Error; err == nil && property.Title != "" {
		propertyTitle = property.Title
	}

	senderName := fmt.Sprintf("%s %s", sender.FirstName, sender.LastName)
	title := "💬 Yeni Mesaj"
	body := fmt.Sprintf("%s, %s hakkında size mesaj gönderdi", senderName, propertyTitle)

	params := fmt.Sprintf(`{"senderId": %d, "propertyId": %d}`, senderID, propertyID)
	data := NotificationData{
		Type:       "message_received",
		PropertyID: fmt.Sprintf("%d", propertyID),
		UserID:     fmt.Sprintf("%d", senderID),
		Screen:     "Messages",
		Params:     params,
	}

	return ns.SendNotificationToUser(receiverID, title, body, data)
}

// SendContactRequestNotification notifies a listing's owner about a new
// contact request.
func (ns *NotificationService) SendContactRequestNotification(ownerID uint, request *models.ContactRequest, propertyTitle string) error {
	title := "📩 Yeni İletişim Talebi"
	body := fmt.Sprintf("%s, %s ilanınız için iletişim talebi gönderdi", request.Name, propertyTitle)

	params := fmt.Sprintf(`{"contactRequestId": %d, "propertyId": %d}`, request.ID, request.PropertyID)
	data := NotificationData{
		Type:       "contact_request",
		ID:         fmt.Sprintf("%d", request.ID),
		PropertyID: fmt.Sprintf("%d", request.PropertyID),
		Screen:     "ContactRequests",
		Params:     params,
	}

	return ns.SendNotificationToUser(ownerID, title, body, data)
}

// SendListingStatusNotification tells an owner that an admin changed the
// lifecycle state of one of their listings.
func (ns *NotificationService) SendListingStatusNotification(ownerID, propertyID uint, propertyTitle, status string) error {
	statusLabels := map[string]string{
		"draft":     "taslağa alındı",
		"published": "yayına alındı",
		"sold":      "satıldı olarak işaretlendi",
		"inactive":  "yayından kaldırıldı",
	}
	label := statusLabels[status]
	if label == "" {
		label = status
	}

	title := "🏷️ İlan Durumu Güncellendi"
	body := fmt.Sprintf("%s ilanınız %s", propertyTitle, label)

	params := fmt.Sprintf(`{"propertyId": %d, "status": %q}`, propertyID, status)
	data := NotificationData{
		Type:       "listing_status",
		PropertyID: fmt.Sprintf("%d", propertyID),
		Screen:     "MyListings",
		Params:     params,
	}

	return ns.SendNotificationToUser(ownerID, title, body, data)
}

// SendSavedSearchNotification notifies a user that a saved search produced
// new matches since its last run.
func (ns *NotificationService) SendSavedSearchNotification(userID uint, search *models.SavedSearch, newMatches int) error {
	title := "🔍 Kayıtlı Aramanızda Yeni İlanlar"
	body := fmt.Sprintf("%q aramanız için %d yeni ilan bulundu", search.Name, newMatches)

	params := fmt.Sprintf(`{"savedSearchId": %d}`, search.ID)
	data := NotificationData{
		Type:   "saved_search_matches",
		ID:     fmt.Sprintf("%d", search.ID),
		Screen: "SavedSearches",
		Params: params,
	}

	return ns.SendNotificationToUser(userID, title, body, data)
}
