package routes

import (
	"time"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"
	"github.com/zehrydogan/aydogan-arsa-sub001/ws"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

// Hub is the realtime fan-out, set from main. Handlers nil-check it so the
// REST layer also works without the socket layer (tests, tooling).
var Hub *ws.Hub

const messagesPerPage = 30

type CreateConversationInput struct {
	PropertyID     uint   `json:"propertyID" validate:"required"`
	ParticipantID  uint   `json:"participantID"`
	InitialMessage string `json:"initialMessage" validate:"lt=5000"`
}

// CreateConversation starts (or returns) the thread between a listing's
// owner and a visitor. Creation is idempotent per (property, owner,
// visitor); a non-empty initial message is appended either way.
func CreateConversation(ctx iris.Context) {
	var input CreateConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var property models.Property
	if err := storage.DB.First(&property, input.PropertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ownerID := property.OwnerID
	visitorID := claims.ID
	if claims.ID == ownerID {
		// The owner may open the thread toward a visitor who contacted them
		visitorID = input.ParticipantID
	} else if input.ParticipantID != 0 && input.ParticipantID != ownerID {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid participant", "participantID must be the listing's owner.", ctx)
		return
	}
	if visitorID == 0 || visitorID == ownerID {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid participant", "A conversation needs two distinct participants.", ctx)
		return
	}

	var conversation models.Conversation
	err := storage.DB.
		Where("property_id = ? AND owner_id = ? AND visitor_id = ?", property.ID, ownerID, visitorID).
		First(&conversation).Error
	if err == gorm.ErrRecordNotFound {
		conversation = models.Conversation{
			PropertyID:    property.ID,
			OwnerID:       ownerID,
			VisitorID:     visitorID,
			LastMessageAt: time.Now(),
		}
		txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&conversation).Error; err != nil {
				return err
			}
			now := time.Now()
			participants := []models.ConversationParticipant{
				{ConversationID: conversation.ID, UserID: ownerID, JoinedAt: now},
				{ConversationID: conversation.ID, UserID: visitorID, JoinedAt: now},
			}
			return tx.Create(&participants).Error
		})
		if txErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	} else if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if input.InitialMessage != "" {
		message := models.Message{
			ConversationID: conversation.ID,
			SenderID:       claims.ID,
			ReceiverID:     conversation.OtherParticipantID(claims.ID),
			Content:        input.InitialMessage,
		}
		if err := storage.DB.Create(&message).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		storage.DB.Model(&models.Conversation{}).Where("id = ?", conversation.ID).
			Update("last_message_at", message.CreatedAt)
		conversation.LastMessageAt = message.CreatedAt

		if Hub != nil {
			Hub.EmitToRoomAndUser(conversation.ID, message.ReceiverID, ws.EventNewMessage, message)
		}
	}

	ctx.JSON(conversation)
}

// conversationSummary is one row of the caller's conversation list.
type conversationSummary struct {
	Conversation models.Conversation `json:"conversation"`
	Property     models.Property     `json:"property"`
	Participant  models.User         `json:"participant"` // the other party
	LastMessage  *models.Message     `json:"lastMessage"`
	UnreadCount  int64               `json:"unreadCount"`
}

// GetConversations lists the caller's threads ordered by most recent
// activity, each with listing summary, peer profile, last message and
// unread count.
func GetConversations(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var conversations []models.Conversation
	if err := storage.DB.
		Where("owner_id = ? OR visitor_id = ?", claims.ID, claims.ID).
		Order("last_message_at DESC").
		Find(&conversations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	summaries := make([]conversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		var property models.Property
		storage.DB.Select("id, owner_id, title, price, currency, area_m2, category, status, images, location_id").
			First(&property, conversation.PropertyID)

		var other models.User
		storage.DB.Select("id, first_name, last_name, avatar_url").
			First(&other, conversation.OtherParticipantID(claims.ID))

		var lastMessage models.Message
		var lastPtr *models.Message
		if err := storage.DB.
			Where("conversation_id = ?", conversation.ID).
			Order("id DESC").
			First(&lastMessage).Error; err == nil {
			lastPtr = &lastMessage
		}

		var unread int64
		storage.DB.Model(&models.Message{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversation.ID, claims.ID, false).
			Count(&unread)

		summaries = append(summaries, conversationSummary{
			Conversation: conversation,
			Property:     property,
			Participant:  other,
			LastMessage:  lastPtr,
			UnreadCount:  unread,
		})
	}

	ctx.JSON(iris.Map{"conversations": summaries})
}

// ListConversationMessages returns one ascending page of a thread's
// history. Only participants may read it.
func ListConversationMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !conversation.HasParticipant(claims.ID) {
		utils.CreateForbidden(ctx)
		return
	}

	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}

	var total int64
	storage.DB.Model(&models.Message{}).Where("conversation_id = ?", conversation.ID).Count(&total)

	var messages []models.Message
	if err := storage.DB.
		Where("conversation_id = ?", conversation.ID).
		Order("id ASC").
		Offset((page - 1) * messagesPerPage).
		Limit(messagesPerPage).
		Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, messages, page, messagesPerPage, total)
}

// MarkConversationRead flips every unread message addressed to the caller
// and stamps the participant's read cursor.
func MarkConversationRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !conversation.HasParticipant(claims.ID) {
		utils.CreateForbidden(ctx)
		return
	}

	now := time.Now()
	storage.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversation.ID, claims.ID, false).
		Update("is_read", true)
	storage.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversation.ID, claims.ID).
		Update("last_read_at", now)

	if Hub != nil {
		Hub.EmitToRoom(conversation.ID, ws.EventMessagesRead, ws.MessagesReadPayload{
			ConversationID: conversation.ID,
			UserID:         claims.ID,
			ReadAt:         now,
		})
	}

	ctx.JSON(iris.Map{"success": true, "readAt": now})
}

// DeleteConversation removes the thread with its participants and
// messages. Only a participant may delete.
func DeleteConversation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !conversation.HasParticipant(claims.ID) {
		utils.CreateForbidden(ctx)
		return
	}

	// Hard delete: a soft-deleted row would still occupy the unique
	// (property, owner, visitor) slot and block re-contacting the owner
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("conversation_id = ?", conversation.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("conversation_id = ?", conversation.ID).Delete(&models.ConversationParticipant{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&conversation).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// GetUnreadCount aggregates unread messages addressed to the caller
// across all conversations.
func GetUnreadCount(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var unread int64
	storage.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", claims.ID, false).
		Count(&unread)

	ctx.JSON(iris.Map{"unreadCount": unread})
}
