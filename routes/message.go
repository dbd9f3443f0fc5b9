package routes

import (
	"strings"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/services"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"
	"github.com/zehrydogan/aydogan-arsa-sub001/ws"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreateMessageInput struct {
	ConversationID uint   `json:"conversationID" validate:"required"`
	ReceiverID     uint   `json:"receiverID" validate:"required"`
	Content        string `json:"content" validate:"required,lt=5000"`
}

// CreateMessage is the non-socket send path. The message is persisted and
// then broadcast through the hub exactly like a socket send.
func CreateMessage(ctx iris.Context) {
	var input CreateMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	if strings.TrimSpace(input.Content) == "" {
		utils.CreateError(iris.StatusUnprocessableEntity, "Validation error", "content is required", ctx)
		return
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, input.ConversationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !conversation.HasParticipant(claims.ID) {
		utils.CreateForbidden(ctx)
		return
	}
	if input.ReceiverID != conversation.OtherParticipantID(claims.ID) {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid receiver", "receiver is not a participant of this conversation", ctx)
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       claims.ID,
		ReceiverID:     input.ReceiverID,
		Content:        input.Content,
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	storage.DB.Model(&models.Conversation{}).Where("id = ?", conversation.ID).
		Update("last_message_at", message.CreatedAt)

	if Hub != nil {
		Hub.EmitToRoomAndUser(conversation.ID, message.ReceiverID, ws.EventNewMessage, message)
	}

	go services.NewNotificationService().SendMessageNotification(message.ReceiverID, claims.ID, conversation.PropertyID)

	ctx.JSON(message)
}
