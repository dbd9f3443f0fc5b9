package routes

import (
	"strings"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/services"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const contactsPerPage = 20

type CreateContactRequestInput struct {
	PropertyID uint   `json:"propertyID" validate:"required"`
	Name       string `json:"name" validate:"required,max=128"`
	Email      string `json:"email" validate:"required,email,max=256"`
	Phone      string `json:"phone" validate:"max=32"`
	Message    string `json:"message" validate:"required,max=5000"`
}

// CreateContactRequest records a contact request against a published
// listing. Works for guests; an authenticated caller is linked to the
// request.
func CreateContactRequest(ctx iris.Context) {
	var input CreateContactRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, input.PropertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if property.Status != models.PropertyStatusPublished {
		utils.CreateNotFound(ctx)
		return
	}

	request := models.ContactRequest{
		PropertyID: property.ID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Message:    input.Message,
		Status:     models.ContactStatusPending,
	}

	// Authentication is optional here: guests submit freely, a valid
	// bearer token links the request to the caller's account
	if auth := ctx.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(strings.TrimPrefix(auth, "Bearer ")); err == nil {
			userID := claims.ID
			request.UserID = &userID
		}
	}

	if err := storage.DB.Create(&request).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	go services.NewNotificationService().SendContactRequestNotification(property.OwnerID, &request, property.Title)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(request)
}

// GetContactRequests lists the contact requests for every listing the
// caller owns, unread first, newest first.
func GetContactRequests(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}

	query := storage.DB.Model(&models.ContactRequest{}).
		Joins("JOIN properties ON properties.id = contact_requests.property_id").
		Where("properties.owner_id = ?", claims.ID)
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("contact_requests.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var requests []models.ContactRequest
	if err := query.Preload("Property").
		Order("contact_requests.is_read ASC, contact_requests.created_at DESC").
		Offset((page - 1) * contactsPerPage).
		Limit(contactsPerPage).
		Find(&requests).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, requests, page, contactsPerPage, total)
}

// MarkContactRequestRead flags a request as seen by the listing owner.
func MarkContactRequestRead(ctx iris.Context) {
	request := ownedContactRequestFromParams(ctx)
	if request == nil {
		return
	}

	if err := storage.DB.Model(request).Update("is_read", true).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"read": true})
}

type UpdateContactStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending responded closed"`
}

// UpdateContactRequestStatus moves a request between pending, responded
// and closed.
func UpdateContactRequestStatus(ctx iris.Context) {
	request := ownedContactRequestFromParams(ctx)
	if request == nil {
		return
	}

	var input UpdateContactStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if err := storage.DB.Model(request).Update("status", input.Status).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	request.Status = input.Status
	ctx.JSON(request)
}

func ownedContactRequestFromParams(ctx iris.Context) *models.ContactRequest {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	requestID, paramErr := ctx.Params().GetUint("id")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return nil
	}

	var request models.ContactRequest
	if err := storage.DB.Preload("Property").First(&request, requestID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	if request.Property.OwnerID != claims.ID {
		utils.CreateForbidden(ctx)
		return nil
	}

	return &request
}
