package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/services"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
)

// GET /admin/properties
func AdminListProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))
	ownerID := ctx.URLParamDefault("owner_id", "")
	flagged := ctx.URLParamDefault("flagged", "")
	createdFrom := ctx.URLParamDefault("created_from", "")
	createdTo := ctx.URLParamDefault("created_to", "")

	q := storage.DB.Model(&models.Property{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if flagged != "" {
		q = q.Where("is_flagged = ?", flagged == "true")
	}
	if locationID, err := strconv.ParseUint(ctx.URLParam("location_id"), 10, 64); err == nil {
		q = q.Where("location_id IN ?", services.LocationSubtreeIDs(uint(locationID)))
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(description) LIKE ? OR block_no = ? OR parcel_no = ?", like, like, search, search)
	}
	if createdFrom != "" {
		if t, err := time.Parse(time.RFC3339, createdFrom); err == nil {
			q = q.Where("created_at >= ?", t)
		}
	}
	if createdTo != "" {
		if t, err := time.Parse(time.RFC3339, createdTo); err == nil {
			q = q.Where("created_at <= ?", t)
		}
	}

	var total int64
	q.Count(&total)

	var props []models.Property
	if err := q.Preload("Owner").Preload("Location").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&props).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, props, page, perPage, total)
}

// GET /admin/properties/:id?include=owner,contacts,conversations
func AdminGetProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	include := strings.Split(strings.TrimSpace(ctx.URLParamDefault("include", "")), ",")

	var prop models.Property
	q := storage.DB.Model(&models.Property{}).Preload("Location")
	for _, inc := range include {
		if strings.TrimSpace(inc) == "owner" {
			q = q.Preload("Owner")
		}
	}
	if err := q.First(&prop, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}

	extra := iris.Map{}
	for _, inc := range include {
		switch strings.TrimSpace(inc) {
		case "contacts":
			var contacts []models.ContactRequest
			storage.DB.Where("property_id = ?", prop.ID).Order("created_at DESC").Limit(50).Find(&contacts)
			extra["contacts"] = contacts
		case "conversations":
			var conversations int64
			storage.DB.Model(&models.Conversation{}).Where("property_id = ?", prop.ID).Count(&conversations)
			extra["conversationCount"] = conversations
		}
	}

	ctx.JSON(iris.Map{"data": prop, "meta": extra, "links": iris.Map{}})
}

// PATCH /admin/properties/:id/status {status, note}
func AdminUpdatePropertyStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var body struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Status == "" {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "status required")
		return
	}
	if body.Status != models.PropertyStatusDraft && body.Status != models.PropertyStatusPublished &&
		body.Status != models.PropertyStatusSold && body.Status != models.PropertyStatusInactive {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "unknown status")
		return
	}

	var prop models.Property
	if err := storage.DB.First(&prop, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}

	// Admins may force any state, bypassing the owner transition rules
	before := prop
	prop.Status = body.Status
	if body.Note != "" {
		prop.FlagReason = body.Note
	}
	if err := storage.DB.Save(&prop).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "property.status_update", "property", prop.ID, before, prop)

	if before.Status != prop.Status {
		notificationService := services.NewNotificationService()
		go notificationService.SendListingStatusNotification(prop.OwnerID, prop.ID, prop.Title, prop.Status)
	}

	ctx.JSON(iris.Map{"data": prop})
}

// POST /admin/properties/:id/flag { reason }
func AdminFlagProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "reason required")
		return
	}
	var prop models.Property
	if err := storage.DB.First(&prop, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}
	before := prop
	prop.IsFlagged = true
	prop.FlagReason = body.Reason
	if err := storage.DB.Save(&prop).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "property.flag", "property", prop.ID, before, prop)
	ctx.JSON(iris.Map{"data": prop})
}

// POST /admin/properties/:id/unflag
func AdminUnflagProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var prop models.Property
	if err := storage.DB.First(&prop, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}
	before := prop
	prop.IsFlagged = false
	prop.FlagReason = ""
	if err := storage.DB.Save(&prop).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "property.unflag", "property", prop.ID, before, prop)
	ctx.JSON(iris.Map{"data": prop})
}
