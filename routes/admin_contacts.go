package routes

import (
	"net/http"
	"strings"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
)

// GET /admin/contacts?status=&property_id=&q=&page=&per_page=
func AdminListContactRequests(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	propertyID := ctx.URLParamDefault("property_id", "")
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))

	query := storage.DB.Model(&models.ContactRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	var requests []models.ContactRequest
	if err := query.Preload("Property").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, requests, page, perPage, total)
}

// DELETE /admin/contacts/:id — spam cleanup
func AdminDeleteContactRequest(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var request models.ContactRequest
	if err := storage.DB.First(&request, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "contact request not found")
		return
	}

	if err := storage.DB.Delete(&request).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "contact.delete", "contact_request", request.ID, request, nil)
	ctx.JSON(iris.Map{"data": iris.Map{"deleted": true}})
}
