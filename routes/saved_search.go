package routes

import (
	"encoding/json"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/services"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/datatypes"
)

type SavedSearchInput struct {
	Name          string                   `json:"name" validate:"required,max=128"`
	Criteria      services.PropertyFilters `json:"criteria" validate:"required"`
	NotifyEnabled bool                     `json:"notifyEnabled"`
}

// CreateSavedSearch persists the submitted filters under a name.
func CreateSavedSearch(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input SavedSearchInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	criteriaJSON, _ := json.Marshal(input.Criteria)

	search := models.SavedSearch{
		UserID:        claims.ID,
		Name:          input.Name,
		Criteria:      datatypes.JSON(criteriaJSON),
		NotifyEnabled: input.NotifyEnabled,
	}
	if err := storage.DB.Create(&search).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(search)
}

// GetSavedSearches lists the caller's saved searches.
func GetSavedSearches(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var searches []models.SavedSearch
	if err := storage.DB.Where("user_id = ?", claims.ID).
		Order("created_at DESC").Find(&searches).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(searches)
}

// UpdateSavedSearch replaces the name, criteria and notification flag of
// one of the caller's saved searches.
func UpdateSavedSearch(ctx iris.Context) {
	search := ownedSavedSearchFromParams(ctx)
	if search == nil {
		return
	}

	var input SavedSearchInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	criteriaJSON, _ := json.Marshal(input.Criteria)

	updates := map[string]interface{}{
		"name":           input.Name,
		"criteria":       datatypes.JSON(criteriaJSON),
		"notify_enabled": input.NotifyEnabled,
	}
	if err := storage.DB.Model(search).Updates(updates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(search)
}

// DeleteSavedSearch removes one of the caller's saved searches.
func DeleteSavedSearch(ctx iris.Context) {
	search := ownedSavedSearchFromParams(ctx)
	if search == nil {
		return
	}

	if err := storage.DB.Delete(search).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"deleted": true})
}

// RunSavedSearch executes a saved search on demand and returns the match
// count.
func RunSavedSearch(ctx iris.Context) {
	search := ownedSavedSearchFromParams(ctx)
	if search == nil {
		return
	}

	total, err := services.NewSavedSearchService().Run(search)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"resultCount": total, "lastRunAt": search.LastRunAt})
}

func ownedSavedSearchFromParams(ctx iris.Context) *models.SavedSearch {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	searchID, paramErr := ctx.Params().GetUint("id")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return nil
	}

	var search models.SavedSearch
	if err := storage.DB.First(&search, searchID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	if search.UserID != claims.ID {
		utils.CreateForbidden(ctx)
		return nil
	}

	return &search
}
