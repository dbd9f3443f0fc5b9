package routes

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/datatypes"
)

type CreatePropertyInput struct {
	Title        string                 `json:"title" validate:"required,max=256"`
	Description  string                 `json:"description" validate:"max=10000"`
	Category     string                 `json:"category" validate:"required,oneof=residential_zoned commercial_zoned agricultural field orchard"`
	Price        float64                `json:"price" validate:"required,gt=0"`
	Currency     string                 `json:"currency" validate:"omitempty,oneof=TRY USD EUR"`
	AreaM2       float64                `json:"areaM2" validate:"required,gt=0"`
	BlockNo      string                 `json:"blockNo" validate:"max=32"`
	ParcelNo     string                 `json:"parcelNo" validate:"max=32"`
	ZoningStatus string                 `json:"zoningStatus" validate:"max=64"`
	LocationID   *uint                  `json:"locationID"`
	Lat          float64                `json:"lat"`
	Lng          float64                `json:"lng"`
	Attributes   map[string]interface{} `json:"attributes"`
	Images       []string               `json:"images"`
}

// CreateProperty inserts a draft listing for the caller.
func CreateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.LocationID != nil {
		var location models.Location
		if err := storage.DB.First(&location, *input.LocationID).Error; err != nil {
			utils.CreateError(iris.StatusUnprocessableEntity, "Validation error", "Unknown location.", ctx)
			return
		}
	}

	property := models.Property{
		OwnerID:      claims.ID,
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Status:       models.PropertyStatusDraft,
		Price:        input.Price,
		Currency:     input.Currency,
		AreaM2:       input.AreaM2,
		BlockNo:      input.BlockNo,
		ParcelNo:     input.ParcelNo,
		ZoningStatus: input.ZoningStatus,
		LocationID:   input.LocationID,
		Lat:          input.Lat,
		Lng:          input.Lng,
	}
	if property.Currency == "" {
		property.Currency = "TRY"
	}

	if input.Attributes != nil {
		attrJSON, _ := json.Marshal(input.Attributes)
		property.Attributes = datatypes.JSON(attrJSON)
	}

	property.Images = insertImages(input.Images, claims.ID)

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&property)
}

// GetProperty returns one listing. Drafts and inactive listings are
// visible to their owner and admins only.
func GetProperty(ctx iris.Context) {
	propertyID, paramErr := ctx.Params().GetUint("id")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	var property models.Property
	if err := storage.DB.Preload("Location").Preload("Owner").
		First(&property, propertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if property.Status != models.PropertyStatusPublished && property.Status != models.PropertyStatusSold {
		if !callerCanManage(ctx, property.OwnerID) {
			utils.CreateNotFound(ctx)
			return
		}
	}

	ctx.JSON(&property)
}

type UpdatePropertyInput struct {
	Title        string                 `json:"title" validate:"required,max=256"`
	Description  string                 `json:"description" validate:"max=10000"`
	Category     string                 `json:"category" validate:"required,oneof=residential_zoned commercial_zoned agricultural field orchard"`
	Price        float64                `json:"price" validate:"required,gt=0"`
	Currency     string                 `json:"currency" validate:"omitempty,oneof=TRY USD EUR"`
	AreaM2       float64                `json:"areaM2" validate:"required,gt=0"`
	BlockNo      string                 `json:"blockNo" validate:"max=32"`
	ParcelNo     string                 `json:"parcelNo" validate:"max=32"`
	ZoningStatus string                 `json:"zoningStatus" validate:"max=64"`
	LocationID   *uint                  `json:"locationID"`
	Lat          float64                `json:"lat"`
	Lng          float64                `json:"lng"`
	Attributes   map[string]interface{} `json:"attributes"`
	Images       []string               `json:"images"`
}

// UpdateProperty replaces the editable fields of a listing the caller owns.
func UpdateProperty(ctx iris.Context) {
	property := ownedPropertyFromParams(ctx)
	if property == nil {
		return
	}

	var input UpdatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.LocationID != nil {
		var location models.Location
		if err := storage.DB.First(&location, *input.LocationID).Error; err != nil {
			utils.CreateError(iris.StatusUnprocessableEntity, "Validation error", "Unknown location.", ctx)
			return
		}
	}

	property.Title = input.Title
	property.Description = input.Description
	property.Category = input.Category
	property.Price = input.Price
	if input.Currency != "" {
		property.Currency = input.Currency
	}
	property.AreaM2 = input.AreaM2
	property.BlockNo = input.BlockNo
	property.ParcelNo = input.ParcelNo
	property.ZoningStatus = input.ZoningStatus
	property.LocationID = input.LocationID
	property.Lat = input.Lat
	property.Lng = input.Lng

	if input.Attributes != nil {
		attrJSON, _ := json.Marshal(input.Attributes)
		property.Attributes = datatypes.JSON(attrJSON)
	}

	property.Images = updateImages(*property, input.Images, property.OwnerID)

	if err := storage.DB.Save(property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(property)
}

type UpdatePropertyStatusInput struct {
	Status string `json:"status" validate:"required,oneof=draft published sold inactive"`
}

// UpdatePropertyStatus moves a listing through its lifecycle.
func UpdatePropertyStatus(ctx iris.Context) {
	property := ownedPropertyFromParams(ctx)
	if property == nil {
		return
	}

	var input UpdatePropertyStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !models.ValidStatusTransition(property.Status, input.Status) {
		utils.CreateError(iris.StatusConflict, "Status Conflict",
			fmt.Sprintf("Cannot move a %s listing to %s.", property.Status, input.Status), ctx)
		return
	}

	if err := storage.DB.Model(property).Update("status", input.Status).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	property.Status = input.Status
	ctx.JSON(property)
}

// DeleteProperty removes a listing the caller owns. Old images are
// cleaned up from storage in the background.
func DeleteProperty(ctx iris.Context) {
	property := ownedPropertyFromParams(ctx)
	if property == nil {
		return
	}

	if err := storage.DB.Delete(property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if property.Images != "" {
		var images []string
		json.Unmarshal([]byte(property.Images), &images)
		for _, image := range images {
			go storage.DeleteImage(image)
		}
	}

	ctx.JSON(iris.Map{"deleted": true})
}

// GetMyProperties lists every listing the caller owns, drafts included.
func GetMyProperties(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var properties []models.Property
	if err := storage.DB.Preload("Location").
		Where("owner_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(properties)
}

// ownedPropertyFromParams loads the listing in the id parameter and writes
// the failure response itself when the caller may not manage it.
func ownedPropertyFromParams(ctx iris.Context) *models.Property {
	propertyID, paramErr := ctx.Params().GetUint("id")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return nil
	}

	var property models.Property
	if err := storage.DB.First(&property, propertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	if !callerCanManage(ctx, property.OwnerID) {
		utils.CreateForbidden(ctx)
		return nil
	}

	return &property
}

func callerCanManage(ctx iris.Context, ownerID uint) bool {
	claims, ok := jwt.Get(ctx).(*utils.AccessToken)
	if !ok {
		return false
	}
	if claims.ID == ownerID {
		return true
	}
	return claims.Role == models.RoleAdmin || claims.Role == models.RoleSuperAdmin
}

// insertImages uploads any base64 payloads and returns the stored image
// list as a JSON string. Plain URLs pass through untouched.
func insertImages(images []string, userID uint) string {
	urls := []string{}
	for idx, image := range images {
		if len(image) > 8 && image[:4] == "http" {
			urls = append(urls, image)
			continue
		}
		publicID := fmt.Sprintf("property/%s/%d-%s", strconv.FormatUint(uint64(userID), 10), idx, utils.GenerateShortToken(8))
		if url := storage.UploadBase64Image(image, publicID); url != "" {
			urls = append(urls, url)
		}
	}

	urlsJSON, _ := json.Marshal(urls)
	return string(urlsJSON)
}

// updateImages reconciles the stored image set with the submitted one,
// deleting dropped uploads and uploading new base64 payloads.
func updateImages(property models.Property, images []string, userID uint) string {
	var existing []string
	if property.Images != "" {
		json.Unmarshal([]byte(property.Images), &existing)
	}

	submitted := make(map[string]bool, len(images))
	for _, image := range images {
		submitted[image] = true
	}
	for _, url := range existing {
		if !submitted[url] {
			go storage.DeleteImage(url)
		}
	}

	return insertImages(images, userID)
}
