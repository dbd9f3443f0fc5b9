package routes

import (
	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm/clause"
)

// GetFavorites lists the caller's favorites, newest first, with the
// listing preloaded.
func GetFavorites(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var favorites []models.Favorite
	if err := storage.DB.Preload("Property").Preload("Property.Location").
		Where("user_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(favorites)
}

// AddFavorite saves a listing for the caller. Favoriting the same
// listing again is a no-op.
func AddFavorite(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	propertyID, paramErr := ctx.Params().GetUint("propertyID")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, propertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if property.Status != models.PropertyStatusPublished {
		utils.CreateNotFound(ctx)
		return
	}

	favorite := models.Favorite{UserID: claims.ID, PropertyID: property.ID}
	if err := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&favorite).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"favorited": true})
}

// RemoveFavorite drops a saved listing. Removing one that was never
// saved succeeds silently.
func RemoveFavorite(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	propertyID, paramErr := ctx.Params().GetUint("propertyID")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	if err := storage.DB.Unscoped().
		Where("user_id = ? AND property_id = ?", claims.ID, propertyID).
		Delete(&models.Favorite{}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"favorited": false})
}
