package routes

import (
	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
)

// GetCities lists the top of the location hierarchy.
func GetCities(ctx iris.Context) {
	var cities []models.Location
	if err := storage.DB.Where("kind = ?", models.LocationKindCity).
		Order("name ASC").Find(&cities).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(cities)
}

// GetLocationChildren lists the direct children of one location node.
func GetLocationChildren(ctx iris.Context) {
	locationID, paramErr := ctx.Params().GetUint("id")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	var parent models.Location
	if err := storage.DB.First(&parent, locationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var children []models.Location
	if err := storage.DB.Where("parent_id = ?", parent.ID).
		Order("name ASC").Find(&children).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(children)
}

// GetLocationTree returns a location with its subtree preloaded two
// levels deep, which covers city through neighborhood.
func GetLocationTree(ctx iris.Context) {
	locationID, paramErr := ctx.Params().GetUint("id")
	if paramErr != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	var location models.Location
	if err := storage.DB.Preload("Children.Children").
		First(&location, locationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&location)
}
