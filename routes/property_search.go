package routes

import (
	"strconv"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/services"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"

	"github.com/kataras/iris/v12"
)

const propertiesPerPage = 20

// SearchProperties lists published listings matching the query string
// filters, newest first unless a sort is given.
func SearchProperties(ctx iris.Context) {
	filters := services.PropertyFilters{
		Category:  ctx.URLParam("category"),
		Query:     ctx.URLParam("query"),
		MinPrice:  ctx.URLParamFloat64Default("minPrice", 0),
		MaxPrice:  ctx.URLParamFloat64Default("maxPrice", 0),
		MinAreaM2: ctx.URLParamFloat64Default("minAreaM2", 0),
		MaxAreaM2: ctx.URLParamFloat64Default("maxAreaM2", 0),
	}
	if locationID, err := strconv.ParseUint(ctx.URLParam("locationID"), 10, 64); err == nil {
		filters.LocationID = uint(locationID)
	}

	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}

	query := services.ApplyPropertyFilters(storage.DB, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var properties []models.Property
	if err := query.Preload("Location").
		Order(searchOrder(ctx.URLParam("sort"))).
		Offset((page - 1) * propertiesPerPage).
		Limit(propertiesPerPage).
		Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, properties, page, propertiesPerPage, total)
}

func searchOrder(sort string) string {
	switch sort {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "area_asc":
		return "area_m2 ASC"
	case "area_desc":
		return "area_m2 DESC"
	default:
		return "created_at DESC"
	}
}
