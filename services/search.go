package services

import (
	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"

	"gorm.io/gorm"
)

// PropertyFilters are the search criteria shared by the search endpoint
// and saved searches (they are persisted verbatim as a saved search's
// criteria JSON).
type PropertyFilters struct {
	LocationID uint    `json:"locationID"`
	Category   string  `json:"category" validate:"omitempty,oneof=residential_zoned commercial_zoned agricultural field orchard"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
	MinAreaM2  float64 `json:"minAreaM2"`
	MaxAreaM2  float64 `json:"maxAreaM2"`
	Query      string  `json:"query"`
}

// ApplyPropertyFilters narrows a property query to published listings
// matching the filters. A location filter matches the node and its whole
// subtree (city covers districts covers neighborhoods).
func ApplyPropertyFilters(db *gorm.DB, filters PropertyFilters) *gorm.DB {
	q := db.Model(&models.Property{}).Where("status = ?", models.PropertyStatusPublished)

	if filters.LocationID > 0 {
		q = q.Where("location_id IN ?", LocationSubtreeIDs(filters.LocationID))
	}
	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.MinPrice > 0 {
		q = q.Where("price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		q = q.Where("price <= ?", filters.MaxPrice)
	}
	if filters.MinAreaM2 > 0 {
		q = q.Where("area_m2 >= ?", filters.MinAreaM2)
	}
	if filters.MaxAreaM2 > 0 {
		q = q.Where("area_m2 <= ?", filters.MaxAreaM2)
	}
	if filters.Query != "" {
		search := "%" + filters.Query + "%"
		q = q.Where("lower(title) LIKE lower(?) OR lower(description) LIKE lower(?)", search, search)
	}
	return q
}

// LocationSubtreeIDs returns the id of the node plus all descendants.
// The hierarchy is at most three levels deep (city > district >
// neighborhood), so two child lookups cover it.
func LocationSubtreeIDs(locationID uint) []uint {
	ids := []uint{locationID}
	frontier := []uint{locationID}
	for depth := 0; depth < 2 && len(frontier) > 0; depth++ {
		var children []models.Location
		if err := storage.DB.Select("id").Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			break
		}
		frontier = frontier[:0]
		for _, child := range children {
			ids = append(ids, child.ID)
			frontier = append(frontier, child.ID)
		}
	}
	return ids
}
