package routes

import (
	"time"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"

	"github.com/kataras/iris/v12"
)

// GET /admin/stats
func AdminStats(ctx iris.Context) {
	var publishedListings int64
	storage.DB.Model(&models.Property{}).Where("status = ?", models.PropertyStatusPublished).Count(&publishedListings)
	var draftListings int64
	storage.DB.Model(&models.Property{}).Where("status = ?", models.PropertyStatusDraft).Count(&draftListings)
	var flaggedListings int64
	storage.DB.Model(&models.Property{}).Where("is_flagged = ?", true).Count(&flaggedListings)
	var pendingContacts int64
	storage.DB.Model(&models.ContactRequest{}).Where("status = ?", models.ContactStatusPending).Count(&pendingContacts)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var newUsers7, newUsers30 int64
	storage.DB.Model(&models.User{}).Where("created_at >= ?", since7).Count(&newUsers7)
	storage.DB.Model(&models.User{}).Where("created_at >= ?", since30).Count(&newUsers30)
	var newMessages7, newMessages30 int64
	storage.DB.Model(&models.Message{}).Where("created_at >= ?", since7).Count(&newMessages7)
	storage.DB.Model(&models.Message{}).Where("created_at >= ?", since30).Count(&newMessages30)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"published_listings": publishedListings,
			"draft_listings":     draftListings,
			"flagged_listings":   flaggedListings,
			"pending_contacts":   pendingContacts,
			"new_users_7d":       newUsers7,
			"new_users_30d":      newUsers30,
			"new_messages_7d":    newMessages7,
			"new_messages_30d":   newMessages30,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /admin/activity
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
