package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
)

// SavedSearchService re-runs persisted search criteria and notifies users
// about new matches.
type SavedSearchService struct {
	notifications *NotificationService
}

func NewSavedSearchService() *SavedSearchService {
	return &SavedSearchService{notifications: NewNotificationService()}
}

// Run executes one saved search, stamps its run metadata and, when
// notifications are enabled and the match count grew since the last run,
// pushes an alert. Returns the current match count.
func (s *SavedSearchService) Run(search *models.SavedSearch) (int64, error) {
	var filters PropertyFilters
	if len(search.Criteria) > 0 {
		if err := json.Unmarshal(search.Criteria, &filters); err != nil {
			return 0, err
		}
	}

	var total int64
	if err := ApplyPropertyFilters(storage.DB, filters).Count(&total).Error; err != nil {
		return 0, err
	}

	newMatches := int(total) - search.LastResultCount
	now := time.Now()
	updates := map[string]interface{}{
		"last_run_at":       now,
		"last_result_count": total,
	}
	if err := storage.DB.Model(search).Updates(updates).Error; err != nil {
		return total, err
	}
	search.LastRunAt = &now
	search.LastResultCount = int(total)

	if search.NotifyEnabled && newMatches > 0 {
		if err := s.notifications.SendSavedSearchNotification(search.UserID, search, newMatches); err != nil {
			log.Printf("saved search %d: notification failed: %v", search.ID, err)
		}
	}

	return total, nil
}

// RunAll executes every notification-enabled saved search, used by the
// periodic runner in main.
func (s *SavedSearchService) RunAll() {
	var searches []models.SavedSearch
	if err := storage.DB.Where("notify_enabled = ?", true).Find(&searches).Error; err != nil {
		log.Printf("saved searches: load failed: %v", err)
		return
	}
	for i := range searches {
		if _, err := s.Run(&searches[i]); err != nil {
			log.Printf("saved search %d: run failed: %v", searches[i].ID, err)
		}
	}
}
