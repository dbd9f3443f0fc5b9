package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
)

func TestFavoriteAddIsIdempotent(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	user := createTestUser(t, "user@example.com", "user")
	property := createTestListing(t, owner.ID)

	token := signTestToken(user.ID, user.Role)
	path := "/api/favorites/" + itoa(property.ID)

	resp := doRequest(app, http.MethodPost, path, token, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("first add: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = doRequest(app, http.MethodPost, path, token, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("second add: expected 201, got %d", resp.Code)
	}

	var favorites int64
	storage.DB.Model(&models.Favorite{}).Where("user_id = ?", user.ID).Count(&favorites)
	if favorites != 1 {
		t.Fatalf("expected a single favorite row, got %d", favorites)
	}
}

func TestFavoriteRemove(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	user := createTestUser(t, "user@example.com", "user")
	property := createTestListing(t, owner.ID)

	token := signTestToken(user.ID, user.Role)
	path := "/api/favorites/" + itoa(property.ID)

	doRequest(app, http.MethodPost, path, token, nil)

	resp := doRequest(app, http.MethodDelete, path, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", resp.Code)
	}

	var favorites int64
	storage.DB.Model(&models.Favorite{}).Where("user_id = ?", user.ID).Count(&favorites)
	if favorites != 0 {
		t.Fatalf("expected favorite removed, got %d rows", favorites)
	}

	// Removing again still succeeds
	resp = doRequest(app, http.MethodDelete, path, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("second remove: expected 200, got %d", resp.Code)
	}

	// And re-adding after removal works despite the unique index
	resp = doRequest(app, http.MethodPost, path, token, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("re-add: expected 201, got %d", resp.Code)
	}
}

func TestFavoriteUnpublishedListingRejected(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	user := createTestUser(t, "user@example.com", "user")

	draft := models.Property{OwnerID: owner.ID, Title: "Taslak", Category: "field", Status: models.PropertyStatusDraft, Price: 1, AreaM2: 1}
	storage.DB.Create(&draft)

	resp := doRequest(app, http.MethodPost, "/api/favorites/"+itoa(draft.ID), signTestToken(user.ID, user.Role), nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for draft listing, got %d", resp.Code)
	}
}

func TestFavoriteListPreloadsListing(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	user := createTestUser(t, "user@example.com", "user")
	property := createTestListing(t, owner.ID)

	token := signTestToken(user.ID, user.Role)
	doRequest(app, http.MethodPost, "/api/favorites/"+itoa(property.ID), token, nil)

	resp := doRequest(app, http.MethodGet, "/api/favorites", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.Code)
	}

	var favorites []struct {
		Property struct {
			Title string `json:"title"`
		} `json:"property"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &favorites); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].Property.Title != property.Title {
		t.Fatalf("expected favorited listing preloaded, got %+v", favorites)
	}
}
