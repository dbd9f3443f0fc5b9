package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"

	"github.com/kataras/iris/v12"
)

type searchPage struct {
	Data []struct {
		Title string  `json:"title"`
		Price float64 `json:"price"`
	} `json:"data"`
	Meta struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func seedLocationTree(t *testing.T) (city, district, neighborhood *models.Location) {
	t.Helper()
	cityRow := models.Location{Name: "İstanbul", Kind: models.LocationKindCity}
	if err := storage.DB.Create(&cityRow).Error; err != nil {
		t.Fatalf("seed city: %v", err)
	}
	districtRow := models.Location{Name: "Silivri", Kind: models.LocationKindDistrict, ParentID: &cityRow.ID}
	if err := storage.DB.Create(&districtRow).Error; err != nil {
		t.Fatalf("seed district: %v", err)
	}
	neighborhoodRow := models.Location{Name: "Selimpaşa", Kind: models.LocationKindNeighborhood, ParentID: &districtRow.ID}
	if err := storage.DB.Create(&neighborhoodRow).Error; err != nil {
		t.Fatalf("seed neighborhood: %v", err)
	}
	return &cityRow, &districtRow, &neighborhoodRow
}

func searchJSON(t *testing.T, app *iris.Application, path string) searchPage {
	t.Helper()
	resp := doRequest(app, http.MethodGet, path, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("search %s: expected 200, got %d", path, resp.Code)
	}
	var page searchPage
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode search page: %v", err)
	}
	return page
}

func TestSearchFiltersByLocationSubtree(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	city, _, neighborhood := seedLocationTree(t)

	otherCity := models.Location{Name: "Ankara", Kind: models.LocationKindCity}
	storage.DB.Create(&otherCity)

	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "Selimpaşa Tarla", Category: "field",
		Status: models.PropertyStatusPublished, Price: 500000, AreaM2: 1000, LocationID: &neighborhood.ID})
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "Ankara Bağ", Category: "orchard",
		Status: models.PropertyStatusPublished, Price: 300000, AreaM2: 800, LocationID: &otherCity.ID})
	// Drafts never surface in search
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "Taslak İlan", Category: "field",
		Status: models.PropertyStatusDraft, Price: 100000, AreaM2: 500, LocationID: &neighborhood.ID})

	page := searchJSON(t, app, "/api/properties/search?locationID="+itoa(city.ID))
	if page.Meta.Total != 1 {
		t.Fatalf("expected 1 match under city subtree, got %d", page.Meta.Total)
	}
	if page.Data[0].Title != "Selimpaşa Tarla" {
		t.Fatalf("unexpected match %q", page.Data[0].Title)
	}
}

func TestSearchFiltersByPriceAndCategory(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")

	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "Ucuz Tarla", Category: "field",
		Status: models.PropertyStatusPublished, Price: 200000, AreaM2: 900})
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "Pahalı Tarla", Category: "field",
		Status: models.PropertyStatusPublished, Price: 900000, AreaM2: 2500})
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "İmarlı Arsa", Category: "residential_zoned",
		Status: models.PropertyStatusPublished, Price: 250000, AreaM2: 400})

	page := searchJSON(t, app, "/api/properties/search?category=field&maxPrice=500000")
	if page.Meta.Total != 1 || page.Data[0].Title != "Ucuz Tarla" {
		t.Fatalf("expected only the cheap field, got %+v", page.Data)
	}

	page = searchJSON(t, app, "/api/properties/search?minAreaM2=2000")
	if page.Meta.Total != 1 || page.Data[0].Title != "Pahalı Tarla" {
		t.Fatalf("expected only the large field, got %+v", page.Data)
	}
}

func TestSearchSortsByPrice(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "B", Category: "field",
		Status: models.PropertyStatusPublished, Price: 900000, AreaM2: 100})
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "A", Category: "field",
		Status: models.PropertyStatusPublished, Price: 100000, AreaM2: 100})

	page := searchJSON(t, app, "/api/properties/search?sort=price_asc")
	if len(page.Data) != 2 || page.Data[0].Price > page.Data[1].Price {
		t.Fatalf("expected ascending prices, got %+v", page.Data)
	}
}

func TestSearchTextQuery(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	owner := createTestUser(t, "owner@example.com", "owner")
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "Deniz manzaralı arsa", Category: "field",
		Status: models.PropertyStatusPublished, Price: 100, AreaM2: 100})
	storage.DB.Create(&models.Property{OwnerID: owner.ID, Title: "Yatırımlık tarla", Category: "field",
		Status: models.PropertyStatusPublished, Price: 100, AreaM2: 100, Description: "yola cepheli"})

	page := searchJSON(t, app, "/api/properties/search?query=cepheli")
	if page.Meta.Total != 1 || page.Data[0].Title != "Yatırımlık tarla" {
		t.Fatalf("expected description match, got %+v", page.Data)
	}
}
