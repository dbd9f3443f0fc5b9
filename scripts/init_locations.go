package main

import (
	"fmt"
	"log"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
)

type seedNode struct {
	name     string
	children []seedNode
}

var seedCities = []seedNode{
	{name: "İstanbul", children: []seedNode{
		{name: "Silivri", children: []seedNode{{name: "Selimpaşa"}, {name: "Kavaklı"}, {name: "Değirmenköy"}}},
		{name: "Çatalca", children: []seedNode{{name: "Kestanelik"}, {name: "Hallaçlı"}}},
		{name: "Arnavutköy", children: []seedNode{{name: "Hadımköy"}, {name: "Boğazköy"}}},
	}},
	{name: "Ankara", children: []seedNode{
		{name: "Polatlı", children: []seedNode{{name: "Şentepe"}, {name: "Yüzükbaşı"}}},
		{name: "Gölbaşı", children: []seedNode{{name: "İncek"}, {name: "Hacılar"}}},
	}},
	{name: "İzmir", children: []seedNode{
		{name: "Menderes", children: []seedNode{{name: "Görece"}, {name: "Tekeli"}}},
		{name: "Urla", children: []seedNode{{name: "Kuşçular"}, {name: "Bademler"}}},
	}},
	{name: "Antalya", children: []seedNode{
		{name: "Döşemealtı", children: []seedNode{{name: "Yeşilbayır"}, {name: "Çığlık"}}},
		{name: "Serik", children: []seedNode{{name: "Belek"}, {name: "Kadriye"}}},
	}},
}

func main() {
	storage.InitializeDB()

	created := 0
	for _, city := range seedCities {
		cityRow, cityCreated, err := upsertLocation(city.name, models.LocationKindCity, nil)
		if err != nil {
			log.Fatalf("Error seeding city %s: %v", city.name, err)
		}
		if cityCreated {
			created++
		}
		for _, district := range city.children {
			districtRow, districtCreated, err := upsertLocation(district.name, models.LocationKindDistrict, &cityRow.ID)
			if err != nil {
				log.Fatalf("Error seeding district %s: %v", district.name, err)
			}
			if districtCreated {
				created++
			}
			for _, neighborhood := range district.children {
				_, neighborhoodCreated, err := upsertLocation(neighborhood.name, models.LocationKindNeighborhood, &districtRow.ID)
				if err != nil {
					log.Fatalf("Error seeding neighborhood %s: %v", neighborhood.name, err)
				}
				if neighborhoodCreated {
					created++
				}
			}
		}
	}

	fmt.Printf("Location seeding completed, %d new locations created\n", created)
}

// upsertLocation finds a location by name, kind and parent, creating it when
// missing, so re-running the seed is safe.
func upsertLocation(name, kind string, parentID *uint) (*models.Location, bool, error) {
	query := storage.DB.Where("name = ? AND kind = ?", name, kind)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var location models.Location
	result := query.Limit(1).Find(&location)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return &location, false, nil
	}

	location = models.Location{Name: name, Kind: kind, ParentID: parentID}
	if err := storage.DB.Create(&location).Error; err != nil {
		return nil, false, err
	}
	return &location, true, nil
}
