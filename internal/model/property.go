package model

import "time"

// Property is a managed building or listing.
type Property struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Zip             string   `json:"zip"`
	Status          string   `json:"status"`
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	BedroomsSummary string   `json:"bedroomsSummary"`
	BathsSummary    string   `json:"bathsSummary"`
	SqftApprox      string   `json:"sqftApprox"`
	HeroImageURL    string   `json:"heroImageUrl"`
	HeroImageKey    *string  `json:"heroImageKey"`
	Amenities       []string `json:"amenities"`
	RentFrom        *float64 `json:"rentFrom"`
	RentTo          *float64 `json:"rentTo"`
	HasUnits        bool     `json:"hasUnits"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Gallery         []Image  `json:"gallery"`
	Units           []Unit   `json:"units"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Property statuses shown on listings. The field is free-form; these are the
// values the admin forms offer.
const (
	PropertyStatusForRent    = "For Rent"
	PropertyStatusForSale    = "For Sale"
	PropertyStatusComingSoon = "Coming Soon"
)

// VisibleUnits returns the units that may be shown publicly.
func (p *Property) VisibleUnits() []Unit {
	visible := make([]Unit, 0, len(p.Units))
	for _, u := range p.Units {
		if !u.IsHidden {
			visible = append(visible, u)
		}
	}
	return visible
}

// StorageKeys returns every storage key owned by the property: hero, gallery,
// and each unit's cover and gallery.
func (p *Property) StorageKeys() []string {
	var keys []string
	if p.HeroImageKey != nil && *p.HeroImageKey != "" {
		keys = append(keys, *p.HeroImageKey)
	}
	keys = append(keys, imageKeys(p.Gallery)...)
	for i := range p.Units {
		keys = append(keys, p.Units[i].StorageKeys()...)
	}
	return keys
}
