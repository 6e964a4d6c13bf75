package model

import "time"

// Unit is a leasable part of a property.
type Unit struct {
	ID            string   `json:"id"`
	PropertyID    string   `json:"propertyId"`
	Label         string   `json:"label"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     float64  `json:"bathrooms"`
	Sqft          int      `json:"sqft"`
	Rent          *float64 `json:"rent"`
	Available     bool     `json:"available"`
	IsHidden      bool     `json:"isHidden"`
	CoverImageURL *string  `json:"coverImage"`
	CoverImageKey *string  `json:"coverImageKey"`
	Gallery       []Image  `json:"gallery"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StorageKeys returns the unit's cover and gallery storage keys.
func (u *Unit) StorageKeys() []string {
	var keys []string
	if u.CoverImageKey != nil && *u.CoverImageKey != "" {
		keys = append(keys, *u.CoverImageKey)
	}
	return append(keys, imageKeys(u.Gallery)...)
}
