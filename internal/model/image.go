package model

// Image is a gallery entry of a property or unit.
type Image struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	StorageKey *string `json:"storageKey"`
	Order      int     `json:"order"`
}

func imageKeys(images []Image) []string {
	var keys []string
	for _, img := range images {
		if img.StorageKey != nil && *img.StorageKey != "" {
			keys = append(keys, *img.StorageKey)
		}
	}
	return keys
}
