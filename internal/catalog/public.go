package catalog

import (
	"bytes"
	"context"
	"html/template"

	"github.com/uphproperties/uphsite/internal/model"
)

// PublicProperty is the tenant-facing view of a property. Storage keys and
// hidden units are left out.
type PublicProperty struct {
	ID              string        `json:"id"`
	Slug            string        `json:"slug"`
	Name            string        `json:"name"`
	Address         string        `json:"address"`
	City            string        `json:"city"`
	State           string        `json:"state"`
	Zip             string        `json:"zip"`
	Status          string        `json:"status"`
	Type            string        `json:"type"`
	Description     string        `json:"description"`
	DescriptionHTML template.HTML `json:"descriptionHtml"`
	BedroomsSummary string        `json:"bedroomsSummary"`
	BathsSummary    string        `json:"bathsSummary"`
	SqftApprox      string        `json:"sqftApprox"`
	HeroImageURL    string        `json:"heroImageUrl"`
	Gallery         []string      `json:"gallery"`
	Amenities       []string      `json:"amenities"`
	RentFrom        *float64      `json:"rentFrom"`
	RentTo          *float64      `json:"rentTo"`
	HasUnits        bool          `json:"hasUnits"`
	Latitude        *float64      `json:"latitude"`
	Longitude       *float64      `json:"longitude"`
	Units           []PublicUnit  `json:"units"`
}

// PublicUnit is the tenant-facing view of a unit.
type PublicUnit struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Bedrooms   int      `json:"bedrooms"`
	Bathrooms  float64  `json:"bathrooms"`
	Sqft       int      `json:"sqft"`
	Rent       *float64 `json:"rent"`
	Available  bool     `json:"available"`
	CoverImage *string  `json:"coverImage"`
	Gallery    []string `json:"gallery"`
}

// PublicListings returns the public view of every property.
func (s *Service) PublicListings(ctx context.Context) ([]PublicProperty, error) {
	props, err := s.ListProperties(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PublicProperty, 0, len(props))
	for i := range props {
		out = append(out, s.publicView(&props[i]))
	}
	return out, nil
}

// PublicListing returns the public view of the property with slug.
func (s *Service) PublicListing(ctx context.Context, slug string) (*PublicProperty, error) {
	p, err := s.GetPropertyBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	view := s.publicView(p)
	return &view, nil
}

func (s *Service) publicView(p *model.Property) PublicProperty {
	view := PublicProperty{
		ID:              p.ID,
		Slug:            p.Slug,
		Name:            p.Name,
		Address:         p.Address,
		City:            p.City,
		State:           p.State,
		Zip:             p.Zip,
		Status:          p.Status,
		Type:            p.Type,
		Description:     p.Description,
		DescriptionHTML: s.renderMarkdown(p.Description),
		BedroomsSummary: p.BedroomsSummary,
		BathsSummary:    p.BathsSummary,
		SqftApprox:      p.SqftApprox,
		HeroImageURL:    p.HeroImageURL,
		Gallery:         imageURLs(p.Gallery),
		Amenities:       p.Amenities,
		RentFrom:        p.RentFrom,
		RentTo:          p.RentTo,
		HasUnits:        p.HasUnits,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Units:           []PublicUnit{},
	}
	if view.Amenities == nil {
		view.Amenities = []string{}
	}

	for _, u := range p.VisibleUnits() {
		view.Units = append(view.Units, PublicUnit{
			ID:         u.ID,
			Label:      u.Label,
			Bedrooms:   u.Bedrooms,
			Bathrooms:  u.Bathrooms,
			Sqft:       u.Sqft,
			Rent:       u.Rent,
			Available:  u.Available,
			CoverImage: u.CoverImageURL,
			Gallery:    imageURLs(u.Gallery),
		})
	}
	return view
}

func imageURLs(images []model.Image) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	return urls
}

// renderMarkdown converts a description to HTML. On failure the escaped
// source is returned.
func (s *Service) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		s.logger.Warn("failed to render description", "error", err)
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
