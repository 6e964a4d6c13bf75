package catalog

import (
	"context"
	"fmt"

	"github.com/uphproperties/uphsite/internal/model"
	"github.com/uphproperties/uphsite/internal/storage"
	"github.com/uphproperties/uphsite/internal/store"
)

func propertyPrefix(p *model.Property) string {
	return "properties/" + p.Slug
}

func unitPrefix(p *model.Property, unitID string) string {
	return fmt.Sprintf("%s/units/%s", propertyPrefix(p), unitID)
}

func requireFile(field string, f storage.File) error {
	if len(f.Data) == 0 {
		return &ValidationError{Message: field + " file is required", Fields: []string{field}}
	}
	return nil
}

func derefKey(key *string) string {
	if key == nil {
		return ""
	}
	return *key
}

// SetHero replaces the property's hero image. The previous object is removed
// only after the row points at the new one.
func (s *Service) SetHero(ctx context.Context, propertyID string, f storage.File) (*model.Property, error) {
	if err := requireFile("heroImage", f); err != nil {
		return nil, err
	}
	prepared, err := prepareImage("heroImage", f)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	obj, err := s.upload(ctx, propertyPrefix(p)+"/hero", prepared)
	if err != nil {
		return nil, err
	}

	found, err := store.SetPropertyHero(ctx, s.db, propertyID, obj.URL, &obj.Key)
	if err == nil && !found {
		err = notFound("property", propertyID)
	}
	if err != nil {
		s.removeObjects(ctx, []string{obj.Key})
		return nil, err
	}

	if old := derefKey(p.HeroImageKey); old != "" && old != obj.Key {
		s.removeObjects(ctx, []string{old})
	}
	return s.GetProperty(ctx, propertyID)
}

// ClearHero removes the property's hero image.
func (s *Service) ClearHero(ctx context.Context, propertyID string) (*model.Property, error) {
	p, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.HeroImageURL == "" && p.HeroImageKey == nil {
		return p, nil
	}

	found, err := store.SetPropertyHero(ctx, s.db, propertyID, "", nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("property", propertyID)
	}

	s.removeObjects(ctx, []string{derefKey(p.HeroImageKey)})
	return s.GetProperty(ctx, propertyID)
}

// AddGallery appends images to the property's gallery after its current
// last image. Empty files are ignored; at least one image is required.
func (s *Service) AddGallery(ctx context.Context, propertyID string, files []storage.File) ([]model.Image, error) {
	prepared, err := prepareGallery(files)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	return s.appendGallery(ctx, propertyPrefix(p)+"/gallery", prepared, func(images []model.Image) ([]model.Image, error) {
		added, err := store.AppendPropertyImages(ctx, s.db, propertyID, images)
		if err == nil && added == nil {
			err = notFound("property", propertyID)
		}
		return added, err
	})
}

// RemoveGalleryImage deletes one gallery image of the property.
func (s *Service) RemoveGalleryImage(ctx context.Context, propertyID, imageID string) error {
	img, owner, err := store.GetPropertyImage(ctx, s.db, imageID)
	if err != nil {
		return err
	}
	if img == nil || owner != propertyID {
		return notFound("image", imageID)
	}

	deleted, err := store.DeletePropertyImage(ctx, s.db, imageID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("image", imageID)
	}
	s.removeObjects(ctx, []string{derefKey(img.StorageKey)})
	return nil
}

// SetUnitCover replaces a unit's cover image. The previous object is removed
// only after the row points at the new one.
func (s *Service) SetUnitCover(ctx context.Context, propertyID, unitID string, f storage.File) (*model.Unit, error) {
	if err := requireFile("coverImage", f); err != nil {
		return nil, err
	}
	prepared, err := prepareImage("coverImage", f)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	u, err := s.unitOf(ctx, propertyID, unitID)
	if err != nil {
		return nil, err
	}

	obj, err := s.upload(ctx, unitPrefix(p, unitID)+"/cover", prepared)
	if err != nil {
		return nil, err
	}

	found, err := store.SetUnitCover(ctx, s.db, unitID, &obj.URL, &obj.Key)
	if err == nil && !found {
		err = notFound("unit", unitID)
	}
	if err != nil {
		s.removeObjects(ctx, []string{obj.Key})
		return nil, err
	}

	if old := derefKey(u.CoverImageKey); old != "" && old != obj.Key {
		s.removeObjects(ctx, []string{old})
	}
	return s.unitOf(ctx, propertyID, unitID)
}

// ClearUnitCover removes a unit's cover image.
func (s *Service) ClearUnitCover(ctx context.Context, propertyID, unitID string) (*model.Unit, error) {
	u, err := s.unitOf(ctx, propertyID, unitID)
	if err != nil {
		return nil, err
	}
	if u.CoverImageURL == nil && u.CoverImageKey == nil {
		return u, nil
	}

	found, err := store.SetUnitCover(ctx, s.db, unitID, nil, nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("unit", unitID)
	}

	s.removeObjects(ctx, []string{derefKey(u.CoverImageKey)})
	return s.unitOf(ctx, propertyID, unitID)
}

// AddUnitGallery appends images to a unit's gallery.
func (s *Service) AddUnitGallery(ctx context.Context, propertyID, unitID string, files []storage.File) ([]model.Image, error) {
	prepared, err := prepareGallery(files)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.unitOf(ctx, propertyID, unitID); err != nil {
		return nil, err
	}

	return s.appendGallery(ctx, unitPrefix(p, unitID)+"/gallery", prepared, func(images []model.Image) ([]model.Image, error) {
		added, err := store.AppendUnitImages(ctx, s.db, unitID, images)
		if err == nil && added == nil {
			err = notFound("unit", unitID)
		}
		return added, err
	})
}

// RemoveUnitGalleryImage deletes one gallery image of a unit.
func (s *Service) RemoveUnitGalleryImage(ctx context.Context, propertyID, unitID, imageID string) error {
	if _, err := s.unitOf(ctx, propertyID, unitID); err != nil {
		return err
	}
	img, owner, err := store.GetUnitImage(ctx, s.db, imageID)
	if err != nil {
		return err
	}
	if img == nil || owner != unitID {
		return notFound("image", imageID)
	}

	deleted, err := store.DeleteUnitImage(ctx, s.db, imageID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("image", imageID)
	}
	s.removeObjects(ctx, []string{derefKey(img.StorageKey)})
	return nil
}

func prepareGallery(files []storage.File) ([]storage.File, error) {
	prepared, err := prepareImages("gallery", files)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return nil, &ValidationError{Message: "at least one image file is required", Fields: []string{"files"}}
	}
	return prepared, nil
}

// appendGallery uploads files under prefix and records them with insert. If
// insert fails the uploads are removed.
func (s *Service) appendGallery(ctx context.Context, prefix string, files []storage.File, insert func([]model.Image) ([]model.Image, error)) ([]model.Image, error) {
	uploads := make([]pendingUpload, len(files))
	for i, f := range files {
		uploads[i] = pendingUpload{prefix: prefix, file: f}
	}
	objects, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	images := make([]model.Image, len(objects))
	for i, obj := range objects {
		images[i] = imageFor(obj)
	}

	added, err := insert(images)
	if err != nil {
		s.removeObjects(ctx, objectKeys(objects))
		return nil, err
	}
	return added, nil
}
