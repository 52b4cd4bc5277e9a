package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CreateItemInput struct {
	Title       string
	Description string
	Location    string
	Type        string
	Image       *Upload
}

// ItemPatch lists the only fields an owner may change. Nil means unchanged.
type ItemPatch struct {
	Title       *string
	Description *string
	Location    *string
}

// MessageCounter reports live message counts per report.
type MessageCounter interface {
	CountByReports(ctx context.Context, reportIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

// ItemService owns the lifecycle of lost/found reports and their images.
type ItemService struct {
	db            *gorm.DB
	blobs         storage.BlobStore
	owners        OwnerResolver
	counter       MessageCounter
	maxImageBytes int64
}

func NewItemService(db *gorm.DB, blobs storage.BlobStore, owners OwnerResolver, counter MessageCounter, maxImageBytes int64) *ItemService {
	return &ItemService{
		db:            db,
		blobs:         blobs,
		owners:        owners,
		counter:       counter,
		maxImageBytes: maxImageBytes,
	}
}

func ofType(itemType string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("type = ?", itemType)
	}
}

func ownedBy(ownerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

// Create validates the input, stores the image first and then the record.
// No record is written if the image upload fails.
func (s *ItemService) Create(ctx context.Context, ownerID uuid.UUID, in CreateItemInput) (*models.ItemReport, error) {
	report := &models.ItemReport{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Type:        strings.ToLower(strings.TrimSpace(in.Type)),
		OwnerID:     ownerID,
	}
	switch {
	case report.Title == "":
		return nil, requiredField("title")
	case report.Description == "":
		return nil, requiredField("description")
	case report.Location == "":
		return nil, requiredField("location")
	case !models.ValidItemType(report.Type):
		return nil, ErrInvalidItemType
	}

	if in.Image != nil {
		obj, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		report.Image, report.ImageRef = &obj.URL, &obj.Ref
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		if report.ImageRef != nil {
			slog.Error("report insert failed after image upload", "action", "create_report", "image_ref", *report.ImageRef, "error", err)
			s.releaseImage(ctx, report.ID, *report.ImageRef, "create_rollback")
		}
		return nil, dependency("create report", err)
	}

	if err := s.decorate(ctx, []*models.ItemReport{report}, true); err != nil {
		return nil, err
	}
	return report, nil
}

// ListAll returns every report in store order with owners expanded.
func (s *ItemService) ListAll(ctx context.Context) ([]models.ItemReport, error) {
	return s.list(ctx, true)
}

func (s *ItemService) ListByType(ctx context.Context, itemType string) ([]models.ItemReport, error) {
	if !models.ValidItemType(itemType) {
		return nil, ErrInvalidItemType
	}
	return s.list(ctx, true, ofType(itemType))
}

// ListByOwner skips owner expansion; the caller is the owner.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ItemReport, error) {
	return s.list(ctx, false, ownedBy(ownerID))
}

func (s *ItemService) Get(ctx context.Context, reportID uuid.UUID) (*models.ItemReport, error) {
	report, err := s.find(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, []*models.ItemReport{report}, true); err != nil {
		return nil, err
	}
	return report, nil
}

// Update applies an owner's patch. A new image is uploaded before the record
// is written; the previous blob is released afterwards and a failed release is
// only logged.
func (s *ItemService) Update(ctx context.Context, reportID, actorID uuid.UUID, patch ItemPatch, newImage *Upload) (*models.ItemReport, error) {
	report, err := s.find(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.OwnerID != actorID {
		return nil, ErrNotReportOwner
	}

	if err := applyPatch(report, patch); err != nil {
		return nil, err
	}

	var oldRef *string
	if newImage != nil {
		obj, err := s.storeImage(ctx, newImage)
		if err != nil {
			return nil, err
		}
		oldRef = report.ImageRef
		report.Image, report.ImageRef = &obj.URL, &obj.Ref
	}

	err = s.db.WithContext(ctx).Model(report).
		Select("title", "description", "location", "image", "image_ref", "updated_at").
		Updates(report).Error
	if err != nil {
		if newImage != nil {
			slog.Error("report update failed after image upload", "action", "update_report", "report_id", report.ID.String(), "error", err)
			s.releaseImage(ctx, report.ID, *report.ImageRef, "update_rollback")
		}
		return nil, dependency("update report", err)
	}

	if oldRef != nil {
		s.releaseImage(ctx, report.ID, *oldRef, "replace_image")
	}

	if err := s.decorate(ctx, []*models.ItemReport{report}, true); err != nil {
		return nil, err
	}
	return report, nil
}

// Delete removes an owner's report together with its thread. The image blob
// is released first; a failed release does not stop the delete.
func (s *ItemService) Delete(ctx context.Context, reportID, actorID uuid.UUID) error {
	report, err := s.find(ctx, reportID)
	if err != nil {
		return err
	}
	if report.OwnerID != actorID {
		return ErrNotReportOwner
	}

	if report.ImageRef != nil {
		s.releaseImage(ctx, report.ID, *report.ImageRef, "delete_report")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", report.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(report).Error
	})
	if err != nil {
		return dependency("delete report", err)
	}
	return nil
}

func (s *ItemService) find(ctx context.Context, reportID uuid.UUID) (*models.ItemReport, error) {
	var report models.ItemReport
	if err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, dependency("load report", err)
	}
	return &report, nil
}

func (s *ItemService) list(ctx context.Context, expandOwners bool, scopes ...func(*gorm.DB) *gorm.DB) ([]models.ItemReport, error) {
	reports := make([]models.ItemReport, 0)
	if err := s.db.WithContext(ctx).Scopes(scopes...).Find(&reports).Error; err != nil {
		return nil, dependency("list reports", err)
	}

	ptrs := make([]*models.ItemReport, len(reports))
	for i := range reports {
		ptrs[i] = &reports[i]
	}
	if err := s.decorate(ctx, ptrs, expandOwners); err != nil {
		return nil, err
	}
	return reports, nil
}

// decorate attaches live message counts and, optionally, owner summaries.
func (s *ItemService) decorate(ctx context.Context, reports []*models.ItemReport, expandOwners bool) error {
	if len(reports) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(reports))
	ownerIDs := make([]uuid.UUID, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
		ownerIDs[i] = r.OwnerID
	}

	counts, err := s.counter.CountByReports(ctx, ids)
	if err != nil {
		return dependency("count messages", err)
	}
	var owners map[uuid.UUID]models.UserSummary
	if expandOwners {
		if owners, err = s.owners.ResolveOwners(ctx, ownerIDs); err != nil {
			return dependency("resolve owners", err)
		}
	}

	for _, r := range reports {
		r.MessageCount = counts[r.ID]
		if owner, ok := owners[r.OwnerID]; ok {
			r.Owner = &owner
		}
	}
	return nil
}

func (s *ItemService) storeImage(ctx context.Context, img *Upload) (storage.Object, error) {
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return storage.Object{}, ErrInvalidImage
	}
	if s.maxImageBytes > 0 && img.Size > s.maxImageBytes {
		return storage.Object{}, ErrImageTooLarge
	}
	obj, err := s.blobs.Put(ctx, storage.ImageKey(img.Filename), img.Body, img.Size, img.ContentType)
	if err != nil {
		return storage.Object{}, dependency("store image", err)
	}
	return obj, nil
}

// releaseImage deletes a blob and logs, rather than returns, a failure. It
// runs even if the request context was cancelled.
func (s *ItemService) releaseImage(ctx context.Context, reportID uuid.UUID, ref, action string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		slog.Error("image release failed",
			"action", action,
			"report_id", reportID.String(),
			"image_ref", ref,
			"error", err,
		)
	}
}

func applyPatch(report *models.ItemReport, patch ItemPatch) error {
	fields := []struct {
		name  string
		value *string
		dst   *string
	}{
		{"title", patch.Title, &report.Title},
		{"description", patch.Description, &report.Description},
		{"location", patch.Location, &report.Location},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return &ValidationError{Field: f.name, Message: "cannot be empty"}
		}
		*f.dst = v
	}
	return nil
}
