package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageService handles the message thread attached to each report.
type MessageService struct {
	db     *gorm.DB
	owners OwnerResolver
}

func NewMessageService(db *gorm.DB, owners OwnerResolver) *MessageService {
	return &MessageService{db: db, owners: owners}
}

// ListByReport returns the thread oldest first. Ids are time-ordered, so
// they break ties between equal timestamps in insertion order.
func (s *MessageService) ListByReport(ctx context.Context, reportID uuid.UUID) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := s.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, dependency("list messages", err)
	}

	authorIDs := make([]uuid.UUID, len(messages))
	for i := range messages {
		authorIDs[i] = messages[i].AuthorID
	}
	authors, err := s.owners.ResolveOwners(ctx, authorIDs)
	if err != nil {
		return nil, dependency("resolve authors", err)
	}
	for i := range messages {
		if a, ok := authors[messages[i].AuthorID]; ok {
			messages[i].Author = &a
		}
	}
	return messages, nil
}

// Create posts a message on an existing report. isPublic defaults to true.
func (s *MessageService) Create(ctx context.Context, reportID, authorID uuid.UUID, body string, isPublic *bool) (*models.Message, error) {
	if err := s.reportExists(ctx, reportID); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{
		ReportID: reportID,
		AuthorID: authorID,
		Body:     body,
		IsPublic: isPublic == nil || *isPublic,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, dependency("create message", err)
	}

	authors, err := s.owners.ResolveOwners(ctx, []uuid.UUID{authorID})
	if err != nil {
		return nil, dependency("resolve authors", err)
	}
	if a, ok := authors[authorID]; ok {
		msg.Author = &a
	}
	return msg, nil
}

// Delete removes a message if the actor wrote it or owns the parent report.
// The parent report row is never written.
func (s *MessageService) Delete(ctx context.Context, messageID, actorID uuid.UUID) error {
	var msg models.Message
	if err := s.db.WithContext(ctx).First(&msg, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return dependency("load message", err)
	}

	if msg.AuthorID != actorID {
		var report models.ItemReport
		err := s.db.WithContext(ctx).Select("id", "owner_id").First(&report, "id = ?", msg.ReportID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrNotMessageParty
		case err != nil:
			return dependency("load report", err)
		case report.OwnerID != actorID:
			return ErrNotMessageParty
		}
	}

	res := s.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", msg.ID)
	if res.Error != nil {
		return dependency("delete message", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// CountByReports counts live messages per report.
func (s *MessageService) CountByReports(ctx context.Context, reportIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(reportIDs))
	if len(reportIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ReportID uuid.UUID
		Count    int64
	}
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Select("report_id, count(*) as count").
		Where("report_id IN ?", uniqueIDs(reportIDs)).
		Group("report_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.ReportID] = r.Count
	}
	return counts, nil
}

func (s *MessageService) reportExists(ctx context.Context, reportID uuid.UUID) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ItemReport{}).Where("id = ?", reportID).Count(&n).Error; err != nil {
		return dependency("load report", err)
	}
	if n == 0 {
		return ErrReportNotFound
	}
	return nil
}
