package requests

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/blocks"
	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

const (
	MaxTitleLength   = 200
	MaxBodyLength    = 2000
	MaxCommentLength = 1000
)

// Service owns trek buddy requests and their interest/comment ledgers.
type Service struct {
	db     *gorm.DB
	blocks *blocks.Registry
}

func NewService(db *gorm.DB, registry *blocks.Registry) *Service {
	return &Service{db: db, blocks: registry}
}

// CreateInput carries the fields for a new request.
type CreateInput struct {
	Title     string
	Body      string
	CityID    string
	StartDate *time.Time
}

// Create validates and stores a new trek buddy request. New requests open.
func (s *Service) Create(ctx context.Context, authorID string, input CreateInput) (*models.Request, error) {
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)

	if title == "" {
		return nil, errors.ValidationRequired("title")
	}
	if len(title) > MaxTitleLength {
		return nil, errors.ValidationTooLong("title", MaxTitleLength, len(title))
	}
	if body == "" {
		return nil, errors.ValidationRequired("body")
	}
	if len(body) > MaxBodyLength {
		return nil, errors.ValidationTooLong("body", MaxBodyLength, len(body))
	}

	var city models.City
	if err := s.db.WithContext(ctx).First(&city, "id = ?", input.CityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("city")
		}
		return nil, err
	}

	request := &models.Request{
		AuthorID:  authorID,
		CityID:    input.CityID,
		Title:     title,
		Body:      body,
		Status:    models.RequestStatusOpen,
		StartDate: input.StartDate,
	}
	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// RequestView is a request with its interest ledger resolved for a viewer.
type RequestView struct {
	models.Request
	InterestCount    int64 `json:"interest_count"`
	ViewerInterested bool  `json:"viewer_interested"`
}

// ListByCity returns a city's requests newest first, hiding authors the
// viewer has a block relationship with in either direction. Open requests
// only unless includeClosed is set.
func (s *Service) ListByCity(ctx context.Context, viewerID, cityID string, includeClosed bool, limit, offset int) ([]RequestView, error) {
	hidden, err := s.blocks.HiddenAuthorIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("Author").
		Where("city_id = ?", cityID).
		Order("created_at DESC").
		Limit(limit).Offset(offset)
	if !includeClosed {
		query = query.Where("status = ?", models.RequestStatusOpen)
	}
	if len(hidden) > 0 {
		query = query.Where("author_id NOT IN ?", hidden)
	}

	var rows []models.Request
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]RequestView, 0, len(rows))
	for _, r := range rows {
		view, err := s.buildView(ctx, viewerID, r)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns a single request. A request by a blocked author reads as
// missing.
func (s *Service) Get(ctx context.Context, viewerID, requestID string) (*RequestView, error) {
	var request models.Request
	err := s.db.WithContext(ctx).Preload("Author").First(&request, "id = ?", requestID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("request")
		}
		return nil, err
	}

	if viewerID != "" {
		blocked, err := s.blocks.IsBlocked(ctx, viewerID, request.AuthorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, errors.NotFound("request")
		}
	}

	view, err := s.buildView(ctx, viewerID, request)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) buildView(ctx context.Context, viewerID string, request models.Request) (RequestView, error) {
	view := RequestView{Request: request}

	if err := s.db.WithContext(ctx).Model(&models.RequestInterest{}).
		Where("request_id = ?", request.ID).Count(&view.InterestCount).Error; err != nil {
		return view, err
	}
	if viewerID != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.RequestInterest{}).
			Where("request_id = ? AND user_id = ?", request.ID, viewerID).Count(&count).Error; err != nil {
			return view, err
		}
		view.ViewerInterested = count > 0
	}
	return view, nil
}

// ToggleInterest flips the (user, request) interest row. Authors may not
// register interest in their own request. Returns the resulting state.
func (s *Service) ToggleInterest(ctx context.Context, userID, requestID string) (bool, error) {
	var request models.Request
	if err := s.db.WithContext(ctx).First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errors.NotFound("request")
		}
		return false, err
	}
	if request.AuthorID == userID {
		return false, errors.SelfInterest()
	}

	var existing models.RequestInterest
	err := s.db.WithContext(ctx).
		Where("request_id = ? AND user_id = ?", requestID, userID).
		First(&existing).Error
	if err == nil {
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return false, err
		}
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	interest := models.RequestInterest{RequestID: requestID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&interest).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ListInterested returns the users interested in a request, oldest first.
// Only the request author may see the full list.
func (s *Service) ListInterested(ctx context.Context, userID, requestID string) ([]models.RequestInterest, error) {
	var request models.Request
	if err := s.db.WithContext(ctx).First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("request")
		}
		return nil, err
	}
	if request.AuthorID != userID {
		return nil, errors.Forbidden("only the request author can list interested users")
	}

	var interests []models.RequestInterest
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&interests).Error
	if err != nil {
		return nil, err
	}
	return interests, nil
}

// AddComment validates and stores a comment on a request.
func (s *Service) AddComment(ctx context.Context, authorID, requestID, content string) (*models.RequestComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.ValidationRequired("content")
	}
	if len(content) > MaxCommentLength {
		return nil, errors.ValidationTooLong("content", MaxCommentLength, len(content))
	}

	var request models.Request
	if err := s.db.WithContext(ctx).First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("request")
		}
		return nil, err
	}

	comment := &models.RequestComment{
		RequestID: requestID,
		AuthorID:  authorID,
		Content:   content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a request's comments oldest first, hiding blocked
// authors.
func (s *Service) ListComments(ctx context.Context, viewerID, requestID string) ([]models.RequestComment, error) {
	hidden, err := s.blocks.HiddenAuthorIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("Author").
		Where("request_id = ?", requestID).
		Order("created_at ASC")
	if len(hidden) > 0 {
		query = query.Where("author_id NOT IN ?", hidden)
	}

	var comments []models.RequestComment
	if err := query.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	var comment models.RequestComment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NotFound("comment")
		}
		return err
	}
	if comment.AuthorID != userID {
		return errors.Forbidden("only the comment author can delete it")
	}
	return s.db.WithContext(ctx).Delete(&comment).Error
}

// SetStatus opens or closes a request. Author only. Closing leaves the
// interest and comment ledgers untouched.
func (s *Service) SetStatus(ctx context.Context, userID, requestID string, status models.RequestStatus) (*models.Request, error) {
	if status != models.RequestStatusOpen && status != models.RequestStatusClosed {
		return nil, errors.ValidationError("status", "must be open or closed")
	}

	var request models.Request
	if err := s.db.WithContext(ctx).First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("request")
		}
		return nil, err
	}
	if request.AuthorID != userID {
		return nil, errors.Forbidden("only the request author can change its status")
	}

	if err := s.db.WithContext(ctx).Model(&request).Update("status", status).Error; err != nil {
		return nil, err
	}
	request.Status = status
	return &request, nil
}

// Delete removes a request and its dependent interest and comment rows in
// one transaction.
func (s *Service) Delete(ctx context.Context, userID, requestID string) error {
	var request models.Request
	if err := s.db.WithContext(ctx).First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NotFound("request")
		}
		return err
	}
	if request.AuthorID != userID {
		return errors.Forbidden("only the request author can delete it")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", requestID).Delete(&models.RequestInterest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("request_id = ?", requestID).Delete(&models.RequestComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&request).Error
	})
}
