package posts

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/blocks"
	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"github.com/JamesDimonaco/trek-together-sub000/internal/storage"
)

const (
	MaxTitleLength   = 200
	MaxBodyLength    = 5000
	MaxCommentLength = 1000
)

// Service owns trail report posts and their like/comment ledgers.
type Service struct {
	db     *gorm.DB
	blocks *blocks.Registry
	files  storage.FileDeleter
}

// NewService creates a posts service. files may be nil when no blob store is
// configured; image release is then skipped.
func NewService(db *gorm.DB, registry *blocks.Registry, files storage.FileDeleter) *Service {
	return &Service{db: db, blocks: registry, files: files}
}

// CreateInput carries the fields for a new post.
type CreateInput struct {
	Title  string
	Body   string
	CityID string
	Images []ImageInput
}

// ImageInput references an already uploaded blob.
type ImageInput struct {
	StorageKey string
	URL        string
}

// Create validates and stores a new post with its image rows.
func (s *Service) Create(ctx context.Context, authorID string, input CreateInput) (*models.Post, error) {
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

	post := &models.Post{
		AuthorID: authorID,
		CityID:   input.CityID,
		Title:    title,
		Body:     body,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, img := range input.Images {
			image := models.PostImage{
				PostID:     post.ID,
				StorageKey: img.StorageKey,
				URL:        img.URL,
			}
			if err := tx.Create(&image).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// PostView is a post with its ledger summaries resolved for a viewer.
type PostView struct {
	models.Post
	Images       []models.PostImage `json:"images"`
	LikeCount    int64              `json:"like_count"`
	CommentCount int64              `json:"comment_count"`
	ViewerLiked  bool               `json:"viewer_liked"`
}

// ListByCity returns a city's posts newest first, hiding authors the viewer
// has a block relationship with in either direction.
func (s *Service) ListByCity(ctx context.Context, viewerID, cityID string, limit, offset int) ([]PostView, error) {
	hidden, err := s.blocks.HiddenAuthorIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("Author").
		Where("city_id = ?", cityID).
		Order("created_at DESC").
		Limit(limit).Offset(offset)
	if len(hidden) > 0 {
		query = query.Where("author_id NOT IN ?", hidden)
	}

	var rows []models.Post
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(rows))
	for _, p := range rows {
		view, err := s.buildView(ctx, viewerID, p)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns a single post. A post by a blocked author is indistinguishable
// from a missing one.
func (s *Service) Get(ctx context.Context, viewerID, postID string) (*PostView, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", postID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("post")
		}
		return nil, err
	}

	if viewerID != "" {
		blocked, err := s.blocks.IsBlocked(ctx, viewerID, post.AuthorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, errors.NotFound("post")
		}
	}

	view, err := s.buildView(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) buildView(ctx context.Context, viewerID string, post models.Post) (PostView, error) {
	view := PostView{Post: post}

	if err := s.db.WithContext(ctx).Where("post_id = ?", post.ID).Find(&view.Images).Error; err != nil {
		return view, err
	}
	if err := s.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ?", post.ID).Count(&view.LikeCount).Error; err != nil {
		return view, err
	}
	if err := s.db.WithContext(ctx).Model(&models.PostComment{}).
		Where("post_id = ?", post.ID).Count(&view.CommentCount).Error; err != nil {
		return view, err
	}
	if viewerID != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.PostLike{}).
			Where("post_id = ? AND user_id = ?", post.ID, viewerID).Count(&count).Error; err != nil {
			return view, err
		}
		view.ViewerLiked = count > 0
	}
	return view, nil
}

// ToggleLike flips the (user, post) like row. Returns the resulting liked
// state, true after an insert and false after a removal.
func (s *Service) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errors.NotFound("post")
		}
		return false, err
	}

	var existing models.PostLike
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
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

	like := models.PostLike{PostID: postID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
		return false, err
	}
	return true, nil
}

// AddComment validates and stores a comment on a post.
func (s *Service) AddComment(ctx context.Context, authorID, postID, content string) (*models.PostComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.ValidationRequired("content")
	}
	if len(content) > MaxCommentLength {
		return nil, errors.ValidationTooLong("content", MaxCommentLength, len(content))
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("post")
		}
		return nil, err
	}

	comment := &models.PostComment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a post's comments oldest first, hiding blocked authors.
func (s *Service) ListComments(ctx context.Context, viewerID, postID string) ([]models.PostComment, error) {
	hidden, err := s.blocks.HiddenAuthorIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC")
	if len(hidden) > 0 {
		query = query.Where("author_id NOT IN ?", hidden)
	}

	var comments []models.PostComment
	if err := query.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	var comment models.PostComment
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

// Delete removes a post and every dependent row: comments, likes and image
// records go in one transaction, blob release happens after commit and is
// best-effort.
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NotFound("post")
		}
		return err
	}
	if post.AuthorID != userID {
		return errors.Forbidden("only the post author can delete it")
	}

	var images []models.PostImage
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Find(&images).Error; err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return err
	}

	if s.files != nil {
		for _, img := range images {
			if err := s.files.DeleteFile(ctx, img.StorageKey); err != nil {
				logger.ErrorWithFields("failed to release post image blob", err)
			}
		}
	}
	return nil
}
