package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/posts"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

type createPostRequest struct {
	Title  string `json:"title" binding:"required"`
	Body   string `json:"body" binding:"required"`
	Images []struct {
		StorageKey string `json:"storage_key"`
		URL        string `json:"url"`
	} `json:"images"`
}

// CreatePost creates a trail report in a city.
// POST /api/v1/cities/:id/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "title and body are required")
		return
	}

	input := posts.CreateInput{
		Title:  req.Title,
		Body:   req.Body,
		CityID: c.Param("id"),
	}
	for _, img := range req.Images {
		input.Images = append(input.Images, posts.ImageInput{
			StorageKey: img.StorageKey,
			URL:        img.URL,
		})
	}

	post, err := h.posts.Create(c.Request.Context(), userID, input)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	metrics.Get().PostsCreatedTotal.WithLabelValues().Inc()
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// ListPostsByCity returns a city's trail reports, block-filtered for the
// viewer.
// GET /api/v1/cities/:id/posts
func (h *Handlers) ListPostsByCity(c *gin.Context) {
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 20, 100)

	views, err := h.posts.ListByCity(c.Request.Context(),
		util.ViewerIDFromContext(c), c.Param("id"), limit, offset)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": views, "limit": limit, "offset": offset})
}

// GetPost returns a single trail report.
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	view, err := h.posts.Get(c.Request.Context(), util.ViewerIDFromContext(c), c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": view})
}

// ToggleLike flips the caller's like on a post.
// POST /api/v1/posts/:id/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	liked, err := h.posts.ToggleLike(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddPostComment adds a comment to a post.
// POST /api/v1/posts/:id/comments
func (h *Handlers) AddPostComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListPostComments returns a post's comments, block-filtered for the viewer.
// GET /api/v1/posts/:id/comments
func (h *Handlers) ListPostComments(c *gin.Context) {
	comments, err := h.posts.ListComments(c.Request.Context(),
		util.ViewerIDFromContext(c), c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// DeletePostComment removes the caller's own comment.
// DELETE /api/v1/posts/comments/:commentId
func (h *Handlers) DeletePostComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.posts.DeleteComment(c.Request.Context(), userID, c.Param("commentId")); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// DeletePost removes the caller's own post and all of its comments, likes
// and images.
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
