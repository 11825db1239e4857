package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"scribe/internal/delivery/http/middleware"
	"scribe/internal/delivery/http/response"
	domainerrors "scribe/internal/domain/errors"
	"scribe/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PostHandler holds dependencies for post-related handlers.
type PostHandler struct {
	uc     usecase.PostUsecase
	logger *slog.Logger
}

// NewPostHandler is the constructor for PostHandler, injected by Fx.
func NewPostHandler(uc usecase.PostUsecase, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		uc:     uc,
		logger: logger,
	}
}

type createPostRequest struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl"`
}

// updatePostRequest uses pointers so absent fields stay untouched.
type updatePostRequest struct {
	Title    *string   `json:"title"`
	Text     *string   `json:"text"`
	Tags     *[]string `json:"tags"`
	ImageURL *string   `json:"imageUrl"`
}

// Create handles the post creation request.
func (h *PostHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid user ID in token")
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid post input")
	}

	post, err := h.uc.CreatePost(c.Request().Context(), &usecase.CreatePostInput{
		Title:    req.Title,
		Text:     req.Text,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
		AuthorID: userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, post, "Post created successfully")
}

// GetOne handles the single post request. Every successful read counts as a view.
func (h *PostHandler) GetOne(c echo.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := h.uc.GetPost(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, post, "Post retrieved successfully")
}

// GetAll handles the post listing request, optionally filtered by ?tag=.
func (h *PostHandler) GetAll(c echo.Context) error {
	posts, err := h.uc.ListPosts(c.Request().Context(), c.QueryParam("tag"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, posts, "Posts retrieved successfully")
}

// Update handles the partial post update request.
func (h *PostHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid user ID in token")
	}

	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid post patch input")
	}

	post, err := h.uc.UpdatePost(c.Request().Context(), id, userID, &usecase.UpdatePostInput{
		Title:    req.Title,
		Text:     req.Text,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, post, "Post updated successfully")
}

// Delete handles the post deletion request.
func (h *PostHandler) Delete(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Invalid user ID in token")
	}

	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeletePost(c.Request().Context(), id, userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": id.String()}, "Post deleted successfully")
}

// TopTags handles the tag frequency request. An invalid or absent ?limit=
// falls through to the configured default.
func (h *PostHandler) TopTags(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	tags, err := h.uc.TopTags(c.Request().Context(), limit)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, tags, "Tags retrieved successfully")
}

// ShareQR handles the post share code request, returning a PNG image.
func (h *PostHandler) ShareQR(c echo.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	png, err := h.uc.ShareQR(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// parsePostID validates the :id path parameter. Failures surface through the
// error middleware as a 400.
func parsePostID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails("id must be a valid UUID")
	}

	return id, nil
}
