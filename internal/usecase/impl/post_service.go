package impl

import (
	"context"
	"log/slog"
	"strings"

	"scribe/config"
	deliverycontext "scribe/internal/delivery/context"
	"scribe/internal/domain/entity"
	domainerrors "scribe/internal/domain/errors"
	"scribe/internal/domain/repository"
	"scribe/internal/domain/service"
	"scribe/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultTopTagsLimit = 5

// postService implements the PostUsecase interface.
type postService struct {
	postRepo     repository.PostRepository
	fileStorage  service.FileStorage
	publisher    service.EventPublisher
	shareCode    service.ShareCodeService
	topTagsLimit int
	uploadsPath  string
	logger       *slog.Logger
}

// PostServiceParams holds dependencies for PostService, injected by Fx.
type PostServiceParams struct {
	fx.In

	PostRepo    repository.PostRepository
	FileStorage service.FileStorage
	Publisher   service.EventPublisher
	ShareCode   service.ShareCodeService
	Config      *config.Config
	Logger      *slog.Logger
}

// NewPostService is the constructor for postService. It receives all dependencies as interfaces.
func NewPostService(params PostServiceParams) usecase.PostUsecase {
	topTagsLimit := defaultTopTagsLimit
	if params.Config != nil && params.Config.Posts != nil && params.Config.Posts.TopTagsLimit > 0 {
		topTagsLimit = params.Config.Posts.TopTagsLimit
	}
	uploadsPath := "/uploads"
	if params.Config != nil && params.Config.Uploads != nil && params.Config.Uploads.PublicPath != "" {
		uploadsPath = strings.TrimRight(params.Config.Uploads.PublicPath, "/")
	}

	return &postService{
		postRepo:     params.PostRepo,
		fileStorage:  params.FileStorage,
		publisher:    params.Publisher,
		shareCode:    params.ShareCode,
		topTagsLimit: topTagsLimit,
		uploadsPath:  uploadsPath,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *postService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreatePost publishes a new post owned by input.AuthorID.
func (srv *postService) CreatePost(ctx context.Context, input *usecase.CreatePostInput) (*entity.Post, error) {
	srv.log(ctx).Info("Creating post", slog.Any("authorID", input.AuthorID))

	if err := validatePostContent(input.Title, input.Text); err != nil {
		srv.log(ctx).Warn("Post validation failed", slog.Any("authorID", input.AuthorID), slog.Any("error", err))

		return nil, err
	}

	post := &entity.Post{
		Title:    strings.TrimSpace(input.Title),
		Text:     input.Text,
		Tags:     normalizeTags(input.Tags),
		ImageURL: input.ImageURL,
		AuthorID: input.AuthorID,
	}

	if err := srv.postRepo.Create(ctx, post); err != nil {
		srv.log(ctx).Error("Failed to create post", slog.Any("authorID", input.AuthorID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create post")
	}

	srv.publishEvent(ctx, service.PostEventCreated, post)
	srv.log(ctx).Debug("Post created", slog.Any("postID", post.ID))

	return post, nil
}

// GetPost returns a single post, counting the read as one view.
func (srv *postService) GetPost(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	post, err := srv.postRepo.FindByIDAndIncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, domainerrors.ErrPostNotFound.WrapMessage("get post failed")
		}
		srv.log(ctx).Error("Failed to get post", slog.Any("postID", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to get post")
	}

	return post, nil
}

// ListPosts returns posts newest first, optionally narrowed to a tag.
func (srv *postService) ListPosts(ctx context.Context, tagFilter string) ([]*entity.Post, error) {
	posts, err := srv.postRepo.FindAll(ctx, strings.TrimSpace(tagFilter))
	if err != nil {
		srv.log(ctx).Error("Failed to list posts", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list posts")
	}

	return posts, nil
}

// UpdatePost applies the patch when callerID authored the post.
func (srv *postService) UpdatePost(ctx context.Context, id, callerID uuid.UUID, input *usecase.UpdatePostInput) (*entity.Post, error) {
	srv.log(ctx).Info("Updating post", slog.Any("postID", id), slog.Any("callerID", callerID))

	if err := validatePostPatch(input); err != nil {
		srv.log(ctx).Warn("Post patch validation failed", slog.Any("postID", id), slog.Any("error", err))

		return nil, err
	}

	patch := &repository.PostPatch{
		Title:    input.Title,
		Text:     input.Text,
		ImageURL: input.ImageURL,
	}
	if input.Tags != nil {
		normalized := normalizeTags(*input.Tags)
		patch.Tags = &normalized
	}

	post, err := srv.postRepo.Update(ctx, id, callerID, patch)
	if err != nil {
		return nil, srv.mapMutationError(ctx, "update", id, callerID, err)
	}

	srv.log(ctx).Debug("Post updated", slog.Any("postID", id))

	return post, nil
}

// DeletePost removes the post when callerID authored it.
func (srv *postService) DeletePost(ctx context.Context, id, callerID uuid.UUID) error {
	srv.log(ctx).Info("Deleting post", slog.Any("postID", id), slog.Any("callerID", callerID))

	deleted, err := srv.postRepo.Delete(ctx, id, callerID)
	if err != nil {
		return srv.mapMutationError(ctx, "delete", id, callerID, err)
	}

	srv.removeImage(ctx, id, deleted.ImageURL)
	srv.publishEvent(ctx, service.PostEventDeleted, deleted)
	srv.log(ctx).Debug("Post deleted", slog.Any("postID", id))

	return nil
}

// TopTags returns the most frequent tags across all posts.
func (srv *postService) TopTags(ctx context.Context, limit int) ([]*entity.TagCount, error) {
	if limit <= 0 {
		limit = srv.topTagsLimit
	}

	tags, err := srv.postRepo.TagFrequencies(ctx, limit)
	if err != nil {
		srv.log(ctx).Error("Failed to aggregate tags", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to aggregate tags")
	}

	return tags, nil
}

// ShareQR renders a PNG QR code pointing at the post's public URL.
func (srv *postService) ShareQR(ctx context.Context, id uuid.UUID) ([]byte, error) {
	// A share code only encodes the public URL; viewing it must not bump
	// the view counter, so the post row is never touched here.
	png, err := srv.shareCode.GeneratePostQR(id)
	if err != nil {
		srv.log(ctx).Error("Failed to render share code", slog.Any("postID", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to render share code")
	}

	return png, nil
}

// mapMutationError translates repository mutation failures into app errors.
func (srv *postService) mapMutationError(ctx context.Context, op string, id, callerID uuid.UUID, err error) error {
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		srv.log(ctx).Warn("Post mutation on missing post", slog.String("op", op), slog.Any("postID", id))

		return domainerrors.ErrPostNotFound.WrapMessage(op + " failed")
	case errors.Is(err, repository.ErrNotPostAuthor):
		srv.log(ctx).Warn("Post mutation by non-author", slog.String("op", op), slog.Any("postID", id), slog.Any("callerID", callerID))

		return domainerrors.ErrForbidden.WrapMessage(op + " denied")
	default:
		srv.log(ctx).Error("Post mutation failed", slog.String("op", op), slog.Any("postID", id), slog.Any("error", err))

		return errors.Wrapf(err, "failed to %s post", op)
	}
}

// publishEvent emits a lifecycle event. Publishing is best-effort: a broker
// outage must never fail the originating request.
func (srv *postService) publishEvent(ctx context.Context, action string, post *entity.Post) {
	event := &service.PostEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		Action:    action,
		PostID:    post.ID.String(),
		AuthorID:  post.AuthorID.String(),
		Tags:      post.Tags,
	}

	if err := srv.publisher.PublishPostEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish post event",
			slog.String("action", action),
			slog.Any("postID", post.ID),
			slog.Any("error", err),
		)
	}
}

// removeImage drops the stored image backing a deleted post, best-effort.
func (srv *postService) removeImage(ctx context.Context, id uuid.UUID, imageURL string) {
	key := strings.TrimPrefix(imageURL, srv.uploadsPath+"/")
	if key == "" || key == imageURL {
		// External or absent image, nothing to clean up.
		return
	}

	if err := srv.fileStorage.Delete(ctx, key); err != nil {
		srv.log(ctx).Warn("Failed to remove post image", slog.Any("postID", id), slog.Any("error", err))
	}
}

func validatePostContent(title, text string) error {
	var fields []string

	if strings.TrimSpace(title) == "" {
		fields = append(fields, "title must not be empty")
	}
	if strings.TrimSpace(text) == "" {
		fields = append(fields, "text must not be empty")
	}

	if len(fields) > 0 {
		return domainerrors.ErrValidationFailed.WithDetails(strings.Join(fields, "; "))
	}

	return nil
}

func validatePostPatch(input *usecase.UpdatePostInput) error {
	var fields []string

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		fields = append(fields, "title must not be empty")
	}
	if input.Text != nil && strings.TrimSpace(*input.Text) == "" {
		fields = append(fields, "text must not be empty")
	}

	if len(fields) > 0 {
		return domainerrors.ErrValidationFailed.WithDetails(strings.Join(fields, "; "))
	}

	return nil
}

// normalizeTags trims whitespace and drops empty entries while preserving the
// author's ordering and duplicates within a post.
func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}

	return normalized
}
