package impl

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"scribe/config"
	domainerrors "scribe/internal/domain/errors"
	"scribe/internal/domain/service"
	"scribe/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postTestDeps struct {
	repo      *fakePostRepo
	storage   *fakeFileStorage
	publisher *fakePublisher
}

func newPostTestService() (usecase.PostUsecase, *postTestDeps) {
	deps := &postTestDeps{
		repo:      newFakePostRepo(),
		storage:   &fakeFileStorage{},
		publisher: &fakePublisher{},
	}

	svc := NewPostService(PostServiceParams{
		PostRepo:    deps.repo,
		FileStorage: deps.storage,
		Publisher:   deps.publisher,
		ShareCode:   fakeShareCode{},
		Config: &config.Config{
			Posts:   &config.PostsConfig{TopTagsLimit: 5},
			Uploads: &config.UploadsConfig{PublicPath: "/uploads"},
		},
		Logger: slog.New(slog.DiscardHandler),
	})

	return svc, deps
}

func createTestPost(t *testing.T, authorID uuid.UUID, title string, tags ...string) *usecase.CreatePostInput {
	t.Helper()

	return &usecase.CreatePostInput{
		Title:    title,
		Text:     "body of " + title,
		Tags:     tags,
		AuthorID: authorID,
	}
}

func TestPostService_CreatePost(t *testing.T) {
	svc, deps := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	post, err := svc.CreatePost(ctx, &usecase.CreatePostInput{
		Title:    "  Hello World  ",
		Text:     "first post",
		Tags:     []string{" go ", "", "blogging"},
		AuthorID: author,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, post.ID)
	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, []string{"go", "blogging"}, post.Tags, "tags are trimmed and empties dropped")
	assert.Equal(t, int64(0), post.ViewsCount)
	assert.Equal(t, author, post.AuthorID)

	events := deps.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, service.PostEventCreated, events[0].Action)
	assert.Equal(t, post.ID.String(), events[0].PostID)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	tests := []struct {
		name  string
		title string
		text  string
	}{
		{"empty title", "   ", "text"},
		{"empty text", "title", "   "},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newPostTestService()

			_, err := svc.CreatePost(context.Background(), &usecase.CreatePostInput{
				Title:    tt.title,
				Text:     tt.text,
				AuthorID: uuid.New(),
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
			assert.Empty(t, deps.publisher.published(), "no event for rejected posts")
		})
	}
}

func TestPostService_CreatePost_PublishFailureIsNotFatal(t *testing.T) {
	svc, deps := newPostTestService()
	deps.publisher.fail = true

	post, err := svc.CreatePost(context.Background(), createTestPost(t, uuid.New(), "resilient"))
	require.NoError(t, err, "a broker outage must not fail the write")
	assert.NotEqual(t, uuid.Nil, post.ID)
}

func TestPostService_GetPost_CountsView(t *testing.T) {
	svc, _ := newPostTestService()
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, createTestPost(t, uuid.New(), "viewed"))
	require.NoError(t, err)

	first, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ViewsCount)

	second, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ViewsCount)
}

func TestPostService_GetPost_ConcurrentViews(t *testing.T) {
	svc, _ := newPostTestService()
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, createTestPost(t, uuid.New(), "hot"))
	require.NoError(t, err)

	const readers = 50
	var wg sync.WaitGroup
	wg.Add(readers)
	for range readers {
		go func() {
			defer wg.Done()
			_, _ = svc.GetPost(ctx, created.ID)
		}()
	}
	wg.Wait()

	final, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(readers+1), final.ViewsCount, "no concurrent view increment may be lost")
}

func TestPostService_GetPost_Missing(t *testing.T) {
	svc, _ := newPostTestService()

	_, err := svc.GetPost(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrPostNotFound)
}

func TestPostService_ListPosts(t *testing.T) {
	svc, _ := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	_, err := svc.CreatePost(ctx, createTestPost(t, author, "oldest", "go"))
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, createTestPost(t, author, "middle", "sql"))
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, createTestPost(t, author, "newest", "go"))
	require.NoError(t, err)

	all, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "newest", all[0].Title, "most recent first")
	assert.Equal(t, "oldest", all[2].Title)

	// Listing never touches view counters.
	assert.Equal(t, int64(0), all[0].ViewsCount)

	goOnly, err := svc.ListPosts(ctx, "go")
	require.NoError(t, err)
	require.Len(t, goOnly, 2)
	for _, post := range goOnly {
		assert.Contains(t, post.Tags, "go")
	}
}

func TestPostService_UpdatePost(t *testing.T) {
	svc, _ := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	created, err := svc.CreatePost(ctx, createTestPost(t, author, "draft", "go"))
	require.NoError(t, err)

	newTitle := "published"
	newTags := []string{"go", "release"}
	updated, err := svc.UpdatePost(ctx, created.ID, author, &usecase.UpdatePostInput{
		Title: &newTitle,
		Tags:  &newTags,
	})
	require.NoError(t, err)

	assert.Equal(t, "published", updated.Title)
	assert.Equal(t, "body of draft", updated.Text, "untouched fields survive a partial update")
	assert.Equal(t, []string{"go", "release"}, updated.Tags)
}

func TestPostService_UpdatePost_NotAuthor(t *testing.T) {
	svc, _ := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	created, err := svc.CreatePost(ctx, createTestPost(t, author, "mine"))
	require.NoError(t, err)

	hijack := "stolen"
	_, err = svc.UpdatePost(ctx, created.ID, uuid.New(), &usecase.UpdatePostInput{Title: &hijack})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	// The post must be left unchanged.
	got, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestPostService_UpdatePost_Missing(t *testing.T) {
	svc, _ := newPostTestService()

	title := "x"
	_, err := svc.UpdatePost(context.Background(), uuid.New(), uuid.New(), &usecase.UpdatePostInput{Title: &title})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrPostNotFound)
}

func TestPostService_DeletePost(t *testing.T) {
	svc, deps := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	input := createTestPost(t, author, "ephemeral", "go")
	input.ImageURL = "/uploads/banner.png"
	created, err := svc.CreatePost(ctx, input)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, created.ID, author))

	_, err = svc.GetPost(ctx, created.ID)
	assert.ErrorIs(t, err, domainerrors.ErrPostNotFound)

	// Stored image is cleaned up and a deletion event goes out.
	assert.Equal(t, []string{"banner.png"}, deps.storage.deletedKeys())
	events := deps.publisher.published()
	require.Len(t, events, 2)
	assert.Equal(t, service.PostEventDeleted, events[1].Action)
	assert.Equal(t, created.ID.String(), events[1].PostID)
}

func TestPostService_DeletePost_ExternalImageUntouched(t *testing.T) {
	svc, deps := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	input := createTestPost(t, author, "hotlinked")
	input.ImageURL = "https://cdn.example.com/pic.png"
	created, err := svc.CreatePost(ctx, input)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, created.ID, author))
	assert.Empty(t, deps.storage.deletedKeys())
}

func TestPostService_DeletePost_NotAuthor(t *testing.T) {
	svc, _ := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	created, err := svc.CreatePost(ctx, createTestPost(t, author, "protected"))
	require.NoError(t, err)

	err = svc.DeletePost(ctx, created.ID, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	// Still there.
	_, err = svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
}

func TestPostService_TopTags(t *testing.T) {
	svc, _ := newPostTestService()
	ctx := context.Background()
	author := uuid.New()

	_, err := svc.CreatePost(ctx, createTestPost(t, author, "p1", "a", "b"))
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, createTestPost(t, author, "p2", "b", "c"))
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, createTestPost(t, author, "p3", "b"))
	require.NoError(t, err)

	tags, err := svc.TopTags(ctx, 0)
	require.NoError(t, err)
	require.Len(t, tags, 3)

	assert.Equal(t, "b", tags[0].Tag)
	assert.Equal(t, int64(3), tags[0].Count)

	// a and c are tied at one occurrence; a was seen first and stays ahead.
	assert.Equal(t, "a", tags[1].Tag)
	assert.Equal(t, int64(1), tags[1].Count)
	assert.Equal(t, "c", tags[2].Tag)
	assert.Equal(t, int64(1), tags[2].Count)

	// An explicit limit truncates the ranking.
	top, err := svc.TopTags(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "b", top[0].Tag)
}

func TestPostService_ShareQR(t *testing.T) {
	svc, _ := newPostTestService()

	png, err := svc.ShareQR(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, png)
}
