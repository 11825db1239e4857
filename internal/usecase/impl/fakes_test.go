package impl

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"scribe/internal/domain/entity"
	"scribe/internal/domain/repository"
	"scribe/internal/domain/service"

	"github.com/google/uuid"
)

// In-memory doubles for the repository and service interfaces. They keep the
// same error protocol as the real implementations so the services under test
// cannot tell the difference.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

type fakePostRepo struct {
	mu        sync.Mutex
	posts     map[uuid.UUID]*entity.Post
	order     []uuid.UUID
	firstSeen map[string]int
	nextSeq   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:     make(map[uuid.UUID]*entity.Post),
		firstSeen: make(map[string]int),
	}
}

func (r *fakePostRepo) recordTags(tags []string) {
	for _, tag := range tags {
		if _, ok := r.firstSeen[tag]; !ok {
			r.firstSeen[tag] = r.nextSeq
		}
		r.nextSeq++
	}
}

func (r *fakePostRepo) Create(_ context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = uuid.New()
	post.ViewsCount = 0
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	clone := *post
	r.posts[post.ID] = &clone
	r.order = append(r.order, post.ID)
	r.recordTags(post.Tags)

	return nil
}

func (r *fakePostRepo) FindByIDAndIncrementViews(_ context.Context, id uuid.UUID) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	post.ViewsCount++
	clone := *post

	return &clone, nil
}

func (r *fakePostRepo) FindAll(_ context.Context, tagFilter string) ([]*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []*entity.Post
	for i := len(r.order) - 1; i >= 0; i-- {
		post := r.posts[r.order[i]]
		if post == nil {
			continue
		}
		if tagFilter != "" && !containsTag(post.Tags, tagFilter) {
			continue
		}
		clone := *post
		posts = append(posts, &clone)
	}

	return posts, nil
}

func (r *fakePostRepo) Update(_ context.Context, id, authorID uuid.UUID, patch *repository.PostPatch) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	if post.AuthorID != authorID {
		return nil, repository.ErrNotPostAuthor
	}

	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Text != nil {
		post.Text = *patch.Text
	}
	if patch.ImageURL != nil {
		post.ImageURL = *patch.ImageURL
	}
	if patch.Tags != nil {
		post.Tags = append([]string(nil), (*patch.Tags)...)
		r.recordTags(post.Tags)
	}
	post.UpdatedAt = time.Now()
	clone := *post

	return &clone, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id, authorID uuid.UUID) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	if post.AuthorID != authorID {
		return nil, repository.ErrNotPostAuthor
	}
	delete(r.posts, id)
	clone := *post

	return &clone, nil
}

func (r *fakePostRepo) TagFrequencies(_ context.Context, limit int) ([]*entity.TagCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int64)
	for _, post := range r.posts {
		for _, tag := range post.Tags {
			counts[tag]++
		}
	}

	result := make([]*entity.TagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, &entity.TagCount{Tag: tag, Count: count})
	}

	// Count descending, then first-seen order, mirroring the SQL aggregate.
	for i := 1; i < len(result); i++ {
		for j := i; j > 0; j-- {
			a, b := result[j-1], result[j]
			if b.Count > a.Count || (b.Count == a.Count && r.firstSeen[b.Tag] < r.firstSeen[a.Tag]) {
				result[j-1], result[j] = b, a
			}
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}

	return false
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

type fakeTokenService struct {
	issued map[string]uuid.UUID
	mu     sync.Mutex
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]uuid.UUID)}
}

func (s *fakeTokenService) Generate(userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := "token-" + uuid.NewString()
	s.issued[token] = userID

	return token, nil
}

func (s *fakeTokenService) Validate(token string) (*service.Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.issued[token]
	if !ok {
		return nil, service.ErrTokenMalformed
	}

	return &service.Claims{UserID: userID}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.PostEvent
	fail   bool
}

func (p *fakePublisher) PublishPostEvent(_ context.Context, event *service.PostEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return errFakePublish
	}
	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []*service.PostEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*service.PostEvent(nil), p.events...)
}

var errFakePublish = errors.New("publish failed")

type fakeFileStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeFileStorage) Save(_ context.Context, filename, _ string, _ io.Reader) (string, error) {
	return "/uploads/" + filename, nil
}

func (s *fakeFileStorage) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not stored")
}

func (s *fakeFileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, key)

	return nil
}

func (s *fakeFileStorage) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.deleted...)
}

type fakeShareCode struct{}

func (fakeShareCode) GeneratePostQR(_ uuid.UUID) ([]byte, error) {
	return []byte{0x89, 0x50, 0x4E, 0x47}, nil
}
