package postgres

import (
	"context"
	"sort"
	"time"

	"scribe/internal/domain/entity"
	"scribe/internal/domain/repository"
	"scribe/internal/errors"
	"scribe/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates the PostgreSQL-backed post repository.
func NewPostRepository(db *gorm.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	record := postToModel(post)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.ViewsCount = 0
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(record).Error; err != nil {
			return errors.Wrap(err, "failed to create post")
		}

		return insertTags(tx, record.ID, post.Tags)
	})
	if err != nil {
		return err
	}

	post.ID = record.ID
	post.ViewsCount = 0
	post.CreatedAt = record.CreatedAt
	post.UpdatedAt = record.UpdatedAt

	return nil
}

func (r *postRepository) FindByIDAndIncrementViews(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	// Single-statement increment keeps concurrent reads from losing counts.
	res := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to increment post views")
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrPostNotFound
	}

	// Read back from the source connection; a replica could still be behind
	// the increment and would return a stale count or miss the row entirely.
	var record model.PostModel
	err := r.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Preload("Tags", orderTagsByPosition).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPostNotFound
		}

		return nil, errors.Wrap(err, "failed to find post by id")
	}

	return postToEntity(&record), nil
}

func (r *postRepository) FindAll(ctx context.Context, tagFilter string) ([]*entity.Post, error) {
	query := r.db.WithContext(ctx).
		Preload("Tags", orderTagsByPosition).
		Order("created_at DESC")

	if tagFilter != "" {
		tagged := r.db.Model(&model.PostTagModel{}).
			Select("post_id").
			Where("tag = ?", tagFilter)
		query = query.Where("id IN (?)", tagged)
	}

	var records []model.PostModel
	if err := query.Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}

	posts := make([]*entity.Post, 0, len(records))
	for i := range records {
		posts = append(posts, postToEntity(&records[i]))
	}

	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, id, authorID uuid.UUID, patch *repository.PostPatch) (*entity.Post, error) {
	var updated *entity.Post

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockPostForAuthor(tx, id, authorID)
		if err != nil {
			return err
		}

		columns := map[string]any{"updated_at": time.Now()}
		if patch.Title != nil {
			columns["title"] = *patch.Title
		}
		if patch.Text != nil {
			columns["text"] = *patch.Text
		}
		if patch.ImageURL != nil {
			columns["image_url"] = *patch.ImageURL
		}

		if err := tx.Model(&model.PostModel{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return errors.Wrap(err, "failed to update post")
		}

		if patch.Tags != nil {
			if err := tx.Where("post_id = ?", id).Delete(&model.PostTagModel{}).Error; err != nil {
				return errors.Wrap(err, "failed to clear post tags")
			}
			if err := insertTags(tx, id, *patch.Tags); err != nil {
				return err
			}
		}

		if err := tx.Preload("Tags", orderTagsByPosition).Where("id = ?", id).First(record).Error; err != nil {
			return errors.Wrap(err, "failed to reload post")
		}

		updated = postToEntity(record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *postRepository) Delete(ctx context.Context, id, authorID uuid.UUID) (*entity.Post, error) {
	var deleted *entity.Post

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockPostForAuthor(tx, id, authorID)
		if err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Order("position ASC").Find(&record.Tags).Error; err != nil {
			return errors.Wrap(err, "failed to load post tags")
		}

		if err := tx.Where("post_id = ?", id).Delete(&model.PostTagModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete post tags")
		}

		if err := tx.Where("id = ?", id).Delete(&model.PostModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete post")
		}

		deleted = postToEntity(record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func (r *postRepository) TagFrequencies(ctx context.Context, limit int) ([]*entity.TagCount, error) {
	var rows []struct {
		Tag   string
		Count int64
	}

	err := r.db.WithContext(ctx).Model(&model.PostTagModel{}).
		Select("tag, COUNT(*) AS count").
		Group("tag").
		Order("count DESC, MIN(seq) ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate tag frequencies")
	}

	counts := make([]*entity.TagCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, &entity.TagCount{Tag: row.Tag, Count: row.Count})
	}

	return counts, nil
}

// lockPostForAuthor fetches the post row under FOR UPDATE and enforces the
// ownership check inside the transaction. Not-found is reported before
// ownership so callers cannot probe which posts exist.
func lockPostForAuthor(tx *gorm.DB, id, authorID uuid.UUID) (*model.PostModel, error) {
	var record model.PostModel
	err := tx.Set("gorm:query_option", "FOR UPDATE").Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPostNotFound
		}

		return nil, errors.Wrap(err, "failed to find post by id")
	}

	if record.AuthorID != authorID {
		return nil, repository.ErrNotPostAuthor
	}

	return &record, nil
}

func insertTags(tx *gorm.DB, postID uuid.UUID, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	rows := make([]model.PostTagModel, 0, len(tags))
	for i, tag := range tags {
		rows = append(rows, model.PostTagModel{
			PostID:   postID,
			Tag:      tag,
			Position: i,
		})
	}

	if err := tx.Create(&rows).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrPostNotFound
		}

		return errors.Wrap(err, "failed to create post tags")
	}

	return nil
}

func orderTagsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func postToModel(post *entity.Post) *model.PostModel {
	return &model.PostModel{
		ID:         post.ID,
		Title:      post.Title,
		Text:       post.Text,
		ImageURL:   post.ImageURL,
		ViewsCount: post.ViewsCount,
		AuthorID:   post.AuthorID,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
}

func postToEntity(record *model.PostModel) *entity.Post {
	tags := make([]string, 0, len(record.Tags))
	tagRows := record.Tags
	sort.SliceStable(tagRows, func(i, j int) bool { return tagRows[i].Position < tagRows[j].Position })
	for _, row := range tagRows {
		tags = append(tags, row.Tag)
	}

	return &entity.Post{
		ID:         record.ID,
		Title:      record.Title,
		Text:       record.Text,
		Tags:       tags,
		ImageURL:   record.ImageURL,
		ViewsCount: record.ViewsCount,
		AuthorID:   record.AuthorID,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}
