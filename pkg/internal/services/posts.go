package services

import (
	"errors"
	"fmt"

	"github.com/emberridge/inkwell/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const TruncatePostContentThreshold = 200

// TruncatePostContent caps list-path content at the first 200 runes.
func TruncatePostContent(content string) string {
	runes := []rune(content)
	if len(runes) <= TruncatePostContentThreshold {
		return content
	}
	return string(runes[:TruncatePostContentThreshold])
}

const (
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// NormalizePagination clamps 1-indexed paging parameters into sane bounds
// and returns the resulting offset and limit.
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

func GetPost(tx *gorm.DB, id uint) (models.Post, error) {
	var post models.Post
	if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
		return post, err
	}
	return post, nil
}

func GetPostOwner(tx *gorm.DB, post models.Post) (models.Account, error) {
	return GetAccountWithID(tx, post.AuthorID)
}

// EnsurePostOwner gates mutation on ownership. The acting user learns who
// the post actually belongs to; a missing owner row is a storage fault.
func EnsurePostOwner(tx *gorm.DB, post models.Post, actingName string) error {
	owner, err := GetPostOwner(tx, post)
	if err != nil {
		return err
	}
	if owner.Name != actingName {
		return fiber.NewError(
			fiber.StatusUnauthorized,
			fmt.Sprintf("you are not allowed to modify this post, it belongs to %s", owner.Name),
		)
	}
	return nil
}

// BuildPostView assembles the caller-facing projection of a single post with
// full content.
func BuildPostView(tx *gorm.DB, post models.Post) (models.PostView, error) {
	author, err := GetPostOwner(tx, post)
	if err != nil {
		return models.PostView{}, err
	}
	tags, err := ListPostTagNames(tx, post.ID)
	if err != nil {
		return models.PostView{}, err
	}
	return post.ToView(author, tags), nil
}

func buildPostViews(tx *gorm.DB, posts []models.Post) ([]models.PostView, error) {
	if len(posts) == 0 {
		return []models.PostView{}, nil
	}

	authorIDs := lo.Uniq(lo.Map(posts, func(item models.Post, index int) uint {
		return item.AuthorID
	}))
	var authors []models.Account
	if err := tx.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorMap := lo.SliceToMap(authors, func(item models.Account) (uint, models.Account) {
		return item.ID, item
	})

	views := make([]models.PostView, 0, len(posts))
	for _, post := range posts {
		tags, err := ListPostTagNames(tx, post.ID)
		if err != nil {
			return nil, err
		}
		view := post.ToView(authorMap[post.AuthorID], tags)
		view.Content = TruncatePostContent(view.Content)
		views = append(views, view)
	}
	return views, nil
}

// NewPost creates a post for an existing author, resolving each named tag
// idempotently and wiring the associations in the same transaction.
func NewPost(db *gorm.DB, authorName, title, content string, tagNames []string) (models.PostView, error) {
	var view models.PostView
	language := DetectPostLanguage(content)

	if err := db.Transaction(func(tx *gorm.DB) error {
		author, err := GetAccount(tx, authorName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "author not found, cannot create post")
			}
			return err
		}

		post := models.Post{
			Title:    title,
			Content:  content,
			Language: language,
			AuthorID: author.ID,
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		for _, name := range tagNames {
			tag, err := GetTagOrCreate(tx, name)
			if err != nil {
				return err
			}
			if err := AttachTag(tx, post, tag); err != nil {
				return err
			}
		}

		view, err = BuildPostView(tx, post)
		return err
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return view, fe
		}
		return view, fiber.NewError(fiber.StatusBadRequest, "unable to create post: "+err.Error())
	}

	log.Debug().Uint("post", view.ID).Str("author", authorName).Msg("Created a new post.")
	return view, nil
}

func GetPostView(tx *gorm.DB, id uint) (models.PostView, error) {
	post, err := GetPost(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PostView{}, fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		return models.PostView{}, err
	}
	return BuildPostView(tx, post)
}

func ListPostViews(tx *gorm.DB, page, pageSize int) ([]models.PostView, error) {
	offset, limit := NormalizePagination(page, pageSize)

	var posts []models.Post
	if err := tx.Order("id").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "unable to list posts: "+err.Error())
	}

	views, err := buildPostViews(tx, posts)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "unable to project posts: "+err.Error())
	}
	return views, nil
}

func ListAccountPostViews(tx *gorm.DB, name string, page, pageSize int) ([]models.PostView, error) {
	offset, limit := NormalizePagination(page, pageSize)

	author, err := GetAccount(tx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "account not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var posts []models.Post
	if err := tx.Where("author_id = ?", author.ID).
		Order("id").Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "unable to list posts: "+err.Error())
	}

	views, err := buildPostViews(tx, posts)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "unable to project posts: "+err.Error())
	}
	return views, nil
}

// ListPostViewsWithTag pages the posts joined through the association index,
// using the same light projection as every other list path.
func ListPostViewsWithTag(tx *gorm.DB, tagName string, page, pageSize int) ([]models.PostView, error) {
	offset, limit := NormalizePagination(page, pageSize)

	var posts []models.Post
	if err := tx.
		Select("posts.*").
		Joins("JOIN post_tags ON posts.id = post_tags.post_id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("tags.name = ?", tagName).
		Order("posts.id").Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "unable to list posts: "+err.Error())
	}

	views, err := buildPostViews(tx, posts)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "unable to project posts: "+err.Error())
	}
	return views, nil
}

// ListAccountTagNames returns the distinct tag names used across an
// account's posts.
func ListAccountTagNames(tx *gorm.DB, name string) ([]string, error) {
	account, err := GetAccount(tx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "account not found")
		}
		return nil, err
	}

	var names []string
	if err := tx.Model(&models.Tag{}).
		Distinct("tags.name").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON post_tags.post_id = posts.id").
		Where("posts.author_id = ?", account.ID).
		Pluck("tags.name", &names).Error; err != nil {
		return names, err
	}
	return names, nil
}

func UpdatePost(db *gorm.DB, id uint, title, content, actingName string) (string, error) {
	language := DetectPostLanguage(content)

	if err := db.Transaction(func(tx *gorm.DB) error {
		post, err := GetPost(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "post not found")
			}
			return err
		}
		if err := EnsurePostOwner(tx, post, actingName); err != nil {
			return err
		}

		post.Title = title
		post.Content = content
		post.Language = language
		return tx.Save(&post).Error
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return "", fe
		}
		return "", fiber.NewError(fiber.StatusBadRequest, "unable to update post: "+err.Error())
	}

	return "post updated", nil
}

// DeletePost removes the post after the ownership gate passes: associations
// first with their counter decrements, then the row itself.
func DeletePost(db *gorm.DB, id uint, actingName string) (string, error) {
	if err := db.Transaction(func(tx *gorm.DB) error {
		post, err := GetPost(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "post not found")
			}
			return err
		}
		if err := EnsurePostOwner(tx, post, actingName); err != nil {
			return err
		}

		if err := DetachAllForPosts(tx, []uint{post.ID}); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return "", fe
		}
		return "", fiber.NewError(fiber.StatusBadRequest, "unable to delete post: "+err.Error())
	}

	return "post deleted", nil
}

// AttachTagToPost resolves the named tag (creating it when new) and links it
// to the post. Attaching the same tag twice is rejected by the association's
// composite key.
func AttachTagToPost(db *gorm.DB, id uint, tagName, actingName string) (string, error) {
	if err := db.Transaction(func(tx *gorm.DB) error {
		post, err := GetPost(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "post not found")
			}
			return err
		}
		if err := EnsurePostOwner(tx, post, actingName); err != nil {
			return err
		}

		tag, err := GetTagOrCreate(tx, tagName)
		if err != nil {
			return err
		}
		if err := AttachTag(tx, post, tag); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusBadRequest, "this tag is already attached to the post")
			}
			return err
		}
		return nil
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return "", fe
		}
		return "", fiber.NewError(fiber.StatusBadRequest, "unable to attach tag: "+err.Error())
	}

	return "tag attached", nil
}
