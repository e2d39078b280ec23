package services

import (
	"errors"
	"fmt"

	"github.com/emberridge/inkwell/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func GetTag(tx *gorm.DB, id uint) (models.Tag, error) {
	var tag models.Tag
	if err := tx.Where("id = ?", id).First(&tag).Error; err != nil {
		return tag, err
	}
	return tag, nil
}

func GetTagOrCreate(tx *gorm.DB, name string) (models.Tag, error) {
	var tag models.Tag
	if len(name) == 0 {
		return tag, fiber.NewError(fiber.StatusBadRequest, "tag name cannot be empty")
	}
	if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name}
			err := tx.Create(&tag).Error
			return tag, err
		}
		return tag, err
	}
	return tag, nil
}

func NewTag(db *gorm.DB, name string) (models.Tag, error) {
	tag := models.Tag{Name: name}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&tag).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return tag, fiber.NewError(fiber.StatusBadRequest, "a tag with this name already exists")
		}
		return tag, fiber.NewError(fiber.StatusBadRequest, "unable to create tag: "+err.Error())
	}
	return tag, nil
}

// ListTags re-verifies the cached counters before handing the catalog out.
func ListTags(db *gorm.DB) ([]models.Tag, error) {
	var tags []models.Tag
	if err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := RecountTagReferences(tx); err != nil {
			return err
		}
		return tx.Order("id").Find(&tags).Error
	}); err != nil {
		return tags, fiber.NewError(fiber.StatusBadRequest, "unable to list tags: "+err.Error())
	}
	return tags, nil
}

// DeleteTag removes an orphan tag. The counter is recomputed in the same
// transaction first, so the zero check never trusts a stale cache.
func DeleteTag(db *gorm.DB, id uint) error {
	if err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := RecountTagReferences(tx); err != nil {
			return err
		}
		tag, err := GetTag(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "tag not found")
			}
			return err
		}
		if tag.ReferenceCount > 0 {
			return fiber.NewError(
				fiber.StatusBadRequest,
				fmt.Sprintf("%d posts still use this tag, cannot delete it", tag.ReferenceCount),
			)
		}
		return tx.Delete(&tag).Error
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe
		}
		return fiber.NewError(fiber.StatusBadRequest, "unable to delete tag: "+err.Error())
	}
	return nil
}

// AttachTag links a post to an already resolved tag and bumps its counter in
// the same transaction. A duplicate attach trips the composite primary key.
func AttachTag(tx *gorm.DB, post models.Post, tag models.Tag) error {
	if err := tx.Create(&models.PostTag{PostID: post.ID, TagID: tag.ID}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Tag{}).
		Where("id = ?", tag.ID).
		Update("reference_count", gorm.Expr("reference_count + 1")).Error
}

// DetachAllForPosts removes every association of the given posts, applying
// the matching counter decrements before the rows go away.
func DetachAllForPosts(tx *gorm.DB, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}

	var usages []struct {
		TagID uint
		Count int64
	}
	if err := tx.Model(&models.PostTag{}).
		Select("tag_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("tag_id").
		Scan(&usages).Error; err != nil {
		return err
	}

	for _, usage := range usages {
		if err := tx.Model(&models.Tag{}).
			Where("id = ?", usage.TagID).
			Update("reference_count", gorm.Expr("reference_count - ?", usage.Count)).Error; err != nil {
			return err
		}
	}

	return tx.Where("post_id IN ?", postIDs).Delete(&models.PostTag{}).Error
}

// DetachAllForTag strips a tag off every post it is attached to.
func DetachAllForTag(tx *gorm.DB, tag models.Tag) error {
	if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Tag{}).
		Where("id = ?", tag.ID).
		Update("reference_count", 0).Error
}

// ListPostTagNames returns the post's tag names in catalog order.
func ListPostTagNames(tx *gorm.DB, postID uint) ([]string, error) {
	var names []string
	if err := tx.Model(&models.Tag{}).
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", postID).
		Order("tags.id").
		Pluck("tags.name", &names).Error; err != nil {
		return names, err
	}
	return names, nil
}

// RecountTagReferences recomputes every tag's counter from the association
// rows and reports how many rows had drifted. Association mutations keep the
// counters in step incrementally; this is the audit that catches anything
// that slipped past them.
func RecountTagReferences(tx *gorm.DB) (int, error) {
	var tags []models.Tag
	if err := tx.Find(&tags).Error; err != nil {
		return 0, err
	}

	var repaired int
	for _, tag := range tags {
		var count int64
		if err := tx.Model(&models.PostTag{}).
			Where("tag_id = ?", tag.ID).
			Count(&count).Error; err != nil {
			return repaired, err
		}
		if tag.ReferenceCount == count {
			continue
		}
		if err := tx.Model(&models.Tag{}).
			Where("id = ?", tag.ID).
			Update("reference_count", count).Error; err != nil {
			return repaired, err
		}
		repaired++
	}

	return repaired, nil
}
