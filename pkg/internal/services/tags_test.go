package services_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberridge/inkwell/pkg/internal/models"
	"github.com/emberridge/inkwell/pkg/internal/services"
)

func TestGetTagOrCreateIdempotent(t *testing.T) {
	db := testDB(t)

	first, err := services.GetTagOrCreate(db, "go")
	require.NoError(t, err)
	second, err := services.GetTagOrCreate(db, "go")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, countRows(t, db, &models.Tag{}, "name = ?", "go"))
}

func TestTagReuseAcrossPosts(t *testing.T) {
	db := testDB(t)

	_, err := services.CreateAccount(db, "alice", "wonderland")
	require.NoError(t, err)

	_, err = services.NewPost(db, "alice", "First", "one", []string{"go"})
	require.NoError(t, err)
	_, err = services.NewPost(db, "alice", "Second", "two", []string{"go"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, countRows(t, db, &models.Tag{}, "name = ?", "go"))
	assert.EqualValues(t, 2, getTagByName(t, db, "go").ReferenceCount)
}

func TestGetTagOrCreateEmptyName(t *testing.T) {
	db := testDB(t)

	// Seed an unrelated tag; an empty name must never resolve to it.
	_, err := services.NewTag(db, "go")
	require.NoError(t, err)

	var fe *fiber.Error
	_, err = services.GetTagOrCreate(db, "")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	_, err = services.CreateAccount(db, "alice", "wonderland")
	require.NoError(t, err)

	_, err = services.NewPost(db, "alice", "Hello", "content", []string{""})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	// The rejected create rolled back fully: no post, no association, and
	// the pre-existing tag's counter is untouched.
	assert.EqualValues(t, 0, countRows(t, db, &models.Post{}, "1 = 1"))
	assert.EqualValues(t, 0, countRows(t, db, &models.PostTag{}, "1 = 1"))
	assert.EqualValues(t, 0, getTagByName(t, db, "go").ReferenceCount)
}

func TestNewTagDuplicate(t *testing.T) {
	db := testDB(t)

	_, err := services.NewTag(db, "go")
	require.NoError(t, err)

	_, err = services.NewTag(db, "go")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestListTagsRecountsFirst(t *testing.T) {
	db := testDB(t)

	_, err := services.CreateAccount(db, "alice", "wonderland")
	require.NoError(t, err)
	_, err = services.NewPost(db, "alice", "First", "one", []string{"go", "systems"})
	require.NoError(t, err)

	// Corrupt a cached counter; listing must repair it.
	require.NoError(t, db.Model(&models.Tag{}).
		Where("name = ?", "go").
		Update("reference_count", 42).Error)

	tags, err := services.ListTags(db)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	for _, tag := range tags {
		assert.EqualValues(t, 1, tag.ReferenceCount, "tag %s", tag.Name)
	}
}

func TestDeleteTagGate(t *testing.T) {
	db := testDB(t)

	_, err := services.CreateAccount(db, "alice", "wonderland")
	require.NoError(t, err)
	post, err := services.NewPost(db, "alice", "First", "one", []string{"go"})
	require.NoError(t, err)
	tag := getTagByName(t, db, "go")

	var fe *fiber.Error

	err = services.DeleteTag(db, tag.ID)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Contains(t, fe.Message, "1 posts")

	_, err = services.DeletePost(db, post.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, services.DeleteTag(db, tag.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Tag{}, "name = ?", "go"))

	err = services.DeleteTag(db, tag.ID)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestDeleteTagVerifiesCountBeforeGate(t *testing.T) {
	db := testDB(t)

	tag, err := services.NewTag(db, "stale")
	require.NoError(t, err)

	// A drifted counter must not block deleting a genuinely orphan tag.
	require.NoError(t, db.Model(&models.Tag{}).
		Where("id = ?", tag.ID).
		Update("reference_count", 7).Error)

	require.NoError(t, services.DeleteTag(db, tag.ID))
}

func TestRecountRepairsDrift(t *testing.T) {
	db := testDB(t)

	_, err := services.CreateAccount(db, "alice", "wonderland")
	require.NoError(t, err)
	_, err = services.NewPost(db, "alice", "First", "one", []string{"go", "systems"})
	require.NoError(t, err)
	_, err = services.NewPost(db, "alice", "Second", "two", []string{"go"})
	require.NoError(t, err)

	repaired, err := services.RecountTagReferences(db)
	require.NoError(t, err)
	assert.Zero(t, repaired)

	require.NoError(t, db.Model(&models.Tag{}).
		Where("name = ?", "go").
		Update("reference_count", 0).Error)

	repaired, err = services.RecountTagReferences(db)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.EqualValues(t, 2, getTagByName(t, db, "go").ReferenceCount)
}

func TestDetachAllForTag(t *testing.T) {
	db := testDB(t)

	_, err := services.CreateAccount(db, "alice", "wonderland")
	require.NoError(t, err)
	_, err = services.NewPost(db, "alice", "First", "one", []string{"go"})
	require.NoError(t, err)
	_, err = services.NewPost(db, "alice", "Second", "two", []string{"go"})
	require.NoError(t, err)

	tag := getTagByName(t, db, "go")
	require.NoError(t, services.DetachAllForTag(db, tag))

	assert.EqualValues(t, 0, countRows(t, db, &models.PostTag{}, "tag_id = ?", tag.ID))
	assert.EqualValues(t, 0, getTagByName(t, db, "go").ReferenceCount)
}

func TestListPostTagNamesCatalogOrder(t *testing.T) {
	db := testDB(t)

	_, err := services.CreateAccount(db, "alice", "wonderland")
	require.NoError(t, err)

	// Register the tags in a known catalog order first.
	_, err = services.NewTag(db, "alpha")
	require.NoError(t, err)
	_, err = services.NewTag(db, "beta")
	require.NoError(t, err)

	// Attach in the reverse order; listing still follows the catalog.
	post, err := services.NewPost(db, "alice", "First", "one", []string{"beta", "alpha"})
	require.NoError(t, err)

	names, err := services.ListPostTagNames(db, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}
