package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	localCache "github.com/emberridge/inkwell/pkg/internal/cache"
	"github.com/emberridge/inkwell/pkg/internal/models"
	"github.com/emberridge/inkwell/pkg/internal/security"
	"github.com/gofiber/fiber/v2"
)

func GetAccount(tx *gorm.DB, name string) (models.Account, error) {
	var account models.Account
	if err := tx.Where("name = ?", name).First(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

func GetAccountWithID(tx *gorm.DB, id uint) (models.Account, error) {
	var account models.Account
	if err := tx.Where("id = ?", id).First(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

func accountPublicCacheKey(name string) string {
	return fmt.Sprintf("account-public#%s", name)
}

// GetAccountPublic serves the anyone-visible projection, backed by a short
// lived cache that account mutations invalidate.
func GetAccountPublic(tx *gorm.DB, name string) (models.AccountPublicView, error) {
	ctx := context.Background()

	var marshal *marshaler.Marshaler
	if localCache.S != nil {
		marshal = marshaler.New(cache.New[any](localCache.S))
		if val, err := marshal.Get(ctx, accountPublicCacheKey(name), new(models.AccountPublicView)); err == nil {
			if view, ok := val.(*models.AccountPublicView); ok {
				return *view, nil
			}
		}
	}

	account, err := GetAccount(tx, name)
	if err != nil {
		return models.AccountPublicView{}, err
	}
	view := account.ToPublicView()

	if marshal != nil {
		_ = marshal.Set(
			ctx,
			accountPublicCacheKey(name),
			view,
			store.WithExpiration(5*time.Minute),
			store.WithTags([]string{"account-public", fmt.Sprintf("account#%s", name)}),
		)
	}

	return view, nil
}

func InvalidateAccountCache(name string) {
	if localCache.S == nil {
		return
	}
	cacheManager := cache.New[any](localCache.S)
	_ = cacheManager.Invalidate(
		context.Background(),
		store.WithInvalidateTags([]string{fmt.Sprintf("account#%s", name)}),
	)
}

// CheckAccountCredentials reports whether the plaintext password matches the
// stored hash. Unknown names and mismatches are both a plain false.
func CheckAccountCredentials(tx *gorm.DB, name, password string) bool {
	account, err := GetAccount(tx, name)
	if err != nil {
		return false
	}
	return security.VerifyPassword(password, account.Password)
}

func CreateAccount(db *gorm.DB, name, password string) (models.Account, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return models.Account{}, fiber.NewError(fiber.StatusInternalServerError, "unable to hash password: "+err.Error())
	}

	account := models.Account{
		Name:     name,
		Password: hash,
		Avatar:   models.DefaultAvatar,
		GroupID:  models.AccountGroupRegular,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&account).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return account, fiber.NewError(fiber.StatusConflict, "this username is already registered")
		}
		return account, fiber.NewError(fiber.StatusBadRequest, "unable to create account: "+err.Error())
	}

	return account, nil
}

func RenameAccount(db *gorm.DB, name, password, newName string) (models.AccountView, error) {
	var view models.AccountView
	if !CheckAccountCredentials(db, name, password) {
		return view, fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		account, err := GetAccount(tx, name)
		if err != nil {
			return err
		}
		account.Name = newName
		if err := tx.Save(&account).Error; err != nil {
			return err
		}
		// Read the row back under its new name rather than trusting the
		// in-memory copy; a miss here is a real storage fault.
		renamed, err := GetAccount(tx, newName)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "renamed account cannot be read back: "+err.Error())
		}
		view = renamed.ToView()
		return nil
	}); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return view, fe
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return view, fiber.NewError(fiber.StatusConflict, "this username already exists")
		}
		return view, fiber.NewError(fiber.StatusInternalServerError, "unable to rename account: "+err.Error())
	}

	InvalidateAccountCache(name)
	InvalidateAccountCache(newName)
	return view, nil
}

func ChangeAccountPassword(db *gorm.DB, name, password, newPassword string) (models.AccountView, error) {
	var view models.AccountView
	if !CheckAccountCredentials(db, name, password) {
		return view, fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return view, fiber.NewError(fiber.StatusInternalServerError, "unable to hash password: "+err.Error())
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		account, err := GetAccount(tx, name)
		if err != nil {
			return err
		}
		account.Password = hash
		if err := tx.Save(&account).Error; err != nil {
			return err
		}
		view = account.ToView()
		return nil
	}); err != nil {
		return view, fiber.NewError(fiber.StatusInternalServerError, "unable to change password: "+err.Error())
	}

	InvalidateAccountCache(name)
	return view, nil
}

func UpdateAccountAvatar(db *gorm.DB, name string, upload models.UploadResult) (models.UploadResult, error) {
	if err := db.Transaction(func(tx *gorm.DB) error {
		account, err := GetAccount(tx, name)
		if err != nil {
			return err
		}
		account.Avatar = upload.Filename
		return tx.Save(&account).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return upload, fiber.NewError(fiber.StatusNotFound, "account not found")
		}
		return upload, fiber.NewError(fiber.StatusInternalServerError, "unable to update avatar: "+err.Error())
	}

	InvalidateAccountCache(name)
	return upload, nil
}

// ListAccounts lists the regular-group accounts only; operators stay out of
// the public roster.
func ListAccounts(tx *gorm.DB) ([]models.AccountView, error) {
	var accounts []models.Account
	if err := tx.Where("group_id = ?", models.AccountGroupRegular).
		Order("id").
		Find(&accounts).Error; err != nil {
		return nil, err
	}

	views := make([]models.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, account.ToView())
	}
	return views, nil
}

// DeleteAccount tears down the account together with its posts and their
// associations. A missing account is a not-found result, not an error.
// Association rows go first so the counters settle before the posts vanish.
func DeleteAccount(db *gorm.DB, name string) (bool, error) {
	account, err := GetAccount(db, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fiber.NewError(fiber.StatusInternalServerError, "unable to look up account: "+err.Error())
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).
			Where("author_id = ?", account.ID).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := DetachAllForPosts(tx, postIDs); err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", account.ID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&account).Error
	}); err != nil {
		return false, fiber.NewError(fiber.StatusBadRequest, "unable to delete account: "+err.Error())
	}

	InvalidateAccountCache(name)
	log.Info().Str("name", name).Msg("Deleted an account with all of its posts.")
	return true, nil
}
