package database

import (
	"github.com/emberridge/inkwell/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.Tag{},
	&models.Post{},
}

func RunMigration(source *gorm.DB) error {
	// The explicit join model gives post_tags a composite primary key, so a
	// duplicate attach fails at the storage layer.
	if err := source.SetupJoinTable(&models.Post{}, "Tags", &models.PostTag{}); err != nil {
		return err
	}
	if err := source.SetupJoinTable(&models.Tag{}, "Posts", &models.PostTag{}); err != nil {
		return err
	}

	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
