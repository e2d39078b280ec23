package api

import (
	"github.com/emberridge/inkwell/pkg/internal/database"
	"github.com/emberridge/inkwell/pkg/internal/http/exts"
	"github.com/emberridge/inkwell/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listTag(c *fiber.Ctx) error {
	tags, err := services.ListTags(database.C)
	if err != nil {
		return err
	}

	return c.JSON(tags)
}

func createTag(c *fiber.Ctx) error {
	var data struct {
		Name string `json:"name" validate:"required,max=64"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	tag, err := services.NewTag(database.C, data.Name)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(tag)
}

func deleteTag(c *fiber.Ctx) error {
	id, err := c.ParamsInt("tagId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid tag id, must be a number")
	}

	if err := services.DeleteTag(database.C, uint(id)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"detail": "tag deleted"})
}

func listPostWithTag(c *fiber.Ctx) error {
	name := c.Params("name")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", services.DefaultPageSize)

	views, err := services.ListPostViewsWithTag(database.C, name, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(views)
}
