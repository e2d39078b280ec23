package api

import (
	"github.com/emberridge/inkwell/pkg/internal/database"
	"github.com/emberridge/inkwell/pkg/internal/http/exts"
	"github.com/emberridge/inkwell/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func getPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id, must be a number")
	}

	view, err := services.GetPostView(database.C, uint(id))
	if err != nil {
		return err
	}

	return c.JSON(view)
}

func listPost(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", services.DefaultPageSize)

	views, err := services.ListPostViews(database.C, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(views)
}

func createPost(c *fiber.Ctx) error {
	var data struct {
		Author  string   `json:"author" validate:"required"`
		Title   string   `json:"title" validate:"required,max=256"`
		Content string   `json:"content" validate:"required"`
		Tags    []string `json:"tags" validate:"dive,required,max=64"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	view, err := services.NewPost(database.C, data.Author, data.Title, data.Content, data.Tags)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

func updatePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id, must be a number")
	}

	var data struct {
		User    string `json:"user" validate:"required"`
		Title   string `json:"title" validate:"required,max=256"`
		Content string `json:"content" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	detail, err := services.UpdatePost(database.C, uint(id), data.Title, data.Content, data.User)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"detail": detail})
}

func deletePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id, must be a number")
	}

	user := c.Query("user")
	if len(user) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "user is required")
	}

	detail, err := services.DeletePost(database.C, uint(id), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"detail": detail})
}

func attachTagToPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id, must be a number")
	}

	var data struct {
		User string `json:"user" validate:"required"`
		Tag  string `json:"tag" validate:"required,max=64"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	detail, err := services.AttachTagToPost(database.C, uint(id), data.Tag, data.User)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"detail": detail})
}
