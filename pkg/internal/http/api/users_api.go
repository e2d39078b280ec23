package api

import (
	"github.com/emberridge/inkwell/pkg/internal/database"
	"github.com/emberridge/inkwell/pkg/internal/http/exts"
	"github.com/emberridge/inkwell/pkg/internal/models"
	"github.com/emberridge/inkwell/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listAccount(c *fiber.Ctx) error {
	views, err := services.ListAccounts(database.C)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(views)
}

func getAccount(c *fiber.Ctx) error {
	name := c.Params("name")

	account, err := services.GetAccount(database.C, name)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}

	return c.JSON(account.ToView())
}

func getAccountPublic(c *fiber.Ctx) error {
	name := c.Params("name")

	view, err := services.GetAccountPublic(database.C, name)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}

	return c.JSON(view)
}

func createAccount(c *fiber.Ctx) error {
	var data struct {
		Name     string `json:"name" validate:"required,min=3,max=32,alphanum"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	account, err := services.CreateAccount(database.C, data.Name, data.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(account.ToView())
}

func renameAccount(c *fiber.Ctx) error {
	name := c.Params("name")

	var data struct {
		Password string `json:"password" validate:"required"`
		NewName  string `json:"new_name" validate:"required,min=3,max=32,alphanum"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	view, err := services.RenameAccount(database.C, name, data.Password, data.NewName)
	if err != nil {
		return err
	}

	return c.JSON(view)
}

func changeAccountPassword(c *fiber.Ctx) error {
	name := c.Params("name")

	var data struct {
		Password    string `json:"password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	view, err := services.ChangeAccountPassword(database.C, name, data.Password, data.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(view)
}

func updateAccountAvatar(c *fiber.Ctx) error {
	name := c.Params("name")

	var data models.UploadResult
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	upload, err := services.UpdateAccountAvatar(database.C, name, data)
	if err != nil {
		return err
	}

	return c.JSON(upload)
}

func deleteAccount(c *fiber.Ctx) error {
	name := c.Params("name")

	deleted, err := services.DeleteAccount(database.C, name)
	if err != nil {
		return err
	}
	if !deleted {
		return c.JSON(fiber.Map{"detail": "account does not exist, nothing was deleted"})
	}

	return c.JSON(fiber.Map{"detail": "account deleted"})
}

func listAccountPost(c *fiber.Ctx) error {
	name := c.Params("name")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", services.DefaultPageSize)

	views, err := services.ListAccountPostViews(database.C, name, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(views)
}

func listAccountTag(c *fiber.Ctx) error {
	name := c.Params("name")

	names, err := services.ListAccountTagNames(database.C, name)
	if err != nil {
		return err
	}

	return c.JSON(names)
}
