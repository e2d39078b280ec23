package api

import (
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		users := api.Group("/users").Name("Users API")
		{
			users.Get("/", listAccount)
			users.Post("/", createAccount)
			users.Get("/:name", getAccount)
			users.Get("/:name/public", getAccountPublic)
			users.Get("/:name/posts", listAccountPost)
			users.Get("/:name/tags", listAccountTag)
			users.Patch("/:name/name", renameAccount)
			users.Patch("/:name/password", changeAccountPassword)
			users.Put("/:name/avatar", updateAccountAvatar)
			users.Delete("/:name", deleteAccount)
		}

		posts := api.Group("/posts").Name("Posts API")
		{
			posts.Get("/", listPost)
			posts.Post("/", createPost)
			posts.Get("/:postId", getPost)
			posts.Put("/:postId", updatePost)
			posts.Delete("/:postId", deletePost)
			posts.Post("/:postId/tags", attachTagToPost)
		}

		tags := api.Group("/tags").Name("Tags API")
		{
			tags.Get("/", listTag)
			tags.Post("/", createTag)
			tags.Get("/:name/posts", listPostWithTag)
			tags.Delete("/:tagId", deleteTag)
		}
	}
}
