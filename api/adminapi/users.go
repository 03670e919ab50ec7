package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/storage/model"
)

// registerUsers wires handlers using a UsersStore abstraction.
func registerUsers(r fiber.Router, users model.UsersStore) {
	g := r.Group("/users")

	g.Get("/", func(c *fiber.Ctx) error {
		list, err := users.List()
		if err != nil {
			return api.SendError(c, err)
		}
		return c.JSON(list)
	})

	type createReq struct {
		Username    string `json:"username" validate:"required,max=128"`
		Password    string `json:"password" validate:"required"`
		DisplayName string `json:"display_name"`
		Issuer      string `json:"issuer" validate:"max=128"`
	}
	g.Post("/", func(c *fiber.Ctx) error {
		var req createReq
		if err := api.ParseBody(c, &req); err != nil {
			return api.SendError(c, err)
		}
		u, err := users.Create(req.Username, req.Password, req.DisplayName, req.Issuer)
		if err != nil {
			return api.SendError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	})

	type updateReq struct {
		DisplayName *string `json:"display_name"`
		Password    *string `json:"password" validate:"omitempty,min=1"`
		Issuer      *string `json:"issuer" validate:"omitempty,max=128"`
		Disabled    *bool   `json:"disabled"`
	}
	g.Put("/:username", func(c *fiber.Ctx) error {
		username, err := api.PathParam(c, "username")
		if err != nil {
			return api.SendError(c, err)
		}
		var req updateReq
		if err = api.ParseBody(c, &req); err != nil {
			return api.SendError(c, err)
		}
		u, err := users.Update(username, req.DisplayName, req.Password, req.Issuer, req.Disabled)
		if err != nil {
			return api.SendError(c, err)
		}
		return c.JSON(u)
	})

	g.Get("/:username", func(c *fiber.Ctx) error {
		username, err := api.PathParam(c, "username")
		if err != nil {
			return api.SendError(c, err)
		}
		u, err := users.Get(username)
		if err != nil {
			return api.SendError(c, err)
		}
		return c.JSON(u)
	})

	g.Delete("/:username", func(c *fiber.Ctx) error {
		username, err := api.PathParam(c, "username")
		if err != nil {
			return api.SendError(c, err)
		}
		if err = users.Delete(username); err != nil {
			return api.SendError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
