package adminapi

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/registry"
)

func registerIssuers(r fiber.Router, directory *registry.Directory) {
	g := r.Group("/issuers")

	type registerReq struct {
		Identity     string `json:"identity" validate:"required"`
		Name         string `json:"name" validate:"required"`
		Organization string `json:"organization" validate:"required"`
	}
	g.Post("/", func(c *fiber.Ctx) error {
		var req registerReq
		if err := api.ParseBody(c, &req); err != nil {
			return api.SendError(c, err)
		}
		issuer, err := directory.Register(c.UserContext(), req.Identity, req.Name, req.Organization)
		if err != nil {
			return api.SendError(c, err)
		}
		log.WithFields(
			log.Fields{
				"issuer":   issuer.Identity,
				"operator": operator(c),
			},
		).Info("admin api: issuer registered")
		return c.Status(fiber.StatusCreated).JSON(issuer)
	})

	g.Get("/", func(c *fiber.Ctx) error {
		issuers, err := directory.List(c.UserContext())
		if err != nil {
			return api.SendError(c, err)
		}
		return c.JSON(issuers)
	})

	g.Get("/:identity", func(c *fiber.Ctx) error {
		identity, err := api.PathParam(c, "identity")
		if err != nil {
			return api.SendError(c, err)
		}
		issuer, err := directory.Get(c.UserContext(), identity)
		if err != nil {
			return api.SendError(c, err)
		}
		return c.JSON(issuer)
	})

	setAuthorization := func(authorized bool) fiber.Handler {
		return func(c *fiber.Ctx) error {
			identity, err := api.PathParam(c, "identity")
			if err != nil {
				return api.SendError(c, err)
			}
			if authorized {
				err = directory.Authorize(c.UserContext(), identity)
			} else {
				err = directory.Deauthorize(c.UserContext(), identity)
			}
			if err != nil {
				return api.SendError(c, err)
			}
			log.WithFields(
				log.Fields{
					"issuer":     identity,
					"authorized": authorized,
					"operator":   operator(c),
				},
			).Info("admin api: issuer authorization changed")
			issuer, err := directory.Get(c.UserContext(), identity)
			if err != nil {
				return api.SendError(c, err)
			}
			return c.JSON(issuer)
		}
	}
	g.Put("/:identity/authorization", setAuthorization(true))
	g.Delete("/:identity/authorization", setAuthorization(false))
}
