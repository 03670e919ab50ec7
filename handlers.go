package certichain

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/internal/version"
	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

const (
	verifyKindID       = "id"
	verifyKindDocument = "document"
)

func (cc *CertiChain) health(c *fiber.Ctx) error {
	return c.JSON(
		fiber.Map{
			"status":    "OK",
			"message":   "CertiChain API is running",
			"version":   version.VERSION,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
	)
}

func (cc *CertiChain) listTemplates(c *fiber.Ctx) error {
	return c.JSON(cc.engine.Templates.List())
}

func (cc *CertiChain) stats(c *fiber.Ctx) error {
	total, err := cc.engine.Registry.Total(c.UserContext())
	if err != nil {
		return cc.sendError(c, err)
	}
	issuers, err := cc.engine.Directory.List(c.UserContext())
	if err != nil {
		return cc.sendError(c, err)
	}
	return c.JSON(
		fiber.Map{
			"total_certificates": total,
			"issuers":            len(issuers),
		},
	)
}

func certificateID(c *fiber.Ctx) (model.CertificateID, error) {
	id, err := model.ParseCertificateID(c.Params("id"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return id, nil
}

// actingIdentity returns the issuer identity of the authenticated account.
// A claimed identity must match it.
func actingIdentity(c *fiber.Ctx, claimed string) (string, error) {
	identity := api.Principal(c).Issuer
	if claimed != "" && claimed != identity {
		return "", errors.Wrapf(
			registry.ErrNotAuthorized, "authenticated as '%s', cannot act as '%s'", identity, claimed,
		)
	}
	return identity, nil
}

type issueRequest struct {
	// Issuer defaults to the identity of the authenticated account
	Issuer   string       `json:"issuer"`
	Template string       `json:"template" validate:"required"`
	Fields   model.Fields `json:"fields"`
	// Document is base64 encoded in JSON
	Document  []byte     `json:"document"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (cc *CertiChain) issueCertificate(c *fiber.Ctx) error {
	var req issueRequest
	if err := api.ParseBody(c, &req); err != nil {
		return cc.sendError(c, err)
	}
	issuer, err := actingIdentity(c, req.Issuer)
	if err != nil {
		return cc.sendError(c, err)
	}
	cert, err := cc.engine.Registry.Issue(
		c.UserContext(), registry.IssueRequest{
			Issuer:    issuer,
			Template:  req.Template,
			Fields:    req.Fields,
			Document:  req.Document,
			ExpiresAt: req.ExpiresAt,
		},
	)
	if err != nil {
		return cc.sendError(c, err)
	}
	cc.metrics.IncrementIssued(cert.Template)
	return c.Status(fiber.StatusCreated).JSON(cert)
}

func (cc *CertiChain) listCertificates(c *fiber.Ctx) error {
	certs, err := cc.engine.Registry.List(
		c.UserContext(), registry.CertificateFilter{
			Issuer:   c.Query("issuer"),
			Template: c.Query("template"),
		},
	)
	if err != nil {
		return cc.sendError(c, err)
	}
	if certs == nil {
		certs = []model.Certificate{}
	}
	return c.JSON(certs)
}

func (cc *CertiChain) getCertificate(c *fiber.Ctx) error {
	id, err := certificateID(c)
	if err != nil {
		return cc.sendError(c, err)
	}
	cert, err := cc.engine.Registry.Get(c.UserContext(), id)
	if err != nil {
		return cc.sendError(c, err)
	}
	return c.JSON(cert)
}

type revokeRequest struct {
	// Requester defaults to the identity of the authenticated account
	Requester string `json:"requester"`
}

func (cc *CertiChain) revokeCertificate(c *fiber.Ctx) error {
	id, err := certificateID(c)
	if err != nil {
		return cc.sendError(c, err)
	}
	var req revokeRequest
	if len(c.Body()) > 0 {
		if err = api.ParseBody(c, &req); err != nil {
			return cc.sendError(c, err)
		}
	}
	requester, err := actingIdentity(c, req.Requester)
	if err != nil {
		return cc.sendError(c, err)
	}
	cert, err := cc.engine.Registry.Revoke(c.UserContext(), id, requester)
	if err != nil {
		return cc.sendError(c, err)
	}
	cc.metrics.IncrementRevoked()
	return c.JSON(cert)
}

// verifyCertificate verifies by id; a POST body is taken as the document
// to check against the recorded content hash and must not be empty
func (cc *CertiChain) verifyCertificate(c *fiber.Ctx) error {
	id, err := certificateID(c)
	if err != nil {
		return cc.sendError(c, err)
	}
	var document []byte
	if c.Method() == fiber.MethodPost {
		document = c.Body()
		if len(document) == 0 {
			return cc.sendError(c, errors.WithStack(registry.ErrEmptyDocument))
		}
	}
	verdict, err := cc.engine.Verifier.Verify(c.UserContext(), id, document)
	if err != nil {
		return cc.sendError(c, err)
	}
	cc.metrics.IncrementVerification(string(verdict.Status), verifyKindID)
	log.WithFields(
		log.Fields{
			"certificate": id,
			"status":      verdict.Status,
		},
	).Debug("verified certificate")
	return c.JSON(verdict)
}

func (cc *CertiChain) verifyDocument(c *fiber.Ctx) error {
	verdict, err := cc.engine.Verifier.VerifyDocument(c.UserContext(), c.Body())
	if err != nil {
		return cc.sendError(c, err)
	}
	cc.metrics.IncrementVerification(string(verdict.Status), verifyKindDocument)
	return c.JSON(verdict)
}

func (cc *CertiChain) fetchContent(c *fiber.Ctx) error {
	hash, err := api.PathParam(c, "hash")
	if err != nil {
		return cc.sendError(c, err)
	}
	data, err := cc.engine.Content.Fetch(c.UserContext(), hash)
	if err != nil {
		return cc.sendError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}
