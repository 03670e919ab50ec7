package certichain

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/api/adminapi"
	"github.com/go-certichain/certichain/internal/metrics"
	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

// CertiChain serves the query surface of a certificate registry over http
type CertiChain struct {
	server     *fiber.App
	serverConf ServerConf
	engine     *registry.Engine
	metrics    *metrics.Metrics
	users      model.UsersStore
	login      *api.LoginGuard
}

// Options holds optional settings for New
type Options struct {
	// AdminAPI mounts the admin API under /api/v1/admin; nil disables it
	AdminAPI *adminapi.Options
	// AccessLog receives the http access log; defaults to stderr
	AccessLog io.Writer
	// Registry is used for metrics; a new registry is created if nil
	Registry *prometheus.Registry
	// Login locks usernames after repeated failed authentications on the
	// issuer routes; nil disables the lockout
	Login *api.LoginGuard
}

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	Network:        "tcp",
}

// New creates a new CertiChain server on top of the passed engine
func New(serverConf ServerConf, engine *registry.Engine, storages model.Backends, opts Options) (
	*CertiChain, error,
) {
	if engine == nil {
		return nil, errors.New("no registry engine configured")
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	cc := &CertiChain{
		serverConf: serverConf,
		engine:     engine,
		metrics:    metrics.New(reg),
		users:      storages.Users,
		login:      opts.Login,
	}

	fiberConf := FiberServerConfig
	fiberConf.ErrorHandler = cc.handleError
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		fiberConf.TrustedProxies = tps
		fiberConf.EnableTrustedProxyCheck = true
	}
	fiberConf.ProxyHeader = serverConf.ForwardedIPHeader
	if serverConf.BodyLimit > 0 {
		fiberConf.BodyLimit = serverConf.BodyLimit
	}
	server := fiber.New(fiberConf)
	server.Use(recover.New())
	server.Use(compress.New())
	accessConf := logger.ConfigDefault
	if opts.AccessLog != nil {
		accessConf.Output = opts.AccessLog
	}
	server.Use(logger.New(accessConf))
	server.Use(requestid.New())
	allowOrigins := serverConf.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	server.Use(cors.New(cors.Config{AllowOrigins: allowOrigins}))
	server.Use(cc.observe)
	cc.server = server

	server.Get("/api/health", cc.health)
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if opts.AdminAPI != nil {
		adminapi.Register(server.Group("/api/v1/admin"), engine.Directory, storages, opts.AdminAPI)
	}

	v1 := server.Group("/api/v1")
	v1.Get("/templates", cc.listTemplates)
	v1.Get("/stats", cc.stats)
	v1.Post("/verify", cc.verifyDocument)
	v1.Get("/content/:hash", cc.fetchContent)

	certs := v1.Group("/certificates")
	certs.Post("/", cc.requireIssuer, cc.issueCertificate)
	certs.Get("/", cc.listCertificates)
	certs.Get("/:id", cc.getCertificate)
	certs.Post("/:id/revoke", cc.requireIssuer, cc.revokeCertificate)
	certs.Get("/:id/verify", cc.verifyCertificate)
	certs.Post("/:id/verify", cc.verifyCertificate)
	return cc, nil
}

func (cc *CertiChain) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	cc.metrics.ObserveRequest(c.Route().Path, time.Since(start))
	return err
}

const issuerRealm = `Basic realm="certichain issuers"`

// requireIssuer authenticates the request with an account that is bound to
// an issuer identity
func (cc *CertiChain) requireIssuer(c *fiber.Ctx) error {
	u, err := api.Authenticate(c, cc.users, cc.login)
	if err != nil {
		api.Challenge(c, issuerRealm, err)
		return cc.sendError(c, err)
	}
	if u.Issuer == "" {
		return cc.sendError(
			c, errors.Wrapf(registry.ErrNotAuthorized, "user '%s' is not bound to an issuer identity", u.Username),
		)
	}
	api.SetPrincipal(c, u)
	return c.Next()
}

// sendError writes the error response and counts the error kind
func (cc *CertiChain) sendError(c *fiber.Ctx, err error) error {
	_, body := api.FromError(err)
	cc.metrics.IncrementError(body.Error)
	return api.SendError(c, err)
}

func (cc *CertiChain) handleError(c *fiber.Ctx, err error) error {
	return cc.sendError(c, err)
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (cc *CertiChain) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(cc.server)
}

// Listen starts an http server at the specific address
func (cc *CertiChain) Listen(addr string) error {
	return cc.server.Listen(addr)
}

// Shutdown gracefully stops the server
func (cc *CertiChain) Shutdown() error {
	return cc.server.Shutdown()
}

// Start starts the server as configured in the ServerConf. It blocks until
// the server is shut down.
func (cc *CertiChain) Start() error {
	conf := cc.serverConf
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled starting http server")
		return cc.server.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.Port))
	}
	// TLS enabled
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(conf.IPListen + ":80")).Fatal()
		}()
	}
	log.Info("TLS enabled, starting https server on port 443")
	return cc.server.ListenTLS(conf.IPListen+":443", conf.TLS.Cert, conf.TLS.Key)
}
