package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain"
	"github.com/go-certichain/certichain/api/adminapi"
	"github.com/go-certichain/certichain/cmd/certichain/config"
	"github.com/go-certichain/certichain/internal/logger"
	"github.com/go-certichain/certichain/internal/version"
	"github.com/go-certichain/certichain/registry"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	logger.Init()
	log.WithField("version", version.VERSION).Info("Loaded Config")
	c := config.Get()

	ctx := context.Background()
	backs, err := config.LoadStorageBackends(ctx, c)
	if err != nil {
		log.WithError(err).Fatal("could not load storage backends")
	}
	defer func() {
		if err := backs.Close(); err != nil {
			log.WithError(err).Error("error closing storage backends")
		}
	}()

	engine, err := registry.NewEngine(backs.Ledger, backs.Content, c.Registry.TemplateSet(), c.Registry.EngineConfig())
	if err != nil {
		log.WithError(err).Fatal("could not set up the certificate registry")
	}

	login := c.API.Login.Guard()
	opts := certichain.Options{
		AccessLog: logger.AccessWriter(),
		Login:     login,
	}
	if c.API.Admin.Enabled {
		opts.AdminAPI = &adminapi.Options{
			UsersEnabled: c.API.Admin.UsersEnabled,
			Login:        login,
		}
	}
	server, err := certichain.New(c.Server, engine, backs, opts)
	if err != nil {
		log.WithError(err).Fatal("could not create server")
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.WithError(err).Error("error during shutdown")
		}
	}()
	if err = server.Start(); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
