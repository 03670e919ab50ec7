package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-certichain/certichain/cmd/certichain/config"
	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

// app holds what the commands operate on
type app struct {
	engine *registry.Engine
	backs  model.Backends
}

type loader func(ctx context.Context, configFile string) (*app, error)

func loadFromConfig(ctx context.Context, configFile string) (*app, error) {
	config.Load(configFile)
	c := config.Get()
	backs, err := config.LoadStorageBackends(ctx, c)
	if err != nil {
		return nil, err
	}
	engine, err := registry.NewEngine(backs.Ledger, backs.Content, c.Registry.TemplateSet(), c.Registry.EngineConfig())
	if err != nil {
		_ = backs.Close()
		return nil, err
	}
	return &app{
		engine: engine,
		backs:  backs,
	}, nil
}

func newRootCmd(load loader) *cobra.Command {
	var configFile string
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "certichainctl",
		Short:         "certichainctl can help you manage your CertiChain registry",
		Long:          "certichainctl operates directly on the storage backends configured for a CertiChain server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := load(cmd.Context(), configFile)
			if err != nil {
				return err
			}
			*a = *loaded
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.backs.Close()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "the config file to use")
	rootCmd.AddCommand(
		newIssuerCmd(a),
		newCertificateCmd(a),
		newVerifyCmd(a),
		newTemplatesCmd(a),
		newUsersCmd(a),
		newJournalCmd(a),
	)
	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func main() {
	if err := newRootCmd(loadFromConfig).ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
