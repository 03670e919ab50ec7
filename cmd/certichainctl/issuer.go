package main

import (
	"github.com/spf13/cobra"
)

func newIssuerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issuer",
		Short: "Manage the issuer directory",
	}

	var name, organization string
	register := &cobra.Command{
		Use:   "register IDENTITY",
		Short: "Register a new issuer; it has to be authorized before it can issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer, err := a.engine.Directory.Register(cmd.Context(), args[0], name, organization)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), issuer)
		},
	}
	register.Flags().StringVar(&name, "name", "", "the issuer's display name")
	register.Flags().StringVar(&organization, "organization", "", "the issuer's organization")
	_ = register.MarkFlagRequired("name")
	_ = register.MarkFlagRequired("organization")

	setAuthorized := func(use, short string, authorized bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " IDENTITY",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var err error
				if authorized {
					err = a.engine.Directory.Authorize(cmd.Context(), args[0])
				} else {
					err = a.engine.Directory.Deauthorize(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				issuer, err := a.engine.Directory.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), issuer)
			},
		}
	}

	show := &cobra.Command{
		Use:   "show IDENTITY",
		Short: "Show an issuer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer, err := a.engine.Directory.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), issuer)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all issuers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			issuers, err := a.engine.Directory.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), issuers)
		},
	}

	cmd.AddCommand(
		register,
		setAuthorized("authorize", "Grant an issuer issuance rights", true),
		setAuthorized("deauthorize", "Withdraw an issuer's issuance rights", false),
		show,
		list,
	)
	return cmd
}
