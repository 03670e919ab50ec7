package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-certichain/certichain/storage/model"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage admin API operators and issuer accounts",
	}

	var password, displayName, issuer string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Add a user; with --issuer the account may only act as that issuer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.backs.Users == nil {
				return errors.New("no users store configured")
			}
			u, err := a.backs.Users.Create(args[0], password, displayName, issuer)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	add.Flags().StringVar(&password, "password", "", "the user's password")
	add.Flags().StringVar(&displayName, "display-name", "", "the user's display name")
	add.Flags().StringVar(&issuer, "issuer", "", "the issuer identity the account acts as")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}

func newJournalCmd(a *app) *cobra.Command {
	var (
		after uint64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the ledger commit journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			journal, ok := a.backs.Ledger.(model.LedgerJournal)
			if !ok {
				return errors.New("the configured ledger does not keep a journal")
			}
			commits, err := journal.Journal(cmd.Context(), after, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), commits)
		},
	}
	cmd.Flags().Uint64Var(&after, "after", 0, "only show commits above this height")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of commits")
	return cmd
}
