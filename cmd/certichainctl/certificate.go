package main

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

func parseFields(raw map[string]string) model.Fields {
	fields := make(model.Fields, len(raw))
	for k, v := range raw {
		fields[model.FieldName(k)] = v
	}
	return fields
}

func newCertificateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cert",
		Aliases: []string{"certificate"},
		Short:   "Issue, revoke and inspect certificates",
	}

	var (
		issuer, template, documentFile, expires string
		fields                                  map[string]string
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a certificate for a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			document, err := os.ReadFile(documentFile)
			if err != nil {
				return errors.Wrap(err, "could not read document")
			}
			req := registry.IssueRequest{
				Issuer:   issuer,
				Template: template,
				Fields:   parseFields(fields),
				Document: document,
			}
			if expires != "" {
				t, err := time.Parse(time.RFC3339, expires)
				if err != nil {
					return errors.Wrap(err, "invalid --expires")
				}
				req.ExpiresAt = &t
			}
			cert, err := a.engine.Registry.Issue(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cert)
		},
	}
	issue.Flags().StringVar(&issuer, "issuer", "", "identity of the issuing issuer")
	issue.Flags().StringVar(&template, "template", "", "the certificate template")
	issue.Flags().StringVar(&documentFile, "document", "", "path to the certified document")
	issue.Flags().StringToStringVarP(&fields, "field", "f", nil, "certificate field as name=value")
	issue.Flags().StringVar(&expires, "expires", "", "expiry time (RFC 3339)")
	_ = issue.MarkFlagRequired("issuer")
	_ = issue.MarkFlagRequired("template")
	_ = issue.MarkFlagRequired("document")

	var requester string
	revoke := &cobra.Command{
		Use:   "revoke ID",
		Short: "Revoke a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseCertificateID(args[0])
			if err != nil {
				return err
			}
			cert, err := a.engine.Registry.Revoke(cmd.Context(), id, requester)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cert)
		},
	}
	revoke.Flags().StringVar(&requester, "requester", "", "identity requesting the revocation")
	_ = revoke.MarkFlagRequired("requester")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseCertificateID(args[0])
			if err != nil {
				return err
			}
			cert, err := a.engine.Registry.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cert)
		},
	}

	var filter registry.CertificateFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			certs, err := a.engine.Registry.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if certs == nil {
				certs = []model.Certificate{}
			}
			return printJSON(cmd.OutOrStdout(), certs)
		},
	}
	list.Flags().StringVar(&filter.Issuer, "issuer", "", "only list certificates of this issuer")
	list.Flags().StringVar(&filter.Template, "template", "", "only list certificates of this template")

	cmd.AddCommand(issue, revoke, show, list)
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var documentFile string
	cmd := &cobra.Command{
		Use:   "verify [ID]",
		Short: "Verify a certificate by id, a document, or both",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var document []byte
			if documentFile != "" {
				var err error
				if document, err = os.ReadFile(documentFile); err != nil {
					return errors.Wrap(err, "could not read document")
				}
			}
			var (
				verdict registry.Verdict
				err     error
			)
			switch {
			case len(args) == 1:
				id, perr := model.ParseCertificateID(args[0])
				if perr != nil {
					return perr
				}
				verdict, err = a.engine.Verifier.Verify(cmd.Context(), id, document)
			case documentFile != "":
				verdict, err = a.engine.Verifier.VerifyDocument(cmd.Context(), document)
			default:
				return errors.New("either a certificate id or --document is required")
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), verdict)
		},
	}
	cmd.Flags().StringVar(&documentFile, "document", "", "path to the document to check")
	return cmd
}

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the certificate templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates := a.engine.Templates.List()
			w := cmd.OutOrStdout()
			for _, t := range templates {
				if _, err := w.Write([]byte(t.Key + ": " + fieldList(t.Required) + "\n")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func fieldList(fields []model.FieldName) string {
	s := make([]string, len(fields))
	for i, f := range fields {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}
