package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"payments-register/internal/domain"
	"payments-register/internal/service"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the reference files and print the resolved columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			refs, err := newReferenceCache(cfg, log)
			if err != nil {
				return err
			}
			ref, err := refs.Get(cmd.Context())
			if err != nil {
				return err
			}
			return printReference(cmd.OutOrStdout(), ref)
		},
	}
}

func printReference(out io.Writer, ref *domain.Reference) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tCOLUMN")
	for _, f := range []domain.Field{
		domain.FieldAdvisorDoc,
		domain.FieldAdvisorName,
		domain.FieldDebtorDoc,
		domain.FieldObligation,
		domain.FieldCampaign,
		domain.FieldBank,
	} {
		fmt.Fprintf(tw, "%s\t%s\n", f, ref.Columns[f])
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "advisors\t%d rows\n", len(ref.Advisors.Rows))
	fmt.Fprintf(tw, "obligations\t%d rows\n", len(ref.Obligations.Rows))
	fmt.Fprintf(tw, "payment points\t%d distinct\n", len(service.PaymentPoints(ref)))
	return tw.Flush()
}
