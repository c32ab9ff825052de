package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/vizdash/schema"
)

func (a *app) describeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "describe <dashboard>",
		Short: "Profile the dashboard's loaded table: roles, cardinality, suggested widgets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(args[0])
			if err != nil {
				return err
			}
			tbl, err := p.Table(cmd.Context())
			if err != nil {
				return err
			}
			profile := schema.Describe(p.Name(), tbl)
			w := cmd.OutOrStdout()
			if format == "text" {
				return writeProfileText(w, profile)
			}
			return writeJSON(w, profile, format == "pretty")
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, pretty, text")
	return cmd
}

func writeProfileText(w io.Writer, p *schema.Profile) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d rows\n", p.Dashboard, p.Rows)
	for _, c := range p.Columns {
		fmt.Fprintf(&b, "  %-12s %-10s %-7s distinct=%d nulls=%d", c.Name, c.Role, c.Kind, c.Distinct, c.Nulls)
		if c.Widget != "" {
			fmt.Fprintf(&b, " widget=%s", c.Widget)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
