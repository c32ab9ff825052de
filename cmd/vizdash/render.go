package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/engine"
	"github.com/spektr-org/vizdash/export"
)

// ============================================================================
// RENDER / WIDGETS
// ============================================================================

var renderFormats = []string{"json", "pretty", "text", "csv", "arrow", "msgpack"}

func (a *app) renderCmd() *cobra.Command {
	var (
		selections []string
		format     string
		outFile    string
	)
	cmd := &cobra.Command{
		Use:   "render <dashboard>",
		Short: "Run one reactive pass and print its charts",
		Long: `Runs one pass of the dashboard with the given selections. Widgets not
named by --select use their defaults.

Formats:
  json      Pass with chart specs (default; pretty on a terminal)
  pretty    Pretty-printed JSON
  text      Chart titles, notice and the filtered rows as a table
  csv       Filtered rows as CSV
  arrow     Filtered rows as an Arrow IPC stream
  msgpack   Pass with chart specs as MessagePack`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && outFile == "" && isTerminal(cmd.OutOrStdout()) {
				format = "pretty"
			}
			if !validFormat(format, renderFormats) {
				return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(renderFormats, ", "))
			}
			p, err := a.pipeline(args[0])
			if err != nil {
				return err
			}
			sel, err := dashboard.ParseSelection(selections)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			state, err := p.State(ctx, sel)
			if err != nil {
				return err
			}
			pass, err := p.Run(ctx, state)
			if err != nil {
				return err
			}

			return withOutput(cmd.OutOrStdout(), outFile, func(w io.Writer) error {
				return writePass(w, pass, format)
			})
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&selections, "select", nil, "Selection Column=value[,value] (repeatable)")
	f.StringVar(&format, "format", "json", "Output format: "+strings.Join(renderFormats, ", "))
	f.StringVar(&outFile, "out", "", "Write output to file instead of stdout")
	return cmd
}

func (a *app) widgetsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "widgets <dashboard>",
		Short: "List the dashboard's selection controls and their options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(args[0])
			if err != nil {
				return err
			}
			widgets, err := p.Widgets(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if format == "text" {
				return writeWidgetsText(w, widgets)
			}
			return writeJSON(w, widgets, format == "pretty")
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, pretty, text")
	return cmd
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func validFormat(format string, allowed []string) bool {
	for _, f := range allowed {
		if f == format {
			return true
		}
	}
	return false
}

// withOutput runs fn against the named file, or stdout when path is empty.
func withOutput(stdout io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePass(w io.Writer, pass *dashboard.Pass, format string) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, pass.Subset)
	case "arrow":
		return export.WriteArrow(w, pass.Subset)
	case "msgpack":
		return export.WriteMsgpack(w, pass)
	case "text":
		return writePassText(w, pass)
	default:
		return writeJSON(w, pass, format == "pretty")
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writePassText(w io.Writer, pass *dashboard.Pass) error {
	var b strings.Builder
	for _, c := range pass.Charts {
		title := c.Title
		if title == "" {
			title = string(c.Mark) + " chart"
		}
		fmt.Fprintf(&b, "%s (%s marks)\n", title, engine.FormatInt(len(c.Data)))
	}
	if pass.Notice != "" {
		b.WriteString(pass.Notice)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(engine.BuildTable("", pass.Subset).Text())
	_, err := io.WriteString(w, b.String())
	return err
}

func writeWidgetsText(w io.Writer, widgets []dashboard.Widget) error {
	var b strings.Builder
	for _, wd := range widgets {
		fmt.Fprintf(&b, "%s [%s, %s]\n", wd.Label, wd.Column, wd.Kind)
		if wd.Kind == dashboard.Slider || wd.Kind == dashboard.RangeSlider {
			fmt.Fprintf(&b, "  range:   %g..%g\n", wd.Min, wd.Max)
		} else {
			fmt.Fprintf(&b, "  options: %s\n", strings.Join(wd.Options, ", "))
		}
		fmt.Fprintf(&b, "  default: %s\n", strings.Join(wd.Default, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
