package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cv-improver/internal/export"
)

// export: render an already improved text file as PDF.
func exportCmd() *cobra.Command {
	var (
		in  string
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render improved CV text as a PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDraft(cmd.Context(), in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New(env.catalog.Text(env.session.Locale(), "error_empty_input"))
			}
			locale := env.session.Locale()
			data, err := env.renderer.Render(cmd.Context(), export.Document{
				Title:  env.catalog.Text(locale, "output_header"),
				Text:   text,
				Locale: locale,
			})
			if err != nil {
				return errors.New(env.catalog.Text(locale, "error_export_failed"))
			}
			if out == "" {
				out = export.Filename(locale)
			}
			if err := writeOutput(out, data, cmd.OutOrStdout()); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "improved text file or - for stdin")
	cmd.Flags().StringVar(&out, "out", "", "PDF path (default: localized file name)")
	return cmd
}
