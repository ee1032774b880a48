package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func improveCmd() *cobra.Command {
	var (
		in  string
		out string
		pdf string
	)
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Rewrite a draft CV into a professional one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraft(cmd.Context(), in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			result, err := env.session.Improve(cmd.Context(), draft)
			if err != nil {
				if msg := env.session.State().Error; msg != "" {
					return errors.New(msg)
				}
				return err
			}
			if err := writeOutput(out, []byte(result+"\n"), cmd.OutOrStdout()); err != nil {
				return err
			}
			if pdf == "" {
				return nil
			}
			doc, err := env.session.Export(cmd.Context(), env.renderer)
			if err != nil {
				return err
			}
			if err := writeOutput(pdf, doc.Data, cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", pdf)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "draft file (.txt, .pdf, .docx) or - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "where to write the improved text, - for stdout")
	cmd.Flags().StringVar(&pdf, "pdf", "", "also export the result as PDF to this path")
	return cmd
}
