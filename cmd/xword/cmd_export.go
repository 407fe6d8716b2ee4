package main

import (
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"musikkryss/internal/puzzle"
)

var clipboardWrite = clipboard.WriteAll

func newExportCmd() *cobra.Command {
	var (
		valuesPath string
		copyOut    bool
		mailto     bool
	)
	cmd := &cobra.Command{
		Use:   "export <puzzle>",
		Short: "Print the submission text for a set of answers",
		Long: `Build the same submission document the web board mails in.

With --copy the text is also placed on the system clipboard. Clipboard
failures are reported as warnings and never fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, layout, err := loadLayout(args[0])
			if err != nil {
				return err
			}
			values, err := readValues(valuesPath)
			if err != nil {
				return err
			}
			text := puzzle.BuildSubmission(def, layout, values, time.Now())

			out := text
			if mailto {
				out = puzzle.MailtoURL(puzzle.RecipientOf(def), puzzle.Subject(def), text)
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), out+"\n"); err != nil {
				return err
			}

			if copyOut {
				if err := clipboardWrite(text); err != nil {
					zap.L().Warn("clipboard unavailable", zap.Error(err))
					return nil
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "copied")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "JSON file of cell values keyed \"row:col\"")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the submission to the clipboard")
	cmd.Flags().BoolVar(&mailto, "mailto", false, "Print a mailto: link instead of the plain text")
	return cmd
}
