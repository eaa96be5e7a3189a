// File: cmd/app/content.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"physical-ai-textbook/internal/usecase"
)

// readContent reads the chapter from the named file, or stdin when the name
// is empty or "-".
func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(b), nil
}

func newPersonalizeCmd(flags *rootFlags) *cobra.Command {
	var pagePath string
	cmd := &cobra.Command{
		Use:   "personalize [file]",
		Short: "Rewrite a chapter for your experience level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer d.Close()

			d.session.Start(cmd.Context())
			sw := usecase.NewContentSwitcher(d.client, d.session, d.tr, d.log)
			sw.SetOriginal(content)
			if err := sw.Personalize(cmd.Context(), content, pagePath); err != nil {
				return userFacing(err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), d.tr.T("content.badge_personalized"))
			fmt.Fprintln(cmd.OutOrStdout(), sw.Content())
			return nil
		},
	}
	cmd.Flags().StringVar(&pagePath, "page-path", "", "path of the page being personalized (e.g. /docs/intro)")
	return cmd
}

func newTranslateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate a chapter to Urdu",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer d.Close()

			sw := usecase.NewContentSwitcher(d.client, d.session, d.tr, d.log)
			sw.SetOriginal(content)
			if err := sw.Translate(cmd.Context(), content); err != nil {
				return userFacing(err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), d.tr.T("content.badge_translated"))
			fmt.Fprintln(cmd.OutOrStdout(), sw.Content())
			return nil
		},
	}
}
