package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptshelf/promptshelf-backend/internal/client"
)

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all prompts to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = client.ExportFileName(time.Now().Format(time.DateOnly))
			}

			m, s, err := a.session()
			if err != nil {
				return err
			}
			prompts, err := a.api().ListPrompts(cmd.Context(), s)
			if err != nil {
				return m.HandleError(err)
			}

			if out == "-" {
				return client.Export(cmd.OutOrStdout(), prompts)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := client.Export(f, prompts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d prompts to %s\n", len(prompts), out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file, - for stdout (default ai-prompts-<date>.json)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add the prompts from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			items, err := client.Import(f)
			if err != nil {
				return err
			}

			m, s, err := a.session()
			if err != nil {
				return err
			}
			res, err := a.api().CreateBatch(cmd.Context(), s, items)
			if err != nil {
				return m.HandleError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d prompts", res.Added)
			if res.Errors > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", %d rejected", res.Errors)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
