package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/promptshelf/promptshelf-backend/internal/client"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
)

var errTitleContentRequired = errors.New("title and content are required")

// checkInput mirrors the server's required-field rule so a blank field never
// reaches it
func checkInput(in domain.PromptInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return errTitleContentRequired
	}
	return nil
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prompts, optionally searched, filtered by tag and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			search, _ := cmd.Flags().GetString("search")
			tags, _ := cmd.Flags().GetStringSlice("tag")
			sortBy, _ := cmd.Flags().GetString("sort")
			asc, _ := cmd.Flags().GetBool("asc")
			asJSON, _ := cmd.Flags().GetBool("json")

			field, err := client.ParseSortField(sortBy)
			if err != nil {
				return err
			}

			m, s, err := a.session()
			if err != nil {
				return err
			}
			prompts, err := a.api().ListPrompts(cmd.Context(), s)
			if err != nil {
				return m.HandleError(err)
			}

			q := client.Query{Search: search, Tags: tags, SortBy: field, Ascending: asc}
			result := q.Apply(prompts)

			if asJSON {
				b, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printTable(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringP("search", "q", "", "Case-insensitive search over title, content and tags")
	cmd.Flags().StringSliceP("tag", "t", nil, "Only prompts carrying any of these tags")
	cmd.Flags().String("sort", "created", "Sort by created, used or copied")
	cmd.Flags().Bool("asc", false, "Ascending order")
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
	return cmd
}

func printTable(w io.Writer, prompts []domain.Prompt) {
	if len(prompts) == 0 {
		fmt.Fprintln(w, "no prompts")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTAGS\tCOPIED\tLAST USED")
	for _, p := range prompts {
		lastUsed := "-"
		if p.LastUsedAt != nil {
			lastUsed = p.LastUsedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Title, strings.Join(p.Tags, ","), p.CopiedCount, lastUsed)
	}
	tw.Flush()
}

func (a *app) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a prompt",
		Long:  "Add a prompt. Pass --content - to read the content from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			title, _ := cmd.Flags().GetString("title")
			contentFlag, _ := cmd.Flags().GetString("content")
			tags, _ := cmd.Flags().GetString("tags")

			content, err := a.readBody(contentFlag)
			if err != nil {
				return err
			}
			in := domain.PromptInput{
				Title:   title,
				Content: content,
				Tags:    splitTags(tags),
			}
			if err := checkInput(in); err != nil {
				return err
			}

			m, s, err := a.session()
			if err != nil {
				return err
			}
			p, err := a.api().CreatePrompt(cmd.Context(), s, in)
			if err != nil {
				return m.HandleError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", p.ID)
			return nil
		},
	}
	cmd.Flags().String("title", "", "Title (required)")
	cmd.Flags().StringP("content", "c", "", "Content, or - for stdin (required)")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, content or tags of a prompt",
		Long:  "Change the title, content or tags of a prompt. Fields without a flag keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, s, err := a.session()
			if err != nil {
				return err
			}
			api := a.api()

			current, err := findPrompt(cmd, api, s, args[0])
			if err != nil {
				return m.HandleError(err)
			}

			in := domain.PromptInput{
				Title:   current.Title,
				Content: current.Content,
				Tags:    domain.TagList(current.Tags),
			}
			if cmd.Flags().Changed("title") {
				in.Title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("content") {
				v, _ := cmd.Flags().GetString("content")
				if in.Content, err = a.readBody(v); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("tags") {
				v, _ := cmd.Flags().GetString("tags")
				in.Tags = splitTags(v)
			}
			if err := checkInput(in); err != nil {
				return err
			}

			p, err := api.UpdatePrompt(cmd.Context(), s, current.ID, in)
			if err != nil {
				return m.HandleError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", p.ID)
			return nil
		},
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("content", "c", "", "New content, or - for stdin")
	cmd.Flags().String("tags", "", "New comma-separated tags (empty clears them)")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, s, err := a.session()
			if err != nil {
				return err
			}
			if err := a.api().DeletePrompt(cmd.Context(), s, args[0]); err != nil {
				return m.HandleError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *app) copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Print a prompt's content and count the use",
		Long:  "Print a prompt's content to stdout, ready to pipe into a clipboard tool, and record the use in the background.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, s, err := a.session()
			if err != nil {
				return err
			}
			api := a.api()

			p, err := findPrompt(cmd, api, s, args[0])
			if err != nil {
				return m.HandleError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), p.Content)

			recorder := client.NewUsageRecorder(api, 5*time.Second)
			recorder.Record(s, p.ID)
			recorder.Wait()
			return nil
		},
	}
}

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, s, err := a.session()
			if err != nil {
				return err
			}
			prompts, err := a.api().ListPrompts(cmd.Context(), s)
			if err != nil {
				return m.HandleError(err)
			}
			for _, tag := range client.AllTags(prompts) {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
}

func findPrompt(cmd *cobra.Command, api *client.API, s client.Session, id string) (*domain.Prompt, error) {
	prompts, err := api.ListPrompts(cmd.Context(), s)
	if err != nil {
		return nil, err
	}
	for i := range prompts {
		if prompts[i].ID == id {
			return &prompts[i], nil
		}
	}
	return nil, fmt.Errorf("prompt %s not found", id)
}
