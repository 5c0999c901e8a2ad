package client

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
)

var (
	ErrImportNotArray = errors.New("import file must contain a JSON array")
	ErrImportNoValid  = errors.New("import file contains no valid prompts")
)

// ExportedPrompt is the portable form of a prompt. Identity, ownership and
// usage statistics are left out.
type ExportedPrompt struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ExportFileName names an export written on the given day (YYYY-MM-DD)
func ExportFileName(day string) string {
	return "ai-prompts-" + day + ".json"
}

// Export writes prompts as an indented JSON array
func Export(w io.Writer, prompts []domain.Prompt) error {
	out := make([]ExportedPrompt, 0, len(prompts))
	for _, p := range prompts {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, ExportedPrompt{Title: p.Title, Content: p.Content, Tags: tags})
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if _, err := w.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import reads an exported array and returns the entries that have a
// string title and content and an all-string tags array, converted to
// batch items with fresh usage statistics. Other entries are skipped.
func Import(r io.Reader) ([]domain.BatchItem, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportNotArray, err)
	}

	items := make([]domain.BatchItem, 0, len(entries))
	for _, entry := range entries {
		var candidate struct {
			Title   *string   `json:"title"`
			Content *string   `json:"content"`
			Tags    *[]string `json:"tags"`
		}
		if err := json.Unmarshal(entry, &candidate); err != nil {
			continue
		}
		if candidate.Title == nil || candidate.Content == nil || candidate.Tags == nil {
			continue
		}

		items = append(items, domain.BatchItem{
			Title:   *candidate.Title,
			Content: *candidate.Content,
			Tags:    domain.TagList(*candidate.Tags),
		})
	}

	if len(items) == 0 {
		return nil, ErrImportNoValid
	}
	return items, nil
}
