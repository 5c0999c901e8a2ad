package domain

import (
	"time"

	"github.com/goccy/go-json"
)

// Prompt is a stored text snippet owned by one session
type Prompt struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	SessionID   string     `json:"session_id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CopiedCount int        `json:"copiedCount"`
	LastUsedAt  *time.Time `json:"lastUsedAt"`
}

// PromptInput carries the user-editable fields for create and update
type PromptInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Tags    TagList `json:"tags,omitempty"`
}

// BatchItem is one entry of a bulk insert. Usage statistics may be seeded
// from an import file.
type BatchItem struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        TagList    `json:"tags,omitempty"`
	CopiedCount int        `json:"copiedCount,omitempty"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. A lastUsedAt that is empty or
// not an RFC 3339 string is dropped instead of failing the item.
func (b *BatchItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		Title       string          `json:"title"`
		Content     string          `json:"content"`
		Tags        TagList         `json:"tags"`
		CopiedCount int             `json:"copiedCount"`
		LastUsedAt  json.RawMessage `json:"lastUsedAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*b = BatchItem{
		Title:       aux.Title,
		Content:     aux.Content,
		Tags:        aux.Tags,
		CopiedCount: aux.CopiedCount,
		LastUsedAt:  parseOptionalTime(aux.LastUsedAt),
	}
	return nil
}

func parseOptionalTime(raw json.RawMessage) *time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// Rejection records why a batch item was not added
type Rejection struct {
	Reason string `json:"error"`
	Input  any    `json:"data"`
}

// BatchResult is the outcome of a bulk insert
type BatchResult struct {
	Added    []Prompt    `json:"prompts"`
	Rejected []Rejection `json:"errorDetails"`
}

// TagList decodes tags leniently: a non-array value becomes an empty list
// and non-string elements are dropped
type TagList []string

// UnmarshalJSON implements json.Unmarshaler
func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = TagList{}
		return nil
	}

	out := make(TagList, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	*t = out
	return nil
}
