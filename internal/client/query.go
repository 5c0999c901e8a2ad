package client

import (
	"fmt"
	"slices"
	"strings"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
)

type SortField string

const (
	SortCreated SortField = "created"
	SortUsed    SortField = "used"
	SortCopied  SortField = "copied"
)

// ParseSortField accepts created, used or copied
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortCreated, SortUsed, SortCopied:
		return f, nil
	case "":
		return SortCreated, nil
	default:
		return "", fmt.Errorf("unknown sort field %q (want created, used or copied)", s)
	}
}

// Query narrows and orders a prompt list the way the list view does.
// The zero value keeps everything, newest first.
type Query struct {
	Search    string
	Tags      []string
	SortBy    SortField
	Ascending bool
}

// Apply returns the matching prompts in order. The input is not modified.
func (q Query) Apply(prompts []domain.Prompt) []domain.Prompt {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		if len(q.Tags) > 0 && !hasAnyTag(p, q.Tags) {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, q.compare)
	return out
}

func (q Query) compare(a, b domain.Prompt) int {
	var c int
	switch q.SortBy {
	case SortUsed:
		// never-used prompts sink to the end in both directions
		switch {
		case a.LastUsedAt == nil && b.LastUsedAt == nil:
			return 0
		case a.LastUsedAt == nil:
			return 1
		case b.LastUsedAt == nil:
			return -1
		}
		c = a.LastUsedAt.Compare(*b.LastUsedAt)
	case SortCopied:
		c = a.CopiedCount - b.CopiedCount
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}

	if q.Ascending {
		return c
	}
	return -c
}

func matchesSearch(p domain.Prompt, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func hasAnyTag(p domain.Prompt, wanted []string) bool {
	for _, tag := range wanted {
		if slices.Contains(p.Tags, tag) {
			return true
		}
	}
	return false
}

// AllTags lists every tag in use, deduplicated and sorted
func AllTags(prompts []domain.Prompt) []string {
	seen := make(map[string]struct{})
	for _, p := range prompts {
		for _, tag := range p.Tags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}
