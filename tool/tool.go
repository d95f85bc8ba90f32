package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/guideline-vec/guideline"
)

// NoResults is returned verbatim when a query matches nothing, so agent
// frameworks can show the model a definitive answer instead of an empty
// string.
const NoResults = "No relevant guidelines found."

// Tool is a minimal agent-tool contract: static metadata plus a single
// invocation entry point over schemaless arguments.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// GuidelineSearch adapts a guideline.Store to the Tool contract.
//
// Supported arguments: "query" (string, required), "top_k" (number),
// "category" (string), "tags" (list of strings).
type GuidelineSearch struct {
	store *guideline.Store
}

// NewGuidelineSearch wraps store as an invocable tool.
func NewGuidelineSearch(store *guideline.Store) *GuidelineSearch {
	return &GuidelineSearch{store: store}
}

// Name implements Tool.
func (g *GuidelineSearch) Name() string { return "guideline_search" }

// Description implements Tool.
func (g *GuidelineSearch) Description() string {
	return "Searches stored product guidelines by semantic similarity. " +
		"Accepts a free-text query plus optional top_k, category and tags filters " +
		"and returns the most relevant guideline passages."
}

// Invoke implements Tool. Argument errors wrap guideline.ErrInvalidArgument.
func (g *GuidelineSearch) Invoke(ctx context.Context, args map[string]any) (string, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return "", err
	}
	topK, err := intArg(args, "top_k")
	if err != nil {
		return "", err
	}
	category, err := optionalStringArg(args, "category")
	if err != nil {
		return "", err
	}
	tags, err := stringListArg(args, "tags")
	if err != nil {
		return "", err
	}
	return Search(ctx, g.store, query, topK, category, tags)
}

// Search runs one guideline query and renders the hits as a single text
// block, or NoResults when nothing matched.
func Search(ctx context.Context, store *guideline.Store, query string, topK int, category string, tags []string) (string, error) {
	snippets, err := store.Query(ctx, query, guideline.QueryOptions{
		TopK:     topK,
		Category: category,
		Tags:     tags,
	})
	if err != nil {
		return "", err
	}
	return Render(snippets), nil
}

// Render joins snippet texts in rank order with blank-line separators; an
// empty set renders as NoResults.
func Render(snippets []guideline.Snippet) string {
	if len(snippets) == 0 {
		return NoResults
	}
	parts := make([]string, len(snippets))
	for i, snippet := range snippets {
		parts[i] = snippet.TextContent
	}
	return strings.Join(parts, "\n\n")
}

func stringArg(args map[string]any, key string) (string, error) {
	value, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q argument", guideline.ErrInvalidArgument, key)
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", guideline.ErrInvalidArgument, key, value)
	}
	return text, nil
}

func optionalStringArg(args map[string]any, key string) (string, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return "", nil
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", guideline.ErrInvalidArgument, key, value)
	}
	return text, nil
}

// intArg accepts both JSON-decoded float64 numbers and native ints.
func intArg(args map[string]any, key string) (int, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return 0, nil
	}
	switch n := value.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %q must be a whole number, got %v", guideline.ErrInvalidArgument, key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %q must be a number, got %T", guideline.ErrInvalidArgument, key, value)
	}
}

func stringListArg(args map[string]any, key string) ([]string, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return nil, nil
	}
	switch list := value.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			text, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q[%d] must be a string, got %T", guideline.ErrInvalidArgument, key, i, item)
			}
			out[i] = text
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q must be a list of strings, got %T", guideline.ErrInvalidArgument, key, value)
	}
}
