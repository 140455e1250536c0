package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/opsgrade/mlcost/internal/tavily"
)

// InternetSearch exposes Tavily web search, used by the agent to look up
// current pricing and optimization guidance.
func (ts *Toolset) InternetSearch() Tool {
	return Tool{
		Name:        "internet_search",
		Description: "Run a web search for current information such as AWS pricing and optimization guidance.",
		InputSchema: objectSchema(map[string]any{
			"query":       prop("string", "Search query"),
			"max_results": prop("integer", "Maximum number of results to return (default: 5)"),
			"topic": map[string]any{
				"type":        "string",
				"description": "Search topic category",
				"enum":        []string{"general", "news", "finance"},
			},
			"include_raw_content": prop("boolean", "Include raw page content in results (default: false)"),
		}, "query"),
		Run: func(ctx context.Context, args map[string]any) string {
			query := stringArg(args, "query", "")

			resp, err := ts.search.Search(ctx, tavily.SearchRequest{
				Query:             query,
				MaxResults:        intArg(args, "max_results", 5),
				Topic:             stringArg(args, "topic", "general"),
				IncludeRawContent: boolArg(args, "include_raw_content", false),
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error searching for '%s'", query), err)
			}

			if len(resp.Results) == 0 {
				return fmt.Sprintf("No search results found for '%s'.", query)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Search results for '%s':\n\n", query)
			if resp.Answer != "" {
				fmt.Fprintf(&b, "Answer: %s\n\n", resp.Answer)
			}
			for _, result := range resp.Results {
				fmt.Fprintf(&b, "- %s\n  %s\n  %s\n\n", result.Title, result.URL, result.Content)
			}

			if ts.debug {
				log.Printf("[tools] search %q returned %d results", query, len(resp.Results))
			}
			return b.String()
		},
	}
}
