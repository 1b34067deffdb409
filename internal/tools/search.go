package tools

import (
	"context"
	"time"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
)

const WebSearchName = "web_search"

const DefaultWebSearchMaxResults = 3

type webSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]dto.SearchRecord, error)
}

func WebSearch(searcher webSearcher, maxResults int, timeout time.Duration) Tool {
	if maxResults <= 0 {
		maxResults = DefaultWebSearchMaxResults
	}
	return Tool{
		Name: WebSearchName,
		Description: "Use this tool to search the web for general information, real-time events, news, weather, " +
			"temporary closures, or detailed descriptions of places and activities. " +
			"It is best for questions the places tool cannot answer, such as 'Are there any wildfires near Estes Park?', " +
			"'What's the history of the Stanley Hotel?', or 'upcoming concerts in Denver'.",
		Parameters: querySchema,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query, err := requireQuery(args)
			if err != nil {
				return nil, err
			}
			return timed(ctx, WebSearchName, query, timeout, func(ctx context.Context) ([]dto.SearchRecord, error) {
				return searcher.Search(ctx, query, maxResults)
			}), nil
		},
	}
}
