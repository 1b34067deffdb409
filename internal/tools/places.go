package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
)

const SearchPlacesName = "search_places"

type placesSearcher interface {
	TextSearch(ctx context.Context, query string) ([]dto.PlaceRecord, error)
}

// SearchPlaces looks up named places, businesses and addresses, qualifying
// every query with the guide's region.
func SearchPlaces(places placesSearcher, region string, timeout time.Duration) Tool {
	return Tool{
		Name: SearchPlacesName,
		Description: fmt.Sprintf("Use this tool to find specific places, points of interest, businesses, or addresses in %s. "+
			"It is best for queries like 'restaurants near Denver', 'Garden of the Gods address', or 'breweries in Fort Collins'. "+
			"It returns structured location data: names, addresses, and ratings.", region),
		Parameters: querySchema,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query, err := requireQuery(args)
			if err != nil {
				return nil, err
			}
			qualified := fmt.Sprintf("%s in %s", query, region)
			return timed(ctx, SearchPlacesName, qualified, timeout, func(ctx context.Context) ([]dto.PlaceRecord, error) {
				return places.TextSearch(ctx, qualified)
			}), nil
		},
	}
}
