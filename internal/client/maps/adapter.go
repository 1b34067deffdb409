package mapsclient

import (
	"context"
	"errors"
	"net"
	"strconv"

	"googlemaps.github.io/maps"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/internal/errs"
)

// noRating is reported for places Google has no rating for.
const noRating = "N/A"

type Adapter struct {
	client     *maps.Client
	regionCode string
}

// NewAdapter builds a Places client. regionCode is the ccTLD used to bias
// results, e.g. "us".
func NewAdapter(apiKey, regionCode string, opts ...maps.ClientOption) (*Adapter, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client, regionCode: regionCode}, nil
}

// TextSearch runs a Places text search. ZERO_RESULTS is an empty slice, not an error.
func (a *Adapter) TextSearch(ctx context.Context, query string) ([]dto.PlaceRecord, error) {
	resp, err := a.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:  query,
		Region: a.regionCode,
	})
	if err != nil {
		return nil, errs.NewExternalServiceError(errs.ServiceMaps, "text search failed", isTransient(err), err)
	}

	records := make([]dto.PlaceRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, toPlaceRecord(r))
	}
	return records, nil
}

func toPlaceRecord(r maps.PlacesSearchResult) dto.PlaceRecord {
	rating := noRating
	if r.Rating > 0 {
		rating = strconv.FormatFloat(float64(r.Rating), 'f', 1, 32)
	}
	return dto.PlaceRecord{
		Name:        r.Name,
		Address:     r.FormattedAddress,
		Rating:      rating,
		RatingCount: r.UserRatingsTotal,
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
