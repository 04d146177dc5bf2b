package geocode

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// GoogleClient ищет адреса через Google Geocoding API.
type GoogleClient struct {
	client *maps.Client
	region string
}

// NewGoogleClient создаёт клиент Google Geocoding API. Дополнительные опции
// передаются в maps.NewClient.
func NewGoogleClient(apiKey, region string, opts ...maps.ClientOption) (*GoogleClient, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleClient{client: client, region: region}, nil
}

// Geocode возвращает первую найденную точку для запроса.
func (c *GoogleClient) Geocode(ctx context.Context, query string) (Result, error) {
	results, err := c.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: query,
		Region:  c.region,
	})
	if err != nil {
		return Result{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return Result{}, ErrNotFound
	}

	loc := results[0].Geometry.Location
	return Result{
		Point:       model.GeoPoint{Lat: loc.Lat, Lon: loc.Lng},
		DisplayName: results[0].FormattedAddress,
	}, nil
}
