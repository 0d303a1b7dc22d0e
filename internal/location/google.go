package location

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

// GoogleMaps implementa Geocoder y Positioner con la API de Google Maps.
type GoogleMaps struct {
	client *maps.Client
}

func NewGoogleMaps(apiKey string) (*GoogleMaps, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is required")
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleMaps{client: c}, nil
}

func (g *GoogleMaps) Reverse(ctx context.Context, latitude, longitude float64) ([]Place, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: latitude, Lng: longitude},
	})
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	places := make([]Place, 0, len(results))
	for _, r := range results {
		places = append(places, placeFromComponents(r.AddressComponents))
	}
	return places, nil
}

func (g *GoogleMaps) Forward(ctx context.Context, address string) ([]Coordinates, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	out := make([]Coordinates, 0, len(results))
	for _, r := range results {
		out = append(out, Coordinates{
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		})
	}
	return out, nil
}

// CurrentPosition usa la Geolocation API (IP + redes) como fuente de fix.
func (g *GoogleMaps) CurrentPosition(ctx context.Context) (Fix, error) {
	res, err := g.client.Geolocate(ctx, &maps.GeolocationRequest{ConsiderIP: true})
	if err != nil {
		return Fix{}, fmt.Errorf("geolocate: %w", err)
	}
	if res == nil {
		return Fix{}, ErrNoFix
	}
	return Fix{
		Latitude:  res.Location.Lat,
		Longitude: res.Location.Lng,
		Accuracy:  res.Accuracy,
	}, nil
}

func placeFromComponents(components []maps.AddressComponent) Place {
	var p Place
	for _, c := range components {
		for _, t := range c.Types {
			switch t {
			case "route":
				p.Street = c.LongName
			case "street_number":
				p.StreetNumber = c.LongName
			case "locality":
				p.City = c.LongName
			case "administrative_area_level_2":
				p.Subregion = c.LongName
			case "administrative_area_level_1":
				p.Region = c.LongName
			case "country":
				p.Country = c.LongName
			case "postal_code":
				p.PostalCode = c.LongName
			}
		}
	}
	return p
}
