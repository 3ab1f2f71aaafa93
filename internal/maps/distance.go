package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// maxDestinations is the Distance Matrix per-request element limit for one origin.
const maxDestinations = 25

// DistanceService handles interactions with the Google Distance Matrix API.
type DistanceService struct {
	client *maps.Client
}

// NewDistanceService creates a new DistanceService with the given API Key.
func NewDistanceService(apiKey string, opts ...maps.ClientOption) (*DistanceService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &DistanceService{client: client}, nil
}

// Distances returns the driving distance in metres from origin to each
// destination, in order. Unknown distances are -1.
func (s *DistanceService) Distances(ctx context.Context, origin string, destinations []string) ([]int, error) {
	out := make([]int, len(destinations))
	for i := range out {
		out[i] = -1
	}
	if strings.TrimSpace(origin) == "" || len(destinations) == 0 {
		return out, nil
	}

	for start := 0; start < len(destinations); start += maxDestinations {
		end := min(start+maxDestinations, len(destinations))
		batch := make([]string, 0, end-start)
		for _, d := range destinations[start:end] {
			batch = append(batch, inNigeria(d))
		}

		resp, err := s.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
			Origins:      []string{inNigeria(origin)},
			Destinations: batch,
			Mode:         maps.TravelModeDriving,
			Units:        maps.UnitsMetric,
		})
		if err != nil {
			return out, fmt.Errorf("maps api error: %w", err)
		}
		if len(resp.Rows) == 0 {
			continue
		}
		for i, el := range resp.Rows[0].Elements {
			if el == nil || el.Status != "OK" || start+i >= len(out) {
				continue
			}
			out[start+i] = el.Distance.Meters
		}
	}
	return out, nil
}

// inNigeria biases free-text locations such as "Lekki" to Nigeria. Coordinates
// ("6.45,3.39") pass through.
func inNigeria(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" || strings.Contains(strings.ToLower(loc), "nigeria") || looksLikeCoordinates(loc) {
		return loc
	}
	return loc + ", Nigeria"
}

func looksLikeCoordinates(s string) bool {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return false
	}
	var a, b float64
	_, err1 := fmt.Sscanf(strings.TrimSpace(lat), "%f", &a)
	_, err2 := fmt.Sscanf(strings.TrimSpace(lng), "%f", &b)
	return err1 == nil && err2 == nil
}
