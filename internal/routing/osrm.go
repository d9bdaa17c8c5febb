// Package routing talks to an OSRM-compatible routing service to obtain
// driving distances between coordinate pairs.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrDistanceUnavailable is returned when the routing service fails, the
// response is malformed, or no route carries a distance. A zero-length
// route is a valid result and does not produce this error.
var ErrDistanceUnavailable = errors.New("route distance unavailable")

const defaultTimeout = 10 * time.Second

// Client queries an OSRM route endpoint. Coordinates are sent in
// (longitude, latitude) order as the protocol requires; only the best
// route is requested, without steps or alternatives.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a routing client for the given base URL. A
// non-positive timeout falls back to the 10s default so a hung routing
// service cannot stall a quote forever.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance *float64 `json:"distance"`
	} `json:"routes"`
}

// DrivingDistanceKm returns the driving distance in kilometers for the
// best route between the two points. Callers must not invoke it with
// incomplete coordinates; that check belongs to the quote layer so no
// network call is attempted for unfinished forms.
func (c *Client) DrivingDistanceKm(ctx context.Context, originLat, originLng, destLat, destLng float64) (float64, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=false&alternatives=false&steps=false",
		c.baseURL,
		formatCoord(originLng), formatCoord(originLat),
		formatCoord(destLng), formatCoord(destLat),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDistanceUnavailable, err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDistanceUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: routing service returned HTTP %d", ErrDistanceUnavailable, res.StatusCode)
	}

	var body routeResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDistanceUnavailable, err)
	}

	if body.Code != "" && body.Code != "Ok" {
		return 0, fmt.Errorf("%w: routing service code %s", ErrDistanceUnavailable, body.Code)
	}
	if len(body.Routes) == 0 || body.Routes[0].Distance == nil {
		return 0, fmt.Errorf("%w: response missing distance", ErrDistanceUnavailable)
	}

	meters := *body.Routes[0].Distance
	return meters / 1000.0, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
