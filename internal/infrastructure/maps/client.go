// Package maps resolves road distance between two address strings for
// delivery-range checks.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance returns the driving distance in km between origin and
// destination.
func (c *Client) Distance(ctx context.Context, origin, destination string) (float64, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return 0, fmt.Errorf("maps api key missing")
	}
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("key", c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		base+"/distancematrix/json?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "maps distance")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("maps error: %s", strings.TrimSpace(string(body)))
	}
	var out matrixResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, errors.Wrap(err, "decode maps response")
	}
	if out.Status != "OK" || len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("maps status: %s", out.Status)
	}
	el := out.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("maps element status: %s", el.Status)
	}
	return float64(el.Distance.Value) / 1000.0, nil
}
