// Package msg91 sends transactional SMS. Callers treat sends as fire
// and forget.
package msg91

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://control.msg91.com/api/v5"

type Client struct {
	AuthKey    string
	TemplateID string
	BaseURL    string
	HTTP       *http.Client
}

type flowRequest struct {
	TemplateID string          `json:"template_id"`
	Recipients []flowRecipient `json:"recipients"`
}

type flowRecipient struct {
	Mobiles string `json:"mobiles"`
	Message string `json:"message"`
}

// Send delivers one SMS through the flow API.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	if strings.TrimSpace(c.AuthKey) == "" {
		return fmt.Errorf("msg91 auth key missing")
	}
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	raw, err := json.Marshal(flowRequest{
		TemplateID: c.TemplateID,
		Recipients: []flowRecipient{{Mobiles: phone, Message: message}},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/flow/", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", c.AuthKey)

	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "msg91 send")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("msg91 error: %s", strings.TrimSpace(string(body)))
	}
	return nil
}
