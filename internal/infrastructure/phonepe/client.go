// Package phonepe is the payment-gateway client: checkout URL creation,
// refunds, and the shared-secret hash used to authenticate inbound
// webhooks.
package phonepe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
	WebhookUser  string
	WebhookPass  string
	HTTP         *http.Client
}

type Client struct {
	cfg Config

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("phonepe config incomplete")
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = cfg.BaseURL
	}
	return &Client{cfg: cfg}, nil
}

// WebhookAuthHash is the value the gateway sends in the Authorization
// header of callbacks: sha256 of "user:pass", hex encoded.
func (c *Client) WebhookAuthHash() string {
	return ComputeAuthHash(c.cfg.WebhookUser, c.cfg.WebhookPass)
}

func ComputeAuthHash(user, pass string) string {
	sum := sha256.Sum256([]byte(user + ":" + pass))
	return hex.EncodeToString(sum[:])
}

func (c *Client) http() *http.Client {
	if c.cfg.HTTP != nil {
		return c.cfg.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("client_version", "1")
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.AuthURL+"/v1/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http().Do(req)
	if err != nil {
		return "", errors.Wrap(err, "phonepe token request")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("phonepe token error: %s", strings.TrimSpace(string(body)))
	}
	var out tokenResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errors.Wrap(err, "decode phonepe token")
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("phonepe token missing")
	}
	c.accessToken = out.AccessToken
	c.tokenExpiry = time.Unix(out.ExpiresAt, 0).Add(-1 * time.Minute)
	return c.accessToken, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "O-Bearer "+token)

	resp, err := c.http().Do(req)
	if err != nil {
		return errors.Wrapf(err, "phonepe %s", path)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("phonepe error: %s", strings.TrimSpace(string(body)))
	}
	return errors.Wrapf(json.Unmarshal(body, respBody), "decode phonepe %s", path)
}

type payRequest struct {
	MerchantOrderID string      `json:"merchantOrderId"`
	Amount          int64       `json:"amount"`
	MetaInfo        payMetaInfo `json:"metaInfo"`
	PaymentFlow     payFlow     `json:"paymentFlow"`
}

type payMetaInfo struct {
	UDF1 string `json:"udf1"`
}

type payFlow struct {
	Type string `json:"type"`
}

type payResponse struct {
	OrderID     string `json:"orderId"`
	State       string `json:"state"`
	RedirectURL string `json:"redirectUrl"`
}

// CreatePaymentURL opens a hosted checkout for the given minor-unit
// amount. The tag travels back on the webhook as metaInfo.udf1 and
// routes the callback.
func (c *Client) CreatePaymentURL(ctx context.Context, amount int64, merchantOrderID, tag string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	var out payResponse
	err := c.post(ctx, "/checkout/v2/pay", payRequest{
		MerchantOrderID: merchantOrderID,
		Amount:          amount,
		MetaInfo:        payMetaInfo{UDF1: tag},
		PaymentFlow:     payFlow{Type: "PG_CHECKOUT"},
	}, &out)
	if err != nil {
		return "", err
	}
	if out.RedirectURL == "" {
		return "", fmt.Errorf("phonepe response missing redirect url")
	}
	return out.RedirectURL, nil
}

type refundRequest struct {
	MerchantRefundID string `json:"merchantRefundId"`
	OriginalOrderID  string `json:"originalMerchantOrderId"`
	Amount           int64  `json:"amount"`
}

type refundResponse struct {
	RefundID string `json:"refundId"`
	State    string `json:"state"`
}

// Refund reverses amount minor units of an earlier payment.
func (c *Client) Refund(ctx context.Context, amount int64, merchantRefundID, merchantOrderID string) (string, string, error) {
	if amount <= 0 {
		return "", "", fmt.Errorf("amount must be positive")
	}
	var out refundResponse
	err := c.post(ctx, "/payments/v2/refund", refundRequest{
		MerchantRefundID: merchantRefundID,
		OriginalOrderID:  merchantOrderID,
		Amount:           amount,
	}, &out)
	if err != nil {
		return "", "", err
	}
	return out.RefundID, out.State, nil
}

// RefundStatus fetches the current state of a refund by merchant refund
// id.
func (c *Client) RefundStatus(ctx context.Context, merchantRefundID string) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/payments/v2/refund/"+url.PathEscape(merchantRefundID)+"/status", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "O-Bearer "+token)

	resp, err := c.http().Do(req)
	if err != nil {
		return "", errors.Wrap(err, "phonepe refund status")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("phonepe error: %s", strings.TrimSpace(string(body)))
	}
	var out refundResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errors.Wrap(err, "decode phonepe refund status")
	}
	return out.State, nil
}
