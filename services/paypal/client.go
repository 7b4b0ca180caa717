// Package paypalsvc talks to the PayPal Orders v2 API.
package paypalsvc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/payment"
)

const (
	SandboxURL = "https://api-m.sandbox.paypal.com"
	LiveURL    = "https://api-m.paypal.com"

	statusCompleted = "COMPLETED"
)

type (
	Client struct {
		baseURL      string
		clientID     string
		clientSecret string
		http         *rest.Client

		mu          sync.Mutex
		accessToken string
		expiresAt   time.Time
	}

	tokenResponse struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"` // seconds
	}

	amount struct {
		CurrencyCode string `json:"currency_code"`
		Value        string `json:"value"`
	}

	purchaseUnit struct {
		ReferenceID string `json:"reference_id"`
		Description string `json:"description,omitempty"`
		Amount      amount `json:"amount"`
	}

	orderRequest struct {
		Intent        string         `json:"intent"`
		PurchaseUnits []purchaseUnit `json:"purchase_units"`
	}

	link struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	}

	orderResponse struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []link `json:"links"`
	}
)

var _ payment.Gateway = (*Client)(nil)

// NewClient returns nil when PayPal is not configured.
// FEATURE_GO_LIVE switches from the sandbox to the live API.
func NewClient(conf *core.Config) *Client {
	if conf.PayPal.ClientID == "" || conf.PayPal.ClientSecret == "" {
		return nil
	}
	baseURL := SandboxURL
	if conf.Flags.GoLive {
		baseURL = LiveURL
	}
	return newClient(baseURL, conf.PayPal.ClientID, conf.PayPal.ClientSecret, &http.Client{Timeout: 15 * time.Second})
}

func newClient(baseURL, clientID, clientSecret string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &rest.Client{HTTPClient: httpClient},
	}
}

// token returns a cached OAuth access token, fetching a new one shortly before it expires.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	creds := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	res, err := c.http.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: c.baseURL + "/v1/oauth2/token",
		Headers: map[string]string{
			"Authorization": "Basic " + creds,
			"Content-Type":  "application/x-www-form-urlencoded",
			"Accept":        "application/json",
		},
		Body: []byte(url.Values{"grant_type": {"client_credentials"}}.Encode()),
	})
	if err != nil {
		return "", errors.Wrap(err, "requesting access token")
	}
	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("requesting access token - status: %d - body: %s", res.StatusCode, res.Body)
	}

	var tok tokenResponse
	if err = json.Unmarshal([]byte(res.Body), &tok); err != nil {
		return "", errors.Wrap(err, "decoding access token")
	}
	c.accessToken = tok.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + tok,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
	}
	if body != nil {
		if req.Body, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "encoding request")
		}
	}

	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("POST %s - status: %d - body: %s", path, res.StatusCode, res.Body)
	}
	return errors.Wrap(json.Unmarshal([]byte(res.Body), out), "decoding response")
}

func (c *Client) CreateOrder(ctx context.Context, order payment.Order) (payment.OrderResult, error) {
	var res orderResponse
	err := c.post(ctx, "/v2/checkout/orders", orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: order.ReferenceID,
			Description: order.Description,
			Amount:      amount{CurrencyCode: order.Currency, Value: order.Amount},
		}},
	}, &res)
	if err != nil {
		return payment.OrderResult{}, errors.Wrap(err, "creating order")
	}

	result := payment.OrderResult{ID: res.ID, Status: res.Status}
	for _, l := range res.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			result.ApproveURL = l.Href
			break
		}
	}
	return result, nil
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (bool, error) {
	var res orderResponse
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID))
	if err := c.post(ctx, path, nil, &res); err != nil {
		return false, errors.Wrap(err, "capturing order")
	}
	return res.Status == statusCompleted, nil
}
