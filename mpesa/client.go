package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	tokenTimeout   = 10 * time.Second
	requestTimeout = 30 * time.Second

	timestampLayout = "20060102150405"

	// Gateway error code meaning "the transaction is being processed".
	codeStillProcessing = "500.001.1001"
)

// STKPushResponse is the gateway's acceptance of a push-payment request.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// StatusResponse is the gateway's answer to a status query for a prior push.
type StatusResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// Client talks to the Daraja push-payment API. It is stateless apart from the
// cached access token and safe for concurrent use.
type Client interface {
	AccessToken(ctx context.Context) (string, error)
	InitiateSTKPush(ctx context.Context, phoneNumber string, amount int, businessID uint, accountReference, description string) (*STKPushResponse, error)
	QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResponse, error)
}

// NewClient selects the live or sandbox implementation once at construction,
// based on the configured test mode.
func NewClient(cfg Config) Client {
	if cfg.TestMode {
		return newSandboxClient()
	}
	return &liveClient{
		cfg:        cfg,
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

type liveClient struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type apiError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// AccessToken performs the OAuth client-credentials exchange, reusing a cached
// token for its stated lifetime.
func (c *liveClient) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.cachedToken != "" && c.now().Before(c.tokenExpiry) {
		token := c.cachedToken
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()

	url := c.cfg.apiBaseURL() + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &AuthError{Message: "building token request", Err: err}
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Message: "token request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Message: fmt.Sprintf("credentials rejected (status %d)", resp.StatusCode)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &AuthError{Message: "decoding token response", Err: err}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Message: "empty access token in response"}
	}

	lifetime := time.Hour
	if secs, err := strconv.Atoi(tok.ExpiresIn); err == nil && secs > 0 {
		lifetime = time.Duration(secs) * time.Second
	}

	c.mu.Lock()
	c.cachedToken = tok.AccessToken
	// Refresh slightly early so an almost-expired token is never sent.
	c.tokenExpiry = c.now().Add(lifetime - 30*time.Second)
	c.mu.Unlock()

	return tok.AccessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int    `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// InitiateSTKPush asks the gateway to prompt the subscriber for payment.
func (c *liveClient) InitiateSTKPush(ctx context.Context, phoneNumber string, amount int, businessID uint, accountReference, description string) (*STKPushResponse, error) {
	if amount < 1 {
		return nil, &ValidationError{Message: "amount must be at least 1"}
	}

	formattedPhone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	if accountReference == "" {
		accountReference = fmt.Sprintf("INV-%d", businessID)
	}
	if description == "" {
		description = "Business Registration Payment"
	}

	timestamp := c.now().Format(timestampLayout)
	payload := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          passwordDigest(c.cfg.ShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            formattedPhone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       formattedPhone,
		CallBackURL:       c.cfg.callbackURL(),
		AccountReference:  accountReference,
		TransactionDesc:   description,
	}

	var result STKPushResponse
	if err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// QueryStatus asks the gateway for the current outcome of a prior push.
// ErrNotYetResolved is returned while the subscriber has not yet acted.
func (c *liveClient) QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResponse, error) {
	if checkoutRequestID == "" {
		return nil, &ValidationError{Message: "checkout request ID is required"}
	}

	timestamp := c.now().Format(timestampLayout)
	payload := stkQueryRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          passwordDigest(c.cfg.ShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var result StatusResponse
	if err := c.post(ctx, "/mpesa/stkpushquery/v1/query", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *liveClient) post(ctx context.Context, path string, payload, result any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &GatewayError{Message: "encoding request: " + err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.apiBaseURL()+path, bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Message: "building request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Message: "request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			if apiErr.ErrorCode == codeStillProcessing {
				return ErrNotYetResolved
			}
			return &GatewayError{StatusCode: resp.StatusCode, Code: apiErr.ErrorCode, Message: apiErr.ErrorMessage}
		}
		return &GatewayError{StatusCode: resp.StatusCode, Message: "gateway returned an unexpected response"}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &GatewayError{Message: "decoding response: " + err.Error()}
	}
	return nil
}

// passwordDigest builds the time-boxed request signature from the merchant
// shortcode and passkey.
func passwordDigest(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}
