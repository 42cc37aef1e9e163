package gateway

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/openbay/auction-service/internal/config"
	"github.com/openbay/auction-service/internal/domain"
)

// Client talks to the payment gateway. The gateway itself (card
// tokenization, hosted checkout) is a black box; this client only registers
// orders and checks callback signatures.
//
// Mock mode is the explicit test-environment branch: it mints synthetic
// gateway order ids locally and accepts callbacks without a real signature.
// It is reachable only when the config enables it.
type Client struct {
	endpoint   string
	keyID      string
	keySecret  string
	mock       bool
	httpClient *http.Client
	newHandle  func() string
}

func NewClient(cfg config.PaymentGateway) (*Client, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("failed to init gateway id generator: %w", err)
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		mock:       cfg.Mock,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		newHandle:  idGenerator,
	}, nil
}

// IsMock reports whether the client runs the test-environment branch.
func (c *Client) IsMock() bool {
	return c.mock
}

type createOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder registers an order with the gateway and returns its handle.
func (c *Client) CreateOrder(orderID string, amount float64, currency string) (*domain.GatewayOrder, error) {
	if c.mock {
		// Test-mode branch: no gateway round trip, synthetic handle.
		return &domain.GatewayOrder{
			GatewayOrderID: "order_mock_" + c.newHandle(),
			OrderID:        orderID,
			Amount:         amount,
			Currency:       currency,
			IsMock:         true,
		}, nil
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  "rcpt_" + c.newHandle(),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/orders", c.endpoint), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: gateway returned status %d", domain.ErrGatewayUnavailable, response.StatusCode)
	}

	var parsed createOrderResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	return &domain.GatewayOrder{
		GatewayOrderID: parsed.ID,
		OrderID:        orderID,
		Amount:         amount,
		Currency:       currency,
		IsMock:         false,
	}, nil
}

// VerifySignature checks the gateway callback signature: HMAC-SHA256 over
// "<gatewayOrderID>|<gatewayPaymentID>" with the shared key secret, hex
// encoded. In mock mode any callback carrying a mock-minted order id passes.
func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if c.mock {
		return len(gatewayOrderID) > 0 && len(gatewayPaymentID) > 0
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
