package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/glowgrace/booking-platform/pkg/logging"
)

// ErrGatewayNotConfigured is returned when order creation is attempted
// without gateway credentials.
var ErrGatewayNotConfigured = errors.New("payment gateway keys not configured")

// Order is a gateway order against which the customer pays.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// OrderCreator creates gateway orders. Injected so handlers and tests
// never talk to the real gateway.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error)
}

type gatewayOrdersClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewGatewayOrdersClient builds the REST client for the payment gateway's
// orders API. Returns nil when keys are missing so callers can disable
// online payments cleanly.
func NewGatewayOrdersClient(keyID, keySecret, baseURL string, logger *logging.Logger) OrderCreator {
	if keyID == "" || keySecret == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &gatewayOrdersClient{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// CreateOrder registers an order for the given amount. The gateway works
// in the smallest currency unit, so the amount is multiplied by 100.
func (c *gatewayOrdersClient) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error) {
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_%d", time.Now().Unix())
	}

	payload, err := json.Marshal(map[string]any{
		"amount":   int64(amount * 100),
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("payments: marshal order: %w", err)
	}

	url := c.baseURL + "/v1/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("payments: request build: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: orders http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		var body struct {
			Error struct {
				Description string `json:"description"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		c.logger.Error("gateway order creation failed", "status", resp.StatusCode, "description", body.Error.Description)
		return nil, fmt.Errorf("payments: gateway returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("payments: decode order: %w", err)
	}

	c.logger.Info("gateway order created", "order_id", order.ID, "amount", order.Amount, "currency", order.Currency)
	return &order, nil
}
