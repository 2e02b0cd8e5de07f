package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/google/uuid"
)

// HTTPClient is the Client implementation over net/http.
//
// Every request attaches the bearer token currently present in the durable
// store. Any 401 response triggers the registered unauthorized hook exactly
// once per response, regardless of which operation produced it. There is no
// automatic retry and no cancellation of earlier requests: a new call never
// cancels a previous one of the same kind.
type HTTPClient struct {
	baseURL        string
	hc             *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// SetOnUnauthorized registers the hook invoked on any 401 response. The app
// root wires it to the session logout; the CLI then shows a "session
// expired" notice, the terminal analogue of redirecting home.
func (c *HTTPClient) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// errorBody is the server's uniform failure envelope.
type errorBody struct {
	Error string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(ctx); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return common.ErrUnauthorized
	}
	if resp.StatusCode == http.StatusNotFound {
		return common.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &eb)
		return &Error{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) TelegramLogin(ctx context.Context, req TelegramLoginRequest) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/telegram", nil, req, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var res struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &res, nil); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *HTTPClient) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	var res struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products", q, nil, &res, nil); err != nil {
		return nil, err
	}
	return res.Products, nil
}

func (c *HTTPClient) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var res struct {
		Product *models.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, nil, &res, nil); err != nil {
		return nil, err
	}
	return res.Product, nil
}

// CreateOrder submits the order with a client-generated Idempotency-Key so
// an accidental re-submission of the same request cannot double-charge.
func (c *HTTPClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	var res struct {
		Order *models.Order `json:"order"`
	}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &res, headers); err != nil {
		return nil, err
	}
	return res.Order, nil
}

func (c *HTTPClient) MyOrders(ctx context.Context) ([]models.Order, error) {
	var res struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/my", nil, nil, &res, nil); err != nil {
		return nil, err
	}
	return res.Orders, nil
}

func (c *HTTPClient) ReferralStats(ctx context.Context) (*models.ReferralStats, error) {
	var res models.ReferralStats
	if err := c.do(ctx, http.MethodGet, "/users/referral-stats", nil, nil, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) BonusHistory(ctx context.Context) ([]models.BonusTransaction, error) {
	var res struct {
		Transactions []models.BonusTransaction `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/bonus-history", nil, nil, &res, nil); err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

func (c *HTTPClient) AdminStats(ctx context.Context) (*StatsResult, error) {
	var res StatsResult
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, nil, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func listQuery(p ListParams) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func (c *HTTPClient) AdminOrders(ctx context.Context, p ListParams) (*OrdersPage, error) {
	var res OrdersPage
	if err := c.do(ctx, http.MethodGet, "/admin/orders", listQuery(p), nil, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) AdminUpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	body := struct {
		Status models.OrderStatus `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPatch, "/admin/orders/"+strconv.FormatInt(id, 10)+"/status", nil, body, nil, nil)
}

func (c *HTTPClient) AdminUsers(ctx context.Context, p ListParams) (*UsersPage, error) {
	var res UsersPage
	if err := c.do(ctx, http.MethodGet, "/admin/users", listQuery(p), nil, &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) AdminProducts(ctx context.Context) ([]models.Product, error) {
	var res []models.Product
	if err := c.do(ctx, http.MethodGet, "/admin/products", nil, nil, &res, nil); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) AdminCreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	var res struct {
		Product *models.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/products", nil, p, &res, nil); err != nil {
		return nil, err
	}
	return res.Product, nil
}

func (c *HTTPClient) AdminUpdateProduct(ctx context.Context, id int64, p models.Product) (*models.Product, error) {
	var res struct {
		Product *models.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPut, "/admin/products/"+strconv.FormatInt(id, 10), nil, p, &res, nil); err != nil {
		return nil, err
	}
	return res.Product, nil
}
