// Package bkash реализует клиент tokenized checkout платёжного шлюза bKash:
// выдача токена с кэшированием, создание и подтверждение платежа.
package bkash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/config"
)

// Успешный statusCode в ответах bKash.
const statusCodeOK = "0000"

// Токен обновляется заранее, чтобы не отправить запрос с истекающим токеном.
const tokenSafetyMargin = 60 * time.Second

var (
	ErrGateway       = fmt.Errorf("bkash gateway error")
	ErrPaymentFailed = fmt.Errorf("bkash payment not completed")
)

// Client клиент шлюза bKash. Токен кэшируется в самом клиенте и обновляется
// по необходимости под мьютексом.
type Client struct {
	cfg        config.Bkash
	httpClient *http.Client

	mu             sync.Mutex
	token          string
	tokenExpiresAt time.Time
}

func New(cfg config.Bkash) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// CreatePayment создаёт платёж на сумму amount и возвращает paymentID вместе
// с URL страницы оплаты, куда нужно перенаправить плательщика.
func (c *Client) CreatePayment(ctx context.Context, amount decimal.Decimal) (*CreatedPayment, error) {
	const op = "bkash.CreatePayment"

	token, err := c.grantToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reqBody := createPaymentRequest{
		Mode:                  "0011",
		PayerReference:        " ",
		CallbackURL:           c.cfg.CallbackURL,
		Amount:                amount.StringFixed(2),
		Currency:              "BDT",
		Intent:                "sale",
		MerchantInvoiceNumber: "INV" + uuid.NewString(),
	}
	var resp createPaymentResponse
	if err := c.post(ctx, c.cfg.CreateURL, token, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != statusCodeOK || resp.PaymentID == "" {
		return nil, fmt.Errorf("%s: status %s (%s): %w", op, resp.StatusCode, resp.StatusMsg, ErrGateway)
	}
	return &CreatedPayment{PaymentID: resp.PaymentID, BkashURL: resp.BkashURL}, nil
}

// ExecutePayment подтверждает платёж после возврата плательщика со страницы
// оплаты. Платёж считается успешным только при statusCode 0000
// и transactionStatus Completed; всё прочее — ErrPaymentFailed.
func (c *Client) ExecutePayment(ctx context.Context, paymentID string) (*ExecutedPayment, error) {
	const op = "bkash.ExecutePayment"

	token, err := c.grantToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp executePaymentResponse
	if err := c.post(ctx, c.cfg.ExecuteURL, token, executePaymentRequest{PaymentID: paymentID}, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != statusCodeOK || resp.TransactionStatus != "Completed" {
		return nil, fmt.Errorf("%s: status %s (%s): %w", op, resp.StatusCode, resp.StatusMsg, ErrPaymentFailed)
	}
	return &ExecutedPayment{PaymentID: resp.PaymentID, TrxID: resp.TrxID, Amount: resp.Amount}, nil
}

// grantToken возвращает действующий токен: из кэша, либо запрашивает новый.
func (c *Client) grantToken(ctx context.Context) (string, error) {
	const op = "bkash.grantToken"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiresAt) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"app_key":    c.cfg.AppKey,
		"app_secret": c.cfg.AppSecret,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GrantTokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("username", c.cfg.Username)
	req.Header.Set("password", c.cfg.Password)

	httpResp, err := c.doWithRetry(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	var resp grantTokenResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.IDToken == "" {
		return "", fmt.Errorf("%s: empty id_token (%s): %w", op, resp.Msg, ErrGateway)
	}

	c.token = resp.IDToken
	c.tokenExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenSafetyMargin)
	return c.token, nil
}

// post отправляет авторизованный JSON-запрос к шлюзу и декодирует ответ в out.
func (c *Client) post(ctx context.Context, url, token string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("X-APP-Key", c.cfg.AppKey)

	httpResp, err := c.doWithRetry(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	if httpResp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, httpResp.Body)
		return fmt.Errorf("unexpected http status %d: %w", httpResp.StatusCode, ErrGateway)
	}
	return json.NewDecoder(httpResp.Body).Decode(out)
}

// doWithRetry выполняет запрос с одним повтором после паузы при транспортной ошибке.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err == nil {
		return resp, nil
	}

	select {
	case <-req.Context().Done():
		return nil, req.Context().Err()
	case <-time.After(c.cfg.RetryDelay):
	}

	// Тело первой попытки уже прочитано, восстанавливаем его.
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		req.Body = body
	}
	return c.httpClient.Do(req)
}
