package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carwash-client/internal/domain"
)

const DefaultTimeout = 15 * time.Second

// TokenStore es la parte del almacen de credenciales que usa el cliente HTTP.
type TokenStore interface {
	Token(ctx context.Context) string
	ClearToken(ctx context.Context)
}

// Client habla con el backend REST de reservas.
type Client struct {
	baseURL   string
	client    *http.Client
	tokens    TokenStore
	logger    *zap.Logger
	requestID func() string
}

// NewClient construye un cliente con timeout compartido para todas las llamadas.
func NewClient(baseURL string, timeout time.Duration, tokens TokenStore, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		tokens:    tokens,
		logger:    logger,
		requestID: uuid.NewString,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestID := c.requestID()
	req.Header.Set("X-Request-ID", requestID)

	var token string
	if c.tokens != nil {
		token = c.tokens.Token(ctx)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("outgoing request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.String("authorization", maskValue(token)),
		zap.String("body", maskBody(bodyBytes)),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("request failed without response",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("incoming response",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("body", maskBody(respBody)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
			c.logger.Warn("unauthorized response, clearing stored token", zap.String("request_id", requestID))
			c.tokens.ClearToken(ctx)
		}
		return &domain.ServerError{
			Status:  resp.StatusCode,
			Message: errorMessage(respBody),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// errorMessage toma message, luego error, y si no hay ninguno un texto generico.
func errorMessage(body []byte) string {
	var eb struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if err := json.Unmarshal(body, &eb); err != nil {
		return domain.GenericErrorMessage
	}
	for _, v := range []any{eb.Message, eb.Error} {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return domain.GenericErrorMessage
}

var sensitiveKeys = []string{"password", "token", "authorization", "otp", "secret"}

func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) > 10 {
		return v[:7] + "..." + v[len(v)-4:]
	}
	return "***"
}

func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return fmt.Sprintf("<%d bytes>", len(body))
	}
	for k, v := range obj {
		lower := strings.ToLower(k)
		for _, s := range sensitiveKeys {
			if strings.Contains(lower, s) {
				obj[k] = maskValue(fmt.Sprint(v))
				break
			}
		}
	}
	masked, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("<%d bytes>", len(body))
	}
	return string(masked)
}

// isStatus informa si err es un ServerError con alguno de los codigos dados.
func isStatus(err error, codes ...int) (*domain.ServerError, bool) {
	var se *domain.ServerError
	if !errors.As(err, &se) {
		return nil, false
	}
	for _, code := range codes {
		if se.Status == code {
			return se, true
		}
	}
	return se, false
}
