// Package api is an HTTP client for credgate that plays the role of the
// upstream gateway: every request is signed over method+path.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/credgate/pkg/api"
)

// RequestSigner подписывает method+path запроса
type RequestSigner interface {
	Sign(method, path string) (string, error)
}

// StatusError возвращается, когда сервер ответил ошибкой
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	signer     RequestSigner
	baseURL    string
}

// NewClient создает новый API клиент.
// signer может быть nil, тогда запросы уходят без подписи
func NewClient(baseURL string, signer RequestSigner) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Редирект после reset-password не выполняем, а возвращаем как есть
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.CredentialsRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if _, err := c.doRequest(ctx, http.MethodPost, "/register", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login проверяет email и пароль
func (c *Client) Login(ctx context.Context, req api.CredentialsRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if _, err := c.doRequest(ctx, http.MethodPost, "/login", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// GetUser получает пользователя по email
func (c *Client) GetUser(ctx context.Context, email string) (*api.UserResponse, error) {
	var resp api.UserResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/user/"+email, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user request failed: %w", err)
	}
	return &resp, nil
}

// ResetPassword меняет пароль пользователя email.
// Возвращает Location из ответа-редиректа
func (c *Client) ResetPassword(ctx context.Context, email string, req api.ResetPasswordRequest) (string, error) {
	headers := map[string]string{api.HeaderUserEmail: email}

	location, err := c.doRequest(ctx, http.MethodPost, "/reset-password", headers, req, nil)
	if err != nil {
		return "", fmt.Errorf("reset password request failed: %w", err)
	}
	return location, nil
}

// doRequest выполняет подписанный HTTP запрос и возвращает заголовок Location.
// path передается без экранирования: подписывается именно он
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	headers map[string]string,
	body, result any,
) (string, error) {
	target := c.baseURL + (&url.URL{Path: path}).EscapedPath()

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if c.signer != nil {
		sig, err := c.signer.Sign(method, path)
		if err != nil {
			return "", fmt.Errorf("failed to sign request: %w", err)
		}
		req.Header.Set(api.HeaderGatewaySignature, sig)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// 2xx и 3xx считаем успехом
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
		} else {
			statusErr.Message = strings.TrimSpace(string(respBody))
		}
		return "", statusErr
	}

	// Декодируем успешный ответ
	if result != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header.Get("Location"), nil
}
