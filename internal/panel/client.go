// client.go — HTTP-клиент к панели ключей MCP.
// Каждая операция — один POST с JSON-телом и ограниченным таймаутом.
// Операции с ключами выполняются только при подтверждённой лицензии,
// иначе возвращается ошибка invalid_license без сетевого запроса.
// Все неуспешные вызовы возвращают *Error.
package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Пути API панели.
const (
	pathCreate  = "/api/mcp/create"
	pathList    = "/api/mcp/list"
	pathRevoke  = "/api/mcp/revoke"
	pathDelete  = "/api/mcp/delete"
	pathSuspend = "/api/mcp/suspend"
	pathSent    = "/api/mcp/sent"
	pathVerify  = "/api/license/verify"
)

// maxResponseBytes — предел размера ответа панели.
const maxResponseBytes = 4 << 20

// snippetLen — сколько символов невалидного ответа попадает в сообщение.
const snippetLen = 200

// Prometheus-метрики вызовов панели.
var (
	panelRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_sync_panel_requests_total",
		Help: "Количество запросов к панели ключей MCP",
	}, []string{"path", "result"}) // result: ok или код ошибки

	panelRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mcp_sync_panel_request_duration_seconds",
		Help:    "Длительность запросов к панели ключей MCP",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// Client — HTTP-клиент к панели ключей MCP.
type Client struct {
	baseURL        string // Базовый URL панели (без trailing slash)
	siteURL        string // Базовый URL хост-системы для проверки лицензии
	timeout        time.Duration
	licenseTimeout time.Duration

	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент панели.
// timeout — таймаут операций с ключами, licenseTimeout — проверки лицензии.
// httpClient может быть nil (используется клиент по умолчанию).
func New(baseURL, siteURL string, timeout, licenseTimeout time.Duration, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		siteURL:        strings.TrimRight(siteURL, "/"),
		timeout:        timeout,
		licenseTimeout: licenseTimeout,
		httpClient:     httpClient,
		logger:         logger.With(slog.String("component", "panel_client")),
	}
}

// --- Операции с ключами ---

// CreateKey создаёт ключ для токена или обновляет роли существующего.
// Возвращает актуальное состояние ключа.
func (c *Client) CreateKey(ctx context.Context, lic License, req CreateKeyRequest) (*Key, error) {
	if !lic.Valid() {
		return nil, invalidLicense()
	}

	roles := req.MoodleRoles
	if roles == nil {
		roles = []string{}
	}
	payload := createKeyPayload{
		LicenseKey:     lic.Key,
		MoodleToken:    req.MoodleToken,
		MoodleRoles:    roles,
		MoodleUsername: req.MoodleUsername,
	}
	if req.ExpiresOn != "" {
		payload.ExpiresOn = &req.ExpiresOn
	}

	var key Key
	if err := c.call(ctx, pathCreate, payload, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// ListKeys возвращает все ключи лицензии.
func (c *Client) ListKeys(ctx context.Context, lic License) ([]Key, error) {
	if !lic.Valid() {
		return nil, invalidLicense()
	}

	var resp listResponse
	if err := c.call(ctx, pathList, licensePayload{LicenseKey: lic.Key}, &resp); err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

// RevokeKey отзывает ключ.
func (c *Client) RevokeKey(ctx context.Context, lic License, mcpKey string) error {
	return c.keyAction(ctx, lic, pathRevoke, mcpKey)
}

// DeleteKey удаляет ключ.
func (c *Client) DeleteKey(ctx context.Context, lic License, mcpKey string) error {
	return c.keyAction(ctx, lic, pathDelete, mcpKey)
}

// MarkSent отмечает ключ как отправленный пользователю.
func (c *Client) MarkSent(ctx context.Context, lic License, mcpKey string) error {
	return c.keyAction(ctx, lic, pathSent, mcpKey)
}

// SuspendKey приостанавливает (suspend=true) или возобновляет ключ.
func (c *Client) SuspendKey(ctx context.Context, lic License, mcpKey string, suspend bool) error {
	if err := checkKeyArgs(lic, mcpKey); err != nil {
		return err
	}
	return c.call(ctx, pathSuspend, suspendPayload{
		LicenseKey: lic.Key,
		MCPKey:     mcpKey,
		Suspend:    suspend,
	}, nil)
}

func (c *Client) keyAction(ctx context.Context, lic License, path, mcpKey string) error {
	if err := checkKeyArgs(lic, mcpKey); err != nil {
		return err
	}
	return c.call(ctx, path, keyPayload{LicenseKey: lic.Key, MCPKey: mcpKey}, nil)
}

func checkKeyArgs(lic License, mcpKey string) error {
	if !lic.Valid() {
		return invalidLicense()
	}
	if mcpKey == "" {
		return &Error{Code: CodeMissingKey, Message: "не указан mcpKey"}
	}
	return nil
}

func invalidLicense() *Error {
	return &Error{Code: CodeInvalidLicense, Message: "лицензия не задана или не подтверждена"}
}

// --- Проверка лицензии ---

// Сообщения об ошибках проверки лицензии по кодам панели.
var licenseMessages = map[string]string{
	"invalid_request":        "Проверка лицензии не удалась: некорректный запрос.",
	"invalid_license":        "Проверка лицензии не удалась: лицензия недействительна.",
	"license_not_configured": "Проверка лицензии не удалась: лицензия не настроена.",
	"url_mismatch":           "Проверка лицензии не удалась: адрес сайта не совпадает.",
}

const (
	msgLicenseEmpty   = "Требуется ключ лицензии."
	msgLicenseInvalid = "Лицензия недействительна."
)

// VerifyLicense проверяет ключ лицензии в панели.
// Сетевые ошибки не возвращаются как error: результат всегда содержит
// статус и сообщение для администратора.
func (c *Client) VerifyLicense(ctx context.Context, licenseKey string) Verification {
	licenseKey = strings.TrimSpace(licenseKey)
	if licenseKey == "" {
		return Verification{Status: LicenseError, Message: msgLicenseEmpty}
	}

	ctx, cancel := context.WithTimeout(ctx, c.licenseTimeout)
	defer cancel()

	body, _, err := c.post(ctx, pathVerify, verifyPayload{LicenseKey: licenseKey, MoodleURL: c.siteURL})
	if err != nil {
		c.logger.Warn("Ошибка запроса проверки лицензии", slog.String("error", err.Error()))
		return Verification{Status: LicenseError, Message: "Проверка лицензии не удалась: " + err.Error()}
	}

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(body), &decoded); err != nil || decoded == nil {
		return Verification{Status: LicenseError, Message: msgLicenseInvalid}
	}
	if truthy(decoded["valid"]) {
		return Verification{Status: LicenseOK}
	}
	if code, ok := decoded["error"]; ok && truthy(code) {
		s := fmt.Sprint(code)
		if msg, ok := licenseMessages[s]; ok {
			return Verification{Status: LicenseError, Message: msg}
		}
		return Verification{Status: LicenseError, Message: fmt.Sprintf("Лицензия недействительна (%s).", s)}
	}
	return Verification{Status: LicenseError, Message: msgLicenseInvalid}
}

// CheckReady проверяет, что панель отвечает по HTTP.
// Любой ответ ниже 500 считается признаком доступности.
func (c *Client) CheckReady(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("панель недоступна: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("панель вернула статус %d", resp.StatusCode)
	}
	return nil
}

// --- HTTP helpers ---

// call выполняет POST и разбирает ответ по контракту панели:
// сетевая ошибка — transport; не JSON-объект — invalid_json;
// поле error — ошибка с сообщением панели; success=false — api_error.
// При успехе тело декодируется в target (если не nil).
func (c *Client) call(ctx context.Context, path string, payload, target any) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if perr, ok := err.(*Error); ok {
			result = perr.Code
		}
		panelRequestsTotal.WithLabelValues(path, result).Inc()
		panelRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, status, err := c.post(ctx, path, payload)
	if err != nil {
		c.logger.Warn("Ошибка запроса к панели",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return &Error{Code: CodeTransport, Message: err.Error()}
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(body, &decoded); jerr != nil || decoded == nil {
		c.logger.Debug("Панель вернула невалидный JSON",
			slog.String("path", path),
			slog.Int("status", status),
		)
		return &Error{
			Code:    CodeInvalidJSON,
			Message: fmt.Sprintf("invalid_json: %s (status: %d)", snippet(body), status),
		}
	}

	if raw, ok := decoded["error"]; ok && raw != nil {
		code := CodeAPIError
		if s, ok := raw.(string); ok {
			code = s
		}
		message := code
		if m, ok := decoded["message"].(string); ok {
			message = m
		}
		c.logger.Debug("Панель вернула ошибку",
			slog.String("path", path),
			slog.String("error", message),
		)
		return &Error{Code: code, Message: message, Data: decoded}
	}

	if v, ok := decoded["success"]; ok && !truthy(v) {
		c.logger.Debug("Панель вернула success=false", slog.String("path", path))
		return &Error{Code: CodeAPIError, Message: CodeAPIError, Data: decoded}
	}

	if target != nil {
		if jerr := json.Unmarshal(body, target); jerr != nil {
			return &Error{Code: CodeInvalidJSON, Message: "invalid_json: " + jerr.Error(), Data: decoded}
		}
	}
	return nil
}

// post отправляет JSON и возвращает тело ответа и статус.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("сериализация тела запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("чтение ответа: %w", err)
	}
	return body, resp.StatusCode, nil
}

// snippet возвращает начало ответа для сообщения об ошибке.
func snippet(body []byte) string {
	r := []rune(string(body))
	if len(r) > snippetLen {
		r = r[:snippetLen]
	}
	return string(r)
}

// truthy повторяет нестрогое приведение к bool, принятое в ответах панели:
// false, 0, "", "0", null и пустые коллекции — ложь.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
