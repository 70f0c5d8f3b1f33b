// Package api содержит HTTP-клиент для взаимодействия с сервером artfolio.
//
// Клиент инкапсулирует базовый URL сервера и настроенный http.Client,
// предоставляя методы для отправки JSON и multipart запросов
// с авторизацией через Bearer токен.
//
// Особенности:
//   - baseURL нормализуется (обрезаются завершающие "/").
//   - По умолчанию добавляется заголовок Accept: application/json.
//   - Пустое тело ответа (EOF при декодировании) не считается ошибкой.
//   - При ошибочных ответах (не 2xx) возвращается *APIError со статусом,
//     сообщением сервера и ошибками по полям. APIError сопоставляется
//     с sentinel-ошибками из shared/errors через errors.Is.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// DefaultBaseURL - адрес сервера, если не задан ни флаг, ни ARTFOLIO_API_BASE_URL.
const DefaultBaseURL = "http://localhost:8080"

// Client реализует HTTP-клиент для общения с сервером artfolio.
//
// Поля:
//   - baseURL: базовый адрес сервера без завершающего слэша.
//   - http: настроенный http.Client (таймаут, транспорт).
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создаёт новый HTTP-клиент для общения с сервером.
//
// Пустой baseURL заменяется на DefaultBaseURL, завершающий "/" обрезается.
// Таймаут запроса 30 секунд: загрузка картинки бывает небыстрой.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL возвращает нормализованный адрес сервера.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError - ответ сервера со статусом не 2xx.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

// Is сопоставляет HTTP-статус с доменной ошибкой.
func (e *APIError) Is(target error) bool {
	switch target {
	case serr.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case serr.ErrNotFound:
		return e.Status == http.StatusNotFound
	case serr.ErrAlreadyExists:
		return e.Status == http.StatusConflict
	case serr.ErrInvalidInput:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// readAPIError читает тело ответа сервера и собирает *APIError.
//
// Если тело не JSON - в Message попадает текст тела как есть.
func readAPIError(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)
	apiErr := &APIError{Status: res.StatusCode}

	var body models.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = res.Status
	}
	return apiErr
}

// decodeJSONOrOK декодирует JSON из r в resp.
//
// Если resp == nil - ничего не делает. Пустое тело (io.EOF) не ошибка.
func decodeJSONOrOK(r io.Reader, resp any) error {
	if resp == nil {
		return nil
	}
	err := json.NewDecoder(r).Decode(resp)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// do отправляет запрос и разбирает ответ.
//
// contentType пустой - тело не отправляется. authToken пустой - без Authorization.
func (c *Client) do(method, path, contentType string, body io.Reader, resp any, authToken string) error {
	r, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if authToken != "" {
		r.Header.Set("Authorization", "Bearer "+authToken)
	}

	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIError(res)
	}
	if res.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeJSONOrOK(res.Body, resp)
}

func encodeJSON(req any) (io.Reader, string, error) {
	if req == nil {
		return nil, "", nil
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, "", fmt.Errorf("encode request: %w", err)
	}
	return &buf, "application/json", nil
}

// PostJSON выполняет POST-запрос, сериализуя req в JSON.
//
// req == nil - тело не отправляется и Content-Type не ставится.
// resp == nil - тело ответа не декодируется.
func (c *Client) PostJSON(path string, req any, resp any, authToken string) error {
	body, ct, err := encodeJSON(req)
	if err != nil {
		return err
	}
	return c.do(http.MethodPost, path, ct, body, resp, authToken)
}

// GetJSON выполняет GET-запрос и (опционально) декодирует JSON-ответ.
func (c *Client) GetJSON(path string, resp any, authToken string) error {
	return c.do(http.MethodGet, path, "", nil, resp, authToken)
}

// PutJSON выполняет PUT-запрос, сериализуя req в JSON.
func (c *Client) PutJSON(path string, req any, resp any, authToken string) error {
	body, ct, err := encodeJSON(req)
	if err != nil {
		return err
	}
	return c.do(http.MethodPut, path, ct, body, resp, authToken)
}

// DeleteJSON выполняет DELETE-запрос и (опционально) декодирует JSON-ответ.
func (c *Client) DeleteJSON(path string, resp any, authToken string) error {
	return c.do(http.MethodDelete, path, "", nil, resp, authToken)
}
