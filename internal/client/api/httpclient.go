package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hopespring/backoffice/internal/client/models"
	"github.com/hopespring/backoffice/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// HTTPClient talks to the backend REST API over net/http.
type HTTPClient struct {
	baseURL    string
	hc         *http.Client
	authHeader AuthHeaderFunc
	log        logging.Logger
}

// NewHTTPClient builds a client for the given base URL (scheme://host[:port],
// no trailing slash required). The auth header builder is wired separately
// via SetAuthHeaderFunc because the session store that owns it is itself
// constructed on top of this client.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

// SetAuthHeaderFunc injects the header builder consulted on every request.
// Passing nil disables authentication headers.
func (c *HTTPClient) SetAuthHeaderFunc(fn AuthHeaderFunc) {
	c.authHeader = fn
}

// Close releases idle transport connections.
func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// authResponse is the success body of the credential-exchange endpoints.
type authResponse struct {
	User  models.Identity `json:"user"`
	Token string          `json:"token"`
}

// apiMessage is the conventional failure body: {"message": "..."} with
// {"error": "..."} as a fallback key.
type apiMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login exchanges credentials for an identity/token pair via
// POST /api/auth/login with a JSON body.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Identity, string, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, "", fmt.Errorf("encoding login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doAuthExchange(req)
}

// Signup registers a new account via a multipart POST /api/auth/signup.
func (c *HTTPClient) Signup(ctx context.Context, sr SignupRequest) (*models.Identity, string, error) {
	fields := map[string]string{
		"name":     sr.Name,
		"email":    sr.Email,
		"password": sr.Password,
		"role":     string(sr.Role),
	}
	if sr.Mobile != "" {
		fields["mobile"] = sr.Mobile
	}

	body, contentType, err := buildMultipart(fields, "profilePic", sr.ProfilePic)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/signup", body)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", contentType)

	return c.doAuthExchange(req)
}

// UpdateProfile replaces the account record via a multipart
// PUT /api/users/{id}. The response carries the bare identity; the bearer
// token is not reissued.
func (c *HTTPClient) UpdateProfile(ctx context.Context, id string, pu ProfileUpdate) (*models.Identity, error) {
	fields := map[string]string{
		"name":  pu.Name,
		"email": pu.Email,
	}
	if pu.Password != "" {
		fields["password"] = pu.Password
	}

	body, contentType, err := buildMultipart(fields, "profilePic", pu.ProfilePic)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/users/"+id, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	identity, err := models.ParseIdentity(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	return identity, nil
}

// doAuthExchange executes a request whose success body is {user, token}
// and validates the pair before handing it to the caller.
func (c *HTTPClient) doAuthExchange(req *http.Request) (*models.Identity, string, error) {
	data, err := c.do(req)
	if err != nil {
		return nil, "", err
	}

	var ar authResponse
	if err := json.Unmarshal(data, &ar); err != nil {
		return nil, "", fmt.Errorf("%w: decoding auth response: %v", ErrServer, err)
	}
	if ar.Token == "" {
		return nil, "", fmt.Errorf("%w: auth response without token", ErrServer)
	}
	if err := ar.User.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrServer, err)
	}
	return &ar.User, ar.Token, nil
}

// do executes the request with a correlation ID and the current auth headers,
// maps failures to sentinel errors, and returns the raw success body.
func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	if c.authHeader != nil {
		for k, v := range c.authHeader() {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp.StatusCode, data)
		c.log.Warn(req.Context(), "api request failed",
			"method", req.Method, "path", req.URL.Path,
			"status", resp.StatusCode, "req_id", reqID)
		return nil, err
	}

	c.log.Debug(req.Context(), "api request ok",
		"method", req.Method, "path", req.URL.Path, "req_id", reqID)
	return data, nil
}

// statusError maps a non-2xx status to a sentinel error, preserving the
// server-supplied message when the body carries one.
func statusError(status int, body []byte) error {
	var m apiMessage
	_ = json.Unmarshal(body, &m)
	msg := m.Message
	if msg == "" {
		msg = m.Error
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			msg = http.StatusText(status)
		}
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	default:
		if msg == "" {
			return fmt.Errorf("%w: status %d", ErrServer, status)
		}
		return fmt.Errorf("%w: status %d: %s", ErrServer, status, msg)
	}
}

// buildMultipart assembles a multipart/form-data body from plain fields plus
// an optional single file part. Returns the body and its Content-Type.
func buildMultipart(fields map[string]string, fileField string, file *FileAttachment) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}

	if file != nil {
		part, err := w.CreateFormFile(fileField, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", fmt.Errorf("copying file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
