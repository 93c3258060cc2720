package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"comuna-reader/internal/backend"
	"comuna-reader/internal/i18n"
	"comuna-reader/internal/utils"
)

// Client talks to the auth endpoints. Write and auth failures surface as
// typed errors carrying the server's message when it sent one, else a
// localized generic fallback keyed per operation.
type Client struct {
	http      *http.Client
	endpoints backend.Endpoints
	logger    *slog.Logger
}

func NewClient(endpoints backend.Endpoints, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoints: endpoints,
		logger:    logger,
	}
}

// authBody is the envelope every auth endpoint answers with; only some
// fields are set per endpoint.
type authBody struct {
	OK    bool          `json:"ok"`
	Token string        `json:"token,omitempty"`
	User  *SiteUser     `json:"user,omitempty"`
	Error string        `json:"error,omitempty"`
	Code  string        `json:"code,omitempty"`
	URL   string        `json:"url,omitempty"`
	Post  *SiteUserPost `json:"post,omitempty"`
	Posts []SiteUserPost `json:"posts,omitempty"`
	Total int           `json:"total,omitempty"`
}

func failureMessage(body *authBody, fallbackKey string) string {
	if body != nil && body.Error != "" {
		return body.Error
	}
	return i18n.T(fallbackKey)
}

// do sends the request and decodes the JSON envelope. The body is
// decoded even on non-2xx responses because the backend carries its
// error message there.
func (c *Client) do(req *http.Request, fallbackKey string) (*authBody, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("auth request failed", "url", req.URL.Path, "err", err)
		return nil, utils.NewAppError(utils.ErrTransport, i18n.T(fallbackKey), err)
	}
	defer resp.Body.Close()

	var body authBody
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &body, utils.NewAppError(
			codeForStatus(resp.StatusCode),
			failureMessage(&body, fallbackKey),
			nil,
		)
	}
	if decodeErr != nil {
		return nil, utils.NewAppError(utils.ErrBadResponse, i18n.T(fallbackKey), decodeErr)
	}
	return &body, nil
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return utils.ErrInvalidToken
	case http.StatusNotFound:
		return utils.ErrNotFound
	case http.StatusBadRequest:
		return utils.ErrInvalidCredentials
	default:
		return utils.ErrBadResponse
	}
}

func (c *Client) postJSON(ctx context.Context, url string, token string, payload any, fallbackKey string) (*authBody, error) {
	return c.sendJSON(ctx, http.MethodPost, url, token, payload, fallbackKey)
}

func (c *Client) sendJSON(ctx context.Context, method, url, token string, payload any, fallbackKey string) (*authBody, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrInvalidInput, i18n.T(fallbackKey), err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, i18n.T(fallbackKey), err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, fallbackKey)
}

// loginResult checks the token invariant shared by all login flows: a
// success response without a token is a failure and must not mutate
// session state.
func loginResult(body *authBody, err error, fallbackKey string) (string, *SiteUser, error) {
	if err != nil {
		return "", nil, err
	}
	if body.Token == "" {
		return "", nil, utils.NewAppError(
			utils.ErrInvalidCredentials,
			failureMessage(body, fallbackKey),
			nil,
		)
	}
	return body.Token, body.User, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, *SiteUser, error) {
	payload := map[string]string{"username": username, "password": password}
	body, err := c.postJSON(ctx, c.endpoints.LoginURL(), "", payload, "login_failed")
	return loginResult(body, err, "login_failed")
}

func (c *Client) Register(ctx context.Context, payload RegisterPayload) (string, *SiteUser, error) {
	body, err := c.postJSON(ctx, c.endpoints.RegisterURL(), "", payload, "register_failed")
	return loginResult(body, err, "register_failed")
}

func (c *Client) LoginTelegram(ctx context.Context, payload TelegramAuthPayload) (string, *SiteUser, error) {
	body, err := c.postJSON(ctx, c.endpoints.TelegramAuthURL(), "", payload, "telegram_failed")
	return loginResult(body, err, "telegram_failed")
}

func (c *Client) LoginVK(ctx context.Context, payload VKAuthPayload) (string, *SiteUser, error) {
	body, err := c.postJSON(ctx, c.endpoints.VKAuthURL(), "", payload, "vk_failed")
	return loginResult(body, err, "vk_failed")
}

// Me fetches the profile for a bearer token. Any non-2xx means the
// token is invalid; the caller treats that as terminal, not transient.
func (c *Client) Me(ctx context.Context, token string) (*SiteUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.MeURL(), nil)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "invalid request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req, "auth_required")
	if err != nil {
		return nil, err
	}
	return body.User, nil
}

func (c *Client) VerificationCode(ctx context.Context, token string) (string, error) {
	body, err := c.postJSON(ctx, c.endpoints.VerificationCodeURL(), token, nil, "code_failed")
	if err != nil {
		return "", err
	}
	if body.Code == "" {
		return "", utils.NewAppError(utils.ErrBadResponse, failureMessage(body, "code_failed"), nil)
	}
	return body.Code, nil
}

func (c *Client) UserPosts(ctx context.Context, token string, limit, offset int) ([]SiteUserPost, int, error) {
	url := c.endpoints.UserPostsURL(limit, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, utils.NewAppError(utils.ErrInvalidInput, "invalid request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req, "posts_load_failed")
	if err != nil {
		return nil, 0, err
	}
	return body.Posts, body.Total, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, payload CreatePostPayload) (*SiteUserPost, error) {
	url := c.endpoints.UserPostsCollectionURL()
	body, err := c.postJSON(ctx, url, token, payload, "post_create_failed")
	if err != nil {
		return nil, err
	}
	return body.Post, nil
}

func (c *Client) UpdatePost(ctx context.Context, token string, postID int, payload UpdatePostPayload) (*SiteUserPost, error) {
	url := c.endpoints.UserPostURL(postID)
	body, err := c.sendJSON(ctx, http.MethodPatch, url, token, payload, "post_update_failed")
	if err != nil {
		return nil, err
	}
	return body.Post, nil
}

// UploadImage posts a multipart form with the image under the "image"
// field and returns the hosted URL.
func (c *Client) UploadImage(ctx context.Context, token, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", utils.NewAppError(utils.ErrInvalidInput, i18n.T("image_upload_failed"), err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", utils.NewAppError(utils.ErrInvalidInput, i18n.T("image_upload_failed"), err)
	}
	if err := writer.Close(); err != nil {
		return "", utils.NewAppError(utils.ErrInvalidInput, i18n.T("image_upload_failed"), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.UploadsURL(), &buf)
	if err != nil {
		return "", utils.NewAppError(utils.ErrInvalidInput, i18n.T("image_upload_failed"), err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req, "image_upload_failed")
	if err != nil {
		return "", err
	}
	if body.URL == "" {
		return "", utils.NewAppError(utils.ErrBadResponse, failureMessage(body, "image_upload_failed"), nil)
	}
	return body.URL, nil
}
