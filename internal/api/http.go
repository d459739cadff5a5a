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

	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/models"
)

// Error code the backend reserves for an invalid or expired session token.
// It must be distinguished from other 4xx responses.
const codeInvalidToken = "ERR_INVALID_TOKEN"

// HTTPClient implements Client over the backend's REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	appVersion string
	http       *http.Client
}

// NewHTTPClient returns a client for the API at baseURL. The apiKey and
// appVersion are attached to every request as identification headers.
func NewHTTPClient(baseURL, apiKey, appVersion string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		appVersion: appVersion,
		http:       &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path, token string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	req.Header.Set(common.AppVersionHeaderName, c.appVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	return req, nil
}

// do executes the request and decodes the {"data": ...} envelope into out
// (out may be nil when the payload is irrelevant).
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection failures are all transient from the
		// caller's point of view.
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapStatusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mapStatusError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	if resp.StatusCode == http.StatusUnauthorized || body.Code == codeInvalidToken {
		return common.ErrInvalidToken
	}
	if body.Error != "" {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server error: %s", resp.Status)
}

// Login authenticates with username/password and returns the session user,
// including the bearer token for subsequent calls.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.LoggedInUser, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/login", "", nil,
		loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	var env envelope[loginResponse]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}

	return &models.LoggedInUser{
		UserID:           env.Data.UserID,
		Email:            env.Data.Email,
		Nick:             env.Data.Nick,
		MainCategoryID:   env.Data.MainCategory,
		Token:            env.Data.Token,
		ActivationStatus: models.ActivationStatus(env.Data.ActivationStatus),
		IsLoggedIn:       true,
	}, nil
}

// Ping probes server reachability. Used by the network monitor.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/status", "", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Checksum fetches just the current checksum of one category — the cheap
// call the orchestrator uses to decide whether a payload fetch is needed.
func (c *HTTPClient) Checksum(ctx context.Context, token string, category models.Category) (string, error) {
	if err := checkToken(token); err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/"+string(category)+"/checksum", token, nil, nil)
	if err != nil {
		return "", err
	}

	var env envelope[checksumResponse]
	if err := c.do(req, &env); err != nil {
		return "", err
	}
	return env.Data.CheckSum, nil
}

// UserPoints fetches the complete user-points record set plus its checksum.
func (c *HTTPClient) UserPoints(ctx context.Context, token string) (*models.UserPointData, error) {
	if err := checkToken(token); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/user-points", token, nil, nil)
	if err != nil {
		return nil, err
	}

	var env envelope[userPointsResponse]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return env.Data.toModel(), nil
}

// GenericPoints fetches the generic-points record set. The last-known
// location, when available, is attached as query parameters.
func (c *HTTPClient) GenericPoints(ctx context.Context, token string, loc *models.Location) (*models.GenericPointData, error) {
	if err := checkToken(token); err != nil {
		return nil, err
	}
	query := url.Values{}
	if loc != nil {
		query.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
		query.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/points", token, query, nil)
	if err != nil {
		return nil, err
	}

	var env envelope[genericPointsResponse]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return env.Data.toModel(), nil
}

// Rankings fetches the leaderboards of the user's categories.
func (c *HTTPClient) Rankings(ctx context.Context, token string) (*models.UserRankData, error) {
	if err := checkToken(token); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/rank", token, nil, nil)
	if err != nil {
		return nil, err
	}

	var env envelope[rankingsResponse]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return env.Data.toModel(), nil
}

// UserCategories fetches the categories the user participates in.
func (c *HTTPClient) UserCategories(ctx context.Context, token string) (*models.UserCategoryData, error) {
	if err := checkToken(token); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/user-categories", token, nil, nil)
	if err != nil {
		return nil, err
	}

	var env envelope[userCategoriesResponse]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return env.Data.toModel(), nil
}

// SubmitScan submits one scanned point. The caller guarantees a location
// fix is present.
func (c *HTTPClient) SubmitScan(ctx context.Context, token string, p *models.ScannedPoint) error {
	if err := checkToken(token); err != nil {
		return err
	}
	if p.Location == nil {
		return common.ErrMissingLocation
	}
	body := scanRequest{
		Code:       p.Code,
		Source:     string(p.Source),
		Lat:        p.Location.Latitude,
		Lon:        p.Location.Longitude,
		Acc:        p.Location.Accuracy,
		Alt:        p.Location.Altitude,
		CapturedAt: p.CapturedAt.UnixMilli(),
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/points/scan", token, nil, body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// checkToken fails fast on calls that are doomed without a network round
// trip: no token at all, or a locally detectable expired JWT.
func checkToken(token string) error {
	if token == "" {
		return common.ErrMissingToken
	}
	if TokenExpired(token, time.Now()) {
		return common.ErrInvalidToken
	}
	return nil
}
