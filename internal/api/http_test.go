package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "test-key", "1.0.0", 2*time.Second)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func liveToken(t *testing.T) string {
	return signedToken(t, time.Now().Add(time.Hour))
}

func TestLogin_DecodesEnvelopeAndSendsHeaders(t *testing.T) {
	var gotAPIKey, gotVersion string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get(common.APIKeyHeaderName)
		gotVersion = r.Header.Get(common.AppVersionHeaderName)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/login", r.URL.Path)
		w.Write([]byte(`{"data":{"userId":"u1","email":"a@b.c","nick":"alice",
			"mainCategory":"sport","token":"tkn","activationStatus":"activated"}}`))
	})

	user, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, "tkn", user.Token)
	assert.Equal(t, models.ActivationActivated, user.ActivationStatus)
	assert.True(t, user.IsLoggedIn)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "1.0.0", gotVersion)
}

func TestChecksum_SendsBearerToken(t *testing.T) {
	token := liveToken(t)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/user-points/checksum", r.URL.Path)
		require.Equal(t, "Bearer "+token, r.Header.Get(common.AuthorizationHeaderName))
		w.Write([]byte(`{"data":{"checkSum":"abc"}}`))
	})

	sum, err := c.Checksum(context.Background(), token, models.CategoryUserPoints)
	require.NoError(t, err)
	assert.Equal(t, "abc", sum)
}

func TestChecksum_MissingToken_FailsFast(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Checksum(context.Background(), "", models.CategoryRank)
	assert.ErrorIs(t, err, common.ErrMissingToken)
	assert.False(t, called, "no network call may be attempted without a token")
}

func TestChecksum_LocallyExpiredToken_FailsFast(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	expired := signedToken(t, time.Now().Add(-time.Hour))
	_, err := c.Checksum(context.Background(), expired, models.CategoryRank)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.False(t, called)
}

func TestUserPoints_DecodesTypeFlagBit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"checkSum":"cs1","points":[
			{"id":"p1","recordKey":"k1","ts":1746093600,"name":"A","value":50,"type":3,
			 "source":"qr","categories":["sport"],"duration":60},
			{"id":"p2","recordKey":"k2","ts":1746093700,"name":"B","value":100,"type":2051,
			 "source":"nfc"}
		]}}`))
	})

	data, err := c.UserPoints(context.Background(), liveToken(t))
	require.NoError(t, err)
	assert.Equal(t, "cs1", data.CheckSum)
	require.Len(t, data.Data, 2)

	assert.True(t, data.Data[0].DoesPointCount)
	assert.Equal(t, 3, data.Data[0].PointType)
	assert.Equal(t, time.Minute, data.Data[0].Duration)

	// 2051 == 3 | 0x800: bit 11 strips into "does not count".
	assert.False(t, data.Data[1].DoesPointCount)
	assert.Equal(t, 3, data.Data[1].PointType)
}

func TestGenericPoints_AttachesLocationQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/points", r.URL.Path)
		require.Equal(t, "49.19", r.URL.Query().Get("lat"))
		require.Equal(t, "16.6", r.URL.Query().Get("lon"))
		w.Write([]byte(`{"data":{"checkSum":"g1","points":[]}}`))
	})

	loc := &models.Location{Latitude: 49.19, Longitude: 16.6}
	data, err := c.GenericPoints(context.Background(), liveToken(t), loc)
	require.NoError(t, err)
	assert.Equal(t, "g1", data.CheckSum)
}

func TestInvalidTokenCode_MapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"token revoked","code":"ERR_INVALID_TOKEN"}`))
	})

	_, err := c.UserPoints(context.Background(), liveToken(t))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestUnauthorizedStatus_MapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Rankings(context.Background(), liveToken(t))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestServerError_CarriesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"db down"}`))
	})

	_, err := c.UserCategories(context.Background(), liveToken(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, common.ErrInvalidToken)
}

func TestConnectionFailure_MapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections
	c := NewHTTPClient(srv.URL, "k", "1.0.0", time.Second)

	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestSubmitScan_NilLocation_RejectedLocally(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	err := c.SubmitScan(context.Background(), liveToken(t), &models.ScannedPoint{Code: "LS1"})
	assert.ErrorIs(t, err, common.ErrMissingLocation)
	assert.False(t, called)
}

func TestSubmitScan_PostsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/points/scan", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"data":{"accepted":true}}`))
	})

	p := &models.ScannedPoint{
		ID:         "s1",
		Code:       "LS1234",
		Source:     models.SourceQR,
		Location:   &models.Location{Latitude: 49.19, Longitude: 16.6},
		CapturedAt: time.Now(),
	}
	require.NoError(t, c.SubmitScan(context.Background(), liveToken(t), p))
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, TokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.True(t, TokenExpired(signedToken(t, now.Add(-time.Minute)), now))
	assert.False(t, TokenExpired("opaque-server-token", now), "non-JWT tokens are never expired locally")
}
