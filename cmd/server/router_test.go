package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party/internal/party/models"
	"party/internal/party/service"
	"party/internal/party/store"
	"party/internal/platform/authtoken"
	"party/internal/platform/config"
	"party/internal/platform/middleware"
	"party/internal/platform/ratelimit"
	"party/pkg/testutil"
)

func testConfig() config.Server {
	return config.Server{
		ErrorMaxLength: 500,
		RateLimit:      config.RateLimitConfig{PerMinute: 2},
	}
}

func testDeps(verifier *authtoken.Service) *deps {
	memStore := store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &deps{
		service:  service.New(memStore, service.WithLogger(logger)),
		store:    memStore,
		limiter:  ratelimit.NewLocalLimiter(2),
		verifier: verifier,
	}
}

func testRouter(t *testing.T, d *deps) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newRouter(testConfig(), logger, prometheus.NewRegistry(), d)
}

func partyBody(custID int64, email string) map[string]any {
	return map[string]any{"partyData": map[string]any{
		"custId":    custID,
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"emailId":   email,
		"phoneNo":   "555-0100",
	}}
}

func TestRouterEndToEnd(t *testing.T) {
	router := testRouter(t, testDeps(nil))

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/party", partyBody(1, "ada@example.com")))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.HeaderRequestID))
	created := testutil.UnmarshalEnvelope[models.PartyResponse](t, rr)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/party/"+created.PartyData.ID))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "party_http_requests_total")
}

func TestRouterRateLimitsWrites(t *testing.T) {
	router := testRouter(t, testDeps(nil))

	for i := int64(1); i <= 2; i++ {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/party", partyBody(i, "p"+strings.Repeat("x", int(i))+"@example.com")))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/party", partyBody(3, "third@example.com")))
	testutil.AssertFail(t, rr, http.StatusTooManyRequests, "Too many requests. Please try again later.")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/party?custId=1"))
	assert.Equal(t, http.StatusOK, rr.Code, "reads are not limited")
}

func TestRouterRequiresAuthWhenConfigured(t *testing.T) {
	verifier := authtoken.NewService("test-signing-key", "party")
	router := testRouter(t, testDeps(verifier))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/party?custId=1"))
	testutil.AssertFail(t, rr, http.StatusUnauthorized, "Missing or invalid Authorization header")

	token, err := verifier.Issue("crm-sync", "party:write", time.Minute)
	require.NoError(t, err)
	req := testutil.NewRequest(t, http.MethodGet, "/v1/party?custId=1")
	req.Header.Set("Authorization", "Bearer "+token)
	rr = testutil.DoRequest(router, req)
	testutil.AssertFail(t, rr, http.StatusNotFound, "Party not found with custId: 1")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	assert.Equal(t, http.StatusOK, rr.Code, "health is not behind auth")
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsUnavailableStore(t *testing.T) {
	d := testDeps(nil)
	d.store = downStore{}
	rr := testutil.DoRequest(testRouter(t, d), testutil.NewRequest(t, http.MethodGet, "/healthz"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
