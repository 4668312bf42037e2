package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Takamichi23/Nike-microservice/pkg/metrics"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/checkout"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/repository"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/service"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/session"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/storeclient"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeCatalog map[int64]domain.Product

func (f fakeCatalog) ProductsByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	mu    sync.RWMutex
	saved map[int64]string
}

func (f *fakeProfiles) SaveCart(_ context.Context, userID int64, serialized string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[userID] = serialized
	return nil
}

func (f *fakeProfiles) SavedCart(_ context.Context, userID int64) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.saved[userID]
	if !ok {
		return "", repository.ErrProfileNotFound
	}
	return s, nil
}

func (f *fakeProfiles) get(userID int64) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.saved[userID]
}

type fakeAccounts struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	passwords map[string]string
	profiles  *fakeProfiles
}

func (f *fakeAccounts) Register(_ context.Context, reg service.Registration) (*domain.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[reg.Username]; ok {
		return nil, repository.ErrDuplicateUsername
	}
	u := &domain.User{ID: int64(len(f.users) + 1), Username: reg.Username, Email: reg.Email}
	f.users[reg.Username] = u
	f.passwords[reg.Username] = reg.Password
	_ = f.profiles.SaveCart(context.Background(), u.ID, "")
	return u, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, username, password string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok || f.passwords[username] != password {
		return nil, service.ErrInvalidCredentials
	}
	return u, nil
}

type fakeOrders struct {
	mu       sync.Mutex
	received []storeclient.OrderRequest
	err      error
}

func (f *fakeOrders) CreateOrder(_ context.Context, req storeclient.OrderRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.received = append(f.received, req)
	return int64(len(f.received)), nil
}

// --- Setup ---

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	profiles *fakeProfiles
	orders   *fakeOrders
	mr       *miniredis.Miniredis
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	log := quietLogger()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	catalog := fakeCatalog{
		1: {ID: 1, Name: "Air Max 90", Price: decimal.RequireFromString("10.00"), IsSale: true, SalePrice: decimal.RequireFromString("5.00")},
		2: {ID: 2, Name: "Pegasus 41", Price: decimal.RequireFromString("4.00")},
	}
	profiles := &fakeProfiles{saved: map[int64]string{}}
	accounts := &fakeAccounts{
		users:     map[string]*domain.User{"jordan": {ID: 1, Username: "jordan"}},
		passwords: map[string]string{"jordan": "s3cret-pass"},
		profiles:  profiles,
	}
	profiles.saved[1] = ""
	orders := &fakeOrders{}

	checkoutSvc := checkout.NewService(orders, catalog, profiles, log)
	h := NewHandler(catalog, profiles, accounts, checkoutSvc, 5*time.Second, log)
	sessions := session.NewManager(session.NewRedisStore(rdb, 0), session.CookieConfig{}, log)

	reg := prometheus.NewRegistry()
	router := NewRouter(h, sessions, metrics.NewServerMetrics(reg, "storefront"), metrics.Handler(reg), log)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{srv: srv, client: client, profiles: profiles, orders: orders, mr: mr}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp, out
}

func (e *testEnv) quantities(t *testing.T) map[string]interface{} {
	t.Helper()
	resp, body := e.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	q, _ := body["quantities"].(map[string]interface{})
	return q
}

func shipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName: "Jordan Lee",
		Email:    "jordan@example.com",
		Address1: "1 Main St",
		City:     "Portland",
		Country:  "US",
	}
}

// --- Tests ---

func TestHealth(t *testing.T) {
	env := setupTestServer(t)
	resp, body := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Empty(t, resp.Cookies(), "health must not create sessions")
}

func TestCart_GuestFlow(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["qty"])

	resp, _ = env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 2, Quantity: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// first write wins
	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 9})

	resp, body = env.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "22", body["total"])
	assert.EqualValues(t, 2, body["size"])
	assert.Equal(t, map[string]interface{}{"1": float64(2), "2": float64(3)}, body["quantities"])

	resp, body = env.do(t, http.MethodPost, "/cart/update", CartLineRequest{ProductID: 1, Quantity: 9})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 9, body["qty"])

	resp, _ = env.do(t, http.MethodPost, "/cart/delete", CartLineRequest{ProductID: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/cart/delete", CartLineRequest{ProductID: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, map[string]interface{}{"1": float64(9)}, env.quantities(t))
}

func TestCartAdd_Validation(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_argument", body["code"])

	resp, _ = env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 404, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body["error"])

	resp, _ = env.do(t, http.MethodPost, "/cart/update", CartLineRequest{ProductID: 1, Quantity: 100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_RestoresSavedCart(t *testing.T) {
	env := setupTestServer(t)
	env.profiles.saved[1] = `{"1":2,"2":4}`

	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 5})
	before := env.mr.Keys()
	require.Len(t, before, 1)

	resp, body := env.do(t, http.MethodPost, "/login", LoginRequest{Username: "jordan", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You have been logged in", body["message"])

	// session id rotated on login
	after := env.mr.Keys()
	require.Len(t, after, 1)
	assert.NotEqual(t, before[0], after[0])

	assert.Equal(t, map[string]interface{}{"1": float64(5), "2": float64(4)}, env.quantities(t))
	assert.Equal(t, `{"1":5,"2":4}`, env.profiles.get(1))

	env.do(t, http.MethodPost, "/cart/update", CartLineRequest{ProductID: 2, Quantity: 1})
	assert.Equal(t, `{"1":5,"2":1}`, env.profiles.get(1))
}

func TestLogin_SwitchingUserDropsPreviousCart(t *testing.T) {
	env := setupTestServer(t)
	env.profiles.saved[1] = `{"1":1}`

	resp, body := env.do(t, http.MethodPost, "/register", service.Registration{
		Username:        "alex",
		Email:           "alex@example.com",
		Password:        "long-enough",
		PasswordConfirm: "long-enough",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	alexID := int64(body["user"].(map[string]interface{})["id"].(float64))

	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 2, Quantity: 3})
	env.do(t, http.MethodPost, "/payment/billing_info", shipping())
	require.Equal(t, `{"2":3}`, env.profiles.get(alexID))

	resp, _ = env.do(t, http.MethodPost, "/login", LoginRequest{Username: "jordan", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, map[string]interface{}{"1": float64(1)}, env.quantities(t))
	assert.Equal(t, `{"1":1}`, env.profiles.get(1))
	assert.Equal(t, `{"2":3}`, env.profiles.get(alexID))

	resp, body = env.do(t, http.MethodPost, "/payment/process_order", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_shipping", body["code"])
}

func TestLogin_BadCredentials(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.do(t, http.MethodPost, "/login", LoginRequest{Username: "jordan", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthenticated", body["code"])
}

func TestRegister(t *testing.T) {
	env := setupTestServer(t)
	reg := service.Registration{
		Username:        "casey",
		Email:           "casey@example.com",
		Password:        "long-enough",
		PasswordConfirm: "long-enough",
	}

	resp, body := env.do(t, http.MethodPost, "/register", reg)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "casey", user["username"])
	assert.NotContains(t, user, "password_hash")

	// signed in right away: cart changes reach the profile
	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 2, Quantity: 1})
	assert.Equal(t, `{"2":1}`, env.profiles.get(int64(user["id"].(float64))))

	resp, _ = env.do(t, http.MethodPost, "/register", reg)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	reg.Username = "other"
	reg.PasswordConfirm = "mismatch!!"
	resp, body = env.do(t, http.MethodPost, "/register", reg)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_argument", body["code"])
}

func TestLogout_DropsSession(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodPost, "/login", LoginRequest{Username: "jordan", Password: "s3cret-pass"})
	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 1})

	resp, body := env.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You have been logged out", body["message"])

	assert.Empty(t, env.quantities(t))
	// mirror is kept for the next login
	assert.Equal(t, `{"1":1}`, env.profiles.get(1))
}

func TestCheckout_NonPostRedirectsHome(t *testing.T) {
	env := setupTestServer(t)

	for _, path := range []string{"/payment/billing_info", "/payment/process_order"} {
		resp, _ := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)
	}
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodPost, "/login", LoginRequest{Username: "jordan", Password: "s3cret-pass"})
	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 2})
	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 2, Quantity: 3})

	resp, body := env.do(t, http.MethodPost, "/payment/billing_info", shipping())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "22", body["cart"].(map[string]interface{})["total"])

	resp, body = env.do(t, http.MethodPost, "/payment/process_order", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["order_id"])
	assert.Equal(t, "22", body["total"])

	require.Len(t, env.orders.received, 1)
	assert.Equal(t, int64(1), *env.orders.received[0].UserID)
	assert.Len(t, env.orders.received[0].Items, 2)

	assert.Empty(t, env.quantities(t))
	assert.Equal(t, "", env.profiles.get(1))
}

func TestCheckout_SubmissionFailureKeepsCart(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 2})
	env.do(t, http.MethodPost, "/payment/billing_info", shipping())

	env.orders.err = errors.New("store api returned 500")
	resp, body := env.do(t, http.MethodPost, "/payment/process_order", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "order_failed", body["code"])

	assert.Equal(t, map[string]interface{}{"1": float64(2)}, env.quantities(t))
}

func TestCheckout_MissingShipping(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodPost, "/cart/add", CartLineRequest{ProductID: 1, Quantity: 2})

	resp, body := env.do(t, http.MethodPost, "/payment/process_order", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_shipping", body["code"])
	assert.Empty(t, env.orders.received)
}

func TestCheckout_InvalidShipping(t *testing.T) {
	env := setupTestServer(t)
	bad := shipping()
	bad.Email = ""

	resp, body := env.do(t, http.MethodPost, "/payment/billing_info", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_argument", body["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)
	env.do(t, http.MethodGet, "/health", nil)

	resp, err := env.client.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shop_storefront_http_requests_total")
}
