package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/api"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) SetMany(_ context.Context, pairs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range pairs {
		m.data[k] = v
	}
	return nil
}

func (m *memStore) DeleteMany(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func (m *memStore) get(t *testing.T, key string) []byte {
	t.Helper()
	v, err := m.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

// fakeClient реализует api.Client для юнит-тестов стора сессии.
type fakeClient struct {
	TelegramFn func(ctx context.Context, req api.TelegramLoginRequest) (*api.AuthResult, error)
	LoginFn    func(ctx context.Context, creds api.Credentials) (*api.AuthResult, error)
	RegisterFn func(ctx context.Context, reg api.Registration) (*api.AuthResult, error)
	MeFn       func(ctx context.Context) (*models.User, error)

	MeCalls int
}

func (f *fakeClient) TelegramLogin(ctx context.Context, req api.TelegramLoginRequest) (*api.AuthResult, error) {
	return f.TelegramFn(ctx, req)
}

func (f *fakeClient) Login(ctx context.Context, creds api.Credentials) (*api.AuthResult, error) {
	return f.LoginFn(ctx, creds)
}

func (f *fakeClient) Register(ctx context.Context, reg api.Registration) (*api.AuthResult, error) {
	return f.RegisterFn(ctx, reg)
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	f.MeCalls++
	return f.MeFn(ctx)
}

func (f *fakeClient) Products(context.Context, models.ProductFilter) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeClient) ProductByID(context.Context, int64) (*models.Product, error) { return nil, nil }
func (f *fakeClient) CreateOrder(context.Context, api.CreateOrderRequest) (*models.Order, error) {
	return nil, nil
}
func (f *fakeClient) MyOrders(context.Context) ([]models.Order, error) { return nil, nil }
func (f *fakeClient) ReferralStats(context.Context) (*models.ReferralStats, error) { return nil, nil }
func (f *fakeClient) BonusHistory(context.Context) ([]models.BonusTransaction, error) {
	return nil, nil
}
func (f *fakeClient) AdminStats(context.Context) (*api.StatsResult, error) { return nil, nil }
func (f *fakeClient) AdminOrders(context.Context, api.ListParams) (*api.OrdersPage, error) {
	return nil, nil
}
func (f *fakeClient) AdminUpdateOrderStatus(context.Context, int64, models.OrderStatus) error {
	return nil
}
func (f *fakeClient) AdminUsers(context.Context, api.ListParams) (*api.UsersPage, error) {
	return nil, nil
}
func (f *fakeClient) AdminProducts(context.Context) ([]models.Product, error) { return nil, nil }
func (f *fakeClient) AdminCreateProduct(context.Context, models.Product) (*models.Product, error) {
	return nil, nil
}
func (f *fakeClient) AdminUpdateProduct(context.Context, int64, models.Product) (*models.Product, error) {
	return nil, nil
}

func testUser() *models.User {
	return &models.User{ID: 42, Username: "a", FirstName: "A", Role: models.RoleCustomer}
}

// ---- tests ----

func TestLoginWithTelegram_Success(t *testing.T) {
	ms := newMemStore()
	fc := &fakeClient{
		TelegramFn: func(_ context.Context, req api.TelegramLoginRequest) (*api.AuthResult, error) {
			require.Equal(t, "42", req.ID)
			require.Equal(t, "A", req.FirstName)
			return &api.AuthResult{User: testUser(), Token: "tok-123"}, nil
		},
	}
	s := NewStore(fc, ms, testLogger())
	ctx := context.Background()

	user, err := s.LoginWithTelegram(ctx, api.TelegramPayload{ID: "42", FirstName: "A"}, "")
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)

	require.Equal(t, StateAuthenticated, s.State())
	require.NotEmpty(t, s.Token())
	require.Equal(t, user, s.ConfirmedUser())

	// both keys persisted together
	require.Equal(t, []byte("tok-123"), ms.get(t, common.KeyAuthToken))
	var saved models.User
	require.NoError(t, json.Unmarshal(ms.get(t, common.KeyUserData), &saved))
	require.Equal(t, int64(42), saved.ID)
}

func TestLoginWithTelegram_ForwardsReferralCode(t *testing.T) {
	ms := newMemStore()
	var gotCode string
	fc := &fakeClient{
		TelegramFn: func(_ context.Context, req api.TelegramLoginRequest) (*api.AuthResult, error) {
			gotCode = req.ReferralCode
			return &api.AuthResult{User: testUser(), Token: "tok"}, nil
		},
	}
	s := NewStore(fc, ms, testLogger())

	_, err := s.LoginWithTelegram(context.Background(), api.TelegramPayload{ID: "42", FirstName: "A"}, "FRIEND-7")
	require.NoError(t, err)
	require.Equal(t, "FRIEND-7", gotCode)
}

func TestLogin_FailureKeepsPreviousStateAndRecordsError(t *testing.T) {
	ms := newMemStore()
	fc := &fakeClient{
		LoginFn: func(context.Context, api.Credentials) (*api.AuthResult, error) {
			return nil, &api.Error{Status: 400, Message: "bad password"}
		},
	}
	s := NewStore(fc, ms, testLogger())

	_, err := s.LoginWithCredentials(context.Background(), api.Credentials{Username: "a", Password: "b"})
	require.Error(t, err)

	require.Equal(t, StateAnonymous, s.State())
	require.Empty(t, s.Token())
	require.Contains(t, s.LastError(), "bad password")
	require.Nil(t, ms.get(t, common.KeyAuthToken))
}

func TestLogin_MalformedResultIsAFailure(t *testing.T) {
	ms := newMemStore()
	fc := &fakeClient{
		LoginFn: func(context.Context, api.Credentials) (*api.AuthResult, error) {
			// user without token must never start a session
			return &api.AuthResult{User: testUser()}, nil
		},
	}
	s := NewStore(fc, ms, testLogger())

	_, err := s.LoginWithCredentials(context.Background(), api.Credentials{})
	require.Error(t, err)
	require.Equal(t, StateAnonymous, s.State())
}

func TestCheckAuth_NoTokenIsNoop(t *testing.T) {
	ms := newMemStore()
	fc := &fakeClient{
		MeFn: func(context.Context) (*models.User, error) {
			t.Fatal("Me must not be called without a token")
			return nil, nil
		},
	}
	s := NewStore(fc, ms, testLogger())

	require.NoError(t, s.CheckAuth(context.Background()))
	require.Equal(t, StateAnonymous, s.State())
	require.Equal(t, 0, fc.MeCalls)
}

func TestCheckAuth_RestoresCachedUserThenConfirms(t *testing.T) {
	ms := newMemStore()
	ctx := context.Background()

	cached, _ := json.Marshal(testUser())
	require.NoError(t, ms.Set(ctx, common.KeyAuthToken, []byte("tok")))
	require.NoError(t, ms.Set(ctx, common.KeyUserData, cached))

	confirmed := &models.User{ID: 42, Username: "a", FirstName: "A", BonusBalance: 150}
	var cachedAtCall *models.User
	var fc *fakeClient
	var s *Store
	fc = &fakeClient{
		MeFn: func(context.Context) (*models.User, error) {
			// by the time the server is asked, the cached identity is
			// already available for rendering
			cachedAtCall = s.CachedUser()
			return confirmed, nil
		},
	}
	s = NewStore(fc, ms, testLogger())

	require.NoError(t, s.CheckAuth(ctx))

	require.NotNil(t, cachedAtCall)
	require.Equal(t, int64(42), cachedAtCall.ID)

	require.Equal(t, StateAuthenticated, s.State())
	require.Equal(t, confirmed, s.ConfirmedUser())
	require.Equal(t, int64(150), s.CurrentUser().BonusBalance)

	// refreshed user is persisted back
	var saved models.User
	require.NoError(t, json.Unmarshal(ms.get(t, common.KeyUserData), &saved))
	require.Equal(t, int64(150), saved.BonusBalance)
}

func TestCheckAuth_FailurePerformsFullLogout(t *testing.T) {
	ms := newMemStore()
	ctx := context.Background()

	require.NoError(t, ms.Set(ctx, common.KeyAuthToken, []byte("tok")))
	require.NoError(t, ms.Set(ctx, common.KeyUserData, []byte(`{"id":42}`)))

	fc := &fakeClient{
		MeFn: func(context.Context) (*models.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	s := NewStore(fc, ms, testLogger())

	require.Error(t, s.CheckAuth(ctx))

	require.Equal(t, StateAnonymous, s.State())
	require.Empty(t, s.Token())
	require.Nil(t, s.CachedUser())
	require.Nil(t, ms.get(t, common.KeyAuthToken))
	require.Nil(t, ms.get(t, common.KeyUserData))
}

func TestCheckAuth_IsIdempotent(t *testing.T) {
	ms := newMemStore()
	ctx := context.Background()
	require.NoError(t, ms.Set(ctx, common.KeyAuthToken, []byte("tok")))

	fc := &fakeClient{
		MeFn: func(context.Context) (*models.User, error) {
			return testUser(), nil
		},
	}
	s := NewStore(fc, ms, testLogger())

	require.NoError(t, s.CheckAuth(ctx))
	require.NoError(t, s.CheckAuth(ctx))
	require.Equal(t, StateAuthenticated, s.State())
	require.Equal(t, 2, fc.MeCalls)
}

func TestLogout_AlwaysResultsInAnonymous(t *testing.T) {
	ms := newMemStore()
	fc := &fakeClient{
		TelegramFn: func(context.Context, api.TelegramLoginRequest) (*api.AuthResult, error) {
			return &api.AuthResult{User: testUser(), Token: "tok"}, nil
		},
	}
	s := NewStore(fc, ms, testLogger())
	ctx := context.Background()

	_, err := s.LoginWithTelegram(ctx, api.TelegramPayload{ID: "42", FirstName: "A"}, "")
	require.NoError(t, err)

	s.Logout(ctx)
	require.Equal(t, StateAnonymous, s.State())
	require.Empty(t, s.Token())
	require.Nil(t, s.CurrentUser())
	require.Empty(t, s.LastError())
	require.Nil(t, ms.get(t, common.KeyAuthToken))

	// idempotent
	s.Logout(ctx)
	require.Equal(t, StateAnonymous, s.State())
}

func TestLogout_WinsOverLateCheckAuthSuccess(t *testing.T) {
	ms := newMemStore()
	ctx := context.Background()
	require.NoError(t, ms.Set(ctx, common.KeyAuthToken, []byte("tok")))

	release := make(chan struct{})
	started := make(chan struct{})
	fc := &fakeClient{
		MeFn: func(context.Context) (*models.User, error) {
			close(started)
			<-release
			return testUser(), nil // success, but too late
		},
	}
	s := NewStore(fc, ms, testLogger())

	done := make(chan error, 1)
	go func() { done <- s.CheckAuth(ctx) }()

	<-started
	s.Logout(ctx)
	close(release)
	require.NoError(t, <-done)

	// the late success must not resurrect the session
	require.Equal(t, StateAnonymous, s.State())
	require.Empty(t, s.Token())
	require.Nil(t, s.CurrentUser())
	require.Nil(t, ms.get(t, common.KeyAuthToken))
	require.Nil(t, ms.get(t, common.KeyUserData))
}

func TestLogout_WinsOverLateLoginSuccess(t *testing.T) {
	ms := newMemStore()
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	fc := &fakeClient{
		LoginFn: func(context.Context, api.Credentials) (*api.AuthResult, error) {
			close(started)
			<-release
			return &api.AuthResult{User: testUser(), Token: "tok"}, nil
		},
	}
	s := NewStore(fc, ms, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := s.LoginWithCredentials(ctx, api.Credentials{Username: "a"})
		done <- err
	}()

	<-started
	s.Logout(ctx)
	close(release)

	err := <-done
	require.ErrorIs(t, err, ErrSuperseded)
	require.Equal(t, StateAnonymous, s.State())
	require.Nil(t, ms.get(t, common.KeyAuthToken))
}

func TestTokenExpiresAt(t *testing.T) {
	ms := newMemStore()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	fc := &fakeClient{
		TelegramFn: func(context.Context, api.TelegramLoginRequest) (*api.AuthResult, error) {
			return &api.AuthResult{User: testUser(), Token: signed}, nil
		},
	}
	s := NewStore(fc, ms, testLogger())

	require.True(t, s.TokenExpiresAt().IsZero(), "no token yet")

	_, err = s.LoginWithTelegram(context.Background(), api.TelegramPayload{ID: "42", FirstName: "A"}, "")
	require.NoError(t, err)
	require.Equal(t, exp.Unix(), s.TokenExpiresAt().Unix())
}

func TestTokenExpiresAt_OpaqueToken(t *testing.T) {
	ms := newMemStore()
	fc := &fakeClient{
		TelegramFn: func(context.Context, api.TelegramLoginRequest) (*api.AuthResult, error) {
			return &api.AuthResult{User: testUser(), Token: "not-a-jwt"}, nil
		},
	}
	s := NewStore(fc, ms, testLogger())

	_, err := s.LoginWithTelegram(context.Background(), api.TelegramPayload{ID: "42", FirstName: "A"}, "")
	require.NoError(t, err)
	require.True(t, s.TokenExpiresAt().IsZero())
}
