package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/auth"
	"github.com/fakturly/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockBusinessRepository struct {
	mock.Mock
}

func (m *mockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*identity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) FindActiveByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*identity.Business, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]identity.Business, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBusinessRepository) Save(ctx context.Context, business *identity.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *mockBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockTeamMemberRepository struct {
	mock.Mock
}

func (m *mockTeamMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindEdge(ctx context.Context, corporateOwnerID, userID uuid.UUID, businessID uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, corporateOwnerID, userID, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindByOwnerAndUser(ctx context.Context, corporateOwnerID, userID uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, corporateOwnerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindAnyByUser(ctx context.Context, userID uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindAllByOwner(ctx context.Context, corporateOwnerID uuid.UUID) ([]identity.TeamMember, error) {
	args := m.Called(ctx, corporateOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) CountByOwner(ctx context.Context, corporateOwnerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, corporateOwnerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTeamMemberRepository) ExistsForBusinessAndUser(ctx context.Context, businessID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, businessID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTeamMemberRepository) Save(ctx context.Context, member *identity.TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockTeamMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "middleware-test-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "fakturly-test",
	})
}

func performRequest(engine *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	jwtService := newTestJWTService()
	userID := uuid.New()

	newEngine := func(blacklist auth.TokenBlacklist) *gin.Engine {
		engine := gin.New()
		engine.Use(JWTAuth(JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         zap.NewNop(),
		}))
		engine.GET("/protected", func(c *gin.Context) {
			id, ok := GetJWTUserID(c)
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
		})
		return engine
	}

	t.Run("valid token passes and exposes the user", func(t *testing.T) {
		tokens, err := jwtService.GenerateTokenPair(userID, "user@example.com")
		require.NoError(t, err)

		w := performRequest(newEngine(nil), http.MethodGet, "/protected", map[string]string{
			"Authorization": "Bearer " + tokens.AccessToken,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		w := performRequest(newEngine(nil), http.MethodGet, "/protected", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("refresh token is not accepted as access token", func(t *testing.T) {
		tokens, err := jwtService.GenerateTokenPair(userID, "user@example.com")
		require.NoError(t, err)

		w := performRequest(newEngine(nil), http.MethodGet, "/protected", map[string]string{
			"Authorization": "Bearer " + tokens.RefreshToken,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		tokens, err := jwtService.GenerateTokenPair(userID, "user@example.com")
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(tokens.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Hour))

		w := performRequest(newEngine(blacklist), http.MethodGet, "/protected", map[string]string{
			"Authorization": "Bearer " + tokens.AccessToken,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
	})
}

func TestBusinessContext(t *testing.T) {
	jwtService := newTestJWTService()
	userID := uuid.New()
	businessID := uuid.New()

	business := &identity.Business{OwnerID: userID, Name: "Test", IsActive: true}
	business.ID = businessID

	newEngine := func(businesses *mockBusinessRepository, members *mockTeamMemberRepository) *gin.Engine {
		resolver := identityapp.NewContextResolver(businesses, members, zap.NewNop())
		engine := gin.New()
		engine.Use(JWTAuth(JWTMiddlewareConfig{JWTService: jwtService, Logger: zap.NewNop()}))
		engine.Use(BusinessContext(resolver))
		engine.GET("/scoped", func(c *gin.Context) {
			rc := GetBusinessContext(c)
			require.NotNil(t, rc)
			c.JSON(http.StatusOK, gin.H{"role": string(rc.Role)})
		})
		return engine
	}

	authHeader := func() map[string]string {
		tokens, err := jwtService.GenerateTokenPair(userID, "owner@example.com")
		require.NoError(t, err)
		return map[string]string{"Authorization": "Bearer " + tokens.AccessToken}
	}

	t.Run("resolves the business from the header", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		businesses.On("FindActiveByIDAndOwner", mock.Anything, businessID, userID).Return(business, nil)

		headers := authHeader()
		headers[BusinessHeaderKey] = businessID.String()
		w := performRequest(newEngine(businesses, members), http.MethodGet, "/scoped", headers)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), string(identity.RoleOwner))
	})

	t.Run("falls back to the query parameter", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		businesses.On("FindActiveByIDAndOwner", mock.Anything, businessID, userID).Return(business, nil)

		w := performRequest(newEngine(businesses, members), http.MethodGet, "/scoped?business_id="+businessID.String(), authHeader())

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing business yields NO_ACTIVE_BUSINESS", func(t *testing.T) {
		w := performRequest(newEngine(new(mockBusinessRepository), new(mockTeamMemberRepository)),
			http.MethodGet, "/scoped", authHeader())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "NO_ACTIVE_BUSINESS")
	})

	t.Run("malformed business ID is rejected", func(t *testing.T) {
		headers := authHeader()
		headers[BusinessHeaderKey] = "not-a-uuid"
		w := performRequest(newEngine(new(mockBusinessRepository), new(mockTeamMemberRepository)),
			http.MethodGet, "/scoped", headers)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_BUSINESS")
	})

	t.Run("unresolvable business yields 404", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		unknownID := uuid.New()
		businesses.On("FindActiveByIDAndOwner", mock.Anything, unknownID, userID).Return(nil, shared.ErrNotFound)
		businesses.On("FindActiveByID", mock.Anything, unknownID).Return(nil, shared.ErrNotFound)

		headers := authHeader()
		headers[BusinessHeaderKey] = unknownID.String()
		w := performRequest(newEngine(businesses, members), http.MethodGet, "/scoped", headers)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an ID when none is sent", func(t *testing.T) {
		w := performRequest(engine, http.MethodGet, "/", nil)

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
	})

	t.Run("propagates a client-provided ID", func(t *testing.T) {
		w := performRequest(engine, http.MethodGet, "/", map[string]string{RequestIDHeader: "req-123"})

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-123", w.Body.String())
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	engine := gin.New()
	engine.Use(RateLimit(limiter))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w1 := performRequest(engine, http.MethodGet, "/", nil)
	w2 := performRequest(engine, http.MethodGet, "/", nil)
	w3 := performRequest(engine, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.Contains(t, w3.Body.String(), "RATE_LIMIT_EXCEEDED")
}
