package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
	"github.com/MontelAle/participium-sub002/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupAuthRouter wires ResolvePrincipal plus a probe route that reports the
// resolved principal.
func setupAuthRouter(tokenSvc *mocks.MockTokenService, sessionRepo *mocks.MockSessionRepository) *gin.Engine {
	router := gin.New()
	router.Use(NewAuthMW(tokenSvc, sessionRepo).ResolvePrincipal())
	router.GET("/probe", func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.JSON(http.StatusOK, gin.H{"principal": "guest"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": p.RoleName()})
	})
	return router
}

func validClaims(role string) *domain.TokenClaims {
	return &domain.TokenClaims{
		UserID:    11,
		Role:      role,
		SessionID: "sess-1",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(15 * time.Minute).Unix(),
	}
}

func TestAuthMW_ResolvePrincipal(t *testing.T) {
	t.Run("missing header continues as guest", func(t *testing.T) {
		router := setupAuthRouter(mocks.NewMockTokenService(), mocks.NewMockSessionRepository())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "guest")
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		router := setupAuthRouter(mocks.NewMockTokenService(), mocks.NewMockSessionRepository())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Basic abc123")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		tokenSvc := mocks.NewMockTokenService()
		tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
			return nil, domain.ErrTokenInvalid
		}
		router := setupAuthRouter(tokenSvc, mocks.NewMockSessionRepository())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token with live session resolves the principal", func(t *testing.T) {
		tokenSvc := mocks.NewMockTokenService()
		tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
			return validClaims(domain.RolePROfficer), nil
		}
		sessionRepo := mocks.NewMockSessionRepository()
		sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
			return &domain.Session{ID: sessionID, UserID: 11}, nil
		}
		router := setupAuthRouter(tokenSvc, sessionRepo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), domain.RolePROfficer)
	})

	t.Run("logged-out session invalidates an unexpired token", func(t *testing.T) {
		tokenSvc := mocks.NewMockTokenService()
		tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
			return validClaims(domain.RoleUser), nil
		}
		sessionRepo := mocks.NewMockSessionRepository()
		sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
			return nil, domain.ErrSessionNotFound
		}
		router := setupAuthRouter(tokenSvc, sessionRepo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session bound to a different user is rejected", func(t *testing.T) {
		tokenSvc := mocks.NewMockTokenService()
		tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
			return validClaims(domain.RoleUser), nil
		}
		sessionRepo := mocks.NewMockSessionRepository()
		sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
			return &domain.Session{ID: sessionID, UserID: 99}, nil
		}
		router := setupAuthRouter(tokenSvc, sessionRepo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	setup := func(required []string, principal *domain.Principal) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if principal != nil {
				c.Set(PrincipalKey, principal)
			}
		})
		router.GET("/gated", RequireRoles(zap.NewNop(), required...), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return router
	}

	get := func(router *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))
		return w
	}

	citizen := &domain.Principal{ID: 11, Role: domain.RoleByName(domain.RoleUser)}

	t.Run("listed role passes", func(t *testing.T) {
		w := get(setup([]string{domain.RoleAdmin, domain.RoleUser}, citizen))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unlisted role gets the uniform denial", func(t *testing.T) {
		w := get(setup([]string{domain.RoleAdmin}, citizen))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Access denied"}`, w.Body.String())
	})

	t.Run("guest gets the same denial body", func(t *testing.T) {
		w := get(setup([]string{domain.RoleAdmin}, nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Access denied"}`, w.Body.String())
	})

	t.Run("empty requirement admits guests", func(t *testing.T) {
		w := get(setup(nil, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
