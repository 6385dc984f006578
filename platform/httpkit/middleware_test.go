package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type secretConfig string

func (s secretConfig) GetJWTAccessSecret() string { return string(s) }

func newTestEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	protected := engine.Group("/", AuthRequired(secretConfig(secret)))
	protected.GET("/me", func(c *gin.Context) {
		id := GetIdentity(c)
		OK(c, gin.H{"id": id.UserID().String(), "role": id.Role()})
	})
	protected.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		OK(c, gin.H{"ok": true})
	})
	return engine
}

func TestAuthRequiredAcceptsSignedToken(t *testing.T) {
	engine := newTestEngine("s3cret")
	userID := uuid.New()
	token, err := SignAccessToken("s3cret", userID, "sales", time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequiredAcceptsQueryToken(t *testing.T) {
	engine := newTestEngine("s3cret")
	token, _ := SignAccessToken("s3cret", uuid.New(), "admin", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsWrongSecretAndMissingToken(t *testing.T) {
	engine := newTestEngine("s3cret")
	token, _ := SignAccessToken("other", uuid.New(), "admin", time.Minute)

	for name, header := range map[string]string{"missing": "", "wrong secret": "Bearer " + token} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	engine := newTestEngine("s3cret")
	token, _ := SignAccessToken("s3cret", uuid.New(), "sales", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleErrorUsesWrappedKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	wrapped := errors.Join(errors.New("context"), apperr.NotFound("lead not found"))
	if !HandleError(c, wrapped) {
		t.Fatalf("expected error to be handled")
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
