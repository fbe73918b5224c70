package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/David-Jacks/faitherpa/internal/models"

	"github.com/gin-gonic/gin"
)

type fakeChecker struct {
	confirmed bool
	err       error
}

func (f fakeChecker) HasConfirmed(ctx context.Context, contributorID uint) (bool, error) {
	return f.confirmed, f.err
}

func runGate(t *testing.T, user *models.User, checker fakeChecker) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set(currentUserKey, user)
			c.Next()
		})
	}
	r.Use(RequireConfirmedContributor(checker))
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestRequireConfirmedContributor(t *testing.T) {
	user := &models.User{ID: 7, Name: "Eve"}

	// 有已确认认捐 → 放行
	w := runGate(t, user, fakeChecker{confirmed: true})
	if w.Code != http.StatusOK {
		t.Errorf("confirmed contributor: status = %d, want 200", w.Code)
	}

	// 没有 → 403
	w = runGate(t, user, fakeChecker{confirmed: false})
	if w.Code != http.StatusForbidden {
		t.Errorf("unconfirmed contributor: status = %d, want 403", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "confirmed_contribution_required" {
		t.Errorf("error = %v, want confirmed_contribution_required", body["error"])
	}

	// 未登录 → 401
	w = runGate(t, nil, fakeChecker{confirmed: true})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing user: status = %d, want 401", w.Code)
	}
}

func TestCurrentUserMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if CurrentUser(c) != nil {
		t.Error("CurrentUser on empty context should be nil")
	}
}
