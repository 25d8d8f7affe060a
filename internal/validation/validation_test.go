package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIsValidID(t *testing.T) {
	valid := []string{
		"usr_0123456789abcdef01234567",
		"trn_aaaaaaaaaaaaaaaaaaaaaaaa",
		"rsk_ffffffffffffffffffffffff",
		"0b1e8a5e-1111-2222-3333-444455556666",
	}
	for _, id := range valid {
		if !IsValidID(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}

	invalid := []string{
		"",
		"usr_short",
		"usr_0123456789ABCDEF01234567", // uppercase hex
		"user-0123456789abcdef01234567",
		"usr_0123456789abcdef01234567x",
		"'; DROP TABLE users;--",
	}
	for _, id := range invalid {
		if IsValidID(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 100); got != "hello" {
		t.Errorf("trim failed: %q", got)
	}
	if got := SanitizeString("abc\x00def", 100); got != "abcdef" {
		t.Errorf("null byte removal failed: %q", got)
	}
	if got := SanitizeString(strings.Repeat("a", 50), 10); len(got) != 10 {
		t.Errorf("length cap failed: %d", len(got))
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	errs := Validate(
		Required("name", ""),
		Required("email", "someone@example.com"),
		MaxLength("bio", strings.Repeat("x", 20), 10),
		Percentage("passingScore", 120),
	)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
	if errs.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestIDParamMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IDParamMiddleware("userId"))
	r.GET("/users/:userId", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/usr_0123456789abcdef01234567", nil))
	if w.Code != http.StatusOK {
		t.Errorf("valid id rejected: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/not-an-id", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid id accepted: %d", w.Code)
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestSizeMiddleware(16))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too_large"})
			return
		}
		c.JSON(http.StatusOK, body)
	})

	w := httptest.NewRecorder()
	big := strings.NewReader(`{"data":"` + strings.Repeat("x", 100) + `"}`)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", big))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body accepted: %d", w.Code)
	}
}
