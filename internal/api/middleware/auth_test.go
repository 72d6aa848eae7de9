package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/domain/rbac"
)

// testKeyID — идентификатор ключа для тестов.
const testKeyID = "test-key-bs"

// testIssuer — issuer тестовых токенов.
const testIssuer = "https://idp.test/realms/primaria"

// mockRoleProvider — мок для RoleProvider.
type mockRoleProvider struct {
	users map[string]*model.User
}

func (m *mockRoleProvider) ResolveUser(_ context.Context, subject string) (*model.User, error) {
	if m == nil || m.users == nil {
		return nil, nil
	}
	return m.users[subject], nil
}

// generateTestKey генерирует RSA ключ для тестов.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

// buildJWKSetJSON строит JWKS JSON из RSA публичного ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	nB64 := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	eB64 := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())

	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   nB64,
				"e":   eB64,
			},
		},
	}

	data, _ := json.Marshal(jwks)
	return data
}

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestJWTAuth создаёт JWTAuth для тестов.
func newTestJWTAuth(t *testing.T, key *rsa.PrivateKey, roleProvider RoleProvider) *JWTAuth {
	t.Helper()
	jwksJSON := buildJWKSetJSON(&key.PublicKey, testKeyID)
	kf, err := keyfunc.NewJWKSetJSON(jwksJSON)
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}

	return NewJWTAuthWithKeyfunc(kf, testIssuer, roleProvider, testLogger())
}

// generateToken генерирует JWT для тестов.
func generateToken(t *testing.T, key *rsa.PrivateKey, sub, name, email string, expired bool) string {
	t.Helper()

	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}

	claims := jwt.MapClaims{
		"sub":   sub,
		"name":  name,
		"email": email,
		"iss":   testIssuer,
		"exp":   jwt.NewNumericDate(exp),
		"nbf":   jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		"iat":   jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return tokenStr
}

// --- Тесты JWT Middleware ---

// TestJWTAuth_ValidToken — валидный JWT с локальной записью пользователя.
func TestJWTAuth_ValidToken(t *testing.T) {
	key := generateTestKey(t)
	provider := &mockRoleProvider{
		users: map[string]*model.User{
			"user-123": {
				Subject:   "user-123",
				CitizenID: "1234567890123",
				Role:      rbac.RoleCitizen,
			},
		},
	}
	auth := newTestJWTAuth(t, key, provider)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("claims не найдены в контексте")
		}

		if claims.Subject != "user-123" {
			t.Errorf("ожидался sub=user-123, получен %s", claims.Subject)
		}
		if claims.Email != "ion@test.com" {
			t.Errorf("ожидался email=ion@test.com, получен %s", claims.Email)
		}
		if claims.Name != "Ion Popescu" {
			t.Errorf("ожидался name=Ion Popescu, получен %s", claims.Name)
		}
		if claims.CitizenID != "1234567890123" {
			t.Errorf("ожидался CitizenID=1234567890123, получен %s", claims.CitizenID)
		}
		if claims.Role != rbac.RoleCitizen {
			t.Errorf("ожидалась роль citizen, получена %q", claims.Role)
		}

		w.WriteHeader(http.StatusOK)
	}))

	tokenStr := generateToken(t, key, "user-123", "Ion Popescu", "ion@test.com", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d, тело: %s", rec.Code, rec.Body.String())
	}
}

// TestJWTAuth_UnknownUser — валидный JWT без локальной записи: роль пустая, не 401.
func TestJWTAuth_UnknownUser(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key, &mockRoleProvider{})

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("claims не найдены в контексте")
		}
		if claims.Role != rbac.RoleNone {
			t.Errorf("ожидалась пустая роль, получена %q", claims.Role)
		}
		w.WriteHeader(http.StatusOK)
	}))

	tokenStr := generateToken(t, key, "stranger-1", "Unknown", "u@test.com", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d", rec.Code)
	}
}

// TestJWTAuth_InvalidStoredRole — недопустимая роль в записи трактуется как её отсутствие.
func TestJWTAuth_InvalidStoredRole(t *testing.T) {
	key := generateTestKey(t)
	provider := &mockRoleProvider{
		users: map[string]*model.User{
			"user-x": {Subject: "user-x", Role: "superuser"},
		},
	}
	auth := newTestJWTAuth(t, key, provider)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("claims не найдены")
		}
		if claims.Role != rbac.RoleNone {
			t.Errorf("ожидалась пустая роль, получена %q", claims.Role)
		}
		w.WriteHeader(http.StatusOK)
	}))

	tokenStr := generateToken(t, key, "user-x", "X", "x@test.com", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d", rec.Code)
	}
}

// TestJWTAuth_MissingToken — отсутствие Authorization header.
func TestJWTAuth_MissingToken(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key, nil)
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler не должен быть вызван")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", rec.Code)
	}
}

// TestJWTAuth_ExpiredToken — просроченный токен.
func TestJWTAuth_ExpiredToken(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key, nil)
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler не должен быть вызван")
	}))

	tokenStr := generateToken(t, key, "user-123", "Ion", "ion@test.com", true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", rec.Code)
	}
}

// TestJWTAuth_InvalidFormat — некорректный формат Authorization.
func TestJWTAuth_InvalidFormat(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key, nil)
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler не должен быть вызван")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"no bearer prefix", "token123"},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("ожидался статус 401, получен %d", rec.Code)
			}
		})
	}
}

// TestJWTAuth_WrongIssuer — токен с неверным issuer.
func TestJWTAuth_WrongIssuer(t *testing.T) {
	key := generateTestKey(t)
	auth := newTestJWTAuth(t, key, nil)
	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler не должен быть вызван")
	}))

	exp := time.Now().Add(time.Hour)
	claims := jwt.MapClaims{
		"sub": "user-123",
		"iss": "https://other-idp.test/realms/other",
		"exp": jwt.NewNumericDate(exp),
		"nbf": jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", rec.Code)
	}
}

// --- Тесты RBAC middleware ---

// TestRequireRole_HasRole — пользователь с нужной ролью.
func TestRequireRole_HasRole(t *testing.T) {
	handler := RequireRole(rbac.RoleAdmin, rbac.RoleCitizen)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	claims := &AuthClaims{Role: rbac.RoleAdmin}
	ctx := context.WithValue(context.Background(), ContextKeyClaims, claims)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d", rec.Code)
	}
}

// TestRequireRole_MissingRole — пользователь без нужной роли.
func TestRequireRole_MissingRole(t *testing.T) {
	handler := RequireRole(rbac.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler не должен быть вызван")
	}))

	claims := &AuthClaims{Role: rbac.RoleCitizen}
	ctx := context.WithValue(context.Background(), ContextKeyClaims, claims)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("ожидался статус 403, получен %d", rec.Code)
	}
}

// TestRequireRole_NoRole — аутентифицирован, но без роли: 403 даже при пустом списке.
func TestRequireRole_NoRole(t *testing.T) {
	handler := RequireRole()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler не должен быть вызван")
	}))

	claims := &AuthClaims{Role: rbac.RoleNone}
	ctx := context.WithValue(context.Background(), ContextKeyClaims, claims)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("ожидался статус 403, получен %d", rec.Code)
	}
}

// TestRequireRole_AnyRole — пустой список пропускает любую валидную роль.
func TestRequireRole_AnyRole(t *testing.T) {
	handler := RequireRole()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	claims := &AuthClaims{Role: rbac.RoleCitizen}
	ctx := context.WithValue(context.Background(), ContextKeyClaims, claims)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d", rec.Code)
	}
}

// TestRequireRole_NoClaims — отсутствие claims в контексте.
func TestRequireRole_NoClaims(t *testing.T) {
	handler := RequireRole(rbac.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler не должен быть вызван")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", rec.Code)
	}
}

// --- Тесты context helpers ---

// TestClaimsFromContext_Empty — пустой контекст.
func TestClaimsFromContext_Empty(t *testing.T) {
	if claims := ClaimsFromContext(context.Background()); claims != nil {
		t.Errorf("ожидался nil, получено %+v", claims)
	}
}

// TestSubjectFromContext — извлечение subject.
func TestSubjectFromContext(t *testing.T) {
	claims := &AuthClaims{Subject: "user-123"}
	ctx := context.WithValue(context.Background(), ContextKeyClaims, claims)

	if sub := SubjectFromContext(ctx); sub != "user-123" {
		t.Errorf("ожидался user-123, получен %q", sub)
	}
}

// TestRoleFromContext_Empty — пустой контекст.
func TestRoleFromContext_Empty(t *testing.T) {
	if role := RoleFromContext(context.Background()); role != "" {
		t.Errorf("ожидалась пустая строка, получено %q", role)
	}
}
