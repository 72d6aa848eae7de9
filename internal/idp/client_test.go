package idp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupMockIDP создаёт mock HTTP-сервер Identity Provider.
// tokenHandler обрабатывает запросы на получение токена.
// adminHandler обрабатывает запросы к Admin REST API.
func setupMockIDP(t *testing.T, tokenHandler, adminHandler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()

	// Token endpoint
	mux.HandleFunc("/realms/primaria/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenHandler != nil {
			tokenHandler(w, r)
			return
		}
		// Дефолтный ответ: валидный токен на 300 секунд
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "test-access-token",
			TokenType:   "Bearer",
			ExpiresIn:   300,
		})
	})

	// Admin REST API
	mux.HandleFunc("/admin/realms/primaria/", func(w http.ResponseWriter, r *http.Request) {
		if adminHandler != nil {
			adminHandler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := New(
		server.URL,
		"primaria",
		"portal-module",
		"test-secret",
		server.Client(),
		testLogger(),
	)

	return server, client
}

// TestClient_TokenCaching проверяет кэширование токена.
func TestClient_TokenCaching(t *testing.T) {
	tokenRequests := 0

	_, client := setupMockIDP(t,
		func(w http.ResponseWriter, r *http.Request) {
			tokenRequests++
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(TokenResponse{
				AccessToken: "cached-token",
				TokenType:   "Bearer",
				ExpiresIn:   300,
			})
		},
		nil,
	)

	ctx := context.Background()

	// Первый запрос — получение токена
	token1, err := client.getToken(ctx)
	if err != nil {
		t.Fatalf("Ошибка получения токена: %v", err)
	}
	if token1 != "cached-token" {
		t.Errorf("ожидался cached-token, получен %s", token1)
	}

	// Второй запрос — из кэша (не должен вызывать HTTP)
	token2, err := client.getToken(ctx)
	if err != nil {
		t.Fatalf("Ошибка получения токена: %v", err)
	}
	if token2 != "cached-token" {
		t.Errorf("ожидался cached-token, получен %s", token2)
	}

	if tokenRequests != 1 {
		t.Errorf("ожидался 1 запрос токена, было %d", tokenRequests)
	}
}

// TestClient_TokenRefresh проверяет обновление истёкшего токена.
func TestClient_TokenRefresh(t *testing.T) {
	tokenRequests := 0

	_, client := setupMockIDP(t,
		func(w http.ResponseWriter, r *http.Request) {
			tokenRequests++
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(TokenResponse{
				AccessToken: "refreshed-token",
				TokenType:   "Bearer",
				ExpiresIn:   300,
			})
		},
		nil,
	)

	// Устанавливаем «просроченный» токен в кэш
	client.accessToken = "old-token"
	client.tokenExpiry = time.Now().Add(-time.Second)

	ctx := context.Background()
	token, err := client.getToken(ctx)
	if err != nil {
		t.Fatalf("Ошибка обновления токена: %v", err)
	}
	if token != "refreshed-token" {
		t.Errorf("ожидался refreshed-token, получен %s", token)
	}
	if tokenRequests != 1 {
		t.Errorf("ожидался 1 запрос токена, было %d", tokenRequests)
	}
}

// TestClient_CreateUser — создание пользователя с паролем и атрибутом citizen_id.
func TestClient_CreateUser(t *testing.T) {
	_, client := setupMockIDP(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/users") {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			var req userCreateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("Ошибка декодирования запроса: %v", err)
			}
			if req.Username != "ion" {
				t.Errorf("ожидался username=ion, получен %s", req.Username)
			}
			if !req.Enabled {
				t.Error("ожидался enabled=true")
			}
			if len(req.Credentials) != 1 || req.Credentials[0].Type != "password" {
				t.Errorf("ожидался один credential типа password, получено %+v", req.Credentials)
			}
			if req.Credentials[0].Temporary {
				t.Error("пароль не должен быть временным")
			}
			if got := req.Attributes["citizen_id"]; len(got) != 1 || got[0] != "1234567890123" {
				t.Errorf("ожидался атрибут citizen_id=1234567890123, получено %v", req.Attributes)
			}

			w.Header().Set("Location", "/admin/realms/primaria/users/new-user-id")
			w.WriteHeader(http.StatusCreated)
		},
	)

	id, err := client.CreateUser(context.Background(),
		"ion", "ion@test.com", "Ion", "Popescu", "parola!123", "1234567890123")
	if err != nil {
		t.Fatalf("CreateUser вернул ошибку: %v", err)
	}
	if id != "new-user-id" {
		t.Errorf("ожидался id=new-user-id, получен %s", id)
	}
}

// TestClient_CreateUser_Conflict — дубликат пользователя.
func TestClient_CreateUser_Conflict(t *testing.T) {
	_, client := setupMockIDP(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		},
	)

	_, err := client.CreateUser(context.Background(),
		"ion", "ion@test.com", "Ion", "Popescu", "parola!123", "")
	if err == nil {
		t.Fatal("ожидалась ошибка при конфликте")
	}
	if !strings.Contains(err.Error(), "уже существует") {
		t.Errorf("неожиданный текст ошибки: %v", err)
	}
}

// TestClient_FindUserByEmail — поиск пользователя по email.
func TestClient_FindUserByEmail(t *testing.T) {
	_, client := setupMockIDP(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("email") != "ion@test.com" {
				t.Errorf("ожидался email=ion@test.com, получен %s", r.URL.Query().Get("email"))
			}
			if r.URL.Query().Get("exact") != "true" {
				t.Error("ожидался параметр exact=true")
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]IDPUser{
				{ID: "user-1", Username: "ion", Email: "ion@test.com", Enabled: true},
			})
		},
	)

	user, err := client.FindUserByEmail(context.Background(), "ion@test.com")
	if err != nil {
		t.Fatalf("FindUserByEmail вернул ошибку: %v", err)
	}
	if user == nil || user.ID != "user-1" {
		t.Errorf("ожидался пользователь user-1, получено %+v", user)
	}
}

// TestClient_FindUserByEmail_NotFound — пользователь не найден.
func TestClient_FindUserByEmail_NotFound(t *testing.T) {
	_, client := setupMockIDP(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]IDPUser{})
		},
	)

	user, err := client.FindUserByEmail(context.Background(), "absent@test.com")
	if err != nil {
		t.Fatalf("FindUserByEmail вернул ошибку: %v", err)
	}
	if user != nil {
		t.Errorf("ожидался nil, получено %+v", user)
	}
}

// TestClient_DeleteUser — удаление пользователя.
func TestClient_DeleteUser(t *testing.T) {
	_, client := setupMockIDP(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("ожидался DELETE, получен %s", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/users/user-1") {
				t.Errorf("неожиданный путь: %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		},
	)

	if err := client.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteUser вернул ошибку: %v", err)
	}
}

// TestClient_CheckReady — проверка готовности IdP.
func TestClient_CheckReady(t *testing.T) {
	_, client := setupMockIDP(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(RealmRepresentation{Realm: "primaria", Enabled: true})
		},
	)

	status, _ := client.CheckReady()
	if status != "ok" {
		t.Errorf("ожидался статус ok, получен %s", status)
	}
}

// TestClient_CheckReady_Unavailable — IdP недоступен.
func TestClient_CheckReady_Unavailable(t *testing.T) {
	server, client := setupMockIDP(t, nil, nil)
	server.Close()

	status, _ := client.CheckReady()
	if status != "fail" {
		t.Errorf("ожидался статус fail, получен %s", status)
	}
}
