// dephealth_test.go — unit-тесты выбора health path для проверки IdP.
package service

import (
	"testing"
)

// TestIDPHealthPathFromURL проверяет выбор path для HTTP-проверки IdP.
func TestIDPHealthPathFromURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "полный JWKS URL",
			input:    "https://idp.primaria.lan/realms/primaria/protocol/openid-connect/certs",
			expected: "/realms/primaria/protocol/openid-connect/certs",
		},
		{
			name:     "URL с портом",
			input:    "https://idp.primaria.lan:8443/realms/primaria/protocol/openid-connect/certs",
			expected: "/realms/primaria/protocol/openid-connect/certs",
		},
		{
			name:     "URL без path — дефолт /health",
			input:    "https://idp.primaria.lan",
			expected: "/health",
		},
		{
			name:     "пустая строка — дефолт /health",
			input:    "",
			expected: "/health",
		},
		{
			name:     "невалидный URL — дефолт /health",
			input:    "://не-url",
			expected: "/health",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := idpHealthPathFromURL(tt.input)
			if result != tt.expected {
				t.Errorf("idpHealthPathFromURL(%q) = %q, ожидалось %q", tt.input, result, tt.expected)
			}
		})
	}
}
