package rbac

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{name: "admin — допустима", role: RoleAdmin, want: true},
		{name: "citizen — допустима", role: RoleCitizen, want: true},
		{name: "пустая роль — недопустима", role: RoleNone, want: false},
		{name: "неизвестная роль — недопустима", role: "librarian", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidRole(tt.role); got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, хотели %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{
			name:    "admin на admin-only view",
			role:    RoleAdmin,
			allowed: []string{RoleAdmin},
			want:    true,
		},
		{
			name:    "citizen на admin-only view — отказ",
			role:    RoleCitizen,
			allowed: []string{RoleAdmin},
			want:    false,
		},
		{
			name:    "admin на citizen-only view — отказ",
			role:    RoleAdmin,
			allowed: []string{RoleCitizen},
			want:    false,
		},
		{
			name:    "citizen на view для обеих ролей",
			role:    RoleCitizen,
			allowed: []string{RoleAdmin, RoleCitizen},
			want:    true,
		},
		{
			name: "citizen без ограничения ролей — любой аутентифицированный",
			role: RoleCitizen,
			want: true,
		},
		{
			name: "неразрешённая роль без ограничения — отказ",
			role: RoleNone,
			want: false,
		},
		{
			name:    "неразрешённая роль на защищённом view — отказ",
			role:    RoleNone,
			allowed: []string{RoleAdmin, RoleCitizen},
			want:    false,
		},
		{
			name:    "неизвестная роль на защищённом view — отказ",
			role:    "librarian",
			allowed: []string{RoleAdmin},
			want:    false,
		},
		{
			name: "неизвестная роль без ограничения — отказ",
			role: "librarian",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.role, tt.allowed...); got != tt.want {
				t.Errorf("Allowed(%q, %v) = %v, хотели %v", tt.role, tt.allowed, got, tt.want)
			}
		})
	}
}
