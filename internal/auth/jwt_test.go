package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate(42, PermissionViewTallyLogs)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if !claims.Has(PermissionViewTallyLogs) {
		t.Errorf("Expected %s permission, got %v", PermissionViewTallyLogs, claims.Permissions)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	other, err := NewJWTManager("other-secret", time.Hour).Generate(1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	expired, err := NewJWTManager("test-secret", -time.Minute).Generate(1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", other},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
