package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	sessionerrors "clinicportal/internal/session/errors"
	"clinicportal/pkg/model"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestDecodeToken_RolePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   model.Role
	}{
		{
			name:   "uri claim wins over short role",
			claims: jwt.MapClaims{"sub": "u1", ClaimRoleURI: "Doctor", "role": "1"},
			want:   model.RoleDoctor,
		},
		{
			name:   "short role wins over roleId",
			claims: jwt.MapClaims{"sub": "u1", "role": "2", "roleId": 1},
			want:   model.RolePatient,
		},
		{
			name:   "numeric roleId",
			claims: jwt.MapClaims{"sub": "u1", "roleId": 1},
			want:   model.RoleAdmin,
		},
		{
			name:   "lowercase roleid",
			claims: jwt.MapClaims{"sub": "u1", "roleid": "3"},
			want:   model.RoleDoctor,
		},
		{
			name:   "empty uri claim falls through",
			claims: jwt.MapClaims{"sub": "u1", ClaimRoleURI: "", "role": "2"},
			want:   model.RolePatient,
		},
		{
			name:   "multi-valued claim uses first entry",
			claims: jwt.MapClaims{"sub": "u1", ClaimRoleURI: []any{"Doctor", "Admin"}},
			want:   model.RoleDoctor,
		},
		{
			name:   "no role claim",
			claims: jwt.MapClaims{"sub": "u1"},
			want:   model.RoleNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := DecodeToken(mintToken(t, tt.claims), time.Now())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Role != tt.want {
				t.Errorf("expected role %v, got %v", tt.want, id.Role)
			}
		})
	}
}

func TestDecodeToken_InvalidRole(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"out of range id", jwt.MapClaims{"sub": "u1", "roleId": 7}},
		{"zero id", jwt.MapClaims{"sub": "u1", "role": "0"}},
		{"unmapped name", jwt.MapClaims{"sub": "u1", "role": "Patient"}},
		{"uri claim shadows valid roleId", jwt.MapClaims{"sub": "u1", ClaimRoleURI: "Nurse", "roleId": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToken(mintToken(t, tt.claims), time.Now())
			if !errors.Is(err, sessionerrors.ErrInvalidRole) {
				t.Errorf("expected ErrInvalidRole, got %v", err)
			}
		})
	}
}

func TestDecodeToken_IdentityFallbacks(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		ClaimNameIdentifierURI: "42",
		"unique_name":          "bs.lan@clinic.vn",
		"given_name":           "Lan",
		"role":                 "Doctor",
	})

	id, err := DecodeToken(token, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UserID != "42" {
		t.Errorf("expected user id 42, got %q", id.UserID)
	}
	if id.Email != "bs.lan@clinic.vn" {
		t.Errorf("expected e-mail from unique_name, got %q", id.Email)
	}
	if id.Name != "Lan" {
		t.Errorf("expected name from given_name, got %q", id.Name)
	}
}

func TestDecodeToken_NumericUserID(t *testing.T) {
	id, err := DecodeToken(mintToken(t, jwt.MapClaims{"id": 1001, "roleId": 2}), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UserID != "1001" {
		t.Errorf("expected user id 1001, got %q", id.UserID)
	}
}

func TestDecodeToken_Malformed(t *testing.T) {
	for _, token := range []string{"", "   ", "abc", "a.b.c", "a.!!!.c"} {
		_, err := DecodeToken(token, time.Now())
		if !errors.Is(err, sessionerrors.ErrMalformedToken) {
			t.Errorf("token %q: expected ErrMalformedToken, got %v", token, err)
		}
	}
}

func TestDecodeToken_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	token := mintToken(t, jwt.MapClaims{"sub": "u1", "roleId": 2, "exp": now.Add(-time.Minute).Unix()})

	_, err := DecodeToken(token, now)
	if !errors.Is(err, sessionerrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	fresh := mintToken(t, jwt.MapClaims{"sub": "u1", "roleId": 2, "exp": now.Add(time.Hour).Unix()})
	id, err := DecodeToken(fresh, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expected expiry %v, got %v", now.Add(time.Hour), id.ExpiresAt)
	}
}

func TestMapRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    model.Role
		wantErr bool
	}{
		{"Doctor", model.RoleDoctor, false},
		{"1", model.RoleAdmin, false},
		{"2", model.RolePatient, false},
		{"3", model.RoleDoctor, false},
		{" 2 ", model.RolePatient, false},
		{"4", model.RoleNone, true},
		{"doctor", model.RoleNone, true},
		{"", model.RoleNone, true},
	}
	for _, tt := range tests {
		got, err := MapRole(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("MapRole(%q): expected error=%v, got %v", tt.raw, tt.wantErr, err)
		}
		if got != tt.want {
			t.Errorf("MapRole(%q): expected %v, got %v", tt.raw, tt.want, got)
		}
	}
}
