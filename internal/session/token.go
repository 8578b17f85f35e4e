package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	sessionerrors "clinicportal/internal/session/errors"
	"clinicportal/pkg/model"
)

const (
	ClaimRoleURI           = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	ClaimNameIdentifierURI = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	ClaimEmailURI          = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"

	DefaultDisplayName = "User"
)

// Claim lookup order. The first non-empty value wins.
var (
	roleClaims   = []string{ClaimRoleURI, "role", "roleId", "roleid"}
	userIDClaims = []string{"id", "userId", "sub", "nameid", ClaimNameIdentifierURI}
	emailClaims  = []string{"email", "unique_name", ClaimEmailURI}
	nameClaims   = []string{"name", "given_name", "fullName"}
)

// Identity is what a token says about its bearer. Role is RoleNone when the
// token carries no role claim at all; an unmappable claim is a decode error.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Role      model.Role
	ExpiresAt time.Time
}

// DecodeToken reads the token payload without verifying its signature. The
// upstream services own verification; the portal only needs the claims.
func DecodeToken(token string, now time.Time) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, sessionerrors.ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", sessionerrors.ErrMalformedToken, err)
	}

	id := Identity{
		UserID: firstClaim(claims, userIDClaims),
		Email:  firstClaim(claims, emailClaims),
		Name:   firstClaim(claims, nameClaims),
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
		if !now.IsZero() && !now.Before(exp.Time) {
			return Identity{}, sessionerrors.ErrTokenExpired
		}
	}

	if raw := firstClaim(claims, roleClaims); raw != "" {
		role, err := MapRole(raw)
		if err != nil {
			return Identity{}, err
		}
		id.Role = role
	}

	return id, nil
}

// MapRole applies the role table: the literal "Doctor" is a doctor, otherwise
// the value must be one of the numeric ids 1 (Admin), 2 (Patient) or 3 (Doctor).
func MapRole(raw string) (model.Role, error) {
	raw = strings.TrimSpace(raw)
	if raw == "Doctor" {
		return model.RoleDoctor, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return model.RoleNone, fmt.Errorf("%w: %q", sessionerrors.ErrInvalidRole, raw)
	}
	role := model.Role(n)
	if !role.Valid() {
		return model.RoleNone, fmt.Errorf("%w: %q", sessionerrors.ErrInvalidRole, raw)
	}
	return role, nil
}

func firstClaim(claims jwt.MapClaims, keys []string) string {
	for _, key := range keys {
		if v := claimString(claims[key]); v != "" {
			return v
		}
	}
	return ""
}

func claimString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		// multi-valued claims: the first entry decides
		if len(val) == 0 {
			return ""
		}
		return claimString(val[0])
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
