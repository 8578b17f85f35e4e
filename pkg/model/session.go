package model

// Session identifies the signed-in actor. Credential is the upstream bearer token.
type Session struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
	Credential  string `json:"-"`
}

func (s *Session) HasRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
