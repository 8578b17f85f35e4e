package session

import (
	"context"
	"strings"
)

// Persisted keys. They are written and cleared together.
const (
	KeyToken  = "token"
	KeyUserID = "userId"
	KeyRoleID = "roleId"
	KeyName   = "name"
	KeyEmail  = "email"
)

var Keys = []string{KeyToken, KeyUserID, KeyRoleID, KeyName, KeyEmail}

// Record is the per-browser persisted session state.
type Record struct {
	Token  string `bson:"token" redis:"token" json:"token"`
	UserID string `bson:"userId" redis:"userId" json:"userId"`
	RoleID string `bson:"roleId" redis:"roleId" json:"roleId"`
	Name   string `bson:"name" redis:"name" json:"name"`
	Email  string `bson:"email" redis:"email" json:"email"`
}

func (r Record) Empty() bool {
	return strings.TrimSpace(r.Token) == "" &&
		r.UserID == "" && r.RoleID == "" && r.Name == "" && r.Email == ""
}

// Values returns the record keyed by the persisted key names.
func (r Record) Values() map[string]string {
	return map[string]string{
		KeyToken:  r.Token,
		KeyUserID: r.UserID,
		KeyRoleID: r.RoleID,
		KeyName:   r.Name,
		KeyEmail:  r.Email,
	}
}

// Store persists one Record per browser id. Load returns an empty Record and
// a nil error when nothing is stored. Save and Clear act on all keys at once.
type Store interface {
	Load(ctx context.Context, browserID string) (Record, error)
	Save(ctx context.Context, browserID string, rec Record) error
	Clear(ctx context.Context, browserID string) error
	Ping(ctx context.Context) error
}
