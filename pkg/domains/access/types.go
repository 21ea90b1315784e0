// Package access authorizes user-management API requests by auth level and
// by whether the target user is the acting user.
package access

import (
	"fmt"
	"strings"

	"mercator-hq/guard/pkg/guard"
)

// AuthLevel is the caller's privilege level, ordered from least to most
// privileged.
type AuthLevel int

const (
	Guest AuthLevel = iota
	User
	Admin
	SuperAdmin
)

var authLevelNames = [...]string{"GUEST", "USER", "ADMIN", "SUPER_ADMIN"}

// String returns the canonical upper-case name.
func (l AuthLevel) String() string {
	if l < Guest || l > SuperAdmin {
		return fmt.Sprintf("AuthLevel(%d)", int(l))
	}
	return authLevelNames[l]
}

// AtLeast reports whether l is as privileged as other. Unknown levels are
// never privileged.
func (l AuthLevel) AtLeast(other AuthLevel) bool {
	return l.Valid() && l >= other
}

// Valid reports whether l is a known level.
func (l AuthLevel) Valid() bool {
	return l >= Guest && l <= SuperAdmin
}

// ParseAuthLevel parses a level name case-insensitively ("guest", "SUPER_ADMIN").
func ParseAuthLevel(s string) (AuthLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range authLevelNames {
		if n == name {
			return AuthLevel(i), nil
		}
	}
	return Guest, fmt.Errorf("unknown auth level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l AuthLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid auth level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *AuthLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Shapes of the Request variant set.
const (
	ShapeGetUser     guard.Shape = "get_user"
	ShapeUpdateUser  guard.Shape = "update_user"
	ShapeDeleteUser  guard.Shape = "delete_user"
	ShapeGetAllUsers guard.Shape = "get_all_users"
)

// Shapes returns every case of Request.
func Shapes() []guard.Shape {
	return []guard.Shape{ShapeGetUser, ShapeUpdateUser, ShapeDeleteUser, ShapeGetAllUsers}
}

// Request is the closed set of user-management API requests.
type Request interface {
	guard.Variant
	Level() AuthLevel
	isRequest()
}

// GetUser reads one user.
type GetUser struct {
	UserID    string    `json:"user_id"`
	AuthLevel AuthLevel `json:"auth_level"`
}

// UpdateUser modifies one user.
type UpdateUser struct {
	UserID    string    `json:"user_id"`
	Data      string    `json:"data"`
	AuthLevel AuthLevel `json:"auth_level"`
}

// DeleteUser removes one user.
type DeleteUser struct {
	UserID    string    `json:"user_id"`
	AuthLevel AuthLevel `json:"auth_level"`
}

// GetAllUsers lists every user.
type GetAllUsers struct {
	AuthLevel AuthLevel `json:"auth_level"`
}

func (GetUser) Shape() guard.Shape     { return ShapeGetUser }
func (UpdateUser) Shape() guard.Shape  { return ShapeUpdateUser }
func (DeleteUser) Shape() guard.Shape  { return ShapeDeleteUser }
func (GetAllUsers) Shape() guard.Shape { return ShapeGetAllUsers }

func (r GetUser) Level() AuthLevel     { return r.AuthLevel }
func (r UpdateUser) Level() AuthLevel  { return r.AuthLevel }
func (r DeleteUser) Level() AuthLevel  { return r.AuthLevel }
func (r GetAllUsers) Level() AuthLevel { return r.AuthLevel }

func (GetUser) isRequest()     {}
func (UpdateUser) isRequest()  {}
func (DeleteUser) isRequest()  {}
func (GetAllUsers) isRequest() {}
