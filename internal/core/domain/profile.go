package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of portal roles. Values outside the set never
// reach the domain: ParseRole rejects them.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Roles lists every role in display order.
var Roles = []Role{RoleCustomer, RoleEmployee, RoleAdmin}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleEmployee, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Profile is the portal-facing record of a user: display fields and role.
type Profile struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Phone     string    `json:"phone" bson:"phone"`
	Role      Role      `json:"role" bson:"role"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ProfileSummary is the subset of a profile shown next to a booking.
type ProfileSummary struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
}
