package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// RoleResolver implements ports.RoleResolver by reading the signed-in
// user's own profile.
type RoleResolver struct {
	api *Client
}

func NewRoleResolver(api *Client) *RoleResolver {
	return &RoleResolver{api: api}
}

func (r *RoleResolver) ResolveRole(ctx context.Context, userID string) (domain.Role, error) {
	var p domain.Profile
	if err := r.api.do(ctx, http.MethodGet, "/v1/me/profile", nil, &p); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return "", domain.ErrProfileNotFound
		}
		return "", err
	}
	if p.ID != userID {
		return "", fmt.Errorf("resolve role: profile %s does not belong to user %s", p.ID, userID)
	}
	return domain.ParseRole(string(p.Role))
}
