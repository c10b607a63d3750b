package handler

import (
	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// --- Service result → HTTP response ---

func toSessionResponse(s *domain.Session, role domain.Role) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
		User:      userResponse{ID: s.UserID, Email: s.Email},
		Role:      role,
	}
}

func toBookingPageResponse(p *ports.BookingPage) bookingPageResponse {
	items := p.Items
	if items == nil {
		items = []*domain.BookingDetail{}
	}
	return bookingPageResponse{
		Items: items,
		Pagination: pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}
}

func toStatsResponse(s *ports.DashboardStats) statsResponse {
	users := make(map[string]int64, len(domain.Roles))
	for _, r := range domain.Roles {
		users[string(r)] = s.UsersByRole[r]
	}
	return statsResponse{UsersByRole: users, Bookings: s.Bookings}
}

// --- Request → Service input ---

func toProfileUpdate(req updateEmployeeRequest) ports.ProfileUpdate {
	return ports.ProfileUpdate{Username: req.Username, Phone: req.Phone}
}
