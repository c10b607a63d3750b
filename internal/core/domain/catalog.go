package domain

import "slices"

// Currency is the only currency the portal charges in.
const Currency = "USD"

// ServicePackage is a bookable cleaning package.
type ServicePackage struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

var catalog = []ServicePackage{
	{
		ID:          "basic",
		Title:       "BASIC PACKAGE",
		Price:       59.00,
		Description: "Standard cleaning for homes and small apartments.",
		Features:    []string{"Dusting of all accessible surfaces", "Vacuuming and mopping floors", "Kitchen and bathroom wipe-down"},
	},
	{
		ID:          "enterprise",
		Title:       "ENTERPRISE PACKAGE",
		Price:       69.00,
		Description: "Office and commercial space cleaning.",
		Features:    []string{"Workstation sanitising", "Common area cleaning", "Waste removal"},
	},
	{
		ID:          "premium",
		Title:       "PREMIUM PACKAGE",
		Price:       99.00,
		Description: "Deep cleaning with attention to every corner.",
		Features:    []string{"Everything in Basic", "Inside appliances and cabinets", "Window and balcony cleaning"},
	},
}

// Catalog returns a copy of the service packages on offer.
func Catalog() []ServicePackage {
	out := make([]ServicePackage, len(catalog))
	for i, p := range catalog {
		out[i] = p.clone()
	}
	return out
}

// LookupService finds a package by ID.
func LookupService(id string) (ServicePackage, error) {
	for _, p := range catalog {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return ServicePackage{}, ErrUnknownService
}

func (p ServicePackage) clone() ServicePackage {
	p.Features = slices.Clone(p.Features)
	return p
}
