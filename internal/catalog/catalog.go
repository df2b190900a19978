// Package catalog holds the static plan, add-on and service-area data.
package catalog

import (
	"strings"

	"github.com/freshfold/laundry-backend/pkg/enums"
)

// UnlimitedWeight marks a plan without a per-pickup weight cap.
const UnlimitedWeight = -1

// OneOffPlanName labels orders booked without a plan.
const OneOffPlanName = "One-Off Service"

// Plan is a recurring service tier.
type Plan struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	Badge           *string  `json:"badge"`
	Description     string   `json:"description"`
	Features        []string `json:"features"`
	MaxWeightKg     int      `json:"maxWeightKg"`
	PickupsPerMonth int      `json:"pickupsPerMonth"`
}

// Unlimited reports whether the plan has no weight cap.
func (p Plan) Unlimited() bool {
	return p.MaxWeightKg == UnlimitedWeight
}

// AddOn is an optional extra priced per unit.
type AddOn struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Price float64 `json:"price"`
}

func badge(s string) *string { return &s }

var plans = []Plan{
	{
		ID:          "starter",
		Name:        "Starter",
		Price:       19.99,
		Description: "Affordable, hassle-free laundry service for individuals who need reliable twice-monthly care.",
		Features: []string{
			"Up to 15 lbs (~7kg) per pickup",
			"2 pickups/month",
			"Standard wash & dry",
			"Folding included",
			"Real-time QR tracking",
			"Secure QR access",
		},
		MaxWeightKg:     7,
		PickupsPerMonth: 2,
	},
	{
		ID:          "family",
		Name:        "Family",
		Price:       49.99,
		Badge:       badge("Most Popular"),
		Description: "Our most popular plan. Weekly convenience with ironing included and premium garment care.",
		Features: []string{
			"Up to 40 lbs (~18kg) per pickup",
			"Weekly pickups (4/month)",
			"Premium detergents",
			"Ironing & folding",
			"Real-time QR tracking",
			"Secure QR access",
			"Priority support",
			"Custom wash preferences",
		},
		MaxWeightKg:     18,
		PickupsPerMonth: 4,
	},
	{
		ID:          "premium",
		Name:        "Premium",
		Price:       89.99,
		Badge:       badge("Ultimate"),
		Description: "Ultimate garment care with unlimited volume and priority handling.",
		Features: []string{
			"Unlimited weight",
			"Twice-weekly pickups (8/month)",
			"Luxury detergents",
			"Full ironing service",
			"Delicate care",
			"Real-time QR tracking",
			"Secure QR access",
			"24/7 priority support",
			"Same-day service",
		},
		MaxWeightKg:     UnlimitedWeight,
		PickupsPerMonth: 8,
	},
}

var addOns = []AddOn{
	{ID: "ironing", Name: "Extra Ironing Service", Unit: "per bag", Price: 14.99},
	{ID: "folding", Name: "Folding-Only Service", Unit: "per bag", Price: 7.99},
	{ID: "softener", Name: "Fabric Softener", Unit: "per wash", Price: 2.99},
	{ID: "hypoallergenic", Name: "Hypoallergenic Detergent", Unit: "per wash", Price: 4.99},
	{ID: "stain", Name: "Heavy Stain Treatment", Unit: "per item", Price: 5.99},
	{ID: "express", Name: "Express Same-Day Service", Unit: "per order", Price: 10.99},
}

var suburbs = []string{
	"Geelong", "Geelong West", "Newtown", "Highton", "Belmont", "Grovedale", "Waurn Ponds",
	"Corio", "Norlane", "North Geelong", "South Geelong", "Drumcondra", "Herne Hill",
	"Manifold Heights", "Breakwater", "East Geelong", "Thomson", "Whittington",
	"St Albans Park", "Newcomb", "Moolap", "Leopold", "Wallington", "Ocean Grove",
	"Barwon Heads", "Torquay", "Jan Juc", "Bells Beach", "Anglesea", "Lorne",
	"Point Lonsdale", "Queenscliff", "Portarlington", "Drysdale", "Clifton Springs",
	"Indented Head", "St Leonards", "Lara", "Little River", "Anakie", "Lovely Banks",
	"Batesford", "Fyansford", "Stonehaven", "Armstrong Creek", "Mount Duneed",
	"Charlemont", "Marshall", "Connewarre", "Freshwater Creek",
}

var timeSlots = []string{
	"8:00 AM - 10:00 AM",
	"10:00 AM - 12:00 PM",
	"12:00 PM - 2:00 PM",
	"2:00 PM - 4:00 PM",
	"4:00 PM - 6:00 PM",
}

var suburbIndex = func() map[string]string {
	idx := make(map[string]string, len(suburbs))
	for _, s := range suburbs {
		idx[strings.ToLower(s)] = s
	}
	return idx
}()

// Plans returns a copy of the plan catalog.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// AddOns returns a copy of the add-on catalog.
func AddOns() []AddOn {
	out := make([]AddOn, len(addOns))
	copy(out, addOns)
	return out
}

// Suburbs returns the service-area list in display order.
func Suburbs() []string {
	out := make([]string, len(suburbs))
	copy(out, suburbs)
	return out
}

// TimeSlots returns the bookable pickup windows.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// TrackingStatuses returns the fixed order status sequence.
func TrackingStatuses() []enums.OrderStatus {
	out := make([]enums.OrderStatus, len(enums.OrderStatuses))
	copy(out, enums.OrderStatuses)
	return out
}

// FindPlan looks up a plan by id.
func FindPlan(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// FindAddOn looks up an add-on by id.
func FindAddOn(id string) (AddOn, bool) {
	for _, a := range addOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// ServesSuburb matches case-insensitively and returns the canonical spelling.
func ServesSuburb(name string) (string, bool) {
	canonical, ok := suburbIndex[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}
