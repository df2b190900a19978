package controllers

import (
	"net/http"

	"github.com/freshfold/laundry-backend/api/responses"
	"github.com/freshfold/laundry-backend/internal/catalog"
)

func CatalogPlans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.Plans())
	}
}

func CatalogAddOns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.AddOns())
	}
}

// CatalogSuburbs returns the service area together with the bookable pickup slots.
func CatalogSuburbs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"suburbs":   catalog.Suburbs(),
			"timeSlots": catalog.TimeSlots(),
		})
	}
}

func CatalogTrackingStatuses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.TrackingStatuses())
	}
}
