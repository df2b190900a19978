package controllers

import (
	"net/http"
	"strings"

	"github.com/freshfold/laundry-backend/api/middleware"
	"github.com/freshfold/laundry-backend/api/responses"
	"github.com/freshfold/laundry-backend/internal/admin"
	"github.com/freshfold/laundry-backend/internal/complaints"
	"github.com/freshfold/laundry-backend/internal/orders"
	"github.com/freshfold/laundry-backend/pkg/logger"
)

func AdminStats(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("admin service"))
			return
		}
		stats, err := svc.Stats(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminOrders lists every order, optionally narrowed by ?status=.
func AdminOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("orders service"))
			return
		}
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		list, err := svc.ListAll(r.Context(), middleware.ActorFromContext(r.Context()), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return ComplaintList(svc, logg)
}
