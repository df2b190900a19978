package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshfold/laundry-backend/api/middleware"
	"github.com/freshfold/laundry-backend/api/responses"
	"github.com/freshfold/laundry-backend/api/validators"
	"github.com/freshfold/laundry-backend/internal/payments"
	"github.com/freshfold/laundry-backend/pkg/logger"
)

// CheckoutSession opens a hosted payment page for an order. When the gateway
// is down the order is kept and the response carries an error instead of a URL.
func CheckoutSession(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout service"))
			return
		}

		var body payments.CheckoutInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateCheckout(r.Context(), middleware.ActorFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CheckoutStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout service"))
			return
		}
		result, err := svc.Status(r.Context(), chi.URLParam(r, "sessionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
