package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freshfold/laundry-backend/internal/admin"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/types"
)

type stubAdminService struct {
	stats *admin.Stats
}

func (s stubAdminService) Stats(ctx context.Context, actor types.Actor) (*admin.Stats, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	return s.stats, nil
}

func TestAdminStats(t *testing.T) {
	svc := stubAdminService{stats: &admin.Stats{TotalOrders: 3, TotalRevenue: 92.24}}

	rec := httptest.NewRecorder()
	AdminStats(svc, nil).ServeHTTP(rec, asActor(httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil), adminActor()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	AdminStats(svc, nil).ServeHTTP(rec, asActor(httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil), customer()))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
