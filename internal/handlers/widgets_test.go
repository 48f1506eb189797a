package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/middleware"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

type stubWidgetService struct {
	called       bool
	lastDept     string
	lastWidgetID string
	lastCreate   dto.CreateWidgetRequest
	lastReorder  dto.ReorderWidgetsRequest
	widgets      []*models.Widget
	widget       *models.Widget
	err          error
}

func (s *stubWidgetService) ListWidgets(ctx context.Context, dept string) ([]*models.Widget, error) {
	s.called = true
	s.lastDept = dept
	return s.widgets, s.err
}

func (s *stubWidgetService) GetWidget(ctx context.Context, dept, widgetID string) (*models.Widget, error) {
	s.called = true
	s.lastDept = dept
	s.lastWidgetID = widgetID
	return s.widget, s.err
}

func (s *stubWidgetService) CreateWidget(ctx context.Context, dept string, req dto.CreateWidgetRequest) (*models.Widget, error) {
	s.called = true
	s.lastDept = dept
	s.lastCreate = req
	return s.widget, s.err
}

func (s *stubWidgetService) UpdateWidget(ctx context.Context, dept, widgetID string, req dto.UpdateWidgetRequest) (*models.Widget, error) {
	s.called = true
	s.lastDept = dept
	s.lastWidgetID = widgetID
	s.lastCreate = req
	return s.widget, s.err
}

func (s *stubWidgetService) ReorderWidgets(ctx context.Context, dept string, req dto.ReorderWidgetsRequest) error {
	s.called = true
	s.lastDept = dept
	s.lastReorder = req
	return s.err
}

func (s *stubWidgetService) DeleteWidget(ctx context.Context, dept, widgetID string) error {
	s.called = true
	s.lastDept = dept
	s.lastWidgetID = widgetID
	return s.err
}

func TestListWidgetsSuccess(t *testing.T) {
	svc := &stubWidgetService{widgets: []*models.Widget{{WidgetID: "w1"}}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/departments/sales/widgets", nil)
	req = withChiParams(req, "departmentId", "sales")
	rr := httptest.NewRecorder()

	h.ListWidgets(rr, req)

	if svc.lastDept != "sales" {
		t.Fatalf("expected department sales, got %q", svc.lastDept)
	}
	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("WriteSuccess not called with status 200")
	}
	if got, ok := resp.writeSuccessData.([]*models.Widget); !ok || len(got) != 1 {
		t.Fatalf("unexpected data: %#v", resp.writeSuccessData)
	}
}

func TestCreateWidgetSuccess(t *testing.T) {
	svc := &stubWidgetService{widget: &models.Widget{WidgetID: "w-new"}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	body := `{"type":"bar","title":"Revenue","dataKey":["revenue"],"categoryKey":"month"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = withChiParams(req, "departmentId", "sales")
	rr := httptest.NewRecorder()

	h.CreateWidget(rr, req)

	if svc.lastCreate.Type != dto.WidgetTypeBar || svc.lastCreate.Title != "Revenue" {
		t.Fatalf("service received wrong request: %+v", svc.lastCreate)
	}
	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("WriteSuccess not called with status 201")
	}
	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected response status: %d", rr.Code)
	}
}

func TestCreateWidgetInvalidJSON(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not-json"))
	rr := httptest.NewRecorder()

	h.CreateWidget(rr, req)

	if svc.called {
		t.Fatalf("CreateWidget should not be called on service when JSON invalid")
	}
	var vErr *errs.ValidationError
	if !errors.As(resp.handleError, &vErr) {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
}

func TestCreateWidgetEmptyBody(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	rr := httptest.NewRecorder()

	h.CreateWidget(rr, req)

	var vErr *errs.ValidationError
	if !errors.As(resp.handleError, &vErr) {
		t.Fatalf("expected ValidationError for empty body, got %v", resp.handleError)
	}
}

func TestGetWidgetServiceError(t *testing.T) {
	svc := &stubWidgetService{err: errs.NewNotFoundError("widget not found")}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withChiParams(req, "departmentId", "sales", "widgetId", "w-missing")
	rr := httptest.NewRecorder()

	h.GetWidget(rr, req)

	if svc.lastWidgetID != "w-missing" {
		t.Fatalf("expected widget id w-missing, got %q", svc.lastWidgetID)
	}
	if !errors.Is(resp.handleError, svc.err) {
		t.Fatalf("unexpected error passed to HandleError: %v", resp.handleError)
	}
	if resp.writeSuccessCalled {
		t.Fatalf("WriteSuccess should not be called on service error")
	}
}

func TestReorderWidgetsSuccess(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	body := `{"widgetOrder":[{"widgetId":"a","position":2},{"widgetId":"b","position":1}]}`
	req := httptest.NewRequest(http.MethodPut, "/reorder", strings.NewReader(body))
	req = withChiParams(req, "departmentId", "sales")
	rr := httptest.NewRecorder()

	h.ReorderWidgets(rr, req)

	if len(svc.lastReorder.WidgetOrder) != 2 || svc.lastReorder.WidgetOrder[0].WidgetID != "a" {
		t.Fatalf("unexpected reorder request: %+v", svc.lastReorder)
	}
	if !resp.writeSuccessCalled {
		t.Fatalf("expected WriteSuccess")
	}
}

func TestWidgetRoutesRequireEditPermission(t *testing.T) {
	svc := &stubWidgetService{widget: &models.Widget{}}
	resp := &stubResponseHandler{}
	routes := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc}).WidgetRoutes()

	req := httptest.NewRequest(http.MethodDelete, "/w1", nil)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without permission, got %d", rr.Code)
	}
	if svc.called {
		t.Fatalf("service should not be reached without permission")
	}

	req = httptest.NewRequest(http.MethodDelete, "/w1", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.PermissionsKey, []string{middleware.PermDashboardEdit}))
	rr = httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with permission, got %d", rr.Code)
	}
	if svc.lastWidgetID != "w1" {
		t.Fatalf("expected widget id w1, got %q", svc.lastWidgetID)
	}
}

func TestWidgetRoutesReadWithoutPermission(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	routes := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc}).WidgetRoutes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || !svc.called {
		t.Fatalf("expected list to be served, got %d", rr.Code)
	}
}
