package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studioshot/backdrop-system/internal/core/domain"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

type stubGenerationService struct {
	submitFn func(ctx context.Context, input ports.SubmitGenerationInput) (*ports.SubmitGenerationResult, error)
	getFn    func(ctx context.Context, id, ownerID string) (*ports.GenerationStatusView, error)
	deleteFn func(ctx context.Context, id, ownerID string) error
	listFn   func(ctx context.Context, ownerID string, page, limit int) (*ports.ListGenerationsResult, error)
}

func (s *stubGenerationService) Submit(ctx context.Context, input ports.SubmitGenerationInput) (*ports.SubmitGenerationResult, error) {
	return s.submitFn(ctx, input)
}

func (s *stubGenerationService) Get(ctx context.Context, id, ownerID string) (*ports.GenerationStatusView, error) {
	return s.getFn(ctx, id, ownerID)
}

func (s *stubGenerationService) Delete(ctx context.Context, id, ownerID string) error {
	return s.deleteFn(ctx, id, ownerID)
}

func (s *stubGenerationService) List(ctx context.Context, ownerID string, page, limit int) (*ports.ListGenerationsResult, error) {
	return s.listFn(ctx, ownerID, page, limit)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user_1")
	return c, rec
}

func TestGenerationHandler_Submit_Accepted(t *testing.T) {
	stub := &stubGenerationService{
		submitFn: func(_ context.Context, input ports.SubmitGenerationInput) (*ports.SubmitGenerationResult, error) {
			if input.OwnerID != "user_1" {
				t.Fatalf("owner not forwarded: %q", input.OwnerID)
			}
			if input.OriginalImage.Key != "orig.png" || input.StyleSlug != "marble" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.SubmitGenerationResult{GenerationID: "gen_1", Status: "processing", Cost: 1}, nil
		},
	}
	h := NewGenerationHandler(stub)

	body := `{"image":{"key":"orig.png","url":"http://store/orig.png"},"style_slug":"marble"}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/generations", body)

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["generation_id"] != "gen_1" || resp["status"] != "processing" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestGenerationHandler_Submit_MissingImageKey(t *testing.T) {
	stub := &stubGenerationService{
		submitFn: func(context.Context, ports.SubmitGenerationInput) (*ports.SubmitGenerationResult, error) {
			t.Fatal("service must not be called for an invalid payload")
			return nil, nil
		},
	}
	h := NewGenerationHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/generations", `{"image":{"url":"http://store/x"},"style_slug":"marble"}`)

	err := h.Submit(c)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestGenerationHandler_Submit_NoUserInContext(t *testing.T) {
	h := NewGenerationHandler(&stubGenerationService{})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/generations", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Submit(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestGenerationHandler_Get_CompletedPayload(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubGenerationService{
		getFn: func(_ context.Context, id, ownerID string) (*ports.GenerationStatusView, error) {
			if id != "gen_1" || ownerID != "user_1" {
				t.Fatalf("unexpected args: %q %q", id, ownerID)
			}
			return &ports.GenerationStatusView{
				GenerationID:  "gen_1",
				Status:        "completed",
				OriginalImage: domain.ArtifactRef{Key: "orig.png", URL: "http://store/orig.png"},
				FinalImage:    &domain.ArtifactRef{Key: "final.png", URL: "http://store/final.png"},
				Cost:          1,
				CreatedAt:     created,
			}, nil
		},
	}
	h := NewGenerationHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/generations/gen_1", "")
	c.SetParamNames("id")
	c.SetParamValues("gen_1")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	final, ok := resp["final_image"].(map[string]any)
	if !ok || final["url"] != "http://store/final.png" {
		t.Fatalf("final image missing: %+v", resp)
	}
	if _, present := resp["error"]; present {
		t.Fatalf("completed payload must omit error, got %+v", resp)
	}
}

func TestGenerationHandler_Get_ProcessingOmitsResultFields(t *testing.T) {
	stub := &stubGenerationService{
		getFn: func(context.Context, string, string) (*ports.GenerationStatusView, error) {
			return &ports.GenerationStatusView{GenerationID: "gen_1", Status: "processing", Cost: 1}, nil
		},
	}
	h := NewGenerationHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/generations/gen_1", "")
	c.SetParamNames("id")
	c.SetParamValues("gen_1")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, present := resp["final_image"]; present {
		t.Fatalf("processing payload must omit final_image, got %+v", resp)
	}
	if _, present := resp["error"]; present {
		t.Fatalf("processing payload must omit error, got %+v", resp)
	}
}

func TestGenerationHandler_List_ForwardsPaging(t *testing.T) {
	stub := &stubGenerationService{
		listFn: func(_ context.Context, ownerID string, page, limit int) (*ports.ListGenerationsResult, error) {
			if ownerID != "user_1" || page != 2 || limit != 5 {
				t.Fatalf("unexpected args: %q %d %d", ownerID, page, limit)
			}
			return &ports.ListGenerationsResult{
				Items:      []ports.GenerationStatusView{{GenerationID: "gen_1", Status: "completed"}},
				Total:      6,
				Page:       2,
				Limit:      5,
				TotalPages: 2,
			}, nil
		},
	}
	h := NewGenerationHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/generations?page=2&limit=5", "")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	pagination, ok := resp["pagination"].(map[string]any)
	if !ok || pagination["total_pages"] != float64(2) {
		t.Fatalf("unexpected pagination: %+v", resp)
	}
}

func TestGenerationHandler_Delete(t *testing.T) {
	called := false
	stub := &stubGenerationService{
		deleteFn: func(_ context.Context, id, ownerID string) error {
			called = true
			if id != "gen_1" || ownerID != "user_1" {
				t.Fatalf("unexpected args: %q %q", id, ownerID)
			}
			return nil
		},
	}
	h := NewGenerationHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/v1/generations/gen_1", "")
	c.SetParamNames("id")
	c.SetParamValues("gen_1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("service not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
