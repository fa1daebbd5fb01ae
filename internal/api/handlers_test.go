package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/service"
	"github.com/tapcard/internal/types"
)

func doJSON(server *Server, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

func TestGetOwnProfile_NullWhenMissing(t *testing.T) {
	server, mocks := createTestServer()
	mocks.profiles.getByUserFunc = func(ctx context.Context, userID string) (*models.Profile, error) {
		return nil, nil
	}

	w := doJSON(server, "GET", "/api/profile", "u1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "null\n" {
		t.Errorf("Expected null body, got %q", body)
	}
}

func TestSaveProfile(t *testing.T) {
	server, _ := createTestServer()

	w := doJSON(server, "POST", "/api/profile", "u1", map[string]interface{}{
		"name": "Alice",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var profile models.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if profile.Name != "Alice" {
		t.Errorf("Expected Alice, got %s", profile.Name)
	}
}

func TestSaveProfile_ValidationFailureIs500(t *testing.T) {
	server, mocks := createTestServer()
	mocks.profiles.saveFunc = func(ctx context.Context, userID string, input *service.SaveProfileInput) (*models.Profile, error) {
		return nil, &types.ServiceError{Code: "VALIDATION_ERROR", Message: "profile name is required"}
	}

	w := doJSON(server, "POST", "/api/profile", "u1", map[string]interface{}{})

	// Validation failures keep their historical 500 status
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if errResp.Message == "" {
		t.Error("Expected a message field in the error body")
	}
}

func TestSaveProfile_MalformedJSONIs500(t *testing.T) {
	server, _ := createTestServer()

	req := httptest.NewRequest("POST", "/api/profile", bytes.NewReader([]byte("not json")))
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestGetProfileByID_RecordsView(t *testing.T) {
	server, mocks := createTestServer()

	req := httptest.NewRequest("GET", "/api/profile/1", nil)
	req.Header.Set("X-User-ID", "viewer-7")
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "203.0.113.9:51000"
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	if len(mocks.views.recorded) != 1 {
		t.Fatalf("Expected 1 recorded view, got %d", len(mocks.views.recorded))
	}
	view := mocks.views.recorded[0]
	if view.ViewerUserID == nil || *view.ViewerUserID != "viewer-7" {
		t.Error("Expected viewer id from identity header")
	}
	if view.IPAddress == nil || *view.IPAddress != "203.0.113.9" {
		t.Error("Expected client IP without port")
	}
	if view.UserAgent == nil || *view.UserAgent != "test-agent" {
		t.Error("Expected user agent to be captured")
	}
}

func TestGetProfileByID_NotFound(t *testing.T) {
	server, mocks := createTestServer()
	mocks.profiles.getByIDFunc = func(ctx context.Context, id int32) (*models.Profile, error) {
		return nil, nil
	}

	w := doJSON(server, "GET", "/api/profile/42", "", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if len(mocks.views.recorded) != 0 {
		t.Error("A missing profile must not record a view")
	}
}

func TestGetProfileByNFCTag_NoViewRecorded(t *testing.T) {
	server, mocks := createTestServer()

	w := doJSON(server, "GET", "/api/profile/nfc/tag-abc", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(mocks.views.recorded) != 0 {
		t.Error("Tag lookup must not record a view; the profile fetch does")
	}
}

func TestRecordView(t *testing.T) {
	server, mocks := createTestServer()

	w := doJSON(server, "POST", "/api/profile/1/view", "", map[string]interface{}{
		"viewerLocation": "Berlin",
		"viewDuration":   15,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	if len(mocks.views.recorded) != 1 {
		t.Fatalf("Expected 1 recorded view, got %d", len(mocks.views.recorded))
	}
	view := mocks.views.recorded[0]
	if view.ViewerLocation == nil || *view.ViewerLocation != "Berlin" {
		t.Error("Expected viewer location from body")
	}
	if view.ViewDuration == nil || *view.ViewDuration != 15 {
		t.Error("Expected view duration from body")
	}
	if view.ViewerUserID != nil {
		t.Error("Expected anonymous view without identity header")
	}
}

func TestCreateConnection(t *testing.T) {
	server, _ := createTestServer()

	w := doJSON(server, "POST", "/api/connections", "u2", map[string]interface{}{
		"toUserId":   "u1",
		"scanMethod": "qr",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var conn models.Connection
	if err := json.Unmarshal(w.Body.Bytes(), &conn); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if conn.FromUserID != "u2" {
		t.Errorf("Expected caller as from side, got %s", conn.FromUserID)
	}
}

func TestToggleFavorite(t *testing.T) {
	server, mocks := createTestServer()

	w := doJSON(server, "PATCH", "/api/connections/5/favorite", "u2", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp["success"] {
		t.Error("Expected success:true")
	}
	if len(mocks.connections.toggled) != 1 || mocks.connections.toggled[0] != 5 {
		t.Errorf("Expected toggle for connection 5, got %v", mocks.connections.toggled)
	}
}

func TestAnalyticsStats(t *testing.T) {
	server, _ := createTestServer()

	w := doJSON(server, "GET", "/api/analytics/stats", "u1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var stats service.DashboardStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.Views == nil || stats.Connections == nil {
		t.Fatal("Expected both views and connections sections")
	}
	if stats.Views.TotalViews != 5 {
		t.Errorf("Expected totalViews=5, got %d", stats.Views.TotalViews)
	}
}

func TestAnalyticsStats_NoProfileIs404(t *testing.T) {
	server, mocks := createTestServer()
	mocks.analytics.statsFunc = func(ctx context.Context, userID string) (*service.DashboardStats, error) {
		return nil, &types.ServiceError{Code: "PROFILE_NOT_FOUND", Message: "user has no profile"}
	}

	w := doJSON(server, "GET", "/api/analytics/stats", "u1", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestResolveScan(t *testing.T) {
	server, _ := createTestServer()

	w := doJSON(server, "POST", "/api/scan/resolve", "", map[string]interface{}{
		"token": "https://tapcard.example/profile/1",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var profile models.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if profile.ID != 1 {
		t.Errorf("Expected profile 1, got %d", profile.ID)
	}
}

func TestResolveScan_UnresolvableIs404(t *testing.T) {
	server, mocks := createTestServer()
	mocks.scans.resolveFunc = func(ctx context.Context, token string) (*models.Profile, error) {
		return nil, &types.ServiceError{Code: "PROFILE_NOT_FOUND", Message: "no profile found for scan token: " + token}
	}

	w := doJSON(server, "POST", "/api/scan/resolve", "", map[string]interface{}{
		"token": "bogus-token",
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
