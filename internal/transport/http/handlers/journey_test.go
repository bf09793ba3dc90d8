package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"mileage/internal/app/server"
	"mileage/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		CacheBackend:       config.CacheBackendMemory,
		CacheTTL:           15 * time.Minute,
	}
}

func TestTravelRequestJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	projectID := createProject(t, client, ts.URL, token)
	subprojectID := createSubproject(t, client, ts.URL, token, projectID)

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	employeeID := createEmployee(t, client, ts.URL, token, employeeEmail)

	// Coordinates are normally backfilled by the geocoder; set them directly
	// so the test stays offline.
	ctx := context.Background()
	if _, err := app.DB.Exec(ctx, `
    UPDATE employees SET home_latitude = $1, home_longitude = $2 WHERE id = $3
  `, 47.3769, 8.5417, employeeID); err != nil {
		t.Fatalf("failed to set employee coordinates: %v", err)
	}
	if _, err := app.DB.Exec(ctx, `
    UPDATE subprojects SET latitude = $1, longitude = $2 WHERE id = $3
  `, 46.2044, 6.1432, subprojectID); err != nil {
		t.Fatalf("failed to set subproject coordinates: %v", err)
	}

	preview := postJSON(t, client, ts.URL+"/api/v1/calculations/preview", token, map[string]any{
		"subprojectId": subprojectID,
		"employeeId":   employeeID,
		"daysPerWeek":  5,
	})
	var previewData map[string]float64
	if err := json.Unmarshal(preview.Data, &previewData); err != nil {
		t.Fatalf("failed to decode preview: %v", err)
	}
	if previewData["distanceKm"] < 220 || previewData["distanceKm"] > 230 {
		t.Fatalf("expected roughly 225 km, got %f", previewData["distanceKm"])
	}
	if previewData["weeklyAllowance"] <= 0 {
		t.Fatal("expected a positive weekly allowance")
	}

	requestID := submitTravelRequest(t, client, ts.URL, token, employeeID, subprojectID)

	status := decideTravelRequest(t, client, ts.URL, token, requestID, "approve")
	if status != "approved" {
		t.Fatalf("expected status approved, got %s", status)
	}

	records := listAudit(t, client, ts.URL, token, requestID)
	if len(records) == 0 {
		t.Fatal("expected at least one audit record for the travel request")
	}

	postJSON(t, client, ts.URL+"/api/v1/calculations/cache/invalidate", token, map[string]any{
		"subprojectId": subprojectID,
		"employeeId":   employeeID,
		"daysPerWeek":  5,
	})

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/calculations/cache/expired", nil)
	if err != nil {
		t.Fatalf("failed to build sweep request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	sweepResp, err := client.Do(req)
	if err != nil {
		t.Fatalf("sweep request failed: %v", err)
	}
	defer sweepResp.Body.Close()
	if sweepResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(sweepResp.Body)
		t.Fatalf("expected sweep to return 200, got %d: %s", sweepResp.StatusCode, body)
	}

	pdfReq, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/travel/requests/"+requestID+"/statement.pdf", nil)
	if err != nil {
		t.Fatalf("failed to build statement request: %v", err)
	}
	pdfReq.Header.Set("Authorization", "Bearer "+token)
	pdfResp, err := client.Do(pdfReq)
	if err != nil {
		t.Fatalf("statement request failed: %v", err)
	}
	defer pdfResp.Body.Close()
	if pdfResp.StatusCode != http.StatusOK {
		t.Fatalf("expected statement to return 200, got %d", pdfResp.StatusCode)
	}
	if ct := pdfResp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
}

func TestPreviewFailsWithoutCoordinates(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	projectID := createProject(t, client, ts.URL, token)
	subprojectID := createSubproject(t, client, ts.URL, token, projectID)
	employeeID := createEmployee(t, client, ts.URL, token, fmt.Sprintf("nocoords-%d@example.com", time.Now().UnixNano()))

	resp, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/calculations/preview", bytes.NewBufferString(fmt.Sprintf(
		`{"subprojectId":%q,"employeeId":%q,"daysPerWeek":5}`, subprojectID, employeeID)))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Authorization", "Bearer "+token)
	httpResp, err := client.Do(resp)
	if err != nil {
		t.Fatalf("preview request failed: %v", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusConflict {
		body, _ := io.ReadAll(httpResp.Body)
		t.Fatalf("expected 409 for ungeocoded addresses, got %d: %s", httpResp.StatusCode, body)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createProject(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/projects", token, map[string]any{
		"name":             "Journey Project",
		"code":             fmt.Sprintf("JP-%d", time.Now().UnixNano()),
		"defaultCostPerKm": 0.5,
	})
	return extractID(t, resp)
}

func createSubproject(t *testing.T, client *http.Client, baseURL, token, projectID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/projects/"+projectID+"/subprojects", token, map[string]any{
		"name":    "Site Office",
		"address": "Rue du Rhone 1, Geneva",
	})
	return extractID(t, resp)
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, email string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/employees", token, map[string]any{
		"firstName":   "Journey",
		"lastName":    "Tester",
		"email":       email,
		"homeAddress": "Bahnhofstrasse 1, Zurich",
	})
	return extractID(t, resp)
}

func submitTravelRequest(t *testing.T, client *http.Client, baseURL, token, employeeID, subprojectID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/travel/requests", token, map[string]any{
		"employeeId":   employeeID,
		"subprojectId": subprojectID,
		"daysPerWeek":  5,
		"purpose":      "Site work",
	})
	return extractID(t, resp)
}

func decideTravelRequest(t *testing.T, client *http.Client, baseURL, token, requestID, decision string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/travel/requests/"+requestID+"/"+decision, token, map[string]any{})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode decision response: %v", err)
	}
	status, _ := payload["status"].(string)
	return status
}

func listAudit(t *testing.T, client *http.Client, baseURL, token, requestID string) []map[string]any {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/calculations/audit/"+requestID, nil)
	if err != nil {
		t.Fatalf("failed to build audit request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("audit request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected audit 200, got %d: %s", resp.StatusCode, body)
	}

	var env struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode audit response: %v", err)
	}
	return env.Data
}

func extractID(t *testing.T, resp envelope) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatalf("expected id in response, got %v", payload)
	}
	return id
}

func postJSON(t *testing.T, client *http.Client, url, token string, payload any) envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(raw))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		t.Fatalf("request to %s failed with %d: %s", url, resp.StatusCode, body)
	}

	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			t.Fatalf("failed to decode envelope from %s: %v", url, err)
		}
	}
	return env
}
