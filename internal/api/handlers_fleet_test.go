package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/groundtime-visualizer/backend/internal/session"
	"github.com/groundtime-visualizer/backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

const validFleetYAML = `version: 1
group_by: carrier
groups:
  - name: Mainline
    color: steelblue
    carriers: [UA, AA]
  - name: Regional
    color: orange
    carriers: [OO]
`

func uploadFleetRules(t *testing.T, e *echo.Echo, h *Handler, content string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "fleet.yaml")
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/fleet/rules", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h.HandleUploadFleetRules(c)
}

func TestFleetRulesLifecycle(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	// No rules yet
	req := httptest.NewRequest(http.MethodGet, "/api/fleet/rules", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.HandleGetFleetRules(c); err != nil {
		t.Fatalf("HandleGetFleetRules failed: %v", err)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"hasRules":false`)) {
		t.Errorf("expected hasRules false, got %s", rec.Body.String())
	}

	// Upload rules
	rec, err := uploadFleetRules(t, e, h, validFleetYAML)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	// Rules are served back
	req = httptest.NewRequest(http.MethodGet, "/api/fleet/rules", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := h.HandleGetFleetRules(c); err != nil {
		t.Fatalf("HandleGetFleetRules failed: %v", err)
	}
	for _, want := range []string{`"hasRules":true`, `"groupBy":"carrier"`, `"name":"Mainline"`} {
		if !bytes.Contains(rec.Body.Bytes(), []byte(want)) {
			t.Errorf("response missing %s: %s", want, rec.Body.String())
		}
	}
}

func TestUploadFleetRules_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{{"},
		{"unknown group_by", "group_by: tailfin\ngroups: []\n"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			_, err := uploadFleetRules(t, e, h, tt.content)
			if err == nil {
				t.Fatal("expected an error")
			}
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Code != "BAD_REQUEST" {
				t.Errorf("expected BAD_REQUEST, got %s", apiErr.Code)
			}
		})
	}
}

func TestLoadDefaultFleetRules(t *testing.T) {
	store := testutil.NewMockStorage(t.TempDir())
	sessions := session.NewManagerWithTempDir(t.TempDir())
	dataDir := t.TempDir()
	h := NewHandler(store, sessions, dataDir)

	// Missing file is not an error
	if err := h.LoadDefaultFleetRules(); err != nil {
		t.Fatalf("expected missing defaults to be ignored, got %v", err)
	}
	if h.fleetRules != nil {
		t.Fatal("expected no rules loaded")
	}

	defaultsDir := filepath.Join(dataDir, "defaults")
	if err := os.MkdirAll(defaultsDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(defaultsDir, "fleet.yaml"), []byte(validFleetYAML), 0644); err != nil {
		t.Fatal(err)
	}

	if err := h.LoadDefaultFleetRules(); err != nil {
		t.Fatalf("LoadDefaultFleetRules failed: %v", err)
	}
	if h.fleetRules == nil || len(h.fleetRules.Groups) != 2 {
		t.Errorf("expected 2 groups loaded, got %+v", h.fleetRules)
	}
}
