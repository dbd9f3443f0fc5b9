package routes

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kataras/iris/v12"
)

func TestAdminExportLifecycle(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	adminToken := signTestToken(1, "admin")

	resp := doRequest(app, http.MethodPost, "/api/admin/export", adminToken,
		iris.Map{"resource": "properties"})
	if resp.Code != http.StatusOK {
		t.Fatalf("create export: got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Data.ID == "" {
		t.Fatal("expected a job id")
	}
	if created.Data.Status != "pending" {
		t.Fatalf("expected pending on create, got %q", created.Data.Status)
	}

	// Poll while the worker flips the status concurrently
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp = doRequest(app, http.MethodGet, "/api/admin/export/"+created.Data.ID, adminToken, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("get export: got %d", resp.Code)
		}
		var polled struct {
			Data struct {
				Status string `json:"status"`
			} `json:"data"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &polled); err != nil {
			t.Fatalf("decode poll: %v", err)
		}
		if polled.Data.Status == "done" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("export never finished, last status %q", polled.Data.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestAdminExportUnknownJob(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	resp := doRequest(app, http.MethodGet, "/api/admin/export/does-not-exist", signTestToken(1, "admin"), nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown job, got %d", resp.Code)
	}
}

func TestAdminExportRequiresResource(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	resp := doRequest(app, http.MethodPost, "/api/admin/export", signTestToken(1, "admin"),
		iris.Map{"filters": iris.Map{"status": "published"}})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without resource, got %d", resp.Code)
	}
}
