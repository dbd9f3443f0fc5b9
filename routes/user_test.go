package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/zehrydogan/aydogan-arsa-sub001/models"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"

	"github.com/kataras/iris/v12"
)

func TestRegisterAndLogin(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	resp := doRequest(app, http.MethodPost, "/api/user/register", "",
		iris.Map{
			"firstName": "Zehra",
			"lastName":  "Aydoğan",
			"email":     "Zehra@Example.com",
			"password":  "sifre1234",
		})
	if resp.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var registered struct {
		ID           uint   `json:"ID"`
		Email        string `json:"email"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if registered.Email != "zehra@example.com" {
		t.Fatalf("expected lowercased email, got %q", registered.Email)
	}
	if registered.AccessToken == "" || registered.RefreshToken == "" {
		t.Fatal("expected a token pair on register")
	}

	// Lookup by email is case insensitive, so re-registering conflicts
	resp = doRequest(app, http.MethodPost, "/api/user/register", "",
		iris.Map{
			"firstName": "Zehra",
			"lastName":  "Aydoğan",
			"email":     "zehra@example.com",
			"password":  "sifre1234",
		})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.Code)
	}

	var users int64
	storage.DB.Model(&models.User{}).Count(&users)
	if users != 1 {
		t.Fatalf("expected 1 user, got %d", users)
	}

	resp = doRequest(app, http.MethodPost, "/api/user/login", "",
		iris.Map{"email": "zehra@example.com", "password": "sifre1234"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(app, http.MethodPost, "/api/user/login", "",
		iris.Map{"email": "zehra@example.com", "password": "yanlis-sifre"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", resp.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	newTestDB(t)
	app := buildTestApp()

	resp := doRequest(app, http.MethodPost, "/api/user/login", "",
		iris.Map{"email": "yok@example.com", "password": "sifre1234"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", resp.Code)
	}
}
