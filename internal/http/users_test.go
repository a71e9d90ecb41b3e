package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/codetutor/internal/db"
	"github.com/codetutor/internal/domain"
)

func TestGetMe(t *testing.T) {
	s, database := newTestServer(t, nil)
	_, pair := createUser(t, s, database, "alice", "alice@x.com", domain.RoleStudent)

	w := doRequest(t, s, http.MethodGet, "/api/me", requestOptions{bearer: pair.AccessToken})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
	}

	var data struct {
		User *db.PublicUser `json:"user"`
	}
	decodeData(t, w, &data)
	if data.User == nil || data.User.Username != "alice" {
		t.Errorf("user = %+v", data.User)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("me response leaks credential fields: %s", w.Body.String())
	}
}

func TestUpdateMe(t *testing.T) {
	s, database := newTestServer(t, nil)
	_, alicePair := createUser(t, s, database, "alice", "alice@x.com", domain.RoleStudent)
	createUser(t, s, database, "bob", "bob@x.com", domain.RoleStudent)

	t.Run("change username", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/me", requestOptions{
			bearer: alicePair.AccessToken,
			body:   UpdateProfileRequest{Username: "alice-new"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
		}

		user, err := database.GetUserByUsername("alice-new")
		if err != nil {
			t.Fatalf("GetUserByUsername() failed: %v", err)
		}
		if user.Email != "alice@x.com" {
			t.Error("untouched email changed during a username-only update")
		}
	})

	t.Run("change email normalizes", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/me", requestOptions{
			bearer: alicePair.AccessToken,
			body:   UpdateProfileRequest{Email: "Alice-New@X.com"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
		}
		if _, err := database.GetUserByEmail("alice-new@x.com"); err != nil {
			t.Errorf("normalized email not persisted: %v", err)
		}
	})

	t.Run("invalid username", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/me", requestOptions{
			bearer: alicePair.AccessToken,
			body:   UpdateProfileRequest{Username: "admin"},
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("taken email", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/me", requestOptions{
			bearer: alicePair.AccessToken,
			body:   UpdateProfileRequest{Email: "bob@x.com"},
		})
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})
}

func TestListUsers(t *testing.T) {
	s, database := newTestServer(t, nil)
	_, adminPair := createUser(t, s, database, "boss", "boss@x.com", domain.RoleAdmin)
	createUser(t, s, database, "alice", "alice@x.com", domain.RoleStudent)

	w := doRequest(t, s, http.MethodGet, "/api/admin/users", requestOptions{bearer: adminPair.AccessToken})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
	}

	var data struct {
		Users []*db.PublicUser `json:"users"`
	}
	decodeData(t, w, &data)
	if len(data.Users) != 2 {
		t.Errorf("listed %d users, want 2", len(data.Users))
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("user listing leaks credential fields: %s", w.Body.String())
	}
}

func TestUpdateUserRole(t *testing.T) {
	s, database := newTestServer(t, nil)
	admin, adminPair := createUser(t, s, database, "boss", "boss@x.com", domain.RoleAdmin)
	alice, _ := createUser(t, s, database, "alice", "alice@x.com", domain.RoleStudent)

	t.Run("promote", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/"+alice.ID+"/role", requestOptions{
			bearer: adminPair.AccessToken,
			body:   UpdateRoleRequest{Role: domain.RoleMentor},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
		}
		got, _ := database.GetUserByID(alice.ID)
		if got.Role != domain.RoleMentor {
			t.Errorf("role = %s, want mentor", got.Role)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/"+alice.ID+"/role", requestOptions{
			bearer: adminPair.AccessToken,
			body:   UpdateRoleRequest{Role: domain.Role("superuser")},
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("self-demotion blocked", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/"+admin.ID+"/role", requestOptions{
			bearer: adminPair.AccessToken,
			body:   UpdateRoleRequest{Role: domain.RoleStudent},
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		got, _ := database.GetUserByID(admin.ID)
		if got.Role != domain.RoleAdmin {
			t.Error("self-demotion went through")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/missing/role", requestOptions{
			bearer: adminPair.AccessToken,
			body:   UpdateRoleRequest{Role: domain.RoleMentor},
		})
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestSetUserActive(t *testing.T) {
	s, database := newTestServer(t, nil)
	admin, adminPair := createUser(t, s, database, "boss", "boss@x.com", domain.RoleAdmin)
	alice, alicePair := createUser(t, s, database, "alice", "alice@x.com", domain.RoleStudent)

	disable := false
	enable := true

	t.Run("disable a user", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/"+alice.ID+"/active", requestOptions{
			bearer: adminPair.AccessToken,
			body:   SetActiveRequest{Active: &disable},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", w.Code, w.Body.String())
		}

		// A disabled account cannot log in or refresh
		login := doRequest(t, s, http.MethodPost, "/auth/login", requestOptions{body: LoginRequest{
			Email: "alice@x.com", Password: testPassword,
		}})
		if login.Code != http.StatusForbidden {
			t.Errorf("disabled login status = %d, want 403", login.Code)
		}
		refresh := doRequest(t, s, http.MethodPost, "/auth/refresh", requestOptions{
			body: RefreshRequest{RefreshToken: alicePair.RefreshToken},
		})
		if refresh.Code != http.StatusForbidden {
			t.Errorf("disabled refresh status = %d, want 403", refresh.Code)
		}
	})

	t.Run("re-enable", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/"+alice.ID+"/active", requestOptions{
			bearer: adminPair.AccessToken,
			body:   SetActiveRequest{Active: &enable},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		login := doRequest(t, s, http.MethodPost, "/auth/login", requestOptions{body: LoginRequest{
			Email: "alice@x.com", Password: testPassword,
		}})
		if login.Code != http.StatusOK {
			t.Errorf("re-enabled login status = %d, want 200", login.Code)
		}
	})

	t.Run("self-disable blocked", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/"+admin.ID+"/active", requestOptions{
			bearer: adminPair.AccessToken,
			body:   SetActiveRequest{Active: &disable},
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("missing active field", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPut, "/api/admin/users/"+alice.ID+"/active", requestOptions{
			bearer: adminPair.AccessToken,
			body:   map[string]any{},
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestGetSystemStats(t *testing.T) {
	s, database := newTestServer(t, nil)
	_, adminPair := createUser(t, s, database, "boss", "boss@x.com", domain.RoleAdmin)
	_, studentPair := createUser(t, s, database, "alice", "alice@x.com", domain.RoleStudent)

	w := doRequest(t, s, http.MethodGet, "/api/admin/system", requestOptions{bearer: adminPair.AccessToken})
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/admin/system", requestOptions{bearer: studentPair.AccessToken})
	if w.Code != http.StatusForbidden {
		t.Errorf("student status = %d, want 403", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodGet, "/api/health", requestOptions{})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
