package parse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/repository"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *AccountRepository {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{
		ServerURL:     srv.URL,
		ApplicationID: "app-id",
		ClientKey:     "client-key",
		MasterKey:     "master-key",
	}, nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	return NewAccountRepository(client)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestLookupSendsCombinedQuery(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Parse-Application-Id") != "app-id" {
			t.Fatal("missing application id header")
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Fatalf("expected limit=1, got %q", got)
		}

		var where map[string]any
		if err := json.Unmarshal([]byte(r.URL.Query().Get("where")), &where); err != nil {
			t.Fatalf("decode where predicate: %v", err)
		}
		or, ok := where["$or"].([]any)
		if !ok || len(or) != 2 {
			t.Fatalf("expected two $or branches, got %v", where)
		}
		emailBranch := or[0].(map[string]any)
		if emailBranch["email"] != "john@example.com" {
			t.Fatalf("email branch must be lowercased, got %v", emailBranch)
		}
		mobileBranch := or[1].(map[string]any)
		if mobileBranch["mobileNumber"] != "John@Example.com" {
			t.Fatalf("mobile branch must keep the raw value, got %v", mobileBranch)
		}

		writeJSON(t, w, http.StatusOK, map[string]any{
			"results": []map[string]any{{
				"objectId": "acc-1",
				"username": "johnny",
				"email":    "john@example.com",
			}},
		})
	})

	account, err := repo.Lookup(context.Background(), domain.ClassifyIdentifier("John@Example.com"))
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if account.ID != "acc-1" || account.Username != "johnny" {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestLookupMiss(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"results": []any{}})
	})

	_, err := repo.Lookup(context.Background(), domain.ClassifyIdentifier("ghost@example.com"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthenticateRequestsRevocableSession(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Parse-Revocable-Session") != "1" {
			t.Fatal("missing revocable session header")
		}
		if r.URL.Query().Get("username") != "johnny" || r.URL.Query().Get("password") != "Sup3r$ecret" {
			t.Fatalf("unexpected credentials %v", r.URL.Query())
		}

		writeJSON(t, w, http.StatusOK, map[string]any{
			"objectId":     "acc-1",
			"username":     "johnny",
			"sessionToken": "r:tok",
		})
	})

	account, err := repo.Authenticate(context.Background(), "johnny", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if account.SessionToken != "r:tok" {
		t.Fatalf("expected session token, got %q", account.SessionToken)
	}
}

func TestAuthenticateWrongCredentials(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"code": 101, "error": "Invalid username/password."})
	})

	_, err := repo.Authenticate(context.Background(), "johnny", "wrong")
	if !errors.Is(err, repository.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateSendsExactlyOneContactField(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "new@example.com" {
			t.Fatalf("expected email field, got %v", body)
		}
		if _, present := body["mobileNumber"]; present {
			t.Fatal("mobileNumber must be omitted for email sign-up")
		}

		writeJSON(t, w, http.StatusCreated, map[string]any{
			"objectId":     "acc-9",
			"createdAt":    "2026-03-01T12:00:00.000Z",
			"sessionToken": "r:new",
		})
	})

	account, err := repo.Create(context.Background(), domain.NewAccount{
		Username: "newuser",
		Password: "Sup3r$ecret",
		Email:    "new@example.com",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if account.ID != "acc-9" || account.Email != "new@example.com" {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestCreateDuplicateErrors(t *testing.T) {
	cases := []struct {
		name string
		code int
		want error
	}{
		{name: "username taken", code: 202, want: repository.ErrUsernameTaken},
		{name: "email taken", code: 203, want: repository.ErrEmailTaken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusBadRequest, map[string]any{"code": tc.code, "error": "taken"})
			})

			_, err := repo.Create(context.Background(), domain.NewAccount{
				Username: "dup",
				Password: "Sup3r$ecret",
				Email:    "dup@example.com",
			})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSetPasswordUsesMasterKey(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/users/acc-1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Parse-Master-Key") != "master-key" {
			t.Fatal("missing master key header")
		}
		if r.Header.Get("X-Parse-Client-Key") != "" {
			t.Fatal("client key must not accompany master key")
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["password"] != "N3w$ecret!" {
			t.Fatalf("unexpected body %v", body)
		}

		writeJSON(t, w, http.StatusOK, map[string]any{"updatedAt": "2026-03-01T12:00:00.000Z"})
	})

	if err := repo.SetPassword(context.Background(), "acc-1", "N3w$ecret!"); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}
}

func TestSetPasswordUnknownAccount(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"code": 101, "error": "Object not found."})
	})

	if err := repo.SetPassword(context.Background(), "ghost", "N3w$ecret!"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLogoutSwallowsDeadToken(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logout" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Parse-Session-Token") != "r:dead" {
			t.Fatal("missing session token header")
		}
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"code": 209, "error": "Invalid session token"})
	})

	if err := repo.Logout(context.Background(), "r:dead"); err != nil {
		t.Fatalf("logout of a dead token must succeed, got %v", err)
	}
}

func TestCurrentResolvesSession(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Parse-Session-Token") != "r:tok" {
			t.Fatal("missing session token header")
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"objectId": "acc-1",
			"username": "johnny",
		})
	})

	account, err := repo.Current(context.Background(), "r:tok")
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if account.SessionToken != "r:tok" {
		t.Fatalf("expected token backfilled on account, got %q", account.SessionToken)
	}
}

func TestCurrentDeadToken(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"code": 209, "error": "Invalid session token"})
	})

	_, err := repo.Current(context.Background(), "r:dead")
	if !errors.Is(err, repository.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}
