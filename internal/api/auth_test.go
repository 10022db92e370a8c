package api

import (
	"calc_system/internal/domain"
	"calc_system/internal/utils"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRegister(t *testing.T) {
	r, _ := setupTest(t)

	body := `{"username": "alice", "email": "alice@example.com", "password": "secret123"}`
	w := doRequest(t, r, http.MethodPost, "/users/register", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	decodeJSON(t, w, &resp)
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("expected an issued bearer token, got %+v", resp)
	}
	if resp.User.ID == 0 || resp.User.Username != "alice" || resp.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestRegister_Duplicates(t *testing.T) {
	r, _ := setupTest(t)

	first := `{"username": "dupuser", "email": "first@example.com", "password": "secret123"}`
	if w := doRequest(t, r, http.MethodPost, "/users/register", first, ""); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	// Same username, different email
	sameName := `{"username": "dupuser", "email": "second@example.com", "password": "secret123"}`
	w := doRequest(t, r, http.MethodPost, "/users/register", sameName, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", w.Code)
	}
	var body map[string]string
	decodeJSON(t, w, &body)
	if body["error"] != "Username already exists" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}

	// Same email, different username
	sameEmail := `{"username": "otheruser", "email": "first@example.com", "password": "secret123"}`
	w = doRequest(t, r, http.MethodPost, "/users/register", sameEmail, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", w.Code)
	}
	decodeJSON(t, w, &body)
	if body["error"] != "Email already exists" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestRegister_FieldValidation(t *testing.T) {
	r, _ := setupTest(t)

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username": "ab", "email": "a@example.com", "password": "secret123"}`},
		{"bad email", `{"username": "gooduser", "email": "not-an-email", "password": "secret123"}`},
		{"short password", `{"username": "gooduser", "email": "a@example.com", "password": "abc"}`},
		{"missing fields", `{"username": "gooduser"}`},
	}
	for _, tc := range cases {
		w := doRequest(t, r, http.MethodPost, "/users/register", tc.body, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, w.Code)
		}
	}
}

func TestCreateUser_PlainRecord(t *testing.T) {
	r, _ := setupTest(t)

	body := `{"username": "bob", "email": "bob@example.com", "password": "secret123"}`
	w := doRequest(t, r, http.MethodPost, "/users/", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created map[string]any
	decodeJSON(t, w, &created)
	if created["username"] != "bob" || created["created_at"] == nil {
		t.Fatalf("unexpected user record: %+v", created)
	}
	// The bare-record endpoint issues no token and never leaks the hash
	if _, ok := created["access_token"]; ok {
		t.Fatal("plain user creation must not issue a token")
	}
	if _, ok := created["password_hash"]; ok {
		t.Fatal("password hash must never be serialized")
	}
}

func TestLogin(t *testing.T) {
	r, _ := setupTest(t)

	reg := `{"username": "carol", "email": "carol@example.com", "password": "mypassword"}`
	if w := doRequest(t, r, http.MethodPost, "/users/register", reg, ""); w.Code != http.StatusCreated {
		t.Fatalf("failed to register: %d", w.Code)
	}

	w := doRequest(t, r, http.MethodPost, "/users/login", `{"username": "carol", "password": "mypassword"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, w, &resp)

	// The issued token resolves back to the same user
	me := doRequest(t, r, http.MethodGet, "/users/me", "", resp.AccessToken)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 from /users/me, got %d", me.Code)
	}
	var user domain.User
	decodeJSON(t, me, &user)
	if user.Username != "carol" {
		t.Fatalf("expected carol, got %q", user.Username)
	}
}

func TestLogin_InvalidCredentialsAliased(t *testing.T) {
	r, _ := setupTest(t)

	reg := `{"username": "dave", "email": "dave@example.com", "password": "correctpass"}`
	if w := doRequest(t, r, http.MethodPost, "/users/register", reg, ""); w.Code != http.StatusCreated {
		t.Fatalf("failed to register: %d", w.Code)
	}

	wrongPass := doRequest(t, r, http.MethodPost, "/users/login", `{"username": "dave", "password": "wrongpass"}`, "")
	noUser := doRequest(t, r, http.MethodPost, "/users/login", `{"username": "nobody", "password": "whatever"}`, "")
	if wrongPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", wrongPass.Code, noUser.Code)
	}
	// Identical bodies prevent user enumeration
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Fatalf("failure messages must be identical:\n%s\n%s", wrongPass.Body.String(), noUser.Body.String())
	}
}

func TestMe_Unauthorized(t *testing.T) {
	r, _ := setupTest(t)

	// Missing header
	w := doRequest(t, r, http.MethodGet, "/users/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	// Garbage token
	w = doRequest(t, r, http.MethodGet, "/users/me", "", "not.a.token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token, got %d", w.Code)
	}
	// Expired token
	expired, err := utils.GenerateJWT(1, "ghost", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	w = doRequest(t, r, http.MethodGet, "/users/me", "", expired)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
	// Valid signature but no matching user
	orphan, err := utils.GenerateJWT(9999, "ghost", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	w = doRequest(t, r, http.MethodGet, "/users/me", "", orphan)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when claims resolve to no user, got %d", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	r, _ := setupTest(t)

	reg := `{"username": "erin", "email": "erin@example.com", "password": "secret123"}`
	w := doRequest(t, r, http.MethodPost, "/users/register", reg, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to register: %d", w.Code)
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, w, &resp)
	token := resp.AccessToken

	// Update both fields
	w = doRequest(t, r, http.MethodPut, "/users/me", `{"username": "erin2", "email": "erin2@example.com"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var user domain.User
	decodeJSON(t, w, &user)
	if user.Username != "erin2" || user.Email != "erin2@example.com" {
		t.Fatalf("unexpected updated record: %+v", user)
	}

	// The pre-rename token still resolves through the embedded user ID
	me := doRequest(t, r, http.MethodGet, "/users/me", "", token)
	if me.Code != http.StatusOK {
		t.Fatalf("old token should resolve via ID fallback, got %d", me.Code)
	}
	decodeJSON(t, me, &user)
	if user.Username != "erin2" {
		t.Fatalf("expected renamed user, got %q", user.Username)
	}

	// Partial update: email only, username untouched
	w = doRequest(t, r, http.MethodPut, "/users/me", `{"email": "erin3@example.com"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	decodeJSON(t, w, &user)
	if user.Username != "erin2" || user.Email != "erin3@example.com" {
		t.Fatalf("partial update touched the wrong fields: %+v", user)
	}
}

func TestUpdateProfile_Conflict(t *testing.T) {
	r, _ := setupTest(t)

	for i := 1; i <= 2; i++ {
		body := fmt.Sprintf(`{"username": "user%d", "email": "user%d@example.com", "password": "secret123"}`, i, i)
		if w := doRequest(t, r, http.MethodPost, "/users/register", body, ""); w.Code != http.StatusCreated {
			t.Fatalf("failed to register user%d: %d", i, w.Code)
		}
	}
	w := doRequest(t, r, http.MethodPost, "/users/login", `{"username": "user2", "password": "secret123"}`, "")
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, w, &resp)

	// user2 cannot take user1's username
	w = doRequest(t, r, http.MethodPut, "/users/me", `{"username": "user1"}`, resp.AccessToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for conflicting username, got %d", w.Code)
	}

	// Re-submitting your own current values is not a conflict
	w = doRequest(t, r, http.MethodPut, "/users/me", `{"username": "user2"}`, resp.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for no-op update, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChangePassword(t *testing.T) {
	r, _ := setupTest(t)

	reg := `{"username": "frank", "email": "frank@example.com", "password": "oldpassword"}`
	w := doRequest(t, r, http.MethodPost, "/users/register", reg, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to register: %d", w.Code)
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, w, &resp)
	token := resp.AccessToken

	// Wrong current password is rejected
	w = doRequest(t, r, http.MethodPost, "/users/me/change-password",
		`{"current_password": "nottheone", "new_password": "newpassword"}`, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong current password, got %d", w.Code)
	}

	// Correct current password succeeds
	w = doRequest(t, r, http.MethodPost, "/users/me/change-password",
		`{"current_password": "oldpassword", "new_password": "newpassword"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Old password no longer logs in, the new one does
	w = doRequest(t, r, http.MethodPost, "/users/login", `{"username": "frank", "password": "oldpassword"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with retired password, got %d", w.Code)
	}
	w = doRequest(t, r, http.MethodPost, "/users/login", `{"username": "frank", "password": "newpassword"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with new password, got %d", w.Code)
	}
}
