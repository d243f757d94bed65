package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupBody(username string) map[string]any {
	return map[string]any{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "secret123",
	}
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/api/auth/signup", "", signupBody("vasya"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := decode[map[string]any](t, resp)
	assert.Equal(t, "vasya", user["username"])
	assert.NotContains(t, user, "password")

	resp = env.do(t, http.MethodPost, "/api/auth/signup", "", signupBody("vasya"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[map[string]any](t, resp)["code"])

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "vasya@example.com", "password": "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "vasya@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := decode[map[string]any](t, resp)["auth_token"].(string)
	require.NotEmpty(t, token)

	resp = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "vasya@example.com", decode[map[string]any](t, resp)["email"])
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"Reserved Username", func(b map[string]any) { b["username"] = "me" }},
		{"Bad Email", func(b map[string]any) { b["email"] = "not-an-email" }},
		{"Weak Password", func(b map[string]any) { b["password"] = "short" }},
		{"Bad Username Characters", func(b map[string]any) { b["username"] = "bad name!" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := signupBody("valid")
			tt.mutate(body)
			resp := env.do(t, http.MethodPost, "/api/auth/signup", "", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t, newMiniredis(t))
	_, token := env.createUser(t, "chef")

	resp := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSetPassword(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodPost, "/api/auth/signup", "", signupBody("cook"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "cook@example.com", "password": "secret123",
	})
	token := decode[map[string]any](t, resp)["auth_token"].(string)

	resp = env.do(t, http.MethodPost, "/api/users/set_password", token, map[string]any{
		"current_password": "nope", "new_password": "another123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/users/set_password", token, map[string]any{
		"current_password": "secret123", "new_password": "another123",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "cook@example.com", "password": "another123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
