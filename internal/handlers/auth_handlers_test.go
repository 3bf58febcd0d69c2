package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvelkov/toystore/internal/models"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	return &AuthHandler{
		DB:            newTestDB(t),
		JWTSecret:     []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestRegisterCreatesEmployee(t *testing.T) {
	h := newAuthHandler(t)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "elena",
		"password": "lozinka123",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, h.DB.Where("username = ?", "elena").First(&user).Error)
	require.Equal(t, "employee", user.Role)
	require.NotEqual(t, "lozinka123", user.PasswordHash)
	require.NotContains(t, rec.Body.String(), "lozinka123")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h := newAuthHandler(t)

	e := echoNew()
	_, c := doJSON(e, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "elena",
		"password": "lozinka123",
	})
	require.NoError(t, h.Register(c))

	rec, c := doJSON(e, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "elena",
		"password": "druga",
	})
	if err := h.Register(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterRequiresCredentials(t *testing.T) {
	h := newAuthHandler(t)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "elena",
	})
	if err := h.Register(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSetsCookiesAndStoresRefreshToken(t *testing.T) {
	h := newAuthHandler(t)

	e := echoNew()
	_, c := doJSON(e, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "elena",
		"password": "lozinka123",
	})
	require.NoError(t, h.Register(c))

	rec, c := doJSON(e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "elena",
		"password": "lozinka123",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	names := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		names[ck.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])

	var resp struct {
		IsAdmin bool `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.IsAdmin)

	var count int64
	require.NoError(t, h.DB.Model(&models.RefreshToken{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	e := echoNew()
	_, c := doJSON(e, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "elena",
		"password": "lozinka123",
	})
	require.NoError(t, h.Register(c))

	rec, c := doJSON(e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "elena",
		"password": "pogresna",
	})
	if err := h.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogOutRevokesRefreshToken(t *testing.T) {
	h := newAuthHandler(t)

	e := echoNew()
	_, c := doJSON(e, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "elena",
		"password": "lozinka123",
	})
	require.NoError(t, h.Register(c))

	loginRec, c := doJSON(e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "elena",
		"password": "lozinka123",
	})
	require.NoError(t, h.Login(c))

	var refresh *http.Cookie
	for _, ck := range loginRec.Result().Cookies() {
		if ck.Name == "refreshToken" {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)

	rec, c := doJSON(e, http.MethodPost, "/api/v1/auth/logout", nil)
	c.Request().AddCookie(refresh)
	require.NoError(t, h.LogOut(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, h.DB.Where("token = ?", refresh.Value).First(&stored).Error)
	require.True(t, stored.Revoked)
}
