package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvelkov/toystore/internal/models"
)

func seedUser(t *testing.T, h *UserHandler, username, role string) models.User {
	user := models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, h.DB.Create(&user).Error)
	return user
}

func TestUpdateRolePromotesEmployee(t *testing.T) {
	h := &UserHandler{DB: newTestDB(t)}
	user := seedUser(t, h, "elena", "employee")

	e := echoNew()
	rec, c := doJSON(e, http.MethodPatch, "/api/v1/admin/users/1/role", map[string]string{"role": "admin"})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, h.DB.First(&got, user.ID).Error)
	require.Equal(t, "admin", got.Role)
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	h := &UserHandler{DB: newTestDB(t)}
	seedUser(t, h, "elena", "employee")

	e := echoNew()
	rec, c := doJSON(e, http.MethodPatch, "/api/v1/admin/users/1/role", map[string]string{"role": "owner"})
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateRole(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInviteSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	h := &UserHandler{DB: newTestDB(t), Mailer: sender, PublicBaseURL: "https://example.test"}

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/admin/users/invite", map[string]string{"email": "nov@example.com"})
	require.NoError(t, h.Invite(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, sender.count())
	require.Equal(t, "nov@example.com", sender.sent[0].To)
}

func TestInviteRequiresValidEmail(t *testing.T) {
	h := &UserHandler{DB: newTestDB(t), Mailer: &fakeSender{}}

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/admin/users/invite", map[string]string{"email": "not-an-email"})
	if err := h.Invite(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchUnavailableWithoutBackend(t *testing.T) {
	h := &SearchHandler{}

	e := echoNew()
	rec, c := doJSON(e, http.MethodGet, "/api/v1/search?q=мече", nil)
	if err := h.Search(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	h := &SearchHandler{}

	e := echoNew()
	rec, c := doJSON(e, http.MethodGet, "/api/v1/search", nil)
	if err := h.Search(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
