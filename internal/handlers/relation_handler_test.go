package handlers_test

import (
	"net/http"
	"testing"

	"task-tracker-api/internal/middleware"

	"github.com/stretchr/testify/require"
)

func TestAddDependency(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "a@example.com")
	a := e.createTask(t, token, map[string]any{"title": "A"})
	b := e.createTask(t, token, map[string]any{"title": "B"})

	w := e.do(t, http.MethodPost, "/api/tasks/"+a+"/depends-on/"+b, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Dependency added"}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/tasks/"+a+"/dependencies", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		DependsOn []string `json:"depends_on"`
	}](t, w)
	require.Equal(t, []string{b}, resp.DependsOn)
}

func TestAddDependency_Self(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "a@example.com")
	a := e.createTask(t, token, map[string]any{"title": "A"})

	w := e.do(t, http.MethodPost, "/api/tasks/"+a+"/depends-on/"+a, token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "SelfDependency", decode[middleware.ErrorResponse](t, w).Error)
}

func TestAddDependency_UnknownTask(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "a@example.com")
	a := e.createTask(t, token, map[string]any{"title": "A"})

	w := e.do(t, http.MethodPost, "/api/tasks/"+a+"/depends-on/missing", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignees(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "a@example.com")
	_, memberID := e.signup(t, "b@example.com")
	a := e.createTask(t, token, map[string]any{"title": "A"})

	w := e.do(t, http.MethodPost, "/api/tasks/"+a+"/assignees/"+memberID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"assigned":true}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/tasks/"+a+"/assignees", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Assignees []string `json:"assignees"`
	}](t, w)
	require.Equal(t, []string{memberID}, resp.Assignees)

	w = e.do(t, http.MethodDelete, "/api/tasks/"+a+"/assignees/"+memberID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"removed":true}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/tasks/"+a+"/assignees/ghost", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
