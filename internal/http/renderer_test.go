package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	apperrors "github.com/musicclouds/web/internal/errors"
	"github.com/musicclouds/web/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_EmbeddedPages(t *testing.T) {
	r, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.NoError(t, err)

	for _, page := range []string{"sign-in", "sign-up", "section", "users-management", "not-found"} {
		assert.True(t, r.Has(page), page)
	}

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusTeapot, "section", PageData{
		Title: "Top <Charts>",
		User:  &domainauth.User{Username: "<script>"},
	}))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Top &lt;Charts&gt;")
	assert.NotContains(t, rec.Body.String(), "<script>")
}

func TestTemplateRenderer_UnknownPage(t *testing.T) {
	r, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "missing", PageData{}))
	assert.Zero(t, rec.Body.Len())
}

func TestTemplateRenderer_CustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.tmpl":       {Data: []byte(`{{define "layout"}}[{{template "content" .}}]{{end}}`)},
		"partials/x.tmpl":   {Data: []byte(`{{define "x"}}{{end}}`)},
		"pages/hello.tmpl":  {Data: []byte(`{{define "content"}}hello {{.Title}}{{end}}`)},
		"pages/broken.tmpl": {Data: []byte(`{{define "content"}}{{.Nope.Deeper}}{{end}}`)},
	}
	r, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "hello", PageData{Title: "there"}))
	assert.Equal(t, "[hello there]", rec.Body.String())

	rec = httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "broken", PageData{}))
	assert.Zero(t, rec.Body.Len())

	_, err = NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fstest.MapFS{
		"layout.tmpl":     {Data: []byte(`{{define "layout"}}{{end}}`)},
		"partials/x.tmpl": {Data: []byte(``)},
	}})
	assert.Error(t, err)
}

func TestBackendError(t *testing.T) {
	tests := []struct {
		err  error
		code apperrors.ErrorCode
	}{
		{&ports.AuthRejectedError{Op: "login"}, apperrors.ErrCodeUnauthorized},
		{&ports.NetworkError{Op: "x", Status: http.StatusNotFound}, apperrors.ErrCodeNotFound},
		{&ports.NetworkError{Op: "x", Status: http.StatusConflict}, apperrors.ErrCodeConflict},
		{&ports.NetworkError{Op: "x", Status: http.StatusBadRequest}, apperrors.ErrCodeValidation},
		{&ports.NetworkError{Op: "x", Status: http.StatusForbidden}, apperrors.ErrCodeForbidden},
		{&ports.NetworkError{Op: "x", Err: errors.New("refused")}, apperrors.ErrCodeUnavailable},
		{errors.New("store credential: boom"), apperrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		got := backendError(tt.err)
		assert.Equal(t, tt.code, apperrors.Code(got), tt.err.Error())
		assert.ErrorIs(t, got, tt.err)
		assert.NotEmpty(t, userMessage(got))
	}
	assert.NoError(t, backendError(nil))
}

func TestWriteAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, apperrors.NotFound("no such user"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"no such user"}`, rec.Body.String())
}
