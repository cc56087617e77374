package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHTTPUnknownPath(t *testing.T) {
	assert := assert.New(t)

	s := &Server{}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(http.StatusNotFound, rec.Code)
	assert.Contains(rec.Body.String(), "Path not found.")
}

func TestHandleLogin(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("API_KEY", "sesame")
	t.Setenv("ACCESS_KEY", "signing-secret")

	s := &Server{}
	login := s.HandleLogin()

	body := strings.NewReader(`{"APIKey": "sesame", "Client": "tests"}`)
	rec := httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/login", body), nil)

	assert.Equal(http.StatusOK, rec.Code)
	var out struct{ JWT string }
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.NotEmpty(out.JWT)

	// a wrong key is rejected
	body = strings.NewReader(`{"APIKey": "wrong", "Client": "tests"}`)
	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/login", body), nil)
	assert.Equal(http.StatusUnauthorized, rec.Code)
}

func TestValidateAcceptsFreshToken(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("API_KEY", "sesame")
	t.Setenv("ACCESS_KEY", "signing-secret")

	s := &Server{}

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"APIKey": "sesame", "Client": "tests"}`)
	s.HandleLogin()(rec, httptest.NewRequest(http.MethodPost, "/login", body), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct{ JWT string }
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	called := false
	wrapped := s.Validate(func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		called = true
		assert.Equal("tests", r.Context().Value(clientKey{}))
	})

	req := httptest.NewRequest(http.MethodPost, "/transcribe", nil)
	req.Header.Set("Authorization", "Bearer "+out.JWT)
	rec = httptest.NewRecorder()
	wrapped(rec, req, nil)

	assert.True(called)
	// the middleware refreshes the token on the way out
	assert.NotEmpty(rec.Header().Get("Authorization"))
}

func TestValidateRejectsBadTokens(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("ACCESS_KEY", "signing-secret")

	s := &Server{}
	wrapped := s.Validate(func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		t.Fatal("handler must not run without a valid token")
	})

	req := httptest.NewRequest(http.MethodPost, "/transcribe", nil)
	rec := httptest.NewRecorder()
	wrapped(rec, req, nil)
	assert.Equal(http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/transcribe", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec = httptest.NewRecorder()
	wrapped(rec, req, nil)
	assert.Equal(http.StatusUnauthorized, rec.Code)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleTranscribeRejectsBadUploads(t *testing.T) {
	assert := assert.New(t)

	s := &Server{}
	handle := s.HandleTranscribeRequest()

	// unsupported extension
	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("not audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handle(rec, req, nil)
	assert.Equal(http.StatusBadRequest, rec.Code)
	assert.Contains(rec.Body.String(), "Unsupported file type.")

	// missing file field
	body, contentType = multipartUpload(t, "other", "a.wav", []byte{0})
	req = httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	handle(rec, req, nil)
	assert.Equal(http.StatusBadRequest, rec.Code)
}

func TestHandleScoreDownloadRejectsMalformedID(t *testing.T) {
	assert := assert.New(t)

	s := &Server{}
	rec := httptest.NewRecorder()
	params := httprouter.Params{{Key: "id", Value: "not-a-uuid"}}
	s.HandleScoreDownload()(rec, httptest.NewRequest(http.MethodGet, "/scores/not-a-uuid", nil), params)

	assert.Equal(http.StatusBadRequest, rec.Code)
	assert.Contains(rec.Body.String(), "Malformed score id.")
}
