package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, map[string]string{"k": "v"}, "created")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 201, body["status"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, body["data"])
}

func TestWriteSuccess_NilDataIsEmptyObject(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusOK, nil, "User logged out")
	assert.JSONEq(t, `{"status":200,"data":{},"message":"User logged out","success":true}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", NewValidationError("All fields are required"), 400, "All fields are required"},
		{"conflict", NewConflictError("exists"), 400, "exists"},
		{"auth", NewAuthError(http.StatusUnauthorized, "Unauthorized request"), 401, "Unauthorized request"},
		{"not found", NewNotFoundError("User does not exist"), 404, "User does not exist"},
		{"wrapped", errors.Join(errors.New("ctx"), NewUploadError("upload failed")), 400, "upload failed"},
		{"internal hides cause", NewInternalError("Something went wrong while registering the user", errors.New("secret detail")), 500, "Something went wrong while registering the user"},
		{"plain error", errors.New("boom"), 500, "Something went wrong"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.msg, body.Message)
			assert.False(t, body.Success)
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidToken, KindOf(NewInvalidTokenError("bad", errors.New("x"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
