package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "me.png", "me.png"},
		{"path stripped", `..\..\etc/passwd`, "passwd"},
		{"unsafe runes", "my photo (1).jpg", "my_photo__1_.jpg"},
		{"empty", "", "upload"},
		{"dot only", ".", "upload"},
		{"base truncated", strings.Repeat("a", 300) + ".png", strings.Repeat("a", 64) + ".png"},
		{"long extension dropped", "pic." + strings.Repeat("b", 40), "pic"},
		{"extension only", ".png", "upload.png"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, safeName(tc.in))
		})
	}
}

func TestStager_ReadFieldsMultipartUsesCap(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("fullName", "Alice"))
	require.NoError(t, mw.WriteField("pad", strings.Repeat("x", 4096)))
	require.NoError(t, mw.Close())

	newReq := func() *http.Request {
		r := httptest.NewRequest(http.MethodPatch, "/", bytes.NewReader(body.Bytes()))
		r.Header.Set("Content-Type", mw.FormDataContentType())
		return r
	}

	fields, err := stager{maxBytes: 1 << 20}.readFields(httptest.NewRecorder(), newReq(), "fullName")
	require.NoError(t, err)
	assert.Equal(t, "Alice", fields["fullName"])

	_, err = stager{maxBytes: 1024}.readFields(httptest.NewRecorder(), newReq(), "fullName")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 1024 bytes")
}

func TestRemoveForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.NotPanics(t, func() { removeForm(r) })

	r.MultipartForm = &multipart.Form{}
	assert.NotPanics(t, func() { removeForm(r) })
}
