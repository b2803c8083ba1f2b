package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "party/pkg/domain-errors"
	"party/pkg/envelope"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("uncoded error uses the default description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection reset by peer"), envelope.DefaultMaxErrorLength)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, envelope.StatusFail, body["status"])
		assert.Equal(t, envelope.DefaultErrorMessage, body["errorDescription"])
		assert.NotContains(t, body, "partyData")
	})

	t.Run("coded error keeps only its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		cause := errors.New("duplicate key value violates unique constraint")
		WriteError(w, dErrors.Wrap(cause, dErrors.CodeConflict, "emailId already exists"), envelope.DefaultMaxErrorLength)

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "emailId already exists", body["errorDescription"])
	})

	t.Run("status follows code", func(t *testing.T) {
		cases := map[dErrors.Code]int{
			dErrors.CodeValidation:   http.StatusBadRequest,
			dErrors.CodeBadRequest:   http.StatusBadRequest,
			dErrors.CodeNotFound:     http.StatusNotFound,
			dErrors.CodeUnauthorized: http.StatusUnauthorized,
			dErrors.CodeRateLimited:  http.StatusTooManyRequests,
			dErrors.CodeInternal:     http.StatusInternalServerError,
		}
		for code, status := range cases {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(code, "x"), 0)
			assert.Equal(t, status, w.Code, string(code))
		}
	})

	t.Run("long descriptions are truncated", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, strings.Repeat("a", 40)), 10)

		body := decodeEnvelope(t, w)
		assert.Equal(t, "aaaaaaa...", body["errorDescription"])
	})
}

func TestWriteSuccess(t *testing.T) {
	type payload struct {
		ID string `json:"id"`
	}
	w := httptest.NewRecorder()
	WriteSuccess(w, http.StatusCreated, &payload{ID: "1"}, "created")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decodeEnvelope(t, w)
	assert.Equal(t, envelope.StatusSuccess, body["status"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, map[string]any{"id": "1"}, body["partyData"])
	assert.NotContains(t, body, "errorDescription")
}

func TestDecodeJSON(t *testing.T) {
	type target struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"x"}`},
		{name: "empty body", body: ``, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "trailing document", body: `{"name":"x"}{"name":"y"}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst target
			err := DecodeJSON(httptest.NewRecorder(), r, &dst)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "x", dst.Name)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}
