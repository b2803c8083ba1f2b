package envelope

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestTruncate(t *testing.T) {
	t.Run("501 characters truncate to exactly the maximum", func(t *testing.T) {
		msg := strings.Repeat("a", 501)

		got := Truncate(msg, 500)

		assert.Len(t, got, 500)
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.Equal(t, strings.Repeat("a", 497), strings.TrimSuffix(got, "..."))
	})

	t.Run("500 characters are returned unmodified", func(t *testing.T) {
		msg := strings.Repeat("b", 500)

		assert.Equal(t, msg, Truncate(msg, 500))
	})

	t.Run("surrounding whitespace is trimmed before measuring", func(t *testing.T) {
		msg := "  " + strings.Repeat("c", 500) + "\n"

		assert.Equal(t, strings.Repeat("c", 500), Truncate(msg, 500))
	})

	t.Run("empty message maps to the default", func(t *testing.T) {
		assert.Equal(t, DefaultErrorMessage, Truncate("", 500))
		assert.Equal(t, DefaultErrorMessage, Truncate("   ", 500))
	})

	t.Run("multibyte characters are counted as characters", func(t *testing.T) {
		msg := strings.Repeat("é", 20)

		got := Truncate(msg, 10)

		assert.Equal(t, 10, utf8.RuneCountInString(got))
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("unusable maximum falls back to the default", func(t *testing.T) {
		msg := strings.Repeat("d", 600)

		assert.Len(t, Truncate(msg, 2), DefaultMaxErrorLength)
	})
}

func TestEnvelopeShape(t *testing.T) {
	t.Run("success omits errorDescription", func(t *testing.T) {
		body, err := json.Marshal(Success(&payload{Name: "x"}, "done"))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, StatusSuccess, got["status"])
		assert.Equal(t, "done", got["message"])
		assert.NotContains(t, got, "errorDescription")
		assert.Equal(t, map[string]any{"name": "x"}, got["partyData"])
	})

	t.Run("failure omits partyData and message", func(t *testing.T) {
		body, err := json.Marshal(Fail[payload]("boom", DefaultMaxErrorLength))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, StatusFail, got["status"])
		assert.Equal(t, "boom", got["errorDescription"])
		assert.NotContains(t, got, "partyData")
		assert.NotContains(t, got, "message")
	})
}
