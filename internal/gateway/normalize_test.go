package gateway

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWrappedData(t *testing.T) {
	body := []byte(`{"data": {"record": {"id_number": "7608210157080", "name": "John"}}}`)

	result := Normalize(http.StatusOK, body)

	require.True(t, result.IsSuccess())
	record, ok := result.Data["record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "John", record["name"])
}

func TestNormalizeBareRecord(t *testing.T) {
	body := []byte(`{"record": {"id_number": "7608210157080"}, "subscriptions": []}`)

	result := Normalize(http.StatusOK, body)

	require.True(t, result.IsSuccess())
	assert.Contains(t, result.Data, "record")
	assert.Contains(t, result.Data, "subscriptions")
}

func TestNormalizeErrorEnvelope(t *testing.T) {
	body := []byte(`{"status": "error", "message": "invalid identity number"}`)

	result := Normalize(http.StatusOK, body)

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, ErrorUpstream, result.Category)
	assert.Equal(t, "invalid identity number", result.Message)
}

func TestNormalizeErrorEnvelopeDefaultMessage(t *testing.T) {
	result := Normalize(http.StatusOK, []byte(`{"status": "error"}`))

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, "API returned an error", result.Message)
}

func TestNormalizeHTTPErrorWithMessage(t *testing.T) {
	body := []byte(`{"message": "unauthorized"}`)

	result := Normalize(http.StatusUnauthorized, body)

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, ErrorHTTP, result.Category)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	assert.Equal(t, "unauthorized", result.Message)
}

func TestNormalizeHTTPErrorFallbackMessage(t *testing.T) {
	result := Normalize(http.StatusInternalServerError, []byte("boom"))

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Equal(t, "API error: 500", result.Message)
}

func TestNormalizeInvalidJSON(t *testing.T) {
	result := Normalize(http.StatusOK, []byte("<html>not json</html>"))

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, ErrorParse, result.Category)
	assert.Equal(t, "Invalid response received from API", result.Message)
}

func TestNormalizeSuccessStatusEnvelopeIsNotError(t *testing.T) {
	// A status field with any value other than "error" is part of the data.
	body := []byte(`{"status": "ok", "record": {"id": 1}}`)

	result := Normalize(http.StatusOK, body)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "ok", result.Data["status"])
}

func TestHasRecord(t *testing.T) {
	assert.True(t, HasRecord(map[string]any{"record": map[string]any{"id": 1.0}}))
	assert.False(t, HasRecord(map[string]any{"record": map[string]any{}}))
	assert.False(t, HasRecord(map[string]any{"record": nil}))
	assert.False(t, HasRecord(map[string]any{"other": "value"}))
	assert.False(t, HasRecord(nil))
}
