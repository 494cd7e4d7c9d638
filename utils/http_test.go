package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("writes status and body", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusTeapot, map[string]string{"k": "v"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "v", body["k"])
	})

	t.Run("nil data writes no body", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteOK(w, map[string]string{"name": "St Marys College"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "St Marys College", data["name"])
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteCreated(w, map[string]string{"id": "abc"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotNil(t, response["data"])
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	WriteNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	details := map[string]interface{}{"field": "subdomain"}

	err := WriteBadRequest(w, "Invalid request body", details)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "bad_request", response.Error)
	assert.Equal(t, "Invalid request body", response.Message)
	assert.Equal(t, "subdomain", response.Details["field"])
}

func TestWriteUnauthorized(t *testing.T) {
	t.Run("custom message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteUnauthorized(w, "invalid email or password")
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "unauthorized", response.Error)
		assert.Equal(t, "invalid email or password", response.Message)
	})

	t.Run("default message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteUnauthorized(w, "")
		require.NoError(t, err)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Authentication required", response.Message)
	})
}

func TestWriteForbidden(t *testing.T) {
	t.Run("custom message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteForbidden(w, "platform administrator role required")
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "forbidden", response.Error)
	})

	t.Run("default message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteForbidden(w, "")
		require.NoError(t, err)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Access forbidden", response.Message)
	})
}

func TestWriteNotFound(t *testing.T) {
	t.Run("custom message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteNotFound(w, "school not found")
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "not_found", response.Error)
		assert.Equal(t, "school not found", response.Message)
	})

	t.Run("default message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteNotFound(w, "")
		require.NoError(t, err)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Resource not found", response.Message)
	})
}

func TestWriteConflict(t *testing.T) {
	w := httptest.NewRecorder()
	details := map[string]interface{}{"subdomain": "stmarys"}

	err := WriteConflict(w, "subdomain already registered", details)
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "conflict", response.Error)
	assert.Equal(t, "subdomain already registered", response.Message)
	assert.Equal(t, "stmarys", response.Details["subdomain"])
}

func TestWriteInternalServerError(t *testing.T) {
	t.Run("custom message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteInternalServerError(w, "something broke")
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "internal", response.Error)
		assert.Equal(t, "something broke", response.Message)
	})

	t.Run("default message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteInternalServerError(w, "")
		require.NoError(t, err)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Internal server error", response.Message)
	})
}

func TestWriteSchoolUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	details := map[string]interface{}{"status": "suspended", "redirect": "/suspended"}

	err := WriteSchoolUnavailable(w, "school account is suspended", details)
	require.NoError(t, err)

	// Deliberately 200: clients render the payload, not an error page.
	assert.Equal(t, http.StatusOK, w.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "school_unavailable", response.Error)
	assert.Equal(t, "school account is suspended", response.Message)
	assert.Equal(t, "/suspended", response.Details["redirect"])
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteError(w, http.StatusForbidden, "module_disabled", "module not enabled for this school",
		map[string]interface{}{"module": "reporting", "tier": "basic"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "module_disabled", response.Error)
	assert.Equal(t, "reporting", response.Details["module"])
}
