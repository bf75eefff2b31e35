package auth_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireJSONFields(t *testing.T, resp *http.Response, want map[string]any) {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	for field, value := range want {
		require.Equal(t, value, body[field], "field %s", field)
	}
}
