package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	t.Run("double encoded body", func(t *testing.T) {
		env, err := DecodeEnvelope([]byte(`{"statusCode":200,"body":"[{\"postId\":\"1\"}]"}`))
		require.NoError(t, err)
		assert.Equal(t, 200, env.StatusCode)
		assert.JSONEq(t, `[{"postId":"1"}]`, string(env.Body))
		assert.True(t, env.IsArray())
		assert.False(t, env.Failed())
	})

	t.Run("already decoded body is tolerated", func(t *testing.T) {
		env, err := DecodeEnvelope([]byte(`{"body":{"uploadUrl":"https://x"}}`))
		require.NoError(t, err)
		assert.Equal(t, 0, env.StatusCode)
		assert.False(t, env.IsArray())

		var resp uploadURLResponse
		require.NoError(t, env.Decode(&resp))
		assert.Equal(t, "https://x", resp.UploadURL)
	})

	t.Run("failure status", func(t *testing.T) {
		env, err := DecodeEnvelope([]byte(`{"statusCode":500,"body":"{\"error\":\"boom\"}"}`))
		require.NoError(t, err)
		assert.True(t, env.Failed())
		assert.EqualError(t, innerError(env), "boom")
	})

	tests := []struct {
		name  string
		input string
	}{
		{"not json", `<html>bad gateway</html>`},
		{"missing body", `{"statusCode":200}`},
		{"null body", `{"body":null}`},
		{"body string is not json", `{"body":"not json at all"}`},
		{"empty body string", `{"body":""}`},
		{"top level array", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}
