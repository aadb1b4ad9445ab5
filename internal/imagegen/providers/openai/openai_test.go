// internal/imagegen/providers/openai/openai_test.go
package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
	"github.com/Corphon/CharacterForge/internal/imagegen"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := &Provider{baseURL: "https://api.openai.com/v1"}
	err := provider.Initialize(map[string]string{
		"api_key":  "test-key",
		"base_url": server.URL,
	})
	require.NoError(t, err)

	return provider, server
}

func seedValue(v int64) *int64 {
	return &v
}

func TestGenerateImageSuccess(t *testing.T) {
	var receivedBody map[string]interface{}

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&receivedBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"created": 1, "data": [{"url": "https://cdn.example.com/img.png"}]}`))
	})

	result, err := provider.GenerateImage(context.Background(), imagegen.GenerateRequest{
		Prompt:  "a red fox",
		Seed:    seedValue(1234),
		Size:    "1024x1024",
		Quality: "standard",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/img.png", result.URL)
	assert.Nil(t, result.Seed, "后端未回显种子时结果中不应出现种子")

	// 种子参数应随请求发送
	assert.Equal(t, float64(1234), receivedBody["seed"])
	assert.Equal(t, "dall-e-3", receivedBody["model"])
	assert.Equal(t, "1024x1024", receivedBody["size"])
}

func TestGenerateImageAdoptsEchoedSeed(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"url": "https://cdn.example.com/img.png", "seed": 987654}]}`))
	})

	result, err := provider.GenerateImage(context.Background(), imagegen.GenerateRequest{
		Prompt: "a red fox",
		Seed:   seedValue(1234),
	})
	require.NoError(t, err)

	require.NotNil(t, result.Seed)
	assert.Equal(t, int64(987654), *result.Seed, "后端回显的种子应原样带回")
}

func TestGenerateImageSeedUnsupported(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Unknown parameter: 'seed'.", "type": "invalid_request_error", "param": "seed", "code": "unknown_parameter"}}`))
	})

	_, err := provider.GenerateImage(context.Background(), imagegen.GenerateRequest{
		Prompt: "a red fox",
		Seed:   seedValue(1234),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, imagegen.ErrSeedUnsupported)
}

func TestGenerateImageSeedRejectionWithoutParamField(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Unrecognized request argument supplied: seed", "type": "invalid_request_error", "code": "unknown_parameter"}}`))
	})

	_, err := provider.GenerateImage(context.Background(), imagegen.GenerateRequest{
		Prompt: "a red fox",
		Seed:   seedValue(1234),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, imagegen.ErrSeedUnsupported)
}

func TestGenerateImageBackendError(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	})

	_, err := provider.GenerateImage(context.Background(), imagegen.GenerateRequest{
		Prompt: "a red fox",
		Seed:   seedValue(1234),
	})
	require.Error(t, err)

	assert.NotErrorIs(t, err, imagegen.ErrSeedUnsupported, "限流错误不应被误判为种子能力失败")
	assert.True(t, apperrors.IsGenerationError(err))
	assert.Contains(t, err.Error(), "Rate limit exceeded")
}

func TestGenerateImageEmptyResponse(t *testing.T) {
	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})

	_, err := provider.GenerateImage(context.Background(), imagegen.GenerateRequest{Prompt: "a red fox"})
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))
}

func TestRegistryProvidesOpenAI(t *testing.T) {
	provider, err := imagegen.GetProvider("openai", map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", provider.GetName())

	_, err = imagegen.GetProvider("nonexistent", nil)
	assert.ErrorIs(t, err, imagegen.ErrUnknownProvider)
}

func TestInitializeRequiresAPIKey(t *testing.T) {
	provider := &Provider{}
	err := provider.Initialize(map[string]string{})
	assert.Error(t, err)
}
