// internal/services/image_service_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
	"github.com/Corphon/CharacterForge/internal/imagegen"
	"github.com/Corphon/CharacterForge/internal/utils"
)

// stubProvider 按脚本响应的生成提供者
type stubProvider struct {
	requests []imagegen.GenerateRequest
	respond  func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error)
}

func (p *stubProvider) Initialize(config map[string]string) error { return nil }
func (p *stubProvider) GetName() string                           { return "stub" }

func (p *stubProvider) GenerateImage(ctx context.Context, req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
	p.requests = append(p.requests, req)
	return p.respond(req)
}

func newTestImageService(t *testing.T, provider imagegen.Provider) *ImageService {
	t.Helper()
	logger, err := utils.NewLogger("", utils.ERROR)
	require.NoError(t, err)
	return NewImageService(provider, logger, "1024x1024", "standard")
}

func TestGenerateImageReturnsInlineData(t *testing.T) {
	provider := &stubProvider{
		respond: func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
			return &imagegen.GenerateResult{Data: []byte("png-bytes")}, nil
		},
	}
	service := newTestImageService(t, provider)

	seed := int64(42)
	image, err := service.GenerateImage(context.Background(), "a fox", &seed)
	require.NoError(t, err)

	assert.Equal(t, []byte("png-bytes"), image.Data)
	require.NotNil(t, image.Seed)
	assert.Equal(t, int64(42), *image.Seed, "后端未回显时沿用请求种子")
}

func TestGenerateImageSeedFallback(t *testing.T) {
	provider := &stubProvider{
		respond: func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
			if req.Seed != nil {
				return nil, imagegen.ErrSeedUnsupported
			}
			return &imagegen.GenerateResult{Data: []byte("png-bytes")}, nil
		},
	}
	service := newTestImageService(t, provider)

	seed := int64(42)
	image, err := service.GenerateImage(context.Background(), "a fox", &seed)
	require.NoError(t, err, "种子能力失败应静默降级一次")

	// 第一次带种子，第二次不带
	require.Len(t, provider.requests, 2)
	assert.NotNil(t, provider.requests[0].Seed)
	assert.Nil(t, provider.requests[1].Seed)

	// 降级后原始种子仍是记录值
	require.NotNil(t, image.Seed)
	assert.Equal(t, int64(42), *image.Seed)
}

func TestGenerateImageNoFallbackForOtherErrors(t *testing.T) {
	provider := &stubProvider{
		respond: func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
			return nil, apperrors.NewGenerationError("后端限流", nil)
		},
	}
	service := newTestImageService(t, provider)

	seed := int64(42)
	_, err := service.GenerateImage(context.Background(), "a fox", &seed)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))
	assert.Len(t, provider.requests, 1, "非能力协商失败不应重试")
}

func TestGenerateImageNoFallbackWithoutSeed(t *testing.T) {
	provider := &stubProvider{
		respond: func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
			return nil, imagegen.ErrSeedUnsupported
		},
	}
	service := newTestImageService(t, provider)

	_, err := service.GenerateImage(context.Background(), "a fox", nil)
	require.Error(t, err)
	assert.Len(t, provider.requests, 1)
}

func TestGenerateImageDownloadsURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("downloaded-bytes"))
	}))
	t.Cleanup(server.Close)

	provider := &stubProvider{
		respond: func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
			return &imagegen.GenerateResult{URL: server.URL + "/img.png"}, nil
		},
	}
	service := newTestImageService(t, provider)

	image, err := service.GenerateImage(context.Background(), "a fox", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("downloaded-bytes"), image.Data)
}

func TestGenerateImageDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	provider := &stubProvider{
		respond: func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
			return &imagegen.GenerateResult{URL: server.URL + "/img.png"}, nil
		},
	}
	service := newTestImageService(t, provider)

	_, err := service.GenerateImage(context.Background(), "a fox", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsAssetFetchError(err), "非2xx下载状态应归类为资产获取失败")
}

func TestGenerateImageEmptyResult(t *testing.T) {
	provider := &stubProvider{
		respond: func(req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
			return &imagegen.GenerateResult{}, nil
		},
	}
	service := newTestImageService(t, provider)

	_, err := service.GenerateImage(context.Background(), "a fox", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))
}
