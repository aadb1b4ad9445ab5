// internal/services/image_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
	"github.com/Corphon/CharacterForge/internal/imagegen"
	"github.com/Corphon/CharacterForge/internal/utils"
)

// GeneratedImage 一次生成调用的最终产物
type GeneratedImage struct {
	Data []byte // 下载完成的图片字节
	Seed *int64 // 本次调用的权威种子：后端回显值优先于请求值
}

// ImageService 生成客户端适配器
// 负责调用生成后端、处理种子能力协商、下载生成结果
type ImageService struct {
	provider   imagegen.Provider
	downloader *http.Client
	logger     *utils.Logger
	size       string
	quality    string
}

// NewImageService 创建生成客户端适配器
func NewImageService(provider imagegen.Provider, logger *utils.Logger, size, quality string) *ImageService {
	return &ImageService{
		provider:   provider,
		downloader: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		size:       size,
		quality:    quality,
	}
}

// GenerateImage 执行一次完整的生成调用并返回图片字节
//
// 提供了种子时先尝试带种子的请求；后端以能力协商失败拒绝种子参数时
// 静默降级为无种子请求并记录日志，仅重试这一次。其他任何后端错误
// 对本次调用都是致命的，原样上报，不自动重试
func (s *ImageService) GenerateImage(ctx context.Context, prompt string, seed *int64) (*GeneratedImage, error) {
	req := imagegen.GenerateRequest{
		Prompt:  prompt,
		Seed:    seed,
		Size:    s.size,
		Quality: s.quality,
	}

	result, err := s.provider.GenerateImage(ctx, req)
	if err != nil && seed != nil && errors.Is(err, imagegen.ErrSeedUnsupported) {
		s.logger.Warnf("生成后端不支持种子参数，降级为无种子请求: %v", err)
		req.Seed = nil
		result, err = s.provider.GenerateImage(ctx, req)
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.NewGenerationError("图片生成失败", err)
	}

	// 后端回显的种子优先于请求值，由调用方持久化
	authoritative := seed
	if result.Seed != nil {
		if seed == nil || *result.Seed != *seed {
			s.logger.Infof("采用后端回显的种子: %d", *result.Seed)
		}
		authoritative = result.Seed
	}

	data := result.Data
	if len(data) == 0 {
		if result.URL == "" {
			return nil, apperrors.NewGenerationError("生成后端既未返回图片字节也未返回引用地址", nil)
		}
		data, err = s.download(ctx, result.URL)
		if err != nil {
			return nil, err
		}
	}

	return &GeneratedImage{Data: data, Seed: authoritative}, nil
}

// download 从后端返回的引用地址下载图片
// 超时、非2xx状态码和传输错误都是本次调用的致命错误，不重试
func (s *ImageService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, apperrors.NewAssetFetchError("构建下载请求失败", err)
	}

	resp, err := s.downloader.Do(req)
	if err != nil {
		return nil, apperrors.NewAssetFetchError("下载生成图片失败", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewAssetFetchError(
			fmt.Sprintf("下载生成图片失败: 状态码 %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewAssetFetchError("读取图片数据失败", err)
	}

	return data, nil
}
