// internal/imagegen/interface.go
package imagegen

import (
	"context"
	"errors"
)

// 错误定义
var (
	ErrUnknownProvider = errors.New("未知的图片生成提供者")

	// ErrSeedUnsupported 表示后端拒绝了种子参数本身（能力协商失败），
	// 区别于内容或配额类的生成失败
	ErrSeedUnsupported = errors.New("生成后端不支持种子参数")
)

// GenerateRequest 生成请求的标准化参数
type GenerateRequest struct {
	Prompt  string `json:"prompt"`
	Seed    *int64 `json:"seed,omitempty"`    // 可选种子，后端支持与否需按调用探测
	Size    string `json:"size,omitempty"`    // 例如 "1024x1024"
	Quality string `json:"quality,omitempty"` // 例如 "standard"
}

// GenerateResult 生成结果的标准化结构
type GenerateResult struct {
	URL  string `json:"url,omitempty"`  // 后端返回的图片引用地址
	Data []byte `json:"-"`              // 后端直接返回字节时填充
	Seed *int64 `json:"seed,omitempty"` // 后端回显的种子，存在时优先于请求值
}

// Provider 定义所有图片生成提供者必须实现的接口
type Provider interface {
	// 初始化提供者，传入配置
	Initialize(config map[string]string) error

	// 获取提供者名称
	GetName() string

	// 单次提示词图片生成
	GenerateImage(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// 注册表和工厂函数类型
type ProviderFactory func() Provider

var providers = make(map[string]ProviderFactory)

// Register 注册提供者工厂
func Register(name string, factory ProviderFactory) {
	providers[name] = factory
}

// GetProvider 获取指定名称的提供者实例并完成初始化
func GetProvider(name string, config map[string]string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}

	return provider, nil
}

// GetAvailableProviders 返回所有已注册的提供者名称
func GetAvailableProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
