// internal/app/app.go
package app

import (
	"fmt"
	"path/filepath"

	"github.com/Corphon/CharacterForge/internal/api"
	"github.com/Corphon/CharacterForge/internal/config"
	"github.com/Corphon/CharacterForge/internal/di"
	"github.com/Corphon/CharacterForge/internal/imagegen"
	"github.com/Corphon/CharacterForge/internal/services"
	"github.com/Corphon/CharacterForge/internal/storage"
	"github.com/Corphon/CharacterForge/internal/utils"

	// 注册图片生成提供者
	_ "github.com/Corphon/CharacterForge/internal/imagegen/providers/openai"
)

// InitServices 按依赖顺序初始化所有服务并注册到容器
// 配置以显式引用传入，服务之间通过构造函数注入依赖
func InitServices(cfg *config.Config) (*di.Container, error) {
	container := di.NewContainer()

	// 1. 日志
	logLevel := utils.INFO
	if cfg.DebugMode {
		logLevel = utils.DEBUG
	}
	logger, err := utils.NewLogger(filepath.Join(cfg.LogDir, "server.log"), logLevel)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	container.Register("logger", logger)

	// 2. 存储层：角色记录存放在数据目录，图片资产存放在静态目录
	dataStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("初始化数据存储失败: %w", err)
	}
	staticStorage, err := storage.NewFileStorage(cfg.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("初始化静态存储失败: %w", err)
	}

	characterStore := storage.NewFileCharacterStore(dataStorage, logger)
	container.Register("store", characterStore)

	// 3. 图片生成提供者
	provider, err := imagegen.GetProvider(cfg.ImageProvider, map[string]string{
		"api_key": cfg.OpenAIAPIKey,
		"model":   cfg.ImageModel,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化图片生成提供者 %s 失败: %w", cfg.ImageProvider, err)
	}

	imageService := services.NewImageService(provider, logger, cfg.ImageSize, cfg.ImageQuality)
	container.Register("images", imageService)

	// 4. 资产写入
	assetService := services.NewAssetService(staticStorage, logger)
	container.Register("assets", assetService)

	// 5. 事件推送
	eventHub := api.NewEventHub(logger)
	container.Register("events", eventHub)

	// 6. 角色工作流
	characterService := services.NewCharacterService(
		characterStore,
		imageService,
		assetService,
		eventHub,
		logger,
	)
	container.Register("character", characterService)

	return container, nil
}
