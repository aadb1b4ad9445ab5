// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/CharacterForge/internal/config"
	"github.com/Corphon/CharacterForge/internal/di"
	"github.com/Corphon/CharacterForge/internal/services"
)

// SetupRouter 配置HTTP路由
// 只从容器获取已初始化的服务，不创建新实例
func SetupRouter(cfg *config.Config, container *di.Container) (*gin.Engine, error) {
	characterService, ok := container.Get("character").(*services.CharacterService)
	if !ok {
		return nil, fmt.Errorf("角色服务未正确初始化")
	}

	eventHub, ok := container.Get("events").(*EventHub)
	if !ok {
		return nil, fmt.Errorf("事件推送服务未正确初始化")
	}

	handler := NewHandler(characterService)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 启用CORS
	r.Use(corsMiddleware())

	// 生成的图片通过静态目录直接提供
	r.Static("/static", cfg.StaticDir)

	// 健康检查
	r.GET("/health", handler.HealthCheck)

	// 生成事件订阅
	r.GET("/ws/events", eventHub.HandleEvents)

	// ===============================
	// 角色API路由组（共享密钥保护）
	// ===============================
	limiter := NewRateLimiter()

	charactersGroup := r.Group("/api/characters")
	charactersGroup.Use(APIKeyAuthMiddleware(cfg.APIKey))
	{
		charactersGroup.GET("", handler.ListCharacters)
		charactersGroup.GET("/:id", handler.GetCharacter)
		charactersGroup.DELETE("/:id", handler.DeleteCharacter)

		// 生成端点额外限流
		charactersGroup.POST("", GenerationRateLimit(limiter), handler.CreateCharacter)
		charactersGroup.POST("/:id/variations", GenerationRateLimit(limiter), handler.AddVariation)
	}

	return r, nil
}
