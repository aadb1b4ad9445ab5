// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/CharacterForge/internal/api"
	"github.com/Corphon/CharacterForge/internal/app"
	"github.com/Corphon/CharacterForge/internal/config"
)

func main() {
	log.Println("🚀 启动 CharacterForge 服务器...")

	// 1. 加载配置（构造一次，显式传入各组件）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 配置加载完成，端口: %s", cfg.Port)

	// 2. 初始化所有服务（按依赖顺序）
	// 未设置OpenAI API密钥时提供者初始化会失败，这里直接报错退出
	container, err := app.InitServices(cfg)
	if err != nil {
		log.Fatalf("初始化服务失败: %v", err)
	}
	log.Printf("✅ 所有服务初始化完成，服务数量: %d", len(container.GetNames()))

	// 3. 设置路由
	router, err := api.SetupRouter(cfg, container)
	if err != nil {
		log.Fatalf("❌ 设置路由失败: %v", err)
	}
	log.Println("✅ 路由设置完成")

	// 4. 启动服务器
	log.Printf("🌐 服务器启动在端口 %s", cfg.Port)
	log.Printf("🔗 访问地址: http://localhost:%s", cfg.Port)

	setupGracefulShutdown(router, cfg.Port)
}

// 优雅关闭函数
func setupGracefulShutdown(router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// 在新的 goroutine 中启动服务器
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ 启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号以进行优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ 服务器强制关闭: %v", err)
	}

	log.Println("✅ 服务器已关闭")
}
