// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 存储应用配置
// 在进程启动时构造一次，以显式引用传入各个组件，组件不读取全局状态
type Config struct {
	Port      string
	APIKey    string // 所有写操作需要的共享密钥（X-API-Key 请求头）
	DataDir   string
	StaticDir string
	ImagesDir string
	LogDir    string
	DebugMode bool

	// 图片生成后端配置
	ImageProvider string // 生成后端提供者名称
	OpenAIAPIKey  string
	ImageModel    string
	ImageSize     string
	ImageQuality  string
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:      getEnv("PORT", "8080"),
		APIKey:    getEnv("API_KEY", ""),
		DataDir:   getEnvPath("DATA_DIR", "data"),
		StaticDir: getEnvPath("STATIC_DIR", "static"),
		LogDir:    getEnvPath("LOG_DIR", "logs"),
		DebugMode: getEnvBool("DEBUG_MODE", true),

		ImageProvider: getEnv("IMAGE_PROVIDER", "openai"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		ImageModel:    getEnv("IMAGE_MODEL", "dall-e-3"),
		ImageSize:     getEnv("IMAGE_SIZE", "1024x1024"),
		ImageQuality:  getEnv("IMAGE_QUALITY", "standard"),
	}

	// 图片统一存储在静态目录下，便于直接通过 /static 提供
	config.ImagesDir = getEnvPath("IMAGE_STORAGE_PATH", config.StaticDir+"/images")

	if config.APIKey == "" {
		return nil, fmt.Errorf("未设置 API_KEY，所有写操作需要共享密钥")
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0755)
		if err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
