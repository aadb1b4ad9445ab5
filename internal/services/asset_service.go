// internal/services/asset_service.go
package services

import (
	"fmt"
	"path"
	"time"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
	"github.com/Corphon/CharacterForge/internal/storage"
	"github.com/Corphon/CharacterForge/internal/utils"
)

// 图片资产在静态根目录下的子目录
const imagesSubdir = "images"

// AssetService 负责把生成的图片字节落盘，并返回对外可用的相对路径
// 目录按角色ID划分，变体与基础图片分开存放，整个角色的资产可以一次性删除
type AssetService struct {
	storage *storage.FileStorage // 以静态根目录为基准
	logger  *utils.Logger
}

// NewAssetService 创建资产写入服务
func NewAssetService(staticStorage *storage.FileStorage, logger *utils.Logger) *AssetService {
	return &AssetService{
		storage: staticStorage,
		logger:  logger,
	}
}

// SaveImage 保存图片字节并返回相对于静态根目录的引用路径
// 文件名由角色ID和纳秒级时间戳组成，重复的变体请求不会相互覆盖；
// 返回路径固定使用正斜杠分隔，与宿主操作系统无关
func (s *AssetService) SaveImage(characterID string, data []byte, isVariation bool) (string, error) {
	dirPath := path.Join(imagesSubdir, characterID)
	if isVariation {
		dirPath = path.Join(dirPath, "variations")
	}

	now := time.Now()
	filename := fmt.Sprintf("%s_%s%09d.png", characterID, now.Format("20060102150405"), now.Nanosecond())

	if err := s.storage.SaveFile(dirPath, filename, data); err != nil {
		return "", apperrors.NewAssetWriteError("保存图片文件失败", err)
	}

	relativePath := path.Join(dirPath, filename)
	s.logger.Infof("图片已保存: %s", relativePath)

	return relativePath, nil
}

// RemoveCharacterAssets 删除角色的全部图片资产（基础图片和所有变体）
// 资产目录不存在时视为已清理完成，不是错误
func (s *AssetService) RemoveCharacterAssets(characterID string) error {
	dirPath := path.Join(imagesSubdir, characterID)

	if !s.storage.DirExists(dirPath) {
		return nil
	}

	if err := s.storage.DeleteDir(dirPath); err != nil {
		return fmt.Errorf("删除角色资产目录失败: %w", err)
	}

	s.logger.Infof("角色资产已删除: %s", characterID)
	return nil
}
