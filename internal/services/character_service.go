// internal/services/character_service.go
package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
	"github.com/Corphon/CharacterForge/internal/models"
	"github.com/Corphon/CharacterForge/internal/storage"
	"github.com/Corphon/CharacterForge/internal/utils"
)

// ImageGenerator 生成客户端适配器的契约（由 ImageService 实现）
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, seed *int64) (*GeneratedImage, error)
}

// AssetWriter 资产写入的契约（由 AssetService 实现）
type AssetWriter interface {
	SaveImage(characterID string, data []byte, isVariation bool) (string, error)
	RemoveCharacterAssets(characterID string) error
}

// GenerationNotifier 生成事件的推送契约，订阅方可选
type GenerationNotifier interface {
	NotifyCharacterEvent(eventType, characterID string)
}

// 角色生命周期事件
const (
	EventCharacterCreated = "character_created"
	EventVariationAdded   = "variation_added"
	EventCharacterDeleted = "character_deleted"
)

// CharacterService 角色工作流编排器
// 组合提示词构造、生成调用、资产写入和记录存储；
// 角色记录中生成相关的字段只允许由本服务修改
type CharacterService struct {
	store    storage.CharacterStore
	images   ImageGenerator
	assets   AssetWriter
	notifier GenerationNotifier
	logger   *utils.Logger
}

// NewCharacterService 创建角色工作流服务，notifier 可以为 nil
func NewCharacterService(
	store storage.CharacterStore,
	images ImageGenerator,
	assets AssetWriter,
	notifier GenerationNotifier,
	logger *utils.Logger,
) *CharacterService {
	return &CharacterService{
		store:    store,
		images:   images,
		assets:   assets,
		notifier: notifier,
		logger:   logger,
	}
}

// newImageSeed 为新角色选择一个随机种子，范围 [1, 2^31-1]
func newImageSeed() int64 {
	return rand.Int63n(2147483646) + 1
}

// CreateCharacter 创建角色并生成基础图片
// 生成或写入的任何失败都会中止创建，不持久化半成品记录
func (s *CharacterService) CreateCharacter(ctx context.Context, req models.CharacterCreateRequest) (*models.Character, error) {
	if req.Description == "" {
		return nil, apperrors.NewInvalidRequestError("角色描述不能为空", nil)
	}

	id := uuid.NewString()
	seed := newImageSeed()
	s.logger.Infof("创建角色 %s，初始种子 %d", id, seed)

	prompt := BuildImagePrompt(req.Description, id, nil)

	image, err := s.images.GenerateImage(ctx, prompt, &seed)
	if err != nil {
		return nil, err
	}

	basePath, err := s.assets.SaveImage(id, image.Data, false)
	if err != nil {
		return nil, err
	}

	character := &models.Character{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		BaseImagePath: basePath,
		ImageSeed:     image.Seed, // 权威种子：后端回显值优先于初始随机值
		Variations:    []models.ImageVariation{},
	}

	saved, err := s.store.SaveCharacter(character)
	if err != nil {
		return nil, err
	}

	s.notify(EventCharacterCreated, saved.ID)
	return saved, nil
}

// GetCharacter 按ID查找角色
func (s *CharacterService) GetCharacter(id string) (*models.Character, error) {
	character, err := s.store.GetCharacter(id)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, apperrors.NewNotFoundError("角色不存在: "+id, nil)
	}
	return character, nil
}

// ListCharacters 返回全部角色，按创建时间降序
func (s *CharacterService) ListCharacters() ([]*models.Character, error) {
	return s.store.GetAllCharacters()
}

// AddVariation 为已有角色生成一个图片变体
// 复用角色创建时记录的种子，变体列表仅追加
func (s *CharacterService) AddVariation(ctx context.Context, id string, params *models.VariationParams) (*models.Character, error) {
	// 先确认角色存在，再校验变体参数
	character, err := s.store.GetCharacter(id)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, apperrors.NewNotFoundError("角色不存在: "+id, nil)
	}

	if params.IsEmpty() {
		return nil, apperrors.NewInvalidRequestError(
			"至少需要提供一个变体参数（pose、expression、setting）", nil)
	}

	prompt := BuildImagePrompt(character.Description, character.ID, params)

	// 变体生成始终复用角色已记录的种子，忽略后端可能回显的新值
	image, err := s.images.GenerateImage(ctx, prompt, character.ImageSeed)
	if err != nil {
		return nil, err
	}

	imagePath, err := s.assets.SaveImage(id, image.Data, true)
	if err != nil {
		return nil, err
	}

	character.Variations = append(character.Variations, models.ImageVariation{
		ImagePath:   imagePath,
		Pose:        params.Pose,
		Expression:  params.Expression,
		Setting:     params.Setting,
		GeneratedAt: time.Now(),
	})

	updated, err := s.store.UpdateCharacter(character)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// 记录在生成期间被并发删除
		return nil, apperrors.NewNotFoundError("角色在更新过程中已被删除: "+id, nil)
	}

	s.notify(EventVariationAdded, updated.ID)
	return updated, nil
}

// DeleteCharacter 删除角色记录并尽力清理其全部图片资产
// 记录是唯一事实来源：资产清理失败只记录日志，不回滚记录删除
func (s *CharacterService) DeleteCharacter(id string) (bool, error) {
	deleted, err := s.store.DeleteCharacter(id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	if err := s.assets.RemoveCharacterAssets(id); err != nil {
		s.logger.Warnf("清理角色 %s 的资产失败（记录已删除）: %v", id, err)
	}

	s.notify(EventCharacterDeleted, id)
	return true, nil
}

// notify 推送生成事件，订阅方不存在时跳过
func (s *CharacterService) notify(eventType, characterID string) {
	if s.notifier != nil {
		s.notifier.NotifyCharacterEvent(eventType, characterID)
	}
}
