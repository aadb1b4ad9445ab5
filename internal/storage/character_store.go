// internal/storage/character_store.go
package storage

import (
	"encoding/json"
	"sort"
	"time"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
	"github.com/Corphon/CharacterForge/internal/models"
	"github.com/Corphon/CharacterForge/internal/utils"
)

// 角色记录统一保存在数据目录下的单个JSON文件中
const characterStorageFile = "characters.json"

// CharacterStore 定义角色记录的持久化契约
// 物理介质（单文件、嵌入式数据库等）可替换而不影响上层工作流
type CharacterStore interface {
	// SaveCharacter 按ID插入或覆盖记录，CreatedAt 为零值时补齐，UpdatedAt 总是刷新
	SaveCharacter(character *models.Character) (*models.Character, error)

	// GetCharacter 按ID查找记录，未找到时返回 (nil, nil) 而不是错误
	GetCharacter(id string) (*models.Character, error)

	// GetAllCharacters 返回全部记录，按 CreatedAt 降序；损坏的单条记录跳过并记录日志
	GetAllCharacters() ([]*models.Character, error)

	// UpdateCharacter 更新已存在的记录，记录不存在时返回 (nil, nil)，防止复活已删除的角色
	UpdateCharacter(character *models.Character) (*models.Character, error)

	// DeleteCharacter 删除记录，记录不存在时返回 false
	// 关联的图片文件由调用方负责清理，存储层只管记录本身
	DeleteCharacter(id string) (bool, error)
}

// FileCharacterStore 基于 FileStorage 的单JSON文件角色存储
// 读取-修改-写回周期不跨调用方加锁，并发写入以后完成者为准
type FileCharacterStore struct {
	storage *FileStorage
	logger  *utils.Logger
}

// NewFileCharacterStore 创建文件角色存储
func NewFileCharacterStore(storage *FileStorage, logger *utils.Logger) *FileCharacterStore {
	return &FileCharacterStore{
		storage: storage,
		logger:  logger,
	}
}

// readAll 读取全部原始记录，文件不存在或整体损坏时返回空集合
// 记录按原始JSON保存，单条损坏不影响其他条目的解析
func (s *FileCharacterStore) readAll() map[string]json.RawMessage {
	records := make(map[string]json.RawMessage)

	if !s.storage.FileExists("", characterStorageFile) {
		return records
	}

	if err := s.storage.LoadJSONFile("", characterStorageFile, &records); err != nil {
		s.logger.Errorf("读取角色存储文件失败: %v", err)
		return make(map[string]json.RawMessage)
	}

	return records
}

// writeAll 写回全部记录
func (s *FileCharacterStore) writeAll(records map[string]json.RawMessage) error {
	if err := s.storage.SaveJSONFile("", characterStorageFile, records); err != nil {
		return apperrors.NewStorageWriteError("保存角色数据失败", err)
	}
	return nil
}

// decode 解析单条记录，损坏时返回错误由调用方决定跳过或报告
func (s *FileCharacterStore) decode(raw json.RawMessage) (*models.Character, error) {
	var character models.Character
	if err := json.Unmarshal(raw, &character); err != nil {
		return nil, err
	}
	return &character, nil
}

// SaveCharacter 保存新角色或覆盖已有角色
func (s *FileCharacterStore) SaveCharacter(character *models.Character) (*models.Character, error) {
	records := s.readAll()

	now := time.Now()
	if character.CreatedAt.IsZero() {
		character.CreatedAt = now
	}
	character.UpdatedAt = now

	raw, err := json.Marshal(character)
	if err != nil {
		return nil, apperrors.NewStorageWriteError("序列化角色数据失败", err)
	}
	records[character.ID] = raw

	if err := s.writeAll(records); err != nil {
		return nil, err
	}

	s.logger.Infof("角色已保存: %s", character.ID)
	return character, nil
}

// GetCharacter 按ID查找角色
func (s *FileCharacterStore) GetCharacter(id string) (*models.Character, error) {
	records := s.readAll()

	raw, exists := records[id]
	if !exists {
		return nil, nil
	}

	character, err := s.decode(raw)
	if err != nil {
		// 记录存在但无法解析，对查找方来说等同于缺失
		s.logger.Errorf("角色记录损坏 %s: %v", id, err)
		return nil, nil
	}

	return character, nil
}

// GetAllCharacters 返回全部角色，按创建时间降序
func (s *FileCharacterStore) GetAllCharacters() ([]*models.Character, error) {
	records := s.readAll()

	characters := make([]*models.Character, 0, len(records))
	for id, raw := range records {
		character, err := s.decode(raw)
		if err != nil {
			// 单条损坏不中止整个列表
			s.logger.Warnf("跳过损坏的角色记录 %s: %v", id, err)
			continue
		}
		characters = append(characters, character)
	}

	sort.Slice(characters, func(i, j int) bool {
		return characters[i].CreatedAt.After(characters[j].CreatedAt)
	})

	return characters, nil
}

// UpdateCharacter 更新已有角色，不存在时返回 (nil, nil)
func (s *FileCharacterStore) UpdateCharacter(character *models.Character) (*models.Character, error) {
	records := s.readAll()

	if _, exists := records[character.ID]; !exists {
		s.logger.Warnf("尝试更新不存在的角色: %s", character.ID)
		return nil, nil
	}

	character.UpdatedAt = time.Now()

	raw, err := json.Marshal(character)
	if err != nil {
		return nil, apperrors.NewStorageWriteError("序列化角色数据失败", err)
	}
	records[character.ID] = raw

	if err := s.writeAll(records); err != nil {
		return nil, err
	}

	s.logger.Infof("角色已更新: %s", character.ID)
	return character, nil
}

// DeleteCharacter 删除角色记录
func (s *FileCharacterStore) DeleteCharacter(id string) (bool, error) {
	records := s.readAll()

	if _, exists := records[id]; !exists {
		s.logger.Warnf("尝试删除不存在的角色: %s", id)
		return false, nil
	}

	delete(records, id)

	if err := s.writeAll(records); err != nil {
		return false, err
	}

	s.logger.Infof("角色已删除: %s", id)
	return true, nil
}
