// internal/storage/character_store_test.go
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/CharacterForge/internal/models"
	"github.com/Corphon/CharacterForge/internal/utils"
)

func newTestStore(t *testing.T) (*FileCharacterStore, string) {
	t.Helper()

	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err, "创建文件存储失败")

	logger, err := utils.NewLogger("", utils.ERROR)
	require.NoError(t, err)

	return NewFileCharacterStore(fs, logger), dir
}

func seedValue(v int64) *int64 {
	return &v
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	character := &models.Character{
		ID:            "char-001",
		Name:          "狐狸",
		Description:   "a red fox wearing a blue scarf",
		BaseImagePath: "images/char-001/base.png",
		ImageSeed:     seedValue(42),
	}

	saved, err := store.SaveCharacter(character)
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero(), "保存后 CreatedAt 应该被设置")
	assert.False(t, saved.UpdatedAt.Before(saved.CreatedAt), "UpdatedAt 不应早于 CreatedAt")

	loaded, err := store.GetCharacter("char-001")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, saved.Name, loaded.Name)
	assert.Equal(t, saved.Description, loaded.Description)
	assert.Equal(t, saved.BaseImagePath, loaded.BaseImagePath)
	require.NotNil(t, loaded.ImageSeed)
	assert.Equal(t, int64(42), *loaded.ImageSeed)
}

func TestGetMissingCharacter(t *testing.T) {
	store, _ := newTestStore(t)

	character, err := store.GetCharacter("no-such-id")
	require.NoError(t, err, "缺失的记录不应返回错误")
	assert.Nil(t, character)
}

func TestUpdateMissingCharacterReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	character := &models.Character{ID: "ghost", Description: "deleted elsewhere"}
	updated, err := store.UpdateCharacter(character)
	require.NoError(t, err)
	assert.Nil(t, updated, "更新不存在的记录不应复活它")

	// 确认没有留下任何可见记录
	loaded, err := store.GetCharacter("ghost")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestUpdateAdvancesUpdatedAt(t *testing.T) {
	store, _ := newTestStore(t)

	character := &models.Character{ID: "char-002", Description: "a knight"}
	saved, err := store.SaveCharacter(character)
	require.NoError(t, err)

	firstUpdate := saved.UpdatedAt
	time.Sleep(5 * time.Millisecond)

	saved.Variations = append(saved.Variations, models.ImageVariation{
		ImagePath:   "images/char-002/variations/v1.png",
		Pose:        "sitting",
		GeneratedAt: time.Now(),
	})
	updated, err := store.UpdateCharacter(saved)
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.True(t, updated.UpdatedAt.After(firstUpdate), "每次更新 UpdatedAt 都应前进")
	assert.Len(t, updated.Variations, 1)
}

func TestDeleteCharacter(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SaveCharacter(&models.Character{ID: "char-003", Description: "a pirate"})
	require.NoError(t, err)

	deleted, err := store.DeleteCharacter("char-003")
	require.NoError(t, err)
	assert.True(t, deleted)

	loaded, err := store.GetCharacter("char-003")
	require.NoError(t, err)
	assert.Nil(t, loaded, "删除后 Get 应该返回未找到")

	// 第二次删除返回 false
	deleted, err = store.DeleteCharacter("char-003")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetAllCharactersOrderedAndSkipsCorrupt(t *testing.T) {
	store, dir := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		_, err := store.SaveCharacter(&models.Character{
			ID:          id,
			Description: "character " + id,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	// 直接向存储文件注入一条损坏的记录
	storagePath := filepath.Join(dir, characterStorageFile)
	raw, err := os.ReadFile(storagePath)
	require.NoError(t, err)

	var records map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &records))
	records["broken"] = json.RawMessage(`{"id": 12345}`)

	corrupted, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(storagePath, corrupted, 0644))

	characters, err := store.GetAllCharacters()
	require.NoError(t, err, "单条损坏的记录不应中止整个列表")
	require.Len(t, characters, 3)

	// 按创建时间降序
	assert.Equal(t, "new", characters[0].ID)
	assert.Equal(t, "mid", characters[1].ID)
	assert.Equal(t, "old", characters[2].ID)
}

func TestSaveKeepsExistingCreatedAt(t *testing.T) {
	store, _ := newTestStore(t)

	created := time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)
	character := &models.Character{
		ID:          "char-004",
		Description: "a wizard",
		CreatedAt:   created,
	}

	saved, err := store.SaveCharacter(character)
	require.NoError(t, err)
	assert.True(t, saved.CreatedAt.Equal(created), "已有的 CreatedAt 不应被覆盖")
	assert.True(t, saved.UpdatedAt.After(created))
}
