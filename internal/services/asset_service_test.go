// internal/services/asset_service_test.go
package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/CharacterForge/internal/storage"
	"github.com/Corphon/CharacterForge/internal/utils"
)

func newTestAssetService(t *testing.T) (*AssetService, string) {
	t.Helper()

	dir := t.TempDir()
	fs, err := storage.NewFileStorage(dir)
	require.NoError(t, err)
	logger, err := utils.NewLogger("", utils.ERROR)
	require.NoError(t, err)

	return NewAssetService(fs, logger), dir
}

func TestSaveImageBaseScope(t *testing.T) {
	service, dir := newTestAssetService(t)

	ref, err := service.SaveImage("char-001", []byte("png-data"), false)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "images/char-001/"), "引用路径应以角色目录开头")
	assert.NotContains(t, ref, "variations")
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.NotContains(t, ref, "\\", "引用路径必须使用正斜杠")

	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-data"), content)
}

func TestSaveImageVariationScope(t *testing.T) {
	service, _ := newTestAssetService(t)

	ref, err := service.SaveImage("char-001", []byte("png-data"), true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "images/char-001/variations/"))
}

func TestSaveImageUniqueFilenames(t *testing.T) {
	service, _ := newTestAssetService(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		ref, err := service.SaveImage("char-001", []byte("png-data"), true)
		require.NoError(t, err)
		assert.False(t, seen[ref], "重复的变体写入不应产生相同路径: %s", ref)
		seen[ref] = true
	}
}

func TestRemoveCharacterAssets(t *testing.T) {
	service, dir := newTestAssetService(t)

	_, err := service.SaveImage("char-001", []byte("base"), false)
	require.NoError(t, err)
	_, err = service.SaveImage("char-001", []byte("variation"), true)
	require.NoError(t, err)

	require.NoError(t, service.RemoveCharacterAssets("char-001"))

	_, err = os.Stat(filepath.Join(dir, "images", "char-001"))
	assert.True(t, os.IsNotExist(err), "角色资产目录应被整体删除")
}

func TestRemoveCharacterAssetsMissingDir(t *testing.T) {
	service, _ := newTestAssetService(t)

	// 目录不存在时视为已清理完成
	assert.NoError(t, service.RemoveCharacterAssets("never-existed"))
}
