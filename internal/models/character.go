// internal/models/character.go
package models

import "time"

// Character 表示一个已注册的虚构角色
// ID 在创建时分配，整个生命周期内不变，是唯一的查找键
type Character struct {
	ID            string           `json:"id"`
	Name          string           `json:"name,omitempty"`
	Description   string           `json:"description"`
	BaseImagePath string           `json:"base_image_path,omitempty"` // 基础图片路径，创建时设置一次
	ImageSeed     *int64           `json:"image_seed,omitempty"`      // 生成种子，设置一次后所有变体复用
	Variations    []ImageVariation `json:"variations"`                // 仅追加
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ImageVariation 表示角色的一个图片变体
type ImageVariation struct {
	ImagePath   string    `json:"image_path"`
	Pose        string    `json:"pose,omitempty"`       // 姿势描述
	Expression  string    `json:"expression,omitempty"` // 表情描述
	Setting     string    `json:"setting,omitempty"`    // 场景/背景描述
	GeneratedAt time.Time `json:"generated_at"`
}

// CharacterCreateRequest 创建角色的请求结构
type CharacterCreateRequest struct {
	Description string `json:"description" binding:"required"`
	Name        string `json:"name,omitempty"`
}

// VariationParams 变体生成参数，创建变体时至少需要提供一项
type VariationParams struct {
	Pose       string `json:"pose,omitempty"`
	Expression string `json:"expression,omitempty"`
	Setting    string `json:"setting,omitempty"`
}

// IsEmpty 检查是否所有变体参数都为空
func (v *VariationParams) IsEmpty() bool {
	if v == nil {
		return true
	}
	return v.Pose == "" && v.Expression == "" && v.Setting == ""
}
