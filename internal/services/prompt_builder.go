// internal/services/prompt_builder.go
package services

import (
	"fmt"
	"strings"

	"github.com/Corphon/CharacterForge/internal/models"
)

// consistencyInstruction 固定的跨请求一致性指令，随每次生成请求发送
const consistencyInstruction = ". IMPORTANT: This MUST be exactly the same character as previous images with the same Character ID. Maintain perfect consistency in the character's core features including face, body type, hair style, clothing style, and all distinctive characteristics. Use identical art style to previous generations."

// BuildImagePrompt 根据角色描述和可选的变体参数构造生成提示词
// 纯函数，无副作用：相同输入总是产生相同的提示词
//
// 角色ID的前8位作为人类可审计的一致性标记嵌入提示词，
// 同一角色的每次请求都携带同一标记；变体属性按 姿势、表情、场景
// 的固定顺序追加，只包含非空项
func BuildImagePrompt(description, characterID string, params *models.VariationParams) string {
	idToken := characterID
	if len(idToken) > 8 {
		idToken = idToken[:8]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"I NEED to test how the tool works with extremely simple prompts. DO NOT add any detail, just use it AS-IS: Character ID '%s' - Create a portrait of this specific character: %s",
		idToken, description))

	if params != nil {
		if params.Pose != "" {
			sb.WriteString(". Pose: " + params.Pose)
		}
		if params.Expression != "" {
			sb.WriteString(". Expression: " + params.Expression)
		}
		if params.Setting != "" {
			sb.WriteString(". Setting: " + params.Setting)
		}
	}

	sb.WriteString(consistencyInstruction)

	return sb.String()
}
