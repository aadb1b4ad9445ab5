// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/CharacterForge/internal/models"
	"github.com/Corphon/CharacterForge/internal/services"
)

// Handler 处理API请求
type Handler struct {
	CharacterService *services.CharacterService // 角色工作流服务
	Response         *ResponseHelper            // 响应助手
}

// NewHandler 创建API处理器
func NewHandler(characterService *services.CharacterService) *Handler {
	return &Handler{
		CharacterService: characterService,
		Response:         NewResponseHelper(),
	}
}

// HealthCheck 健康检查端点
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateCharacter 创建角色并生成基础图片
func (h *Handler) CreateCharacter(c *gin.Context) {
	var req models.CharacterCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式无效，description 为必填字段", err.Error())
		return
	}

	character, err := h.CharacterService.CreateCharacter(c.Request.Context(), req)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	h.Response.Created(c, character)
}

// GetCharacter 按ID获取角色
func (h *Handler) GetCharacter(c *gin.Context) {
	id := c.Param("id")

	character, err := h.CharacterService.GetCharacter(id)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	h.Response.Success(c, character)
}

// ListCharacters 获取全部角色列表
func (h *Handler) ListCharacters(c *gin.Context) {
	characters, err := h.CharacterService.ListCharacters()
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	h.Response.Success(c, characters)
}

// AddVariation 为角色生成图片变体
// 变体属性通过查询参数传递，至少需要提供一项
func (h *Handler) AddVariation(c *gin.Context) {
	id := c.Param("id")

	params := &models.VariationParams{
		Pose:       c.Query("pose"),
		Expression: c.Query("expression"),
		Setting:    c.Query("setting"),
	}

	character, err := h.CharacterService.AddVariation(c.Request.Context(), id, params)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	h.Response.Success(c, character)
}

// DeleteCharacter 删除角色及其全部图片资产
func (h *Handler) DeleteCharacter(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.CharacterService.DeleteCharacter(id)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	if !deleted {
		h.Response.Error(c, http.StatusNotFound, ErrorCharacterNotFound, "角色不存在: "+id)
		return
	}

	c.Status(http.StatusNoContent)
}
