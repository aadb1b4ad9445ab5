// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
)

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetHeader("X-Request-ID")
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusOK, response)
}

// Created 创建成功响应
func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Message = message[0]
	} else {
		response.Message = "资源创建成功"
	}

	c.JSON(http.StatusCreated, response)
}

// sanitizeErrorMessage removes sensitive information from error messages
func sanitizeErrorMessage(message string) string {
	lowered := strings.ToLower(message)
	if strings.Contains(lowered, "api_key") ||
		strings.Contains(lowered, "secret") ||
		strings.Contains(lowered, "token") {
		return "An internal error occurred"
	}
	return message
}

// Error 错误响应
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: sanitizeErrorMessage(message),
	}

	if len(details) > 0 {
		apiError.Details = sanitizeErrorMessage(details[0])
	}

	response := &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	c.JSON(statusCode, response)
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusNotFound, ErrorNotFound, message, details...)
}

// Unauthorized 401错误响应
func (rh *ResponseHelper) Unauthorized(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusUnauthorized, ErrorUnauthorized, message, details...)
}

// InternalError 500错误响应
func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

// HandleServiceError 把服务层的结构化错误映射为HTTP响应
// 所有致命错误以 错误代码+可读消息 的形式上报，不被吞掉
func (rh *ResponseHelper) HandleServiceError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		rh.InternalError(c, "服务器内部错误", err.Error())
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		rh.Error(c, http.StatusNotFound, appErr.Code, appErr.Message)
	case apperrors.ErrorTypeInvalidRequest:
		rh.Error(c, http.StatusBadRequest, appErr.Code, appErr.Message)
	case apperrors.ErrorTypeUnauthorized:
		rh.Error(c, http.StatusUnauthorized, appErr.Code, appErr.Message)
	case apperrors.ErrorTypeGeneration,
		apperrors.ErrorTypeAssetFetch,
		apperrors.ErrorTypeAssetWrite,
		apperrors.ErrorTypeStorageWrite:
		rh.Error(c, http.StatusInternalServerError, appErr.Code, appErr.Message)
	default:
		rh.Error(c, http.StatusInternalServerError, appErr.Code, appErr.Message)
	}
}
