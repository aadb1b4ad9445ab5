// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 通用错误类型
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"

	// 生成工作流相关错误类型
	ErrorTypeGeneration   ErrorType = "generation_failure"
	ErrorTypeAssetFetch   ErrorType = "asset_fetch_failure"
	ErrorTypeAssetWrite   ErrorType = "asset_write_failure"
	ErrorTypeStorageWrite ErrorType = "storage_write_error"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewInvalidRequestError 创建请求参数错误
func NewInvalidRequestError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeInvalidRequest, message, originalError)
}

// NewUnauthorizedError 创建未授权错误
func NewUnauthorizedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeUnauthorized, message, originalError)
}

// NewGenerationError 创建图片生成失败错误
func NewGenerationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeGeneration, message, originalError)
}

// NewAssetFetchError 创建图片下载失败错误
func NewAssetFetchError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeAssetFetch, message, originalError)
}

// NewAssetWriteError 创建图片写入失败错误
func NewAssetWriteError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeAssetWrite, message, originalError)
}

// NewStorageWriteError 创建存储介质写入失败错误
func NewStorageWriteError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeStorageWrite, message, originalError)
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsInvalidRequestError 检查是否为请求参数错误
func IsInvalidRequestError(err error) bool {
	return isType(err, ErrorTypeInvalidRequest)
}

// IsGenerationError 检查是否为生成失败错误
func IsGenerationError(err error) bool {
	return isType(err, ErrorTypeGeneration)
}

// IsAssetFetchError 检查是否为下载失败错误
func IsAssetFetchError(err error) bool {
	return isType(err, ErrorTypeAssetFetch)
}

// IsAssetWriteError 检查是否为写入失败错误
func IsAssetWriteError(err error) bool {
	return isType(err, ErrorTypeAssetWrite)
}

// IsStorageWriteError 检查是否为存储写入失败错误
func IsStorageWriteError(err error) bool {
	return isType(err, ErrorTypeStorageWrite)
}

func isType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeInvalidRequest:
		return "INVALID_REQUEST"
	case ErrorTypeUnauthorized:
		return "UNAUTHORIZED"
	case ErrorTypeGeneration:
		return "GENERATION_FAILED"
	case ErrorTypeAssetFetch:
		return "ASSET_FETCH_FAILED"
	case ErrorTypeAssetWrite:
		return "ASSET_WRITE_FAILED"
	case ErrorTypeStorageWrite:
		return "STORAGE_WRITE_FAILED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，只更新消息
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	// 否则创建新的 AppError
	return NewAppError(errType, message, err)
}
