// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorUnauthorized  = "UNAUTHORIZED"

	// 角色相关错误
	ErrorCharacterNotFound     = "CHARACTER_NOT_FOUND"
	ErrorCharacterCreateFailed = "CHARACTER_CREATE_FAILED"
	ErrorCharacterInvalid      = "CHARACTER_INVALID"

	// 变体相关错误
	ErrorVariationParamsMissing = "VARIATION_PARAMS_MISSING"
	ErrorVariationFailed        = "VARIATION_FAILED"

	// 生成后端相关错误
	ErrorGenerationFailed = "GENERATION_FAILED"
	ErrorAssetFetchFailed = "ASSET_FETCH_FAILED"
	ErrorAssetWriteFailed = "ASSET_WRITE_FAILED"
	ErrorStorageWrite     = "STORAGE_WRITE_FAILED"
)
