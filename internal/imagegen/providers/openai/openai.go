// internal/imagegen/providers/openai/openai.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Corphon/CharacterForge/internal/errors"
	"github.com/Corphon/CharacterForge/internal/imagegen"
)

func init() {
	imagegen.Register("openai", func() imagegen.Provider {
		return &Provider{
			baseURL: "https://api.openai.com/v1",
		}
	})
}

type Provider struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	defaultModel string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("OpenAI API密钥未提供")
	}

	p.apiKey = apiKey
	p.client = &http.Client{Timeout: 120 * time.Second}

	if model, exists := config["model"]; exists && model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "dall-e-3"
	}

	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		p.baseURL = baseURL
	}

	return nil
}

func (p *Provider) GetName() string {
	return "OpenAI"
}

// imageAPIError OpenAI错误响应结构
type imageAPIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Param   string `json:"param"`
		Code    string `json:"code"`
	} `json:"error"`
}

// imageAPIResponse 图片生成响应结构
type imageAPIResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json,omitempty"`
		Seed    *int64 `json:"seed,omitempty"`
	} `json:"data"`
}

// GenerateImage 调用图片生成接口
// 带种子的请求被后端以"未知参数"拒绝时返回 imagegen.ErrSeedUnsupported，
// 由调用方决定是否降级重试；其他失败一律作为生成失败上报，不重试
func (p *Provider) GenerateImage(ctx context.Context, req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
	requestBody := map[string]interface{}{
		"model":  p.defaultModel,
		"prompt": req.Prompt,
		"n":      1,
	}

	if req.Size != "" {
		requestBody["size"] = req.Size
	}
	if req.Quality != "" {
		requestBody["quality"] = req.Quality
	}
	if req.Seed != nil {
		requestBody["seed"] = *req.Seed
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, apperrors.NewGenerationError("序列化生成请求失败", err)
	}

	url := fmt.Sprintf("%s/images/generations", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperrors.NewGenerationError("构建生成请求失败", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewGenerationError("请求生成后端失败", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewGenerationError("读取生成响应失败", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classifyError(req, resp.StatusCode, body)
	}

	var response imageAPIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, apperrors.NewGenerationError("解析生成响应失败", err)
	}

	if len(response.Data) == 0 || (response.Data[0].URL == "" && response.Data[0].B64JSON == "") {
		return nil, apperrors.NewGenerationError("生成后端未返回图片", nil)
	}

	result := &imagegen.GenerateResult{
		URL:  response.Data[0].URL,
		Seed: response.Data[0].Seed,
	}

	return result, nil
}

// classifyError 区分能力协商失败和其他后端错误
func (p *Provider) classifyError(req imagegen.GenerateRequest, status int, body []byte) error {
	var apiErr imageAPIError
	message := string(body)
	param := ""
	code := ""

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
		param = apiErr.Error.Param
		code = apiErr.Error.Code
	}

	// 只有在请求携带了种子、且后端明确拒绝该参数时才视为能力协商失败
	if req.Seed != nil && isSeedRejection(param, code, message) {
		return fmt.Errorf("%w: %s", imagegen.ErrSeedUnsupported, message)
	}

	return apperrors.NewGenerationError(
		fmt.Sprintf("生成后端返回错误(%d): %s", status, message), nil)
}

// isSeedRejection 识别"未知参数 seed"类的拒绝
func isSeedRejection(param, code, message string) bool {
	if param == "seed" {
		return true
	}
	if code == "unknown_parameter" && strings.Contains(message, "seed") {
		return true
	}
	return false
}
