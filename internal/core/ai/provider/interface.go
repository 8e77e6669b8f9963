package provider

import (
	"context"
)

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 以 prompt 換取模型的文字回應
	Generate(ctx context.Context, prompt string) (string, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}
