package server

import "go.uber.org/zap"

// NewLogger は構造化JSONロガーを返す。devでは読みやすいコンソール出力。
func NewLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
