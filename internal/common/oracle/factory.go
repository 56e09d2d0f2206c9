// internal/common/oracle/factory.go
package oracle

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"lex-build-workers/internal/common/config"
)

const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
)

// NewModel builds the model the configuration selects.
func NewModel(ctx context.Context, cfg config.OracleConfig, awsCfg aws.Config) (Model, error) {
	switch cfg.Provider {
	case ProviderBedrock, "":
		return NewBedrockModel(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID, cfg.MaxTokens, cfg.Temperature), nil
	case ProviderGemini:
		return NewGeminiModel(ctx, cfg.APIKey, cfg.ModelID, cfg.MaxTokens, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
