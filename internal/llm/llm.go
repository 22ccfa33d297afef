// Package llm builds the OpenAI compatible chat model behind the tool-based
// capabilities.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/hotelagent/config"
)

var ErrMissingAPIKey = errors.New("llm.api_key is not set")

func NewChatModel(ctx context.Context, conf config.LLMConfig) (model.ToolCallingChatModel, error) {
	if conf.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	temperature := conf.Temperature
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      conf.APIKey,
		Model:       conf.Model,
		BaseURL:     conf.BaseURL,
		Timeout:     conf.Timeout,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init chat model: %w", err)
	}
	return chatModel, nil
}
