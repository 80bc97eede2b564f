package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kydchen/daily-stock-analysis/internal/market"
	"github.com/kydchen/daily-stock-analysis/internal/news"
)

const reviewPrompt = `你是一位资深A股市场分析师。基于下面的市场数据和新闻，写一份简洁的每日复盘，
用 Markdown 格式输出，包含市场情绪、指数表现、板块亮点和次日关注要点。
不要编造数据，只使用提供的内容。

## 市场数据
%s

## 市场要闻
%s`

// OpenAIConfig controls the chat-model review generator. BaseURL allows
// OpenAI-compatible gateways.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIGenerator writes the review with a chat model.
type OpenAIGenerator struct {
	cfg    OpenAIConfig
	client openai.Client
}

func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("report: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIGenerator{cfg: cfg, client: openai.NewClient(opts...)}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, ov *market.Overview, items []news.Item) (string, error) {
	snapshot, err := json.MarshalIndent(ov, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encoding overview: %w", err)
	}
	digest := newsDigest(items, 10)
	if digest == "" {
		digest = "（今日无要闻数据）"
	}
	prompt := fmt.Sprintf(reviewPrompt, snapshot, digest)

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2048),
	})
	if err != nil {
		return "", fmt.Errorf("report: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("report: empty completion")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
