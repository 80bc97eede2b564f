// Package report renders the daily market review, either through a chat
// model or a deterministic markdown template when no model is configured.
package report

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kydchen/daily-stock-analysis/internal/market"
	"github.com/kydchen/daily-stock-analysis/internal/news"
)

// Generator turns a market snapshot plus news context into a markdown
// review.
type Generator interface {
	Generate(ctx context.Context, ov *market.Overview, items []news.Item) (string, error)
}

// MarketReview renders the review with gen and falls back to the plain
// template when gen fails. It never returns an error so a model outage
// cannot sink the run.
func MarketReview(ctx context.Context, gen Generator, ov *market.Overview, items []news.Item) string {
	if gen != nil {
		text, err := gen.Generate(ctx, ov, items)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err != nil {
			log.Printf("warning: review generation failed, using template: %v", err)
		}
	}
	text, err := NewTemplateGenerator().Generate(ctx, ov, items)
	if err != nil {
		// the embedded template is static, this cannot happen at runtime
		log.Printf("error: template review failed: %v", err)
		return ""
	}
	return text
}

// newsDigest flattens search hits into prompt-sized bullet lines.
func newsDigest(items []news.Item, max int) string {
	var b strings.Builder
	for i, it := range items {
		if i >= max {
			break
		}
		content := []rune(it.Content)
		if len(content) > 200 {
			content = content[:200]
		}
		fmt.Fprintf(&b, "- %s: %s\n", it.Title, string(content))
	}
	return b.String()
}
