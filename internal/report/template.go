package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/kydchen/daily-stock-analysis/internal/market"
	"github.com/kydchen/daily-stock-analysis/internal/news"
)

const reviewTemplate = `# A股市场每日复盘 ({{.Overview.Date}})

## 市场情绪
今日市场整体{{.Mood}}。

## 主要指数
{{range .Overview.Indices}}- {{.Name}}: {{printf "%.2f" .Current}} ({{pct .ChangePct}})
{{end}}
{{- if .Overview.HKIndices}}
## 港股指数
{{range .Overview.HKIndices}}- {{.Name}}: {{printf "%.2f" .Current}} ({{pct .ChangePct}})
{{end}}
{{- end}}
{{- if .Overview.USIndices}}
## 海外市场
{{range .Overview.USIndices}}- {{.Name}}: {{printf "%.2f" .Current}} ({{pct .ChangePct}})
{{end}}
{{- end}}
## 涨跌概况
- 上涨: {{.Overview.UpCount}} 家
- 下跌: {{.Overview.DownCount}} 家
- 平盘: {{.Overview.FlatCount}} 家
- 涨停: {{.Overview.LimitUpCount}} 家
- 跌停: {{.Overview.LimitDownCount}} 家
- 两市成交额: {{printf "%.2f" .Overview.TotalAmount}} 亿元
{{- if .Overview.TopSectors}}

## 领涨板块
{{range .Overview.TopSectors}}- {{.Name}} ({{pct .ChangePct}})
{{end}}
{{- end}}
{{- if .Overview.BottomSectors}}
## 领跌板块
{{range .Overview.BottomSectors}}- {{.Name}} ({{pct .ChangePct}})
{{end}}
{{- end}}
{{- if .News}}
## 市场要闻
{{.News}}
{{- end}}`

// TemplateGenerator renders the review from a fixed markdown template. It
// is the fallback when no chat model is configured or the model call fails.
type TemplateGenerator struct {
	tmpl *template.Template
}

func NewTemplateGenerator() *TemplateGenerator {
	tmpl := template.Must(template.New("review").Funcs(template.FuncMap{
		"pct": formatPct,
	}).Parse(reviewTemplate))
	return &TemplateGenerator{tmpl: tmpl}
}

func (g *TemplateGenerator) Generate(_ context.Context, ov *market.Overview, items []news.Item) (string, error) {
	data := struct {
		Overview *market.Overview
		Mood     string
		News     string
	}{
		Overview: ov,
		Mood:     mood(ov),
		News:     strings.TrimSpace(newsDigest(items, 5)),
	}
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// mood classifies the day by the Shanghai composite's move.
func mood(ov *market.Overview) string {
	for _, idx := range ov.Indices {
		if !strings.HasSuffix(idx.Code, "000001") {
			continue
		}
		switch {
		case idx.ChangePct > 1:
			return "放量上攻，情绪偏暖"
		case idx.ChangePct > 0:
			return "小幅上行，情绪平稳"
		case idx.ChangePct > -1:
			return "小幅回调，观望为主"
		default:
			return "明显走弱，情绪谨慎"
		}
	}
	return "数据不全，暂无法判断"
}

func formatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
