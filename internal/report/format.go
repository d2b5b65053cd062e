package report

import (
	"fmt"
	"strings"

	"github.com/gemiluxvii/cloudrank/internal/aggregate"
)

// maxWordsShown caps the word list in a chat message; the full
// aggregation may hold far more entries than fit a readable reply.
const maxWordsShown = 15

// FormatText renders a result as a plain-text chat message: header
// line, hot word list and the user ranking block.
func FormatText(result *aggregate.Result, title string) string {
	var b strings.Builder

	b.WriteString(title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "📊 本群 %d 位朋友共产生 %d 条发言\n", result.TotalUsers, result.TotalMessages)

	if len(result.Words) > 0 {
		b.WriteString("👀 看下有没有你感兴趣的关键词?\n\n🔥 热词:\n")
		words := result.Words
		if len(words) > maxWordsShown {
			words = words[:maxWordsShown]
		}
		for i, wc := range words {
			fmt.Fprintf(&b, "%d. %s ×%d\n", i+1, wc.Word, wc.Count)
		}
	}

	if len(result.Ranking) > 0 {
		b.WriteString("\n活跃用户排行榜:\n")
		b.WriteString(FormatRanking(result.Ranking))
		b.WriteString("\n🎉 感谢这些朋友的分享! 🎉")
	}

	return b.String()
}

// FormatRanking renders just the medal lines of a ranking.
func FormatRanking(ranking []aggregate.RankEntry) string {
	var b strings.Builder

	for _, entry := range ranking {
		fmt.Fprintf(&b, "%s %s 贡献: %d\n", entry.Medal, entry.SenderName, entry.Count)
	}

	return b.String()
}
