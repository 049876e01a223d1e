package notifier

import (
	"fmt"
	"sort"
	"strings"

	"BoardPulse/internal/model"
)

// FormatDailyReport renders the post-market review as a text report.
func FormatDailyReport(r *model.DailyReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 BoardPulse 复盘 | %s\n\n", r.Date))

	// Market scalars
	b.WriteString(fmt.Sprintf("两市成交额: %.0f亿\n", r.TotalTurnover/1e8))
	b.WriteString(fmt.Sprintf("量比(5日): %.2f\n", r.VolumeRatio))
	b.WriteString(fmt.Sprintf("上证指数: %+.2f%%\n", r.IndexChangePct))
	b.WriteString(fmt.Sprintf("涨停 %d 家 | 跌停 %d 家\n", r.LimitUpCount, r.LimitDownCount))
	b.WriteString(fmt.Sprintf("赚钱效应: %.2f%% | 炸板率: %.2f%%\n", r.MoneyEffectPct, r.ExplosionRate))
	b.WriteString(fmt.Sprintf("3日跌超20%%: %d 家\n", r.Decline3dOver20))
	if r.Rank60DeclinePct != nil {
		b.WriteString(fmt.Sprintf("跌幅第60名: %+.2f%%\n", *r.Rank60DeclinePct))
	}
	b.WriteString("\n")

	// Yesterday's cohorts, today
	b.WriteString("📉 昨日梯队今日表现:\n")
	b.WriteString(fmt.Sprintf("  昨日涨停: %s\n", perf(r.PrevLimitUpPerf)))
	b.WriteString(fmt.Sprintf("  昨日炸板: %s\n", perf(r.PrevExplodedPerf)))
	b.WriteString(fmt.Sprintf("  昨日2连板以上: %s\n\n", perf(r.PrevStreak2Perf)))

	// Rolling window leaders
	for _, w := range sortedWindows(r.WindowTop) {
		b.WriteString(fmt.Sprintf("🏆 %d日涨幅榜:\n", w))
		for i, s := range r.WindowTop[w] {
			b.WriteString(fmt.Sprintf("  %d. %s %s %+.2f%%\n", i+1, s.Symbol, s.Name, s.Pct))
		}
	}

	if len(r.Streak5Plus) > 0 {
		b.WriteString("\n🔥 5连板以上:\n")
		for _, s := range r.Streak5Plus {
			b.WriteString(fmt.Sprintf("  %s %s %d连板 收%.2f\n", s.Symbol, s.Name, s.Days, s.Close))
		}
	}

	if len(r.Sectors) > 0 {
		b.WriteString("\n🧭 强势板块:\n")
		for _, s := range r.Sectors {
			b.WriteString(fmt.Sprintf("  %s %s 活跃度%d 均涨%+.2f%% [%s]\n",
				s.Code, s.Name, s.ActivityScore, s.AvgGain, strings.Join(s.Origins, ",")))
		}
	}

	if len(r.Top5Rebound) > 0 {
		b.WriteString("\n⤴️ 低位反弹前5:\n")
		for _, s := range r.Top5Rebound {
			b.WriteString(fmt.Sprintf("  %s %s %+.2f%%\n", s.Symbol, s.Name, s.Pct))
		}
	}
	if len(r.Top5Pullback) > 0 {
		b.WriteString("⤵️ 高位回撤前5:\n")
		for _, s := range r.Top5Pullback {
			b.WriteString(fmt.Sprintf("  %s %s %+.2f%%\n", s.Symbol, s.Name, s.Pct))
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ 数据降级 %d 条:\n", len(r.Notes)))
		for _, n := range r.Notes {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", n.Code, n.Detail))
		}
	}

	return b.String()
}

func perf(p *float64) string {
	if p == nil {
		return "无样本"
	}
	return fmt.Sprintf("%+.2f%%", *p)
}

func sortedWindows(m map[int][]model.RankedStock) []int {
	out := make([]int, 0, len(m))
	for w := range m {
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}
