package main

import (
	"fmt"
	"strings"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/utils"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorGreen  = lipgloss.Color("#879A39")
	colorYellow = lipgloss.Color("#D0A215")
	colorRed    = lipgloss.Color("#D14D41")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(22)
)

func renderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(50).
		Align(lipgloss.Center).
		Render(titleStyle.Render(title))
}

func stateStyle(s models.TrafficState) lipgloss.Style {
	switch s {
	case models.StateGreen:
		return lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	case models.StateYellow:
		return lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorRed)
}

func priorityStyle(p models.Priority) lipgloss.Style {
	switch p {
	case models.PriorityHigh:
		return lipgloss.NewStyle().Foreground(colorRed)
	case models.PriorityMedium:
		return lipgloss.NewStyle().Foreground(colorYellow)
	}
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func row(label, value string) string {
	return "  " + labelStyle.Render(label) + value
}

func renderStatus(st models.StatusReport) string {
	var b strings.Builder
	b.WriteString(renderTitle("STATUS " + st.Date.Format("2006-01-02")))
	b.WriteString("\n")
	lines := []string{
		row("State", stateStyle(st.TrafficState).Render(st.StatusLabel)),
		row("Balance", utils.FormatBRL(st.Balance)),
		row("Spent today", utils.FormatBRL(st.TodaySpend)),
		row("Daily limit", utils.FormatBRL(st.DailyLimit)),
		row("Month income", utils.FormatBRL(st.MonthIncome)),
		row("Month outflow", utils.FormatBRL(st.MonthTotalOutflow)),
		row("Month performance", utils.FormatBRL(st.Performance)),
		row("Strategy", st.Strategy),
	}
	b.WriteString(strings.Join(lines, "\n"))
	if st.StatusMessage != "" {
		b.WriteString("\n\n  " + st.StatusMessage)
	}
	b.WriteString("\n")
	return b.String()
}

func renderProjection(rep models.ProjectionReport) string {
	var b strings.Builder
	b.WriteString(renderTitle(fmt.Sprintf("PROJECTION %d MONTHS", rep.Months)))
	b.WriteString("\n")
	b.WriteString(row("Current balance", utils.FormatBRL(rep.CurrentBalance)))
	b.WriteString("\n")
	b.WriteString(row("Strategy", rep.Strategy))
	b.WriteString("\n\n")
	for _, p := range rep.Points {
		end := utils.FormatBRL(p.BalanceEnd)
		if p.IsNegative {
			end = stateStyle(models.StateRed).Render(end)
		}
		fmt.Fprintf(&b, "  %-10s %d  in %14s  out %14s  end %s\n",
			p.MonthName, p.Year,
			utils.FormatBRL(p.IncomeProjected),
			utils.FormatBRL(p.OutflowProjected),
			end,
		)
	}
	if len(rep.RiskAlerts) > 0 {
		b.WriteString("\n")
		b.WriteString(renderAlerts(rep.RiskAlerts))
	}
	return b.String()
}

func renderAlerts(alerts []models.Alert) string {
	if len(alerts) == 0 {
		return "  No alerts.\n"
	}
	var b strings.Builder
	for _, a := range alerts {
		tag := priorityStyle(a.Priority).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Priority))))
		fmt.Fprintf(&b, "  %s %s\n      %s\n", tag, a.Title, a.Message)
	}
	return b.String()
}

func renderSweep(r models.SweepResult) string {
	day := r.Date.Format("2006-01-02")
	if r.Zeroed {
		return fmt.Sprintf("  %s: placeholder %s zeroed\n", day, utils.FormatBRL(r.Prescribed))
	}
	return fmt.Sprintf("  %s: kept %s\n", day, utils.FormatBRL(r.Value))
}
