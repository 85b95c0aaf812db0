package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/olekukonko/tablewriter"

	"happylink/internal/models"
)

// renderGrid draws a bordered table with a line between rows. Multi-line
// cells keep phone screens from wrapping the table.
func renderGrid(headers []string, rows [][]string) string {
	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)
	table.AppendBulk(rows)
	table.Render()
	return sb.String()
}

func stacked(s string) string {
	return strings.ReplaceAll(s, " ", "\n")
}

func agreementsOf(lines []models.BalanceLine) string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lines {
		if !seen[l.Agreement] {
			seen[l.Agreement] = true
			out = append(out, l.Agreement)
		}
	}
	return strings.Join(out, ", ")
}

// balanceMessage renders the balance table in Telegram HTML
func balanceMessage(lines []models.BalanceLine) string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			fmt.Sprintf("₴%.2f", l.Balance),
			stacked(strings.Join(l.Plans, ", ")),
			stacked(l.Address.Short()),
		})
	}

	table := renderGrid([]string{"Баланс", "Тариф", "Адреса"}, rows)
	return fmt.Sprintf("Договір# %s\n<pre>%s</pre>", html.EscapeString(agreementsOf(lines)), html.EscapeString(table))
}

// paymentsMessage renders the payment history table in Telegram HTML
func paymentsMessage(payments []models.Payment) string {
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			fmt.Sprintf("₴%.2f", p.Amount),
			p.Time.Format("2006-01-02"),
			p.Comment,
		})
	}

	table := renderGrid([]string{"Сума", "Дата", "Опис"}, rows)
	return fmt.Sprintf("Договір# %s\n останні %d платежів \n<pre>%s</pre>",
		html.EscapeString(payments[0].Agreement), paymentsLimit, html.EscapeString(table))
}
