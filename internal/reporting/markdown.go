package reporting

import (
	"fmt"
	"strings"
	"time"
)

// fiatDisplayDecimals is the precision of fiat totals in the summary table.
const fiatDisplayDecimals = 2

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Stream Accounting Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Window: %s to %s | Virtualization: %s | Currency: %s\n\n",
		formatDate(r.Start), formatDate(r.End), r.Virtualization, r.Currency))
	if len(r.Addresses) > 0 {
		sb.WriteString(fmt.Sprintf("Accounts: %s\n\n", strings.Join(r.Addresses, ", ")))
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Records | %d |\n", r.Records))
	sb.WriteString(fmt.Sprintf("| Stream Periods | %d |\n", r.StreamPeriods))
	sb.WriteString(fmt.Sprintf("| Transfers | %d |\n", r.Transfers))
	sb.WriteString(fmt.Sprintf("| Virtual Periods | %d |\n", r.VirtualPeriods))
	sb.WriteString("\n")

	// Totals
	sb.WriteString("## Totals per Token\n\n")
	if len(r.Totals) == 0 {
		sb.WriteString("No records in window.\n\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("| Chain | Token | Direction | Records | Amount | Amount (%s) |\n", r.Currency))
	sb.WriteString("|-------|-------|-----------|---------|--------|-------------|\n")
	for _, t := range r.Totals {
		token := t.Symbol
		if token == "" {
			token = t.Token
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d | %s | %s |\n",
			t.ChainID, token, t.Direction, t.Records,
			t.Amount.String(), t.AmountFiat.StringFixed(fiatDisplayDecimals)))
	}
	sb.WriteString("\n")

	return sb.String()
}
