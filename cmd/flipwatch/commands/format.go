package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/flipwatch/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintHeader prints a titled block header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintReportSummary prints a run report for the terminal
func PrintReportSummary(r *contracts.RunReport) {
	PrintHeader(fmt.Sprintf("台股隔日沖監控 %s", r.Date))
	PrintKeyValue("Status", string(r.Status), 10)
	PrintKeyValue("Candidates", strconv.Itoa(len(r.Candidates)), 10)
	PrintKeyValue("Hits", strconv.Itoa(len(r.Hits)), 10)
	if r.Diagnostic != "" {
		PrintKeyValue("Diagnostic", r.Diagnostic, 10)
	}
	PrintSeparator()

	switch r.Status {
	case contracts.StatusHits:
		widths := []int{8, 16, 8}
		PrintTableHeader([]string{"股票", "大戶分點", "買超張數"}, widths)
		for _, h := range r.Hits {
			PrintTableRow([]string{h.SecurityID, h.BrokerName, strconv.FormatInt(h.NetBuy, 10)}, widths)
		}
	case contracts.StatusNoActivity:
		PrintInfo(r.Headline())
	default:
		PrintWarning(r.Headline())
	}

	if len(r.Skipped) > 0 {
		fmt.Println()
		PrintWarning(fmt.Sprintf("%d candidate(s) skipped:", len(r.Skipped)))
		items := make([]string, 0, len(r.Skipped))
		for _, s := range r.Skipped {
			items = append(items, fmt.Sprintf("%s (%s)", s.SecurityID, s.Reason))
		}
		PrintList(items)
	}
	PrintDoubleSeparator()
}
