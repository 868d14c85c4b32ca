package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/aidanproy/minorminer/pkg/embed"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + styleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

// =============================================================================
// Result Summary
// =============================================================================

// printResult prints the outcome banner and quality table of one embedding
// run.
func printResult(res *embed.Result) {
	if res.Success {
		printSuccess("Found proper embedding")
	} else if res.Quality.Chains > 0 {
		printWarning("Embedding is not proper (overlaps or uncovered edges remain)")
	} else {
		printError("No embedding found")
	}

	status := iconFresh
	statusStyle := styleComputed
	if res.CacheHit {
		status = iconCached
		statusStyle = styleCached
	}
	printDetail("%s chains · max length %s · total length %s · %s",
		styleNumber.Render(fmt.Sprint(res.Quality.Chains)),
		styleNumber.Render(fmt.Sprint(res.Quality.MaxChainLength)),
		styleNumber.Render(fmt.Sprint(res.Quality.TotalChainLength)),
		statusStyle.Render(status))

	if len(res.Quality.ChainLengthHistogram) > 0 {
		lengths := make([]int, 0, len(res.Quality.ChainLengthHistogram))
		for l := range res.Quality.ChainLengthHistogram {
			lengths = append(lengths, l)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
		line := ""
		for i, l := range lengths {
			if i > 0 {
				line += " · "
			}
			line += fmt.Sprintf("%d×len %d", res.Quality.ChainLengthHistogram[l], l)
		}
		printDetail("%s", line)
	}
}
