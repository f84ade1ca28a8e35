package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/client"
	"github.com/raphaelgruber/sayar/internal/metrics"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show statistics of a running sayar-server",
	Long: `Show runtime statistics of a running sayar-server: AI calls and token
usage, Drive operations and local database queries.

The server address comes from SAYAR_SERVER_URL (default http://localhost:8484).`,
	Annotations: map[string]string{standalone: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New("")
		stats, err := c.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("get server stats: %w", err)
		}
		printServerStats(stats)
		return nil
	},
}

// printServerStats displays server runtime statistics.
func printServerStats(stats *metrics.Snapshot) {
	printHeading("Server Statistics (in-memory, since restart)")
	fmt.Printf("Uptime: %.1f seconds\n", stats.UptimeSeconds)

	sections := []struct {
		title  string
		op     *metrics.OperationSnapshot
		tokens bool
	}{
		{"AI Generate", stats.LLMGenerate, true},
		{"Drive Provision", stats.DriveProvision, false},
		{"Drive Upload", stats.DriveUpload, false},
		{"Drive Download", stats.DriveDownload, false},
		{"Store Query", stats.StoreQuery, false},
	}
	for _, s := range sections {
		if s.op == nil {
			continue
		}
		fmt.Printf("\n%s:\n", s.title)
		printOpStats(s.op)
		if s.tokens {
			printTokenStats(s.op)
		}
	}
}

func printOpStats(op *metrics.OperationSnapshot) {
	fmt.Printf("  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
	fmt.Printf("  Time: avg %.1fms, min %dms, max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Printf("  Tokens In:  %d total", *op.TotalInputTokens)
	if op.AvgInputTokens != nil {
		fmt.Printf(", avg %.0f", *op.AvgInputTokens)
	}
	fmt.Println()

	fmt.Printf("  Tokens Out: %d total", *op.TotalOutputTokens)
	if op.AvgOutputTokens != nil {
		fmt.Printf(", avg %.0f", *op.AvgOutputTokens)
	}
	fmt.Println()
}
