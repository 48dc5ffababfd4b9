package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/AnyUserName/b64jpeg/internal/manifest"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for an encoded output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 10, "number of largest outputs to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	path, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	entries, err := manifest.ReadJSON(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	printStats(cmd.OutOrStdout(), entries, statsTop)
	return nil
}

// manifestPath accepts either a manifest file or the directory holding one.
func manifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, manifest.JSONName), nil
	}
	return path, nil
}

func printStats(w io.Writer, entries []manifest.Entry, top int) {
	s := manifest.ComputeStats(entries)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Files:            %d (%d data URI)\n", s.Files, s.DataURIFiles)
	fmt.Fprintf(w, "  Input size:       %s\n", humanize.IBytes(uint64(s.TotalOrigBytes)))
	fmt.Fprintf(w, "  JPEG size:        %s\n", humanize.IBytes(uint64(s.TotalJPEGBytes)))
	fmt.Fprintf(w, "  Base64 chars:     %s (max %s)\n", humanize.Comma(s.TotalBase64), humanize.Comma(int64(s.MaxBase64)))
	if s.TotalOrigBytes > 0 {
		ratio := float64(s.TotalJPEGBytes) / float64(s.TotalOrigBytes) * 100
		fmt.Fprintf(w, "  Ratio:            %.1f%% of original\n", ratio)
	}
	fmt.Fprintln(w)

	if len(entries) == 0 || top <= 0 {
		return
	}

	sorted := make([]manifest.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Base64Chars > sorted[j].Base64Chars
	})
	if len(sorted) > top {
		sorted = sorted[:top]
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Source", "Original", "JPEG", "Base64 chars"})
	for _, e := range sorted {
		tw.AppendRow(table.Row{
			e.Source,
			humanize.IBytes(uint64(e.OrigBytes)),
			humanize.IBytes(uint64(e.FinalJPEGBytes)),
			strconv.Itoa(e.Base64Chars),
		})
	}
	// Size columns right-aligned under left-aligned headers.
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	fmt.Fprintf(w, "  Largest %d outputs:\n", len(sorted))
	fmt.Fprintln(w, tw.Render())
	fmt.Fprintln(w)
}
