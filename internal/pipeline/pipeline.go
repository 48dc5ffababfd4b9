package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AnyUserName/b64jpeg/internal/encoder"
	"github.com/AnyUserName/b64jpeg/internal/hasher"
	"github.com/AnyUserName/b64jpeg/internal/manifest"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// ErrNoInputFiles is returned when the input directory holds no JPEGs.
// No output directory or manifest is created in that case.
var ErrNoInputFiles = errors.New("no JPG/JPEG files found")

// Config holds all parameters for one batch run.
type Config struct {
	InputDir  string
	OutputDir string
	Recurse   bool
	DataURI   bool
	CSV       bool // also write manifest.csv
	Budget    encoder.Budget

	// Fitter re-encodes images when Budget is enabled. Defaults to a JPEG
	// fitter with image support.
	Fitter *encoder.Fitter
	// Logger receives per-file warnings and the final summary.
	Logger *slog.Logger
	// Progress, when set, receives a progress bar.
	Progress io.Writer
}

// Summary aggregates one batch run.
type Summary struct {
	Files            int   // JPEGs discovered
	TotalInputBytes  int64 // source bytes of processed files
	TotalOutputChars int64 // characters written, data-URI headers included
	Skipped          int
	Entries          []manifest.Entry
	OutputDir        string

	// Digest fingerprints every output path and text in order.
	Digest string
}

// Pipeline runs a batch sequentially, one file at a time.
type Pipeline struct {
	cfg Config
	log *slog.Logger
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Fitter == nil {
		cfg.Fitter = encoder.NewFitter(&encoder.JPEGEncoder{}, true)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes the batch. It returns ErrNoInputFiles when nothing matched.
// Per-file failures are logged and counted in Summary.Skipped; Run still
// succeeds when every discovered file was skipped.
func (p *Pipeline) Run() (*Summary, error) {
	cfg := p.cfg

	if err := cfg.Budget.Validate(); err != nil {
		return nil, fmt.Errorf("invalid budget: %w", err)
	}

	sources, err := ScanJPEGs(cfg.InputDir, cfg.Recurse)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		p.log.Info("No JPG/JPEG files found.", "input", cfg.InputDir, "recurse", cfg.Recurse)
		return nil, ErrNoInputFiles
	}
	var scanned int64
	for _, src := range sources {
		scanned += src.Size
	}
	p.log.Debug("discovered files",
		"count", len(sources),
		"bytes", humanize.IBytes(uint64(scanned)),
		"budget", cfg.Budget.String(),
	)

	if cfg.Budget.Enabled() && !cfg.Fitter.Capable() {
		p.log.Warn(encoder.NoteUnavailable)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress != nil {
		bar = progressbar.NewOptions(len(sources),
			progressbar.OptionSetWriter(cfg.Progress),
			progressbar.OptionSetDescription("Encoding"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	sum := &Summary{
		Files:     len(sources),
		Entries:   make([]manifest.Entry, 0, len(sources)),
		OutputDir: cfg.OutputDir,
	}
	digest := hasher.NewDigest()
	written := make(map[string]string, len(sources)) // OutRel -> RelPath

	for _, src := range sources {
		if prev, ok := written[src.OutRel]; ok {
			if bar != nil {
				_ = bar.Add(1)
			}
			sum.Skipped++
			p.log.Warn("skipping file",
				"file", src.AbsPath,
				"error", fmt.Sprintf("output %s already written for %s", src.OutRel, prev),
			)
			continue
		}

		res, err := processFile(src, cfg)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			sum.Skipped++
			p.log.Warn("skipping file", "file", src.AbsPath, "error", err)
			continue
		}

		written[src.OutRel] = src.RelPath
		p.logFit(src, res)

		sum.Entries = append(sum.Entries, res.entry)
		sum.TotalInputBytes += res.entry.OrigBytes
		sum.TotalOutputChars += int64(len(res.text))
		digest.Add(res.entry.Output, []byte(res.text))
	}
	if bar != nil {
		_ = bar.Finish()
	}
	sum.Digest = digest.Hex()

	if err := manifest.WriteJSON(sum.Entries, filepath.Join(cfg.OutputDir, manifest.JSONName)); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if cfg.CSV {
		if err := manifest.WriteCSV(sum.Entries, filepath.Join(cfg.OutputDir, manifest.CSVName)); err != nil {
			return nil, fmt.Errorf("write csv manifest: %w", err)
		}
	}

	p.logSummary(sum)
	return sum, nil
}

func (p *Pipeline) logFit(src Source, res processResult) {
	fit := res.fit
	if !p.cfg.Budget.Enabled() {
		p.log.Debug("encoded", "file", src.RelPath, "bytes", src.Size)
		return
	}
	p.log.Debug("encoded",
		"file", src.RelPath,
		"width", fit.Width,
		"height", fit.Height,
		"quality", fit.Quality,
		"attempts", fit.Attempts,
		"shrink_steps", len(fit.Steps),
		"base64_chars", fit.Base64Chars,
	)
	if !fit.WithinBudget {
		p.log.Warn("budget not met; keeping best effort",
			"file", src.RelPath,
			"base64_chars", fit.Base64Chars,
			"cap_chars", p.cfg.Budget.CapChars,
		)
	}
}

func (p *Pipeline) logSummary(sum *Summary) {
	p.log.Info(fmt.Sprintf("Done. Input bytes: %s -> Total Base64 chars: %s",
		humanize.IBytes(uint64(sum.TotalInputBytes)),
		humanize.Comma(sum.TotalOutputChars),
	), "files", len(sum.Entries), "digest", sum.Digest)
	if sum.Skipped > 0 {
		p.log.Warn(fmt.Sprintf("Skipped %d files due to errors.", sum.Skipped))
	}
	p.log.Info(fmt.Sprintf("Outputs are in: %s", sum.OutputDir))
}
