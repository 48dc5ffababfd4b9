package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/b64jpeg/internal/b64text"
	"github.com/AnyUserName/b64jpeg/internal/encoder"
	"github.com/AnyUserName/b64jpeg/internal/manifest"
)

// processResult holds the outcome of processing one source file.
type processResult struct {
	entry manifest.Entry
	text  string
	fit   encoder.Result
}

// processFile reads, optionally fits, encodes and writes one source.
func processFile(src Source, cfg Config) (processResult, error) {
	var result processResult

	raw, err := os.ReadFile(src.AbsPath)
	if err != nil {
		return result, fmt.Errorf("read %s: %w", src.RelPath, err)
	}

	if cfg.Budget.Enabled() {
		result.fit, err = cfg.Fitter.FitBytes(raw, cfg.Budget)
		if err != nil {
			return result, fmt.Errorf("fit %s: %w", src.RelPath, err)
		}
	} else {
		result.fit = encoder.Result{
			Data:         raw,
			Bytes:        len(raw),
			Base64Chars:  b64text.Chars(len(raw)),
			Passthrough:  true,
			WithinBudget: true,
		}
	}

	result.text = b64text.Encode(result.fit.Data, cfg.DataURI)

	outPath := filepath.Join(cfg.OutputDir, filepath.FromSlash(src.OutRel))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return result, fmt.Errorf("create dir for %s: %w", src.OutRel, err)
	}
	if err := os.WriteFile(outPath, []byte(result.text), 0o644); err != nil {
		return result, fmt.Errorf("write %s: %w", src.OutRel, err)
	}

	result.entry = manifest.Entry{
		Source:         src.RelPath,
		Output:         src.OutRel,
		OrigBytes:      int64(len(raw)),
		FinalJPEGBytes: len(result.fit.Data),
		Base64Chars:    b64text.Chars(len(result.fit.Data)),
		DataURI:        cfg.DataURI,
	}
	return result, nil
}
