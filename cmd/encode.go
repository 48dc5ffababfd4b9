package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AnyUserName/b64jpeg/internal/config"
	"github.com/AnyUserName/b64jpeg/internal/encoder"
	"github.com/AnyUserName/b64jpeg/internal/hasher"
	"github.com/AnyUserName/b64jpeg/internal/logging"
	"github.com/AnyUserName/b64jpeg/internal/pipeline"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	encodeOutDir       string
	encodeConfigPath   string
	encodeEnvFile      string
	encodeProfile      string
	encodeRecurse      bool
	encodeDataURI      bool
	encodeCSV          bool
	encodeCapChars     int
	encodeMaxPx        int
	encodeQualityFloor int
	encodeNoImage      bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input_dir>",
	Short: "Encode every JPEG in a directory to base64 text",
	Long: `Scans input_dir for .jpg/.jpeg files (any case), writes one
<name>.b64.txt per image into the output directory, mirroring the input
tree, plus manifest.json (and manifest.csv with --csv).

With --cap-chars each image is re-encoded and, if needed, downscaled so
that its base64 text stays within the cap. Without it the original bytes
are encoded as-is.

Settings are layered: profile < --config file < B64JPEG_* environment
(including --env-file) < flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	f := encodeCmd.Flags()
	f.StringVarP(&encodeOutDir, "out", "o", "", "output directory (default ./b64_out/<run id>)")
	f.StringVar(&encodeConfigPath, "config", "", "TOML config file")
	f.StringVar(&encodeEnvFile, "env-file", ".env", "dotenv file with B64JPEG_* settings")
	f.StringVarP(&encodeProfile, "profile", "p", "", "budget profile (default, sms, chat, tiny)")
	f.BoolVarP(&encodeRecurse, "recurse", "r", false, "descend into subdirectories")
	f.BoolVar(&encodeDataURI, "data-uri", false, "prefix output with data:image/jpeg;base64,")
	f.BoolVar(&encodeCSV, "csv", false, "also write manifest.csv")
	f.IntVarP(&encodeCapChars, "cap-chars", "c", 0, "maximum base64 characters per image (0 = no cap)")
	f.IntVar(&encodeMaxPx, "max-px", encoder.DefaultMaxPx, "longest edge after resizing")
	f.IntVarP(&encodeQualityFloor, "quality-floor", "q", encoder.DefaultQualityFloor, "lowest JPEG quality to try (1-100)")
	f.BoolVar(&encodeNoImage, "no-image", false, "disable image processing; originals pass through")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{Level: level, Format: cfg.LogFormat, Writer: os.Stderr})
	if err != nil {
		return err
	}

	outDir := encodeOutDir
	if outDir == "" {
		outDir = filepath.Join("b64_out", uuid.NewString())
	}
	absOutput, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	lock := flock.New(lockPath(absOutput))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock output dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("output dir %s is in use by another run", absOutput)
	}
	defer lock.Unlock()

	log.Debug("starting batch",
		"input", absInput,
		"output", absOutput,
		"profile", cfg.Profile,
		"budget", cfg.Budget.String(),
	)

	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Recurse:   cfg.Recurse,
		DataURI:   cfg.DataURI,
		CSV:       cfg.CSVMap,
		Budget:    cfg.Budget,
		Fitter:    encoder.NewFitter(&encoder.JPEGEncoder{}, !encodeNoImage),
		Logger:    log,
		Progress:  progressWriter(),
	})

	sum, err := p.Run()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), sum.OutputDir)
	return nil
}

// resolveConfig layers the config file, environment and changed flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var layers []config.Overrides

	if encodeConfigPath != "" {
		file, err := config.LoadFile(encodeConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		layers = append(layers, file)
	}

	dotenv, err := config.LoadDotEnv(encodeEnvFile)
	if err != nil {
		return config.Config{}, err
	}
	env, err := config.FromEnv(config.EnvLookup(dotenv))
	if err != nil {
		return config.Config{}, err
	}
	layers = append(layers, env, flagOverrides(cmd))

	cfg, err := config.Resolve(layers...)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// flagOverrides turns explicitly set flags into a config layer so that flag
// defaults never mask the config file or environment.
func flagOverrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	changed := cmd.Flags().Changed

	if changed("profile") {
		o.Profile = &encodeProfile
	}
	if changed("recurse") {
		o.Recurse = &encodeRecurse
	}
	if changed("data-uri") {
		o.DataURI = &encodeDataURI
	}
	if changed("csv") {
		o.CSVMap = &encodeCSV
	}
	if changed("cap-chars") {
		o.CapChars = &encodeCapChars
	}
	if changed("max-px") {
		o.MaxPx = &encodeMaxPx
	}
	if changed("quality-floor") {
		o.QualityFloor = &encodeQualityFloor
	}
	if logFormat != "" {
		o.LogFormat = &logFormat
	}
	return o
}

// lockPath names the advisory lock guarding one output directory.
func lockPath(absOutput string) string {
	return filepath.Join(os.TempDir(), "b64jpeg-"+hasher.ContentHash([]byte(absOutput), 16)+".lock")
}

// progressWriter returns stderr when it is a terminal, nil otherwise.
func progressWriter() io.Writer {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return os.Stderr
	}
	return nil
}
