package cmd

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/b64jpeg/internal/b64text"
	"github.com/AnyUserName/b64jpeg/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCapChars int

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_manifest>",
	Short: "Check that every manifest entry matches a decodable output file",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().IntVarP(&validateCapChars, "cap-chars", "c", 0, "also report entries over this many base64 characters")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	entries, err := manifest.ReadJSON(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	errs := validateEntries(entries, filepath.Dir(path), validateCapChars)
	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintln(out, "  ✓ Manifest is valid")
		fmt.Fprintf(out, "  ✓ %d outputs present and decodable\n", len(entries))
		return nil
	}

	fmt.Fprintf(out, "  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(out, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateEntries(entries []manifest.Entry, baseDir string, capChars int) []string {
	var errs []string
	seen := map[string]bool{}

	for i, e := range entries {
		label := fmt.Sprintf("entry[%d] %q", i, e.Source)

		if e.Output == "" {
			errs = append(errs, label+": missing output path")
			continue
		}
		if seen[e.Output] {
			errs = append(errs, fmt.Sprintf("%s: duplicate output %q", label, e.Output))
		}
		seen[e.Output] = true

		if e.Base64Chars != b64text.Chars(e.FinalJPEGBytes) {
			errs = append(errs, fmt.Sprintf("%s: base64_chars %d != 4*ceil(%d/3)", label, e.Base64Chars, e.FinalJPEGBytes))
		}
		if capChars > 0 && e.Base64Chars > capChars {
			errs = append(errs, fmt.Sprintf("%s: %d chars over cap %d", label, e.Base64Chars, capChars))
		}

		raw, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(e.Output)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: output not readable: %v", label, err))
			continue
		}
		txt := string(raw)
		if strings.HasPrefix(txt, b64text.DataURIPrefix) != e.DataURI {
			errs = append(errs, fmt.Sprintf("%s: data_uri=%v does not match file", label, e.DataURI))
		}
		data, err := b64text.Decode(txt)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		if len(data) != e.FinalJPEGBytes {
			errs = append(errs, fmt.Sprintf("%s: size mismatch: manifest=%d, decoded=%d", label, e.FinalJPEGBytes, len(data)))
		}
		if _, err := jpeg.DecodeConfig(bytes.NewReader(data)); err != nil {
			errs = append(errs, fmt.Sprintf("%s: payload is not a JPEG: %v", label, err))
		}
	}
	return errs
}
