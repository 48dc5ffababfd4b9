package manifest

// Entry records one successfully processed source file.
type Entry struct {
	Source         string `json:"source"`           // relative to the input dir, slash-separated
	Output         string `json:"output"`           // relative to the output dir
	OrigBytes      int64  `json:"orig_bytes"`       // source file size
	FinalJPEGBytes int    `json:"final_jpeg_bytes"` // bytes behind the base64 text
	Base64Chars    int    `json:"base64_chars"`     // 4*ceil(final_jpeg_bytes/3), data-URI header excluded
	DataURI        bool   `json:"data_uri"`
}

// Stats aggregates a manifest.
type Stats struct {
	Files          int   `json:"files"`
	TotalOrigBytes int64 `json:"total_orig_bytes"`
	TotalJPEGBytes int64 `json:"total_jpeg_bytes"`
	TotalBase64    int64 `json:"total_base64_chars"`
	MaxBase64      int   `json:"max_base64_chars"`
	DataURIFiles   int   `json:"data_uri_files"`
}

// File names written into the output directory.
const (
	JSONName = "manifest.json"
	CSVName  = "manifest.csv"
)

// CSVHeader is the fixed first row of manifest.csv.
var CSVHeader = []string{"source", "output", "orig_bytes", "final_jpeg_bytes", "base64_chars", "data_uri"}
