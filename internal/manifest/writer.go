package manifest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// ComputeStats summarizes entries.
func ComputeStats(entries []Entry) Stats {
	var s Stats
	s.Files = len(entries)
	for _, e := range entries {
		s.TotalOrigBytes += e.OrigBytes
		s.TotalJPEGBytes += int64(e.FinalJPEGBytes)
		s.TotalBase64 += int64(e.Base64Chars)
		if e.Base64Chars > s.MaxBase64 {
			s.MaxBase64 = e.Base64Chars
		}
		if e.DataURI {
			s.DataURIFiles++
		}
	}
	return s
}

// WriteJSON writes entries as an indented JSON array, preserving order.
func WriteJSON(entries []Entry, path string) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// WriteCSV writes entries under CSVHeader, preserving order.
func WriteCSV(entries []Entry, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		err := w.Write([]string{
			e.Source,
			e.Output,
			strconv.FormatInt(e.OrigBytes, 10),
			strconv.Itoa(e.FinalJPEGBytes),
			strconv.Itoa(e.Base64Chars),
			strconv.FormatBool(e.DataURI),
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadJSON loads a manifest written by WriteJSON.
func ReadJSON(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}
