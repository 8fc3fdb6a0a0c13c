// Package extract turns uploaded bill documents into plain text the
// analysis pipeline can consume. Text and JSON files are decoded directly;
// PDFs go through pdftotext with a printable byte-run fallback for
// installations without poppler.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxPDFBytes = 20 * 1024 * 1024
	maxTextRun  = 24000
	minRunLen   = 24
)

const (
	noticeText = "Loaded text file successfully."
	noticeJSON = "Loaded JSON file successfully."
	noticePDF  = "Loaded PDF bill successfully."
)

// Result is one successful extraction. Notice is the user-facing status
// line, Method records which decoder produced the text.
type Result struct {
	Text      string
	Notice    string
	Method    string
	Truncated bool
}

// FromUpload dispatches on the uploaded filename's extension. Only .txt,
// .json, and .pdf are accepted.
func FromUpload(ctx context.Context, filename string, data []byte) (Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return fromText(data)
	case ".json":
		return fromJSON(data)
	case ".pdf":
		return fromPDF(ctx, data)
	default:
		return Result{}, errors.New("unsupported file type: upload a PDF, text, or JSON file")
	}
}

func fromText(data []byte) (Result, error) {
	if !utf8.Valid(data) {
		return Result{}, errors.New("unable to read text file: not valid UTF-8")
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("unable to read text file: the text file is empty")
	}
	return Result{Text: text, Notice: noticeText, Method: "text"}, nil
}

func fromJSON(data []byte) (Result, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, fmt.Errorf("unable to read JSON file: %w", err)
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("unable to read JSON file: %w", err)
	}
	return Result{Text: string(encoded), Notice: noticeJSON, Method: "json"}, nil
}

func fromPDF(ctx context.Context, data []byte) (Result, error) {
	if len(data) > maxPDFBytes {
		return Result{}, fmt.Errorf("pdf too large: %d bytes", len(data))
	}
	if text, err := runPdfToText(ctx, data); err == nil && strings.TrimSpace(text) != "" {
		return truncateExtraction(text, "pdftotext"), nil
	}
	fallback := extractPrintableText(data)
	if strings.TrimSpace(fallback) == "" {
		return Result{}, errors.New("the PDF opened, but no readable text was found")
	}
	return truncateExtraction(fallback, "byte-fallback"), nil
}

func runPdfToText(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "billguard-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// extractPrintableText salvages readable runs from raw PDF bytes. Runs
// shorter than minRunLen are noise from compressed streams and dropped.
func extractPrintableText(blob []byte) string {
	var runs []string
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		if len(s) >= minRunLen {
			runs = append(runs, s)
		}
		b.Reset()
	}
	for _, c := range blob {
		r := rune(c)
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	joined := strings.Join(runs, "\n")
	joined = strings.ReplaceAll(joined, "\x00", "")
	return strings.TrimSpace(joined)
}

func truncateExtraction(text, method string) Result {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= maxTextRun {
		return Result{Text: trimmed, Notice: noticePDF, Method: method}
	}
	prefix := trimmed[:maxTextRun]
	// Avoid cutting in the middle of a rune sequence.
	prefix = string(bytes.Runes([]byte(prefix)))
	return Result{
		Text:      prefix + "\n\n[TRUNCATED]",
		Notice:    noticePDF,
		Method:    method,
		Truncated: true,
	}
}
