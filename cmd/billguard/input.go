package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joelkehle/billguard/internal/billaudit"
	"github.com/joelkehle/billguard/internal/extract"
)

// readBillArg loads the bill from the single optional file argument, or from
// stdin when no argument is given.
func readBillArg(ctx context.Context, args []string) (string, billaudit.RequestMetadata, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", billaudit.RequestMetadata{}, err
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", billaudit.RequestMetadata{}, errors.New("no bill text on stdin; pass a file argument or pipe the bill in")
		}
		return string(data), billaudit.RequestMetadata{}, nil
	}
	res, err := readDocumentFile(ctx, args[0])
	if err != nil {
		return "", billaudit.RequestMetadata{}, err
	}
	meta := billaudit.RequestMetadata{
		SourceFilename:   filepath.Base(args[0]),
		ExtractionMethod: res.Method,
		Truncated:        res.Truncated,
	}
	return res.Text, meta, nil
}

// readDocumentFile extracts text from a bill or EOB document on disk. PDF,
// JSON, and .txt files go through the upload extractor; any other extension
// is read as plain text.
func readDocumentFile(ctx context.Context, path string) (extract.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Result{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".json", ".txt":
		return extract.FromUpload(ctx, filepath.Base(path), data)
	default:
		return extract.Result{Text: string(data), Method: "text"}, nil
	}
}
