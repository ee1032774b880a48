package commands

import (
	"context"
	"io"
	"os"

	"cv-improver/internal/extract"
)

// readDraft reads the draft from path, or stdin for "-". Files go through
// the same extraction as uploads, so PDF and DOCX work too.
func readDraft(ctx context.Context, path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, extract.MaxUploadBytes+1))
		if err != nil {
			return "", err
		}
		return extract.ExtractTextFromBytes(ctx, data, "text/plain", "")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.ExtractTextFromBytes(ctx, data, "", path)
}

// writeOutput writes data to path, or stdout for "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
