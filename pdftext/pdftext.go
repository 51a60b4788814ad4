// Package pdftext pulls the embedded text layer out of PDF timesheets.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Extract concatenates the text of every page, in order.
func Extract(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer doc.Close()

	var builder strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d of %s: %w", page+1, path, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
