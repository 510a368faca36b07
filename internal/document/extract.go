package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrExtraction wraps every failure to obtain text from a document.
	ErrExtraction = errors.New("failed to extract text from resume")
	// ErrUnsupportedFormat is returned for file extensions without an extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	blanksRe = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
)

// Extensions lists the formats Extract understands.
var Extensions = []string{".pdf", ".docx", ".txt"}

// ExtractFile reads the file at path and extracts its text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return Extract(filepath.Base(path), data)
}

// Extract returns the plain text of a document, choosing the format by the filename extension.
func Extract(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		text, err = fromPDF(data)
	case ".docx":
		text, err = fromDocx(data)
	case ".txt":
		text, err = fromPlain(data)
	default:
		return "", fmt.Errorf("%w: %w %q", ErrExtraction, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, filename, err)
	}

	text = tidy(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s: no text found", ErrExtraction, filename)
	}
	return text, nil
}

// Supported reports whether filename has an extension Extract understands.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func fromPDF(data []byte) (text string, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", errors.New("not a pdf document")
	}

	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fromDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		return docxText(rc)
	}

	return "", errors.New("no word/document.xml found in docx")
}

// docxText collects the w:t runs of a WordprocessingML body, one line per paragraph.
func docxText(r io.Reader) (string, error) {
	var (
		b      strings.Builder
		inText bool
	)

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}

func fromPlain(data []byte) (string, error) {
	if bytes.IndexByte(data, 0) != -1 || !utf8.Valid(data) {
		return "", errors.New("binary content in text file")
	}
	return string(data), nil
}

// tidy collapses blanks within lines and drops empty lines.
func tidy(s string) string {
	lines := strings.Split(blanksRe.ReplaceAllString(s, " "), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
