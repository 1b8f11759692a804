// Package docx reads paragraph text out of .docx (WordprocessingML) files.
//
// Only text is extracted: runs are concatenated per paragraph, tabs and
// line breaks become '\t' and '\n', and deleted text and field codes are
// skipped. Paragraphs nested in tables and text boxes are returned in
// document order. Of each mc:AlternateContent block only the mc:Choice
// branch is read; the mc:Fallback copy of the same content is ignored.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	compatNS     = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

var ErrNoDocumentPart = errors.New("docx: word/document.xml not found")

// Document is a parsed .docx file.
type Document struct {
	Path       string
	paragraphs []string
}

// Paragraphs returns the paragraph texts, including empty ones.
func (d *Document) Paragraphs() []string {
	return d.paragraphs
}

// Open reads and parses the .docx file at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	paras, err := ReadParagraphs(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{Path: path, paragraphs: paras}, nil
}

// ReadParagraphs parses a .docx archive and returns its paragraph texts.
func ReadParagraphs(r io.ReaderAt, size int64) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return nil, ErrNoDocumentPart
}

func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out      []string
		stack    []*strings.Builder // open paragraphs; text boxes nest them
		inText   bool
		fallback int // >0 while inside mc:Fallback
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx: parse %s: %w", documentPart, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == compatNS && t.Name.Local == "Fallback" {
				fallback++
				continue
			}
			if t.Name.Space != wordNS || fallback > 0 {
				continue
			}
			switch t.Name.Local {
			case "p":
				stack = append(stack, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteByte('\t')
				}
			case "br", "cr":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space == compatNS && t.Name.Local == "Fallback" {
				fallback--
				continue
			}
			if t.Name.Space != wordNS || fallback > 0 {
				continue
			}
			switch t.Name.Local {
			case "p":
				if len(stack) == 0 {
					continue
				}
				out = append(out, stack[len(stack)-1].String())
				stack = stack[:len(stack)-1]
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && len(stack) > 0 {
				stack[len(stack)-1].Write(t)
			}
		}
	}
	return out, nil
}
