package decor

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// sourceEncoding picks the encoding src was written in; nil means UTF-8.
// A BOM, a charset parameter on contentType or a <meta> declaration decide
// it. Without any of those, charset falls back to windows-1252, which would
// garble pages whose first non-ASCII byte sits past the sniffing window, so
// input that is valid UTF-8 throughout is read as UTF-8 instead.
func sourceEncoding(src []byte, contentType string) encoding.Encoding {
	e, name, certain := charset.DetermineEncoding(src, contentType)
	if name == "utf-8" {
		return nil
	}
	if !certain && name == "windows-1252" && utf8.Valid(src) {
		return nil
	}
	return e
}

func parseEncoded(src []byte, enc encoding.Encoding) (*html.Node, error) {
	var r io.Reader = bytes.NewReader(bytes.TrimPrefix(src, utf8BOM))
	if enc != nil {
		r = enc.NewDecoder().Reader(bytes.NewReader(src))
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Parse decodes r to UTF-8 (using contentType and any <meta charset> hint)
// and builds the document tree.
func Parse(r io.Reader, contentType string) (*html.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	return parseEncoded(src, sourceEncoding(src, contentType))
}

func Render(w io.Writer, doc *html.Node) error {
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// DecorateBytes decorates a page read from disk, where only the markup
// itself says how it is encoded.
func (d *Decorator) DecorateBytes(src []byte) ([]byte, Report, error) {
	return d.Decorate(src, "text/html")
}

// Decorate parses src, runs the steps and renders the result in the same
// encoding the page was read in, so its own charset declaration stays true.
// A charset parameter on contentType overrides the markup.
func (d *Decorator) Decorate(src []byte, contentType string) ([]byte, Report, error) {
	enc := sourceEncoding(src, contentType)
	doc, err := parseEncoded(src, enc)
	if err != nil {
		return nil, Report{}, err
	}
	rep := d.Run(doc)
	var buf bytes.Buffer
	buf.Grow(len(src) + 256)
	var w io.Writer = &buf
	if enc != nil {
		w = encoding.HTMLEscapeUnsupported(enc.NewEncoder()).Writer(&buf)
	}
	if err := Render(w, doc); err != nil {
		return nil, rep, err
	}
	if c, ok := w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return nil, rep, fmt.Errorf("encode html: %w", err)
		}
	}
	return buf.Bytes(), rep, nil
}
