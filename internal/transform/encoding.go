package transform

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ContentEncodingError reports input that could not be converted to UTF-8.
type ContentEncodingError struct {
	Charset string
	Err     error
}

func (e *ContentEncodingError) Error() string {
	return fmt.Sprintf("decode content as %s: %v", e.Charset, e.Err)
}

func (e *ContentEncodingError) Unwrap() error {
	return e.Err
}

// toUTF8 converts src to UTF-8. An explicit charset name takes precedence;
// otherwise valid UTF-8 passes through and other input is sniffed from its
// meta tags, falling back to windows-1252.
func toUTF8(src []byte, name string) ([]byte, error) {
	if name == "" && utf8.Valid(src) {
		return src, nil
	}

	var enc encoding.Encoding
	if name != "" {
		e, err := htmlindex.Get(name)
		if err != nil {
			return nil, &ContentEncodingError{Charset: name, Err: err}
		}
		enc = e
		if n, err := htmlindex.Name(e); err == nil {
			name = n
		}
	} else {
		enc, name, _ = charset.DetermineEncoding(src, "text/html")
	}

	if name == "utf-8" {
		if !utf8.Valid(src) {
			return nil, &ContentEncodingError{Charset: name, Err: ErrInvalidUTF8}
		}
		return src, nil
	}

	out, err := enc.NewDecoder().Bytes(src)
	if err != nil {
		return nil, &ContentEncodingError{Charset: name, Err: err}
	}
	return out, nil
}
