package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ContentType is the MIME type of a serialized manifest or catalog.
type ContentType string

const (
	ContentTypeYAML ContentType = "application/yaml"
	ContentTypeJSON ContentType = "application/json"
)

func (ct ContentType) String() string { return string(ct) }

// Recognize tells the content type of data from its first bytes. JSON
// documents are objects, and hence start with an open brace. Anything else
// is YAML if its first line decodes as a non-empty YAML mapping.
func Recognize(data []byte) (ContentType, error) {
	if hasPrefix(data, []byte("{")) {
		return ContentTypeJSON, nil
	}
	line, err := firstLine(data)
	if err != nil {
		return "", &RecognizeError{Underlying: err}
	}
	if isYAML(line) {
		return ContentTypeYAML, nil
	}
	return "", &RecognizeError{}
}

// RecognizeError is returned if the content type of some data could not
// be recognized.
type RecognizeError struct {
	Underlying error
}

func (e *RecognizeError) Error() string {
	msg := "couldn't recognize content type"
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

// Is returns true if target is a *RecognizeError.
func (e *RecognizeError) Is(target error) bool {
	//nolint:errorlint
	_, ok := target.(*RecognizeError)
	return ok
}

func (e *RecognizeError) Unwrap() error { return e.Underlying }

// UnsupportedContentTypeError is returned when encoding to a content type
// other than ContentTypeYAML and ContentTypeJSON.
type UnsupportedContentTypeError struct {
	Unsupported ContentType
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type: %q. supported content types: %v",
		e.Unsupported, []ContentType{ContentTypeYAML, ContentTypeJSON})
}

// Is returns true if target is an *UnsupportedContentTypeError.
func (e *UnsupportedContentTypeError) Is(target error) bool {
	//nolint:errorlint
	_, ok := target.(*UnsupportedContentTypeError)
	return ok
}

func isYAML(line []byte) bool {
	if len(line) == 0 {
		return false
	}
	o := map[string]interface{}{}
	err := yaml.Unmarshal(line, &o)
	return err == nil && len(o) != 0
}

// firstLine returns the first line of data that is not blank, a comment or
// a document separator.
func firstLine(data []byte) ([]byte, error) {
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		t := bytes.TrimSpace(s.Bytes())
		if len(t) == 0 || bytes.Equal(t, []byte("---")) || bytes.HasPrefix(t, []byte{'#'}) {
			continue
		}
		return t, nil
	}
	return nil, s.Err()
}

func hasPrefix(buf []byte, prefix []byte) bool {
	trim := bytes.TrimLeftFunc(buf, unicode.IsSpace)
	return bytes.HasPrefix(trim, prefix)
}
