package manifest

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	sigsyaml "sigs.k8s.io/yaml"
)

// strict rejects fields the target struct doesn't have, so that a typo in
// a manifest is an error and not a silently missing selector.
//nolint:gochecknoglobals
var strict = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
	DisallowUnknownFields:  true,
}.Froze()

// Decode decodes JSON or YAML data into obj. YAML is converted to JSON
// first, so both go through the same strict JSON decoder and the json
// struct tags apply to both.
func Decode(data []byte, obj interface{}) error {
	ct, err := Recognize(data)
	if err != nil {
		return err
	}
	if ct == ContentTypeYAML {
		if data, err = sigsyaml.YAMLToJSON(data); err != nil {
			return fmt.Errorf("converting YAML to JSON: %w", err)
		}
	}
	return strict.Unmarshal(data, obj)
}

// Encode encodes obj as ct.
func Encode(obj interface{}, ct ContentType) ([]byte, error) {
	switch ct {
	case ContentTypeJSON:
		return strict.MarshalIndent(obj, "", "  ")
	case ContentTypeYAML:
		j, err := strict.Marshal(obj)
		if err != nil {
			return nil, err
		}
		return sigsyaml.JSONToYAML(j)
	default:
		return nil, &UnsupportedContentTypeError{Unsupported: ct}
	}
}
