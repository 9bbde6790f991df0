package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// KeyType is the optional top-level key naming the integration type.
const KeyType = "type"

// Format is the encoding of a config document.
type Format string

// Supported document formats.
const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Document is a loaded integration config.
type Document struct {
	// Path is where the document was read from.
	Path string
	// Type is the integration type named in the document, if any.
	Type string
	// Config is the raw provider config with the type key removed.
	Config map[string]any
}

// FormatOf picks the format from the file extension. Unknown extensions
// are read as TOML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config document: %w", err)
	}
	doc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes a document. Environment references in string values are
// expanded and the type key, when present, is lifted out of the config.
func Parse(data []byte, format Format) (*Document, error) {
	raw := map[string]any{}
	if len(bytes.TrimSpace(data)) > 0 {
		var err error
		switch format {
		case FormatJSON:
			err = json.Unmarshal(data, &raw)
		case FormatTOML:
			err = toml.Unmarshal(data, &raw)
		default:
			return nil, fmt.Errorf("unsupported config format %q", format)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidConfig, format, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	expanded, _ := expand(raw).(map[string]any)
	doc := &Document{Config: expanded}
	if t, ok := expanded[KeyType]; ok {
		s, ok := t.(string)
		if !ok {
			return nil, domain.NewConfigError(KeyType, "must be a string")
		}
		doc.Type = strings.TrimSpace(s)
		delete(expanded, KeyType)
	}
	return doc, nil
}

// envRef matches the ${NAME} form. A bare $NAME or $$ is left as written.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expand walks a decoded document replacing ${NAME} in every string.
func expand(v any) any {
	switch val := v.(type) {
	case string:
		return envRef.ReplaceAllStringFunc(val, func(ref string) string {
			return os.Getenv(ref[2 : len(ref)-1])
		})
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = expand(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = expand(item)
		}
		return out
	default:
		return v
	}
}
