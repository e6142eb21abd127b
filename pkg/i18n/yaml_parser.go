package i18n

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseYAML decodes one translation file into language -> dotted key -> text.
func parseYAML(content []byte) (map[string]map[string]string, error) {
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, errors.Join(ErrFailedToParseYAML, err)
	}

	result := make(map[string]map[string]string, len(data))
	for lang, val := range data {
		tree, ok := val.(map[string]any)
		if !ok {
			return nil, errors.Join(ErrInvalidStructure, fmt.Errorf("language %q: expected map, got %T", lang, val))
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		result[strings.ToLower(lang)] = flat
	}

	return result, nil
}

func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
