package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when negotiation finds nothing better.
const DefaultLanguage = "en"

// maxAcceptLanguageLength caps the header we are willing to parse.
const maxAcceptLanguageLength = 4096

//go:embed translations/*.yaml
var embedded embed.FS

// Translator resolves translation keys for a set of languages.
// It is immutable after New and safe for concurrent use.
type Translator struct {
	translations map[string]map[string]string
	defaultLang  string
	langs        []string
	matcher      language.Matcher
	logger       *slog.Logger
	extra        []fs.FS
}

// Option configures a Translator.
type Option func(*Translator)

// WithDefaultLanguage sets the language used when the requested one is
// unknown or a key is missing in it.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = strings.ToLower(lang)
		}
	}
}

// WithLogger reports missing keys at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithFiles layers *.yaml / *.yml files from fsys over the embedded ones.
func WithFiles(fsys fs.FS) Option {
	return func(t *Translator) {
		if fsys != nil {
			t.extra = append(t.extra, fsys)
		}
	}
}

// New loads the embedded translations plus any WithFiles sources.
func New(opts ...Option) (*Translator, error) {
	t := &Translator{
		translations: make(map[string]map[string]string),
		defaultLang:  DefaultLanguage,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}

	sub, err := fs.Sub(embedded, "translations")
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	for _, fsys := range append([]fs.FS{sub}, t.extra...) {
		if err := t.load(fsys); err != nil {
			return nil, err
		}
	}
	if len(t.translations) == 0 {
		return nil, ErrNoTranslations
	}

	// The default language goes first so the matcher falls back to it.
	langs := slices.Sorted(maps.Keys(t.translations))
	if i := slices.Index(langs, t.defaultLang); i > 0 {
		langs = append([]string{t.defaultLang}, slices.Delete(langs, i, i+1)...)
	}
	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tags = append(tags, language.Make(l))
	}
	t.langs = langs
	t.matcher = language.NewMatcher(tags)

	return t, nil
}

func (t *Translator) load(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return errors.Join(ErrFailedToReadFile, err)
	}
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		content, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return errors.Join(ErrFailedToReadFile, fmt.Errorf("%s: %w", e.Name(), err))
		}
		parsed, err := parseYAML(content)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		for lang, keys := range parsed {
			if t.translations[lang] == nil {
				t.translations[lang] = make(map[string]string, len(keys))
			}
			maps.Copy(t.translations[lang], keys)
		}
	}
	return nil
}

// Languages returns the loaded languages, default first.
func (t *Translator) Languages() []string {
	return slices.Clone(t.langs)
}

// DefaultLanguage returns the fallback language.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// Supports reports whether lang was loaded, ignoring region subtags.
func (t *Translator) Supports(lang string) bool {
	_, ok := t.translations[t.normalize(lang)]
	return ok
}

// Match negotiates an Accept-Language header against the loaded languages.
// Unparseable or unmatched headers yield the default language.
func (t *Translator) Match(header string) string {
	if header == "" {
		return t.defaultLang
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return t.defaultLang
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLang
	}
	return t.langs[idx]
}

func (t *Translator) normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if base, _, ok := strings.Cut(lang, "-"); ok {
		if _, known := t.translations[lang]; !known {
			return base
		}
	}
	return lang
}

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// T translates key into lang. Arguments are key/value pairs substituted into
// %{name} placeholders:
//
//	tr.T("id", "validation.required", "field", "address")
//
// Missing keys fall back to the default language and then to the key itself.
func (t *Translator) T(lang, key string, args ...string) string {
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}
	return substitute(t.lookup(lang, key), params)
}

// TMap is T with a map of arbitrary values, formatted with fmt.Sprint.
// Slices are joined with ", ".
func (t *Translator) TMap(lang, key string, values map[string]any) string {
	params := make(map[string]string, len(values))
	for k, v := range values {
		params[k] = format(v)
	}
	return substitute(t.lookup(lang, key), params)
}

func (t *Translator) lookup(lang, key string) string {
	lang = t.normalize(lang)
	if msg, ok := t.translations[lang][key]; ok {
		return msg
	}
	if msg, ok := t.translations[t.defaultLang][key]; ok {
		t.logger.Debug("translation missing, using default language", slog.String("lang", lang), slog.String("key", key))
		return msg
	}
	t.logger.Debug("translation missing", slog.String("lang", lang), slog.String("key", key))
	return key
}

func substitute(tmpl string, params map[string]string) string {
	if len(params) == 0 {
		return tmpl
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		if val, ok := params[match[2:len(match)-1]]; ok {
			return val
		}
		return match
	})
}

func format(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
