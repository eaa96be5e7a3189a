package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// BaseLocale supplies any key a specific locale does not define.
const BaseLocale = "en"

type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys on top of the base
// locale, so partially translated locales still render every string.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	base, err := readLocale(fsys, BaseLocale)
	if err != nil {
		return nil, err
	}
	if langCode == "" || langCode == BaseLocale {
		return &Translator{lang: BaseLocale, translations: base}, nil
	}
	overlay, err := readLocale(fsys, langCode)
	if err != nil {
		return nil, err
	}
	for k, v := range overlay {
		base[k] = v
	}
	return &Translator{lang: langCode, translations: base}, nil
}

// Default returns the embedded translator for langCode.
func Default(langCode string) (*Translator, error) {
	return NewTranslator(LocalesFS, langCode)
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

func readLocale(fsys fs.FS, langCode string) (map[string]string, error) {
	filePath := path.Join("locales", langCode+".yaml")
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file %s: %w", filePath, err)
	}
	if translations == nil {
		translations = map[string]string{}
	}
	return translations, nil
}

// T returns the translation for key, or the key itself when unknown.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Lang() string { return t.lang }
