// Package i18n renders user-facing strings in the persisted display language.
package i18n

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// LanguageKey is the durable key holding the chosen language code.
const LanguageKey = "userLanguage"

// DefaultLanguage is used when nothing valid is stored.
const DefaultLanguage = "en"

var ErrUnsupportedLanguage = errors.New("unsupported language")

type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

var (
	buildOnce sync.Once
	cat       *catalog.Builder
	tags      map[string]language.Tag
)

func build() {
	cat = catalog.NewBuilder(catalog.Fallback(language.English))
	tags = make(map[string]language.Tag, len(messages))
	for code, msgs := range messages {
		tag := language.MustParse(code)
		tags[code] = tag
		for key, msg := range msgs {
			if err := cat.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("i18n: %s/%s: %v", code, key, err))
			}
		}
	}
}

// Supported lists the language codes with a full catalog, sorted.
func Supported() []string {
	out := make([]string, 0, len(messages))
	for code := range messages {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether code has a catalog.
func IsSupported(code string) bool {
	_, ok := messages[code]
	return ok
}

// Translator prints messages in the active language.
type Translator struct {
	mu      sync.RWMutex
	kv      KV
	log     zerolog.Logger
	lang    string
	printer *message.Printer
}

// NewTranslator restores the persisted language, falling back to fallback
// and then DefaultLanguage when the stored one is missing or unsupported.
func NewTranslator(kv KV, fallback string, log zerolog.Logger) *Translator {
	buildOnce.Do(build)
	t := &Translator{kv: kv, log: log.With().Str("component", "i18n").Logger()}

	lang := fallback
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}
	v, ok, err := kv.Get(LanguageKey)
	switch {
	case err != nil:
		t.log.Warn().Err(err).Msg("reading language failed")
	case ok && IsSupported(v):
		lang = v
	case ok:
		t.log.Warn().Str("language", v).Msg("stored language is unsupported, ignoring it")
	}
	t.use(lang)
	return t
}

func (t *Translator) use(lang string) {
	t.lang = lang
	t.printer = message.NewPrinter(tags[lang], message.Catalog(cat))
}

// Language returns the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// SetLanguage persists and activates lang.
func (t *Translator) SetLanguage(lang string) error {
	if !IsSupported(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.kv.Set(LanguageKey, lang); err != nil {
		return fmt.Errorf("persist language: %w", err)
	}
	t.use(lang)
	t.log.Info().Str("language", lang).Msg("language changed")
	return nil
}

// T renders key with args. Unknown keys render as the key itself.
func (t *Translator) T(key string, args ...any) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := messages[t.lang][key]; !ok {
		return key
	}
	return t.printer.Sprintf(key, args...)
}

// Clock renders elapsed seconds as MM:SS through the timer message.
func (t *Translator) Clock(seconds int64) string {
	return t.T(Timer, seconds/60, seconds%60)
}
