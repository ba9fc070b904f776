// Package i18n, API mesajları için çoklu dil desteği sağlar.
//
// Dil şu sırayla belirlenir:
//  1. Kullanıcının DB'deki language tercihi (biliniyorsa)
//  2. Accept-Language header'ı
//  3. Varsayılan dil (en)
//
// Kullanım:
//
//	bundle, _ := i18n.Load(localesFS)
//	msg := bundle.Localizer("tr").T("auth.accountBanned")
//	// → "Bu hesap yasaklandı."
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
)

// SupportedLanguages, desteklenen dil kodları.
var SupportedLanguages = []string{"en", "tr"}

// DefaultLanguage, varsayılan dil.
const DefaultLanguage = "en"

// Bundle, tüm dillerin flat çeviri haritalarını tutar.
// Load'dan sonra sadece okunur; goroutine'ler arasında paylaşılabilir.
type Bundle struct {
	translations map[string]map[string]string
}

// Load, her desteklenen dil için <lang>.json dosyasını okur.
// Nested JSON dot-notation key'lere açılır: {"auth": {"x": ".."}} → "auth.x".
func Load(localesFS fs.FS) (*Bundle, error) {
	b := &Bundle{translations: make(map[string]map[string]string, len(SupportedLanguages))}

	for _, lang := range SupportedLanguages {
		fileName := lang + ".json"

		data, err := fs.ReadFile(localesFS, fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read translation file %s: %w", fileName, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
		}

		flat := make(map[string]string)
		flattenMap("", nested, flat)
		b.translations[lang] = flat

		slog.Debug("translations loaded", "component", "i18n", "lang", lang, "keys", len(flat))
	}

	return b, nil
}

// Localizer, tek bir dile bağlı çevirmen.
type Localizer struct {
	bundle *Bundle
	lang   string
}

// Localizer, lang için Localizer döner. Desteklenmeyen dil varsayılana düşer.
func (b *Bundle) Localizer(lang string) *Localizer {
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{bundle: b, lang: lang}
}

// Lang, Localizer'ın kullandığı dil kodu.
func (l *Localizer) Lang() string { return l.lang }

// T, anahtarın çevirisini döner. Kullanıcının dilinde yoksa İngilizce'ye,
// orada da yoksa anahtarın kendisine düşer.
func (l *Localizer) T(key string) string {
	if msg, ok := l.bundle.translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := l.bundle.translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams, {{param}} yer tutucularını değerlerle doldurur.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage, Accept-Language header'ından ilk desteklenen dili seçer.
// Örn: "tr-TR,tr;q=0.9,en;q=0.8" → "tr".
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(tag, "-")
		if lang := strings.ToLower(base); isSupported(lang) {
			return lang
		}
	}
	return DefaultLanguage
}

func isSupported(lang string) bool {
	return slices.Contains(SupportedLanguages, lang)
}

func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
