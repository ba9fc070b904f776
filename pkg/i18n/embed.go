package i18n

import "embed"

// EmbeddedLocales, locales/ dizinindeki JSON çeviri dosyalarını binary'ye gömer.
// Kullanım: fs.Sub(EmbeddedLocales, "locales").
//
//go:embed locales/*.json
var EmbeddedLocales embed.FS
