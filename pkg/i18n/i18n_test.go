package i18n

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T) *Bundle {
	t.Helper()
	sub, err := fs.Sub(EmbeddedLocales, "locales")
	require.NoError(t, err)
	b, err := Load(sub)
	require.NoError(t, err)
	return b
}

func TestLocalizer_T(t *testing.T) {
	b := loadEmbedded(t)

	assert.Equal(t, "This account has been banned.", b.Localizer("en").T("auth.accountBanned"))
	assert.Equal(t, "Bu hesap yasaklandı.", b.Localizer("tr").T("auth.accountBanned"))
	assert.Equal(t, "This account has been banned.", b.Localizer("de").T("auth.accountBanned"))
	assert.Equal(t, "missing.key", b.Localizer("en").T("missing.key"))
}

func TestLocalizer_TWithParams(t *testing.T) {
	b := loadEmbedded(t)

	msg := b.Localizer("en").TWithParams("auth.bannedUntil", map[string]string{"date": "2030-01-01"})
	assert.Equal(t, "Your ban ends on 2030-01-01.", msg)
}

func TestLoad_FallsBackToEnglishPerKey(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json": {Data: []byte(`{"a": {"b": "english"}, "c": "only-en"}`)},
		"tr.json": {Data: []byte(`{"a": {"b": "türkçe"}}`)},
	}
	b, err := Load(fsys)
	require.NoError(t, err)

	assert.Equal(t, "türkçe", b.Localizer("tr").T("a.b"))
	assert.Equal(t, "only-en", b.Localizer("tr").T("c"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(fstest.MapFS{"en.json": {Data: []byte(`{}`)}})
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"tr-TR,tr;q=0.9,en-US;q=0.8", "tr"},
		{"de-DE,en;q=0.5", "en"},
		{"fr", "en"},
		{"TR", "tr"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.header), tt.header)
	}
}
