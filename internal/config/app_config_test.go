package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config and data dirs at a temp dir and clears the
// variables the loader reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	for _, k := range []string{"KNOWTHELIST_DATABASE", "KNOWTHELIST_SOURCE_LANGUAGE", "KNOWTHELIST_LOCALE", "KNOWTHELIST_LOOKUP_DIR", "KNOWTHELIST_JOB_ITEM_TIMEOUT", "OPENROUTER_API_KEY", "DEBUG"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yml"), []byte(content), 0o600))
}

func TestNewAppConfigDefaults(t *testing.T) {
	dir := isolate(t)

	conf, err := NewAppConfig("knowthelist", "1.0.0", false)
	require.NoError(t, err)

	assert.FileExists(t, conf.ConfigFilename())
	assert.Equal(t, filepath.Join(dir, "data", "knowthelist.db"), conf.UserConfig.Database)
	assert.Equal(t, "en", conf.UserConfig.SourceLanguage)
	assert.Equal(t, 60*time.Second, conf.UserConfig.Jobs.ItemTimeout)
	require.Len(t, conf.UserConfig.Providers, 1)
	assert.Equal(t, "ollama", conf.UserConfig.Providers[0].Type)
	assert.False(t, conf.Debug)
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
sourceLanguage: en_US
locale: cs_CZ
lookup:
  dir: /usr/share/knowthelist/locale
  includeUnfinished: true
jobs:
  itemTimeout: 90s
providers:
  - name: cloud
    type: openrouter
    model: openai/gpt-4o-mini
prompts:
  translate_single.system: "Translate {{.SrcLang}} to {{.TgtLang}}."
`)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-secret")
	t.Setenv("KNOWTHELIST_DATABASE", filepath.Join(dir, "custom.db"))

	conf, err := NewAppConfig("knowthelist", "1.0.0", false)
	require.NoError(t, err)
	uc := conf.UserConfig

	assert.Equal(t, "en_US", uc.SourceLanguage)
	assert.Equal(t, "cs_CZ", uc.ResolveLocale())
	assert.Equal(t, "/usr/share/knowthelist/locale", uc.Lookup.Dir)
	assert.Equal(t, "knowthelist", uc.Lookup.Prefix)
	assert.True(t, uc.Lookup.IncludeUnfinished)
	assert.Equal(t, 90*time.Second, uc.Jobs.ItemTimeout)
	assert.Equal(t, 60*time.Second, uc.Jobs.HTTPTimeout)
	assert.Equal(t, filepath.Join(dir, "custom.db"), uc.Database)
	assert.Equal(t, "Translate {{.SrcLang}} to {{.TgtLang}}.", uc.Prompts["translate_single.system"])

	p, err := uc.Providers.Get("cloud")
	require.NoError(t, err)
	assert.Equal(t, "sk-or-secret", p.APIKey)
	_, err = uc.Providers.Get("ollama")
	assert.EqualError(t, err, `unknown provider "ollama"`)
}

func TestUserConfigValidation(t *testing.T) {
	scenarios := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			"unknown provider type",
			"providers:\n  - name: x\n    type: deepl\n",
			"type",
		},
		{
			"duplicate provider",
			"providers:\n  - name: x\n    type: ollama\n  - name: x\n    type: ollama\n",
			`duplicate name "x"`,
		},
		{
			"bad locale",
			"locale: not a locale\n",
			"invalid locale",
		},
		{
			"bad prompt key",
			"prompts:\n  system: hi\n",
			"not type.role",
		},
	}
	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, dir, s.content)
			_, err := NewAppConfig("knowthelist", "1.0.0", false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), s.errMsg)
		})
	}
}

func TestResolveLocaleAuto(t *testing.T) {
	t.Setenv("LC_ALL", "tr_TR.UTF-8")
	uc := GetDefaultConfig()
	assert.Equal(t, "tr_TR", uc.ResolveLocale())
}

func TestWritingToConfigFile(t *testing.T) {
	isolate(t)
	conf, err := NewAppConfig("knowthelist", "1.0.0", false)
	require.NoError(t, err)

	require.NoError(t, conf.WriteToUserConfig(func(uc *UserConfig) error {
		uc.Locale = "cs_CZ"
		return nil
	}))
	content, err := os.ReadFile(conf.ConfigFilename())
	require.NoError(t, err)
	assert.Equal(t, "locale: cs_CZ\n", string(content))

	conf, err = NewAppConfig("knowthelist", "1.0.0", false)
	require.NoError(t, err)
	assert.Equal(t, "cs_CZ", conf.UserConfig.Locale)
}
