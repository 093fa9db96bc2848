package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Season int    `json:"season"`
	Url    string `json:"url"`
	Token  string `json:"token"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	err := os.WriteFile(name, []byte(`{
		// season under scrape
		season: 2023,
		url: "https://example.com/",
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 2023, cfg.Season)
	require.Equal(t, "https://example.com/", cfg.Url)
	require.Equal(t, "", cfg.Token)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	err := os.WriteFile(name, []byte(`{ season: 2023, url: "https://example.com/" }`), 0600)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{ token: "secret", season: 2024 }`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 2024, cfg.Season)
	require.Equal(t, "https://example.com/", cfg.Url)
	require.Equal(t, "secret", cfg.Token)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
