package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := testutil.CreateFile(t, dir, "news-dl.yml", `
type: tt-rss
url: https://rss.example.org
username: me
password: pw
category: Podcasts
download_command: "wget -P ~/Podcasts '{link}'"
`)

	s, err := LoadSettings(path, "NEWS_DL_TEST_", nil)
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Type:            TypeTTRSS,
		URL:             "https://rss.example.org",
		Username:        "me",
		Password:        "pw",
		Category:        "Podcasts",
		DownloadCommand: "wget -P ~/Podcasts '{link}'",
		Timeout:         30 * time.Second,
	}, s)
	require.NoError(t, s.Validate())

	t.Run("env_overrides_file", func(t *testing.T) {
		t.Setenv("NEWS_DL_TEST_CATEGORY", "Videos")
		s, err := LoadSettings(path, "NEWS_DL_TEST_", nil)
		require.NoError(t, err)
		assert.Equal(t, "Videos", s.Category)
	})

	t.Run("overrides_win", func(t *testing.T) {
		t.Setenv("NEWS_DL_TEST_TYPE", "tt-rss")
		s, err := LoadSettings(path, "NEWS_DL_TEST_", map[string]interface{}{"type": TypeNextcloud})
		require.NoError(t, err)
		assert.Equal(t, TypeNextcloud, s.Type)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(dir, "none.yml"), "", nil)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})
}

func TestValidate(t *testing.T) {
	valid := Settings{Type: TypeNextcloud, URL: "u", Category: "c", DownloadCommand: "true"}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*Settings){
		"bad_type":    func(s *Settings) { s.Type = "feedly" },
		"no_url":      func(s *Settings) { s.URL = "" },
		"no_category": func(s *Settings) { s.Category = "" },
		"no_command":  func(s *Settings) { s.DownloadCommand = "" },
	} {
		t.Run(name, func(t *testing.T) {
			s := valid
			mutate(&s)
			assert.True(t, errors.IsErrorCode(s.Validate(), errors.ErrConfigInvalid))
		})
	}
}

func TestConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"content":{"session_id":"s1"}}`))
	}))
	defer srv.Close()

	ctx := context.Background()

	api, err := Connect(ctx, Settings{Type: TypeTTRSS, URL: srv.URL, Category: "c", DownloadCommand: "true"})
	require.NoError(t, err)
	require.IsType(t, &TTRSS{}, api)
	assert.Equal(t, "s1", api.(*TTRSS).sessionID)

	api, err = Connect(ctx, Settings{Type: TypeNextcloud, URL: srv.URL, Category: "c", DownloadCommand: "true"})
	require.NoError(t, err)
	assert.IsType(t, &NextcloudNews{}, api)

	_, err = Connect(ctx, Settings{Type: "x"})
	assert.Error(t, err)
}
