package news

import (
	"context"
	"net/http"
	"time"

	"github.com/arthur-debert/homebin/pkg/config"
	"github.com/arthur-debert/homebin/pkg/errors"
)

// Reader types accepted in the type setting.
const (
	TypeNextcloud = "nextcloud-news"
	TypeTTRSS     = "tt-rss"
)

const defaults = `
timeout: 30
`

// Settings is the news-dl configuration file.
type Settings struct {
	Type            string        `koanf:"type"`
	URL             string        `koanf:"url"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	Category        string        `koanf:"category"`
	Folder          string        `koanf:"folder"`
	DownloadCommand string        `koanf:"download_command"`
	Timeout         time.Duration `koanf:"timeout"`
}

// LoadSettings reads path, then environment variables starting with
// envPrefix. overrides win over both.
func LoadSettings(path, envPrefix string, overrides map[string]interface{}) (Settings, error) {
	cfg, err := config.Load(config.Options{
		Defaults:  []byte(defaults),
		Files:     []string{path},
		Required:  true,
		EnvPrefix: envPrefix,
		Overrides: overrides,
	})
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := cfg.Unmarshal("", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the fields every reader needs.
func (s Settings) Validate() error {
	if s.Type != TypeNextcloud && s.Type != TypeTTRSS {
		return errors.Newf(errors.ErrConfigInvalid, "Invalid API type: %s", s.Type)
	}
	if s.URL == "" {
		return errors.New(errors.ErrConfigInvalid, "url is required")
	}
	if s.Category == "" {
		return errors.New(errors.ErrConfigInvalid, "category is required")
	}
	if s.DownloadCommand == "" {
		return errors.New(errors.ErrConfigInvalid, "download_command is required")
	}
	return nil
}

// Connect validates s and returns a ready API. For tt-rss this logs in.
func Connect(ctx context.Context, s Settings) (API, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: s.Timeout}

	switch s.Type {
	case TypeNextcloud:
		return NewNextcloudNews(s.URL, s.Username, s.Password, client), nil
	default:
		t := NewTTRSS(s.URL, client)
		if err := t.Login(ctx, s.Username, s.Password); err != nil {
			return nil, err
		}
		return t, nil
	}
}
