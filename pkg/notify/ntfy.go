package notify

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/rs/zerolog"
)

const userAgent = "homebin"

// Ntfy publishes notifications to an ntfy topic URL.
type Ntfy struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewNtfy returns a publisher posting to endpoint, e.g.
// https://ntfy.sh/my-downloads.
func NewNtfy(endpoint string, client *http.Client) *Ntfy {
	if client == nil {
		client = http.DefaultClient
	}
	return &Ntfy{
		endpoint: endpoint,
		client:   client,
		logger:   logging.GetLogger("notify.ntfy"),
	}
}

func (n *Ntfy) Notify(ctx context.Context, title, body string) {
	if err := n.Send(ctx, title, body); err != nil {
		n.logger.Warn().Err(err).Str("title", title).Msg("ntfy notification failed")
	}
}

func (n *Ntfy) Log(string, string) {}

// Send posts one message and reports failures.
func (n *Ntfy) Send(ctx context.Context, title, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrRemote, "build ntfy request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if title != "" {
		req.Header.Set("Title", title)
	}
	req.Header.Set("Tags", "homebin")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrRemote, "send ntfy notification")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return errors.Newf(errors.ErrRemote, "ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
