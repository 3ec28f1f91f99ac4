package news

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/rs/zerolog"
)

// TTRSS talks to the Tiny Tiny RSS JSON API. Every call after Login carries
// the session id.
type TTRSS struct {
	apiURL    string
	client    *http.Client
	sessionID string
	logger    zerolog.Logger
}

// NewTTRSS returns a client for the tt-rss instance at baseURL. Call Login
// before anything else.
func NewTTRSS(baseURL string, client *http.Client) *TTRSS {
	if client == nil {
		client = http.DefaultClient
	}
	return &TTRSS{
		apiURL: strings.TrimRight(baseURL, "/") + "/api/",
		client: client,
		logger: logging.GetLogger("news.ttrss"),
	}
}

type ttrssResponse struct {
	Status  int             `json:"status"`
	Content json.RawMessage `json:"content"`
}

// request posts one operation and decodes its content into out.
func (t *TTRSS) request(ctx context.Context, op string, params map[string]interface{}, out interface{}) error {
	payload := map[string]interface{}{"op": op}
	for k, v := range params {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrRemote, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrRemote, "build request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	t.logger.Debug().Str("op", op).Msg("Request")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRemote, "tt-rss %s", op)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}

	var envelope ttrssResponse
	if err := decodeJSON(resp.Body, &envelope); err != nil {
		return errors.Wrapf(err, errors.ErrRemote, "decode %s response", op)
	}
	if envelope.Status != 0 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(envelope.Content, &apiErr)
		return errors.Newf(errors.ErrRemote, "API returned status %d: %s", envelope.Status, apiErr.Error).
			WithDetail("op", op)
	}
	if out == nil {
		return nil
	}
	if err := decodeJSON(bytes.NewReader(envelope.Content), out); err != nil {
		return errors.Wrapf(err, errors.ErrRemote, "decode %s content", op)
	}
	return nil
}

func (t *TTRSS) call(ctx context.Context, op string, params map[string]interface{}, out interface{}) error {
	withSession := map[string]interface{}{"sid": t.sessionID}
	for k, v := range params {
		withSession[k] = v
	}
	return t.request(ctx, op, withSession, out)
}

// Login opens a session.
func (t *TTRSS) Login(ctx context.Context, username, password string) error {
	var content struct {
		SessionID string `json:"session_id"`
	}
	if err := t.request(ctx, "login", map[string]interface{}{"user": username, "password": password}, &content); err != nil {
		return err
	}
	t.sessionID = content.SessionID
	return nil
}

// Close logs out when a session is open.
func (t *TTRSS) Close(ctx context.Context) error {
	if t.sessionID == "" {
		return nil
	}
	err := t.call(ctx, "logout", nil, nil)
	t.sessionID = ""
	return err
}

func (t *TTRSS) Categories(ctx context.Context) ([]Category, error) {
	var raw []map[string]interface{}
	if err := t.call(ctx, "getCategories", nil, &raw); err != nil {
		return nil, err
	}

	out := make([]Category, 0, len(raw))
	for _, c := range raw {
		id, err := toInt64(c["id"])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRemote, "category without a valid id")
		}
		out = append(out, Category{ID: id, Name: stringField(c, "title")})
	}
	return out, nil
}

func (t *TTRSS) Items(ctx context.Context, categoryID int64) ([]Item, error) {
	var raw []map[string]interface{}
	err := t.call(ctx, "getHeadlines", map[string]interface{}{
		"feed_id":   categoryID,
		"is_cat":    true,
		"view_mode": "unread",
	}, &raw)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(raw))
	for _, a := range raw {
		item, err := itemFrom(a, "link")
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (t *TTRSS) MarkRead(ctx context.Context, item Item) error {
	return t.call(ctx, "updateArticle", map[string]interface{}{
		"article_ids": item.ID,
		"mode":        0,
		"field":       2,
	}, nil)
}
