package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/rs/zerolog"
)

// NoFolderID is the pseudo folder holding feeds outside any folder.
const NoFolderID = -1

// NextcloudNews talks to the Nextcloud News REST API.
type NextcloudNews struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   zerolog.Logger
}

// NewNextcloudNews returns a client for the Nextcloud instance at serverURL.
func NewNextcloudNews(serverURL, username, password string, client *http.Client) *NextcloudNews {
	if client == nil {
		client = http.DefaultClient
	}
	return &NextcloudNews{
		baseURL:  strings.TrimRight(serverURL, "/") + "/index.php/apps/news/api/v1-3",
		username: username,
		password: password,
		client:   client,
		logger:   logging.GetLogger("news.nextcloud"),
	}
}

func (n *NextcloudNews) do(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	target := n.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrRemote, "build request")
	}
	req.SetBasicAuth(n.username, n.password)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	n.logger.Debug().Str("method", method).Str("path", path).Msg("Request")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRemote, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := decodeJSON(resp.Body, out); err != nil {
		return errors.Wrapf(err, errors.ErrRemote, "decode %s response", path)
	}
	return nil
}

// Categories returns the folders plus the "No folder" pseudo folder.
func (n *NextcloudNews) Categories(ctx context.Context) ([]Category, error) {
	var body struct {
		Folders []map[string]interface{} `json:"folders"`
	}
	if err := n.do(ctx, http.MethodGet, "/folders", nil, &body); err != nil {
		return nil, err
	}

	out := []Category{{ID: NoFolderID, Name: "No folder"}}
	for _, f := range body.Folders {
		id, err := toInt64(f["id"])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRemote, "folder without a valid id")
		}
		out = append(out, Category{ID: id, Name: stringField(f, "name")})
	}
	return out, nil
}

// Items returns the unread items of a folder.
func (n *NextcloudNews) Items(ctx context.Context, folderID int64) ([]Item, error) {
	query := url.Values{}
	query.Set("type", "1")
	query.Set("getRead", "false")
	query.Set("batchSize", "-1")
	query.Set("id", strconv.FormatInt(folderID, 10))

	var body struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := n.do(ctx, http.MethodGet, "/items", query, &body); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(body.Items))
	for _, raw := range body.Items {
		item, err := itemFrom(raw, "url")
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (n *NextcloudNews) MarkRead(ctx context.Context, item Item) error {
	return n.do(ctx, http.MethodPost, fmt.Sprintf("/items/%d/read", item.ID), nil, nil)
}

// Close is a no-op; the API is stateless.
func (n *NextcloudNews) Close(context.Context) error { return nil }
