// Package news downloads unread items of a feed reader category with a
// shell command and marks them read afterwards.
//
// Two readers are supported: the Nextcloud News app (REST API v1-3) and
// Tiny Tiny RSS (JSON API).
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/arthur-debert/homebin/pkg/errors"
)

const userAgent = "homebin"

// Category is a folder or category of feeds.
type Category struct {
	ID   int64
	Name string
}

// Item is an unread article. Data holds every field the reader returned and
// feeds the download command placeholders.
type Item struct {
	ID    int64
	Title string
	URL   string
	Data  map[string]interface{}
}

// Values renders Data as strings for placeholder expansion.
func (i Item) Values() map[string]string {
	values := make(map[string]string, len(i.Data))
	for k, v := range i.Data {
		if v == nil {
			values[k] = ""
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return values
}

// API is a feed reader.
type API interface {
	Categories(ctx context.Context) ([]Category, error)
	Items(ctx context.Context, categoryID int64) ([]Item, error)
	MarkRead(ctx context.Context, item Item) error
	Close(ctx context.Context) error
}

// FindCategory returns the id of the category called name.
func FindCategory(categories []Category, name string) (int64, error) {
	for _, c := range categories {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return 0, errors.Newf(errors.ErrNotFound, "category %q not found", name).
		WithDetail("category", name)
}

// decodeJSON reads a JSON body keeping numbers exact.
func decodeJSON(r io.Reader, out interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(out)
}

// checkStatus turns an HTTP error status into an ErrRemote error.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return errors.Newf(errors.ErrRemote, "%s %s returned %s", resp.Request.Method, resp.Request.URL.Path, resp.Status).
		WithDetail("status", resp.StatusCode).
		WithDetail("body", string(body))
}

// toInt64 accepts the id shapes readers use: numbers and numeric strings.
func toInt64(v interface{}) (int64, error) {
	switch id := v.(type) {
	case json.Number:
		return id.Int64()
	case string:
		return strconv.ParseInt(id, 10, 64)
	case float64:
		return int64(id), nil
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	default:
		return 0, fmt.Errorf("unsupported id %v (%T)", v, v)
	}
}

func stringField(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

// itemFrom builds an Item; urlKey differs between readers.
func itemFrom(data map[string]interface{}, urlKey string) (Item, error) {
	id, err := toInt64(data["id"])
	if err != nil {
		return Item{}, errors.Wrap(err, errors.ErrRemote, "item without a valid id")
	}
	return Item{
		ID:    id,
		Title: stringField(data, "title"),
		URL:   stringField(data, urlKey),
		Data:  data,
	}, nil
}
