package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// maxPages bounds how many "next" links a list call follows.
const maxPages = 50

// Collection is a list response. The backend returns either a bare JSON array
// or a paginated envelope {count, next, previous, results}; both decode here.
type Collection[T any] struct {
	Items []T
	Count int
	Next  string
}

func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Collection[T]{}
		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*c = Collection[T]{Items: items, Count: len(items)}
		return nil
	}

	var page struct {
		Count    *int    `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	out := Collection[T]{Items: page.Results, Count: len(page.Results)}
	if page.Count != nil {
		out.Count = *page.Count
	}
	if page.Next != nil {
		out.Next = *page.Next
	}
	*c = out
	return nil
}

// list fetches every page of a collection.
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var items []T
	next := path
	for page := 0; next != ""; page++ {
		if page == maxPages {
			return nil, fmt.Errorf("list %s: more than %d pages", path, maxPages)
		}
		var col Collection[T]
		if err := c.do(ctx, http.MethodGet, next, query, nil, &col); err != nil {
			return nil, err
		}
		items = append(items, col.Items...)
		next = col.Next
		// Next links already carry the query.
		query = nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
