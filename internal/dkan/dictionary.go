package dkan

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dkanlabs/importer/internal/schema"
)

// Dictionary is a DKAN data dictionary: the field-type catalogue driving
// schema construction.
type Dictionary struct {
	ID     string
	Title  string
	Fields []schema.FieldDef
	// URL is the canonical metastore address of this dictionary, used as the
	// describedBy reference on distributions.
	URL string
}

// dictionaryItem mirrors one entry of the metastore data-dictionary listing.
type dictionaryItem struct {
	Identifier string `json:"identifier"`
	Data       struct {
		Title  string            `json:"title"`
		Fields []schema.FieldDef `json:"fields"`
	} `json:"data"`
}

// FetchDictionary retrieves the data dictionary with the given identifier
// from the metastore listing and confirms its item endpoint is reachable.
func (c *Client) FetchDictionary(ctx context.Context, id string) (*Dictionary, error) {
	listURL := c.endpoint("/api/1/metastore/schemas/data-dictionary/items")

	var items []dictionaryItem
	if err := c.getJSON(ctx, "listDictionaries", listURL, &items); err != nil {
		return nil, err
	}

	var found *dictionaryItem
	for i := range items {
		if items[i].Identifier == id {
			found = &items[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("data dictionary %q not found on %s", id, c.baseURL)
	}

	itemURL := c.endpoint("/api/1/metastore/schemas/data-dictionary/items/%s", url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, itemURL, nil)
	if err != nil {
		return nil, err
	}
	if _, err := c.do(req, "getDictionary"); err != nil {
		return nil, fmt.Errorf("data dictionary %q is not accessible: %w", id, err)
	}

	return &Dictionary{
		ID:     found.Identifier,
		Title:  found.Data.Title,
		Fields: found.Data.Fields,
		URL:    itemURL,
	}, nil
}
