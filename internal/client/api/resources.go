package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Resource names a back-office collection exposed by the API under
// /api/<resource>. The admin screens address collections through these
// values rather than raw paths.
type Resource string

const (
	ResourceContacts      Resource = "contacts"
	ResourceEvents        Resource = "events"
	ResourceGallery       Resource = "gallery"
	ResourceBlogs         Resource = "blogs"
	ResourceMedia         Resource = "media"
	ResourceIdeas         Resource = "ideas"
	ResourceSubscriptions Resource = "subscriptions"
)

// List fetches the collection via GET /api/<resource>. The result is kept
// schemaless: screens only summarize records, they do not interpret them.
func (c *HTTPClient) List(ctx context.Context, res Resource) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/"+string(res), nil)
	if err != nil {
		return nil, err
	}

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeList(data)
}

// Delete removes one record via DELETE /api/<resource>/<id>.
func (c *HTTPClient) Delete(ctx context.Context, res Resource, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/"+string(res)+"/"+id, nil)
	if err != nil {
		return err
	}

	_, err = c.do(req)
	return err
}

// decodeList accepts either a bare JSON array or the {"data": [...]} wrapper
// some endpoints use.
func decodeList(data []byte) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return nil, fmt.Errorf("%w: unexpected list payload", ErrServer)
}
