package rspace

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultFormOrder lists recently modified forms first.
const DefaultFormOrder = "lastModified desc"

// FormQuery selects a page of forms.
type FormQuery struct {
	Query      string
	OrderBy    string
	PageNumber int
	PageSize   int
}

// ListForms returns one page of forms visible to the user.
func (c *Client) ListForms(ctx context.Context, q FormQuery) (FormList, error) {
	v := url.Values{}
	if q.Query != "" {
		v.Set("query", q.Query)
	}
	order := q.OrderBy
	if order == "" {
		order = DefaultFormOrder
	}
	v.Set("orderBy", order)
	if q.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(q.PageNumber))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	var l FormList
	err := c.do(ctx, http.MethodGet, eln("/forms"), v, nil, &l)
	return l, err
}

// Form fetches a form definition.
func (c *Client) Form(ctx context.Context, id int64) (Form, error) {
	var f Form
	err := c.do(ctx, http.MethodGet, eln("/forms/%d", id), nil, nil, &f)
	return f, err
}

// NewForm describes a form to create. Field definitions are passed through
// as given: name, type, mandatory, defaultValue and type-specific options.
type NewForm struct {
	Name   string           `json:"name"`
	Tags   string           `json:"tags,omitempty"`
	Fields []map[string]any `json:"fields,omitempty"`
}

// CreateForm creates a form in the NEW state.
func (c *Client) CreateForm(ctx context.Context, n NewForm) (Form, error) {
	var f Form
	err := c.do(ctx, http.MethodPost, eln("/forms"), nil, n, &f)
	return f, err
}

// FormAction is a lifecycle transition on a form.
type FormAction string

// Form lifecycle transitions.
const (
	FormPublish   FormAction = "publish"
	FormUnpublish FormAction = "unpublish"
	FormShare     FormAction = "share"
	FormUnshare   FormAction = "unshare"
)

// TransitionForm applies a lifecycle action and returns the updated form.
func (c *Client) TransitionForm(ctx context.Context, id int64, action FormAction) (Form, error) {
	var f Form
	err := c.do(ctx, http.MethodPut, eln("/forms/%d/%s", id, action), nil, nil, &f)
	return f, err
}

// DeleteForm deletes a form. RSpace only permits this for forms in the NEW state.
func (c *Client) DeleteForm(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, eln("/forms/%d", id), nil, nil, nil)
}
