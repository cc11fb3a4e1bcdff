// tools_forms.go provides the form tools: listing, reading and creating
// forms, moving them through their lifecycle, and creating documents from
// them.

package mcp

import (
	"context"
	"fmt"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) formTools() []Tool {
	formID := withID("form_id", "Form id, numeric or global (FM1234)", true)

	tools := []Tool{
		{
			Def: annotate(mcp.NewTool("get_forms",
				mcp.WithDescription("List the forms (document templates) visible to the user."),
				mcp.WithString("query", mcp.Description("Restrict to forms whose name or tags match")),
				mcp.WithString("order_by", mcp.Description("Sort order, e.g. 'lastModified desc' (default) or 'name asc'")),
				withPageNumber(),
				withPageSize(defaultPageSize),
			), "List forms", true, false),
			Group:    GroupELN,
			ReadOnly: true,
			Action:   "list",
			Handler:  bind(h.getForms),
		},
		{
			Def: annotate(mcp.NewTool("get_form",
				mcp.WithDescription("Get a form definition including its fields."),
				formID,
			), "Get form", true, false),
			Group:    GroupELN,
			ReadOnly: true,
			Action:   "read",
			Target:   "form_id",
			Handler:  bind(h.getForm),
		},
		{
			Def: annotate(mcp.NewTool("create_form",
				mcp.WithDescription("Create a form in the NEW state. Each field is an object with name, type "+
					"(String, Text, Number, Radio, Choice, Date, Time) and optional mandatory, defaultValue and options. "+
					"Publish the form before creating documents from it."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Form name")),
				withTags("tags", "Form tags"),
				mcp.WithArray("fields",
					mcp.Required(),
					mcp.MinItems(1),
					mcp.Description("Field definitions"),
					mcp.Items(map[string]any{
						"type":     "object",
						"required": []any{"name", "type"},
					}),
				),
			), "Create form", false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "name",
			Handler: bind(h.createForm),
		},
		{
			Def: annotate(mcp.NewTool("delete_form",
				mcp.WithDescription("Delete a form. Only forms that have never been published can be deleted."),
				formID,
			), "Delete form", false, true),
			Group:   GroupELN,
			Action:  "delete",
			Target:  "form_id",
			Handler: bind(h.deleteForm),
		},
		{
			Def: annotate(mcp.NewTool("create_document_from_form",
				mcp.WithDescription("Create a document from a published form. Field contents are given in form field order."),
				formID,
				mcp.WithString("name", mcp.Description("Document name")),
				withID("parent_folder_id", "Folder or notebook to create the document in", false),
				withTags("tags", "Document tags"),
				mcp.WithArray("fields",
					mcp.Description("Field contents in form order, each {content}"),
					mcp.Items(map[string]any{
						"type":     "object",
						"required": []any{"content"},
					}),
				),
			), "Create document from form", false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "form_id",
			Handler: bind(h.createDocumentFromForm),
		},
	}

	transitions := []struct {
		name, title, desc string
		action            rspace.FormAction
	}{
		{"publish_form", "Publish form", "Publish a form so documents can be created from it.", rspace.FormPublish},
		{"unpublish_form", "Unpublish form", "Unpublish a form; existing documents are unaffected.", rspace.FormUnpublish},
		{"share_form", "Share form", "Share a form with the user's groups.", rspace.FormShare},
		{"unshare_form", "Unshare form", "Stop sharing a form with the user's groups.", rspace.FormUnshare},
	}
	for _, tr := range transitions {
		tools = append(tools, Tool{
			Def: annotate(mcp.NewTool(tr.name,
				mcp.WithDescription(tr.desc),
				formID,
			), tr.title, false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "form_id",
			Handler: bind(h.transitionForm(tr.action)),
		})
	}
	return tools
}

type getFormsArgs struct {
	Query      string `json:"query"`
	OrderBy    string `json:"order_by"`
	PageNumber int    `json:"page_number"`
	PageSize   int    `json:"page_size"`
}

func (h *handlers) getForms(ctx context.Context, a getFormsArgs) (any, error) {
	size, err := h.pageSize("page_size", a.PageSize, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return h.client.ListForms(ctx, rspace.FormQuery{
		Query:      a.Query,
		OrderBy:    a.OrderBy,
		PageNumber: a.PageNumber,
		PageSize:   size,
	})
}

type formArgs struct {
	FormID recordID `json:"form_id"`

	id int64
}

func (a *formArgs) Validate() (err error) {
	a.id, err = a.FormID.resolve("form_id")
	return err
}

func (h *handlers) getForm(ctx context.Context, a formArgs) (any, error) {
	return h.client.Form(ctx, a.id)
}

func (h *handlers) transitionForm(action rspace.FormAction) func(context.Context, formArgs) (any, error) {
	return func(ctx context.Context, a formArgs) (any, error) {
		return h.client.TransitionForm(ctx, a.id, action)
	}
}

func (h *handlers) deleteForm(ctx context.Context, a formArgs) (any, error) {
	if err := h.client.DeleteForm(ctx, a.id); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "form_id": a.id}, nil
}

type createFormArgs struct {
	Name   string           `json:"name"`
	Tags   []string         `json:"tags"`
	Fields []map[string]any `json:"fields"`

	tags rspace.Tags
}

func (a *createFormArgs) Validate() error {
	var err error
	if a.Name, err = requiredName("name", a.Name); err != nil {
		return err
	}
	if len(a.Tags) > 0 {
		if a.tags, err = tagList("tags", a.Tags); err != nil {
			return err
		}
	}
	for i, f := range a.Fields {
		for _, key := range []string{"name", "type"} {
			if s, _ := f[key].(string); s == "" {
				return validate.Field(fmt.Sprintf("fields[%d].%s", i, key), validate.ErrMissingArgument)
			}
		}
	}
	return nil
}

func (h *handlers) createForm(ctx context.Context, a createFormArgs) (any, error) {
	return h.client.CreateForm(ctx, rspace.NewForm{
		Name:   a.Name,
		Tags:   a.tags.String(),
		Fields: a.Fields,
	})
}

type contentArg struct {
	Content string `json:"content"`
}

type documentFromFormArgs struct {
	FormID         recordID     `json:"form_id"`
	Name           string       `json:"name"`
	ParentFolderID recordID     `json:"parent_folder_id"`
	Tags           []string     `json:"tags"`
	Fields         []contentArg `json:"fields"`

	form, parent int64
	tags         rspace.Tags
}

func (a *documentFromFormArgs) Validate() error {
	var err error
	if a.form, err = a.FormID.resolve("form_id"); err != nil {
		return err
	}
	if a.parent, err = optionalID("parent_folder_id", a.ParentFolderID); err != nil {
		return err
	}
	if len(a.Tags) > 0 {
		if a.tags, err = tagList("tags", a.Tags); err != nil {
			return err
		}
	}
	return nil
}

func (h *handlers) createDocumentFromForm(ctx context.Context, a documentFromFormArgs) (any, error) {
	fields := make([]rspace.FieldContent, 0, len(a.Fields))
	for _, f := range a.Fields {
		fields = append(fields, rspace.FieldContent{Content: f.Content})
	}
	doc, err := h.client.CreateDocument(ctx, rspace.NewDocument{
		Name:           a.Name,
		ParentFolderID: a.parent,
		Tags:           a.tags.String(),
		Form:           &rspace.FormRef{ID: a.form},
		Fields:         fields,
	})
	if err != nil {
		return nil, err
	}
	return documentView{Document: doc, Content: doc.Content()}, nil
}
