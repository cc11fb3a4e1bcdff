// tools_documents.go provides the document tools: status, listing, reading,
// updating, renaming and tagging.

package mcp

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/diff"
	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/tag"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) documentTools() []Tool {
	return []Tool{
		{
			Def: annotate(mcp.NewTool("status",
				mcp.WithDescription("Check that the RSpace server is reachable and the API key is accepted. Returns the server message and RSpace version."),
			), "RSpace status", true, false),
			Group:    GroupELN,
			ReadOnly: true,
			Action:   "read",
			Handler: func(ctx context.Context, _ map[string]any) (any, error) {
				return h.client.Status(ctx)
			},
		},
		{
			Def: annotate(mcp.NewTool("get_documents",
				mcp.WithDescription("List the most recently created documents, newest first. Optionally restrict to a creation date range or a full-text query."),
				withPageSize(defaultPageSize),
				withPageNumber(),
				mcp.WithString("created_from", mcp.Description("Only documents created on or after this date (YYYY-MM-DD)")),
				mcp.WithString("created_to", mcp.Description("Only documents created on or before this date (YYYY-MM-DD)")),
				mcp.WithString("query", mcp.Description("Full-text query; ignored when a date range is given")),
			), "List recent documents", true, false),
			Group:    GroupELN,
			ReadOnly: true,
			Action:   "list",
			Handler:  bind(h.getDocuments),
		},
		{
			Def: annotate(mcp.NewTool("get_single_Rspace_document",
				mcp.WithDescription("Get one document with all its fields. The content of every field is also returned concatenated in 'content'."),
				withID("doc_id", "Document id, numeric (1234) or global (SD1234)", true),
			), "Get document", true, false),
			Group:    GroupELN,
			ReadOnly: true,
			Action:   "read",
			Target:   "doc_id",
			Handler:  bind(h.getDocument),
		},
		{
			Def: annotate(mcp.NewTool("update_document",
				mcp.WithDescription("Update a document's name, tags, form or field content. "+
					"Tags given here replace the whole tag set; an empty list clears them. "+
					"Field content is HTML and replaces the field. Use dry_run to preview the change as a diff without writing."),
				withID("document_id", "Document id, numeric or global (SD1234)", true),
				mcp.WithString("name", mcp.Description("New document name")),
				withTags("tags", "Complete new tag set"),
				withID("form_id", "Form to associate the document with", false),
				mcp.WithArray("fields",
					mcp.Description("Fields to overwrite, each {id, content}. Field ids come from get_single_Rspace_document."),
					mcp.Items(map[string]any{
						"type": "object",
						"properties": map[string]any{
							"id":      map[string]any{"type": []any{"integer", "string"}, "description": "Field id"},
							"content": map[string]any{"type": "string", "description": "New HTML content"},
						},
						"required": []any{"id", "content"},
					}),
				),
				mcp.WithBoolean("dry_run", mcp.Description("Return a diff of the proposed change instead of applying it")),
			), "Update document", false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "document_id",
			Handler: bind(h.updateDocument),
		},
		{
			Def: annotate(mcp.NewTool("renameDocumentOrNotebookEntry",
				mcp.WithDescription("Rename a document or notebook entry."),
				withID("doc_id", "Document or entry id, numeric or global (SD1234)", true),
				mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
			), "Rename document", false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "doc_id",
			Handler: bind(h.renameDocument),
		},
		{
			Def: annotate(mcp.NewTool("tagDocumentOrNotebookEntry",
				mcp.WithDescription("Add tags to a document or notebook entry. Existing tags are kept unless replace is true. "+
					"Tags must not contain commas."),
				withID("doc_id", "Document or entry id, numeric or global (SD1234)", true),
				withTags("tags", "Tags to apply", mcp.Required(), mcp.MinItems(1)),
				mcp.WithBoolean("replace", mcp.Description("Replace the existing tags instead of merging (default false)")),
			), "Tag document", false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "doc_id",
			Handler: bind(h.tagDocument),
		},
	}
}

type getDocumentsArgs struct {
	PageSize    int    `json:"page_size"`
	PageNumber  int    `json:"page_number"`
	CreatedFrom string `json:"created_from"`
	CreatedTo   string `json:"created_to"`
	Query       string `json:"query"`

	from, to time.Time
}

func (a *getDocumentsArgs) Validate() error {
	var err error
	if a.from, err = validate.OptionalDate("created_from", a.CreatedFrom); err != nil {
		return err
	}
	if a.to, err = validate.OptionalDate("created_to", a.CreatedTo); err != nil {
		return err
	}
	return validate.DateRange("created_from", a.from, "created_to", a.to)
}

type documentPage struct {
	TotalHits int                   `json:"totalHits"`
	Documents []rspace.DocumentInfo `json:"documents"`
}

func (h *handlers) getDocuments(ctx context.Context, a getDocumentsArgs) (any, error) {
	size, err := h.pageSize("page_size", a.PageSize, defaultPageSize)
	if err != nil {
		return nil, err
	}
	list, err := h.client.ListDocuments(ctx, rspace.DocumentQuery{
		PageSize:    size,
		PageNumber:  a.PageNumber,
		Query:       a.Query,
		CreatedFrom: a.from,
		CreatedTo:   a.to,
	})
	if err != nil {
		return nil, err
	}

	docs := list.Documents
	slices.SortStableFunc(docs, func(x, y rspace.DocumentInfo) int {
		return y.Created.Compare(x.Created.Time)
	})
	if len(docs) > size {
		docs = docs[:size]
	}
	if docs == nil {
		docs = []rspace.DocumentInfo{}
	}
	return documentPage{TotalHits: list.TotalHits, Documents: docs}, nil
}

type docArgs struct {
	DocID recordID `json:"doc_id"`

	id int64
}

func (a *docArgs) Validate() (err error) {
	a.id, err = a.DocID.resolve("doc_id")
	return err
}

// documentView adds the concatenated field content to a document.
type documentView struct {
	rspace.Document
	Content string `json:"content"`
}

func (h *handlers) getDocument(ctx context.Context, a docArgs) (any, error) {
	doc, err := h.client.Document(ctx, a.id)
	if err != nil {
		return nil, err
	}
	return documentView{Document: doc, Content: doc.Content()}, nil
}

type fieldArg struct {
	ID      recordID `json:"id"`
	Content string   `json:"content"`
}

type updateDocumentArgs struct {
	DocumentID recordID   `json:"document_id"`
	Name       string     `json:"name"`
	Tags       *[]string  `json:"tags"`
	FormID     recordID   `json:"form_id"`
	Fields     []fieldArg `json:"fields"`
	DryRun     bool       `json:"dry_run"`

	id     int64
	update rspace.DocumentUpdate
}

func (a *updateDocumentArgs) Validate() error {
	var err error
	if a.id, err = a.DocumentID.resolve("document_id"); err != nil {
		return err
	}
	if a.Name != "" {
		if a.update.Name, err = requiredName("name", a.Name); err != nil {
			return err
		}
	}
	if a.Tags != nil {
		var tags rspace.Tags
		if len(*a.Tags) > 0 {
			if tags, err = tagList("tags", *a.Tags); err != nil {
				return err
			}
		}
		a.update.SetTags(tags)
	}
	if a.update.FormID, err = optionalID("form_id", a.FormID); err != nil {
		return err
	}
	for i, f := range a.Fields {
		id, err := f.ID.resolve(fmt.Sprintf("fields[%d].id", i))
		if err != nil {
			return err
		}
		a.update.Fields = append(a.update.Fields, rspace.FieldContent{ID: id, Content: f.Content})
	}

	u := a.update
	if u.Name == "" && u.Tags == nil && u.FormID == 0 && len(u.Fields) == 0 {
		return validate.Fieldf("document_id", "nothing to update: give at least one of name, tags, form_id or fields")
	}
	return nil
}

func (h *handlers) updateDocument(ctx context.Context, a updateDocumentArgs) (any, error) {
	if a.DryRun {
		doc, err := h.client.Document(ctx, a.id)
		if err != nil {
			return nil, err
		}
		return previewUpdate(doc, a.update)
	}
	doc, err := h.client.UpdateDocument(ctx, a.id, a.update)
	if err != nil {
		return nil, err
	}
	return documentView{Document: doc, Content: doc.Content()}, nil
}

type change struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type fieldDiff struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Diff string `json:"diff"`
}

type updatePreview struct {
	DryRun   bool        `json:"dry_run"`
	ID       int64       `json:"id"`
	GlobalID string      `json:"globalId"`
	Name     *change     `json:"name,omitempty"`
	Tags     *change     `json:"tags,omitempty"`
	FormID   int64       `json:"form_id,omitempty"`
	Fields   []fieldDiff `json:"fields,omitempty"`
}

// previewUpdate describes what u would change in doc without writing it.
func previewUpdate(doc rspace.Document, u rspace.DocumentUpdate) (updatePreview, error) {
	p := updatePreview{DryRun: true, ID: doc.ID, GlobalID: doc.GlobalID, FormID: u.FormID}
	if u.Name != "" && u.Name != doc.Name {
		p.Name = &change{From: doc.Name, To: u.Name}
	}
	if u.Tags != nil && *u.Tags != doc.Tags.String() {
		p.Tags = &change{From: doc.Tags.String(), To: *u.Tags}
	}
	for i, f := range u.Fields {
		idx := slices.IndexFunc(doc.Fields, func(x rspace.Field) bool { return x.ID == f.ID })
		if idx < 0 {
			return p, validate.Fieldf(fmt.Sprintf("fields[%d].id", i), "field %d is not part of document %d", f.ID, doc.ID)
		}
		old := doc.Fields[idx]
		label := fmt.Sprintf("%s/%s", doc.GlobalID, old.Name)
		d := diff.Compute(diff.HTMLLines(old.Content), diff.HTMLLines(f.Content), label+" (current)", label+" (proposed)")
		p.Fields = append(p.Fields, fieldDiff{ID: f.ID, Name: old.Name, Diff: d.Format()})
	}
	return p, nil
}

type renameArgs struct {
	DocID recordID `json:"doc_id"`
	Name  string   `json:"name"`

	id int64
}

func (a *renameArgs) Validate() (err error) {
	if a.id, err = a.DocID.resolve("doc_id"); err != nil {
		return err
	}
	a.Name, err = requiredName("name", a.Name)
	return err
}

func (h *handlers) renameDocument(ctx context.Context, a renameArgs) (any, error) {
	doc, err := h.client.UpdateDocument(ctx, a.id, rspace.DocumentUpdate{Name: a.Name})
	if err != nil {
		return nil, err
	}
	return doc.DocumentInfo, nil
}

type tagArgs struct {
	DocID   recordID `json:"doc_id"`
	Tags    []string `json:"tags"`
	Replace bool     `json:"replace"`

	id int64
}

func (a *tagArgs) Validate() (err error) {
	if a.id, err = a.DocID.resolve("doc_id"); err != nil {
		return err
	}
	a.Tags, err = validate.Tags("tags", a.Tags)
	return err
}

func (h *handlers) tagDocument(ctx context.Context, a tagArgs) (any, error) {
	res, err := tag.Apply(ctx, h.client, a.id, a.Tags, a.Replace)
	if err != nil {
		return nil, err
	}
	return res, nil
}

