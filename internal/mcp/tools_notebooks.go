// tools_notebooks.go provides the notebook tools: creating notebooks and
// entries, and listing the files attached to a notebook's entries.

package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// defaultMaxEntries bounds how many entries listNotebookAttachments reads.
const defaultMaxEntries = 20

func (h *handlers) notebookTools() []Tool {
	return []Tool{
		{
			Def: annotate(mcp.NewTool("createNewNotebook",
				mcp.WithDescription("Create a new notebook in the user's home folder."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Notebook name")),
			), "Create notebook", false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "name",
			Handler: bind(h.createNotebook),
		},
		{
			Def: annotate(mcp.NewTool("createNotebookEntry",
				mcp.WithDescription("Create an entry in a notebook. text_content is Markdown (tables and task lists included) "+
					"and is stored as HTML; content starting with '<' is stored as HTML unchanged. "+
					"Gallery files listed in attachments are linked into the entry."),
				withID("notebook_id", "Notebook id, numeric or global (NB1234)", true),
				mcp.WithString("name", mcp.Required(), mcp.Description("Entry title")),
				mcp.WithString("text_content", mcp.Required(), mcp.Description("Entry body, Markdown or HTML")),
				mcp.WithArray("attachments",
					mcp.Description("Gallery file ids (numeric or GL1234) to link into the entry"),
					mcp.Items(map[string]any{"type": []any{"integer", "string"}}),
				),
			), "Create notebook entry", false, false),
			Group:   GroupELN,
			Action:  "write",
			Target:  "notebook_id",
			Handler: bind(h.createNotebookEntry),
		},
		{
			Def: annotate(mcp.NewTool("listNotebookAttachments",
				mcp.WithDescription("List the files attached to the entries of a notebook, entry by entry."),
				withID("notebook_id", "Notebook id, numeric or global (NB1234)", true),
				mcp.WithNumber("max_entries",
					integer(),
					mcp.Min(1),
					mcp.Max(100),
					mcp.DefaultNumber(defaultMaxEntries),
					mcp.Description("How many entries to inspect (1-100, default 20)"),
				),
			), "List notebook attachments", true, false),
			Group:    GroupELN,
			ReadOnly: true,
			Action:   "list",
			Target:   "notebook_id",
			Handler:  bind(h.listNotebookAttachments),
		},
	}
}

type createNotebookArgs struct {
	Name string `json:"name"`
}

func (a *createNotebookArgs) Validate() (err error) {
	a.Name, err = requiredName("name", a.Name)
	return err
}

func (h *handlers) createNotebook(ctx context.Context, a createNotebookArgs) (any, error) {
	return h.client.CreateFolder(ctx, rspace.NewFolder{Name: a.Name, Notebook: true})
}

type createEntryArgs struct {
	NotebookID  recordID   `json:"notebook_id"`
	Name        string     `json:"name"`
	TextContent string     `json:"text_content"`
	Attachments []recordID `json:"attachments"`

	notebook int64
	files    []int64
}

func (a *createEntryArgs) Validate() error {
	var err error
	if a.notebook, err = a.NotebookID.resolve("notebook_id"); err != nil {
		return err
	}
	if a.Name, err = requiredName("name", a.Name); err != nil {
		return err
	}
	if strings.TrimSpace(a.TextContent) == "" {
		return validate.Field("text_content", validate.ErrMissingArgument)
	}
	for i, r := range a.Attachments {
		id, err := r.resolve(fmt.Sprintf("attachments[%d]", i))
		if err != nil {
			return err
		}
		a.files = append(a.files, id)
	}
	return nil
}

// entryRef is what createNotebookEntry reports back.
type entryRef struct {
	ID          int64         `json:"id"`
	GlobalID    string        `json:"globalId"`
	Name        string        `json:"name"`
	NotebookID  int64         `json:"notebook_id"`
	Attachments []rspace.File `json:"attachments,omitempty"`
}

func (h *handlers) createNotebookEntry(ctx context.Context, a createEntryArgs) (any, error) {
	// The parent and attachments are checked first so a bad id leaves no
	// half-made entry. RSpace would otherwise file the entry in a folder.
	nb, err := h.client.Folder(ctx, a.notebook)
	if err != nil {
		return nil, err
	}
	if !nb.Notebook {
		return nil, validate.Fieldf("notebook_id", "%s is a folder, not a notebook", nb.GlobalID)
	}
	files := make([]rspace.File, 0, len(a.files))
	for _, id := range a.files {
		f, err := h.client.File(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("attachment %d: %w", id, err)
		}
		files = append(files, f)
	}

	body, err := entryBody(a.TextContent, files)
	if err != nil {
		return nil, err
	}
	doc, err := h.client.CreateDocument(ctx, rspace.NewDocument{
		Name:           a.Name,
		ParentFolderID: a.notebook,
		Fields:         []rspace.FieldContent{{Content: body}},
	})
	if err != nil {
		return nil, err
	}
	return entryRef{
		ID:          doc.ID,
		GlobalID:    doc.GlobalID,
		Name:        doc.Name,
		NotebookID:  a.notebook,
		Attachments: files,
	}, nil
}

// entryMarkdown renders entry text. Raw HTML inside Markdown is dropped;
// callers wanting HTML send it whole.
var entryMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// entryBody renders text as the entry's HTML and appends RSpace file links.
func entryBody(text string, files []rspace.File) (string, error) {
	var b bytes.Buffer
	if strings.HasPrefix(strings.TrimSpace(text), "<") {
		b.WriteString(text)
	} else if err := entryMarkdown.Convert([]byte(text), &b); err != nil {
		return "", fmt.Errorf("render entry text: %w", err)
	}
	for _, f := range files {
		fmt.Fprintf(&b, "<p><fileId=%d></p>", f.ID)
	}
	return b.String(), nil
}

type attachmentsArgs struct {
	NotebookID recordID `json:"notebook_id"`
	MaxEntries int      `json:"max_entries"`

	notebook int64
}

func (a *attachmentsArgs) Validate() (err error) {
	if a.MaxEntries == 0 {
		a.MaxEntries = defaultMaxEntries
	}
	a.notebook, err = a.NotebookID.resolve("notebook_id")
	return err
}

// Attachment is a file attached to one notebook entry.
type Attachment struct {
	EntryID       int64  `json:"entry_id"`
	EntryGlobalID string `json:"entry_globalId"`
	EntryName     string `json:"entry_name"`
	Field         string `json:"field"`
	rspace.File
}

type attachmentList struct {
	NotebookID  int64        `json:"notebook_id"`
	Entries     int          `json:"entries_inspected"`
	TotalHits   int          `json:"entries_total"`
	Attachments []Attachment `json:"attachments"`
}

func (h *handlers) listNotebookAttachments(ctx context.Context, a attachmentsArgs) (any, error) {
	tree, err := h.client.FolderTree(ctx, a.notebook, rspace.TreeQuery{
		Types:    []string{"document"},
		PageSize: a.MaxEntries,
	})
	if err != nil {
		return nil, err
	}

	out := attachmentList{NotebookID: a.notebook, TotalHits: tree.TotalHits, Attachments: []Attachment{}}
	for _, rec := range tree.Records {
		if out.Entries == a.MaxEntries {
			break
		}
		doc, err := h.client.Document(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", rec.GlobalID, err)
		}
		out.Entries++
		for _, field := range doc.Fields {
			for _, f := range field.Files {
				out.Attachments = append(out.Attachments, Attachment{
					EntryID:       doc.ID,
					EntryGlobalID: doc.GlobalID,
					EntryName:     doc.Name,
					Field:         field.Name,
					File:          f,
				})
			}
		}
	}
	return out, nil
}
