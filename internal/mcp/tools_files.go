// tools_files.go provides downloadFile.
//
// Downloads are confined to the configured download directory. The target
// path is validated before any request is made, and bytes are streamed to a
// temporary file in the same directory and renamed into place, so a failed
// or cancelled download never leaves a truncated file under the final name.

package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) fileTools() []Tool {
	return []Tool{
		{
			Def: annotate(mcp.NewTool("downloadFile",
				mcp.WithDescription("Download a gallery file to the local download directory. "+
					"file_path is relative to that directory; when omitted the file's own name is used. "+
					"An existing file at the path is overwritten."),
				withID("file_id", "File id, numeric or global (GL1234)", true),
				mcp.WithString("file_path", mcp.Description("Destination relative to the download directory")),
			), "Download file", false, true),
			Group:   GroupELN,
			Action:  "download",
			Target:  "file_id",
			Handler: bind(h.downloadFile),
		},
	}
}

type downloadArgs struct {
	FileID   recordID `json:"file_id"`
	FilePath string   `json:"file_path"`

	id int64
}

func (a *downloadArgs) Validate() (err error) {
	a.id, err = a.FileID.resolve("file_id")
	return err
}

type downloadResult struct {
	FileID      int64  `json:"file_id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Path        string `json:"path"`
	Bytes       int64  `json:"bytes"`
}

func (h *handlers) downloadFile(ctx context.Context, a downloadArgs) (any, error) {
	var target string
	if a.FilePath != "" {
		var err error
		if target, err = validate.DownloadPath("file_path", h.opts.DownloadDir, a.FilePath); err != nil {
			return nil, err
		}
	}

	meta, err := h.client.File(ctx, a.id)
	if err != nil {
		return nil, err
	}
	if target == "" {
		if target, err = validate.DownloadPath("file_path", h.opts.DownloadDir, localName(meta)); err != nil {
			return nil, err
		}
	}

	n, err := h.writeFile(ctx, a.id, target)
	if err != nil {
		return nil, err
	}
	return downloadResult{
		FileID:      a.id,
		Name:        meta.Name,
		ContentType: meta.ContentType,
		Path:        target,
		Bytes:       n,
	}, nil
}

// localName is the file name a download is saved under when no path is
// given. Names with no usable final element fall back to file-<id>.
func localName(f rspace.File) string {
	switch name := filepath.Base(strings.TrimSpace(f.Name)); name {
	case ".", "..", string(filepath.Separator):
		return fmt.Sprintf("file-%d", f.ID)
	default:
		return name
	}
}

// writeFile streams file id to target via a temporary sibling.
func (h *handlers) writeFile(ctx context.Context, id int64, target string) (n int64, err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create download directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rspace-download-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err = h.client.DownloadFile(ctx, id, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		return 0, fmt.Errorf("download file %d: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("move download into place: %w", err)
	}
	return n, nil
}
