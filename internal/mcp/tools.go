// tools.go assembles the RSpace tool catalog.
//
// Tool names are kept exactly as earlier versions of this server published
// them (including the mixed camelCase and snake_case) because agent prompts
// in the wild refer to them by name.

package mcp

import (
	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/rspace"
)

// Options selects and configures the tools in a catalog.
type Options struct {
	Inventory   bool   // include the inventory group
	ReadOnly    bool   // drop every tool that changes remote state
	DownloadDir string // root for downloadFile paths
	MaxPageSize int    // upper bound for page_size arguments
}

// DefaultOptions returns options matching an empty configuration.
func DefaultOptions() Options {
	return Options{
		Inventory:   true,
		DownloadDir: config.DefaultDownloadDir,
		MaxPageSize: config.DefaultMaxPageSize,
	}
}

// OptionsFromConfig derives catalog options from loaded settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Inventory:   cfg.InventoryEnabled(),
		ReadOnly:    cfg.ReadOnly(),
		DownloadDir: cfg.DownloadDir(),
		MaxPageSize: cfg.MaxPageSize(),
	}
}

// handlers gives tool handlers access to the shared client.
type handlers struct {
	client *rspace.Client
	opts   Options
}

// BuildCatalog returns the RSpace tools selected by opts.
func BuildCatalog(client *rspace.Client, opts Options) (*Catalog, error) {
	if opts.MaxPageSize <= 0 || opts.MaxPageSize > config.MaxMaxPageSize {
		opts.MaxPageSize = config.DefaultMaxPageSize
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = config.DefaultDownloadDir
	}
	h := &handlers{client: client, opts: opts}

	var all []Tool
	all = append(all, h.documentTools()...)
	all = append(all, h.notebookTools()...)
	all = append(all, h.formTools()...)
	all = append(all, h.activityTools()...)
	all = append(all, h.fileTools()...)
	all = append(all, h.inventoryTools()...)

	selected := make([]Tool, 0, len(all))
	for _, t := range all {
		if t.Group == GroupInventory && !opts.Inventory {
			continue
		}
		if opts.ReadOnly && !t.ReadOnly {
			continue
		}
		selected = append(selected, t)
	}
	return NewCatalog(selected...)
}
