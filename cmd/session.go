/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// session.go wires credentials, configuration and the tool catalog into a
// dispatcher. serve and call share it so a tool behaves the same whether an
// LLM or a person invokes it.

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/jpl-au/rspace-mcp/internal/mcp"
	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/version"
)

// newDispatcher connects to the RSpace server named in the environment.
// actor is recorded against every audited call.
func newDispatcher(actor string) (*mcp.Dispatcher, error) {
	creds, err := config.LoadCredentials(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("%w\n\nSet %s and %s, see 'rspace-mcp guide config'", err, config.EnvURL, config.EnvAPIKey)
	}
	slog.Debug("rspace credentials loaded", "server", creds.String())

	client := rspace.New(creds.URL, creds.APIKey,
		rspace.WithTimeout(cfg.Timeout()),
		rspace.WithUserAgent(mcp.Name+"/"+version.Short()),
	)
	// Keyed on the normalised URL so a trailing slash does not split the log.
	log.SetInstance(client.BaseURL())
	catalog, err := mcp.BuildCatalog(client, mcp.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return mcp.NewDispatcher(catalog,
		mcp.WithCallTimeout(cfg.Timeout()),
		mcp.WithActor(actor),
		mcp.WithLogger(slog.Default()),
	), nil
}
