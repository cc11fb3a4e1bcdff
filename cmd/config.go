/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// config.go implements the "rspace-mcp config" command for configuration management.
//
// Design: Config follows a cascade model similar to git: local config
// (.rspace-mcp/config.yaml) takes precedence over global
// (~/.rspace-mcp/config.yaml). The --local flag forces use of local config
// even if it doesn't exist yet. Credentials are never stored here.

package cmd

import (
	"fmt"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/format"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  rspace-mcp config                       # show config
  rspace-mcp config http.timeout          # show http.timeout value
  rspace-mcp config http.timeout 45s      # set http.timeout
  rspace-mcp config tools.read_only true  # only register read-only tools

Configuration locations:
  Global: ~/.rspace-mcp/config.yaml
  Local:  .rspace-mcp/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.

RSPACE_URL and RSPACE_API_KEY are read from the environment only.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool("local", false, "Use local config (.rspace-mcp/config.yaml)")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool("local")

	// Reload without environment overrides: this command shows and edits the file.
	var file *config.Config
	var err error
	if forceLocal {
		file, err = config.LoadScope(config.ScopeLocal)
	} else {
		file, err = config.Load()
	}
	if err != nil {
		return PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	if len(args) > 0 && !config.IsValidKey(args[0]) {
		log.Event("cli:config", "get").Actor("cli").Detail("key", args[0]).Write(config.ErrUnknownKey)
		return PrintJSONError(fmt.Errorf("%w %q (valid keys: %s)", config.ErrUnknownKey, args[0],
			strings.Join(config.ValidKeys(), ", ")))
	}

	scopeName := "global"
	if file.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		log.Event("cli:config", "list").Actor("cli").Write(nil)
		if JSON() {
			return PrintJSON(file.All())
		}
		return format.Config(Out(), file.All())

	case 1:
		v, err := file.Get(args[0])
		log.Event("cli:config", "get").Actor("cli").Detail("key", args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		if JSON() {
			return PrintJSON(map[string]string{args[0]: v})
		}
		fmt.Fprintln(Out(), v)

	case 2:
		if err := file.Set(args[0], args[1]); err != nil {
			log.Event("cli:config", "set").Actor("cli").Detail("key", args[0]).Write(err)
			return PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}
		saveErr := file.Save()
		log.Event("cli:config", "set").Actor("cli").Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "value": args[1], "scope": scopeName, "path": file.Path()})
		}
		fmt.Fprintf(Out(), "%s = %s (%s)\n", args[0], args[1], scopeName)
	}
	return nil
}
