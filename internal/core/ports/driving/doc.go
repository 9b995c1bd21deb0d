// Package driving is the API the CLI, HTTP, MCP, TUI and watcher adapters call.
package driving
