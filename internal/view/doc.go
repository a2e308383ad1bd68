// Package view turns loaded snapshots into what a surface should show:
// which branch to render, which controls to offer and how values are
// formatted. It holds no workflow state; the CLI and the TUI both consume it.
package view
