// Package mcp exposes note classification and batch scans to MCP clients.
package mcp

const (
	name         = "notemover"
	instructions = `MCP Server 'notemover' classifies markdown notes in a vault against ordered move rules.

Tools:
- 'list_rules' shows the trigger mode, the rules in evaluation order and the excluded folders.
- 'classify_note' reports which rule, if any, matches a note, without moving it.
- 'scan_folder' runs a batch scan. It is a dry run unless 'dryRun' is false.

Always run 'scan_folder' as a dry run first and show the intended moves to the user before moving anything.
`
)
