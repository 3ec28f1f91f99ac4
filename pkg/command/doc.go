// Package command runs external programs for the tools: notify-send, git,
// borg, ffplay and user supplied shell commands. Runner is the seam tests
// replace.
package command
