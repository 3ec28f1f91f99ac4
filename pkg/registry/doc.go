// Package registry provides a generic, thread-safe registry that keeps
// items in registration order. It backs the builtin action and validator
// tables and the list of compiled-in rule providers.
package registry
