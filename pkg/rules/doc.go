// Package rules turns rule descriptors into compiled, ordered rules for the
// download router.
//
// # Descriptors
//
// A rule names a regular expression that is matched against the start of
// a file's base name, a target template, and optionally an action and a
// validator:
//
//	rules:
//	  - name: photos
//	    regex: 'IMG_(\d+)\.jpg'
//	    target: '{home}/Photos/{re_1}.jpg'
//	  - regex: '.*\.torrent'
//	    target: '~/Torrents/watch'
//	    action: copy
//	    validator: notify
//
// The same fields are accepted in TOML as [[rules]] tables. Go code can
// also compute targets, actions and validators by registering a Provider
// whose descriptors carry functions instead of names.
//
// # Provider order
//
// Providers are consulted in a fixed order: providers registered with
// Register, then rules inline in the configuration file, then descriptor
// files from the rules directory sorted by file name. Within a provider
// the first matching rule wins. A provider with an invalid pattern is
// skipped entirely with a warning.
package rules
