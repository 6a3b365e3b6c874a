// Package registry maps node type identifiers to their multi-input
// configuration.
//
// The Registry is populated once during application startup, from the
// built-in table of multi-switch node types and from any definitions loaded
// through a config.Loader. Every alias is resolved into the lookup table at
// registration time, so a lookup is a single map access on the normalized
// identifier. After startup the registry is read-only.
//
// An identifier that matches nothing is a normal outcome: the caller simply
// does not instrument that node type.
package registry
