// Package config defines the format-agnostic configuration model for node
// type definitions, along with the Loader interface for reading extra
// definitions from files.
//
// The `config.Model` is what the `registry` package is populated from.
// Concrete loaders, such as the HCL one, live in separate packages.
package config
