// Package config provides the configuration of a workshopper run: storefront
// location, worker pool size, pacing, export destinations and history storage.
// Values come from command-line flags, optionally merged with a .workshopper
// YAML file.
package config
