// Package config loads, defaults, and validates the scanner's
// configuration.
//
// Configuration is a YAML file. Loading applies defaults, then
// SIFT_SECTION_FIELD environment variable overrides, then validation;
// a config that fails validation never reaches the scanner.
package config
