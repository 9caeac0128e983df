// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for interpolation, and every
// field can also be set directly via SP_BRIDGE_* / SP_TOKEN environment
// variables, which take precedence over file values. The bridge runs
// with no config file at all when the environment carries everything.
package config
