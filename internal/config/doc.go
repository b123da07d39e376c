// Package config loads and validates the proxy's environment-variable
// configuration, logging each resolved value under a startup banner.
package config
