// Package config defines the application configuration structure and
// loading. Settings come from defaults, an optional YAML config file, and
// TASKFORGE_-prefixed environment variables, in increasing precedence, and
// are validated before use.
package config
