// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: read-only TOML configuration
//   - EnvStore: environment variable overlay on a ConfigStore, fed by .env
//   - PromptStore: user-editable prompt templates
package file
