// Package config loads, normalizes, and validates earshot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN and EARSHOT_SERVER_URL. A .env file in the working directory or
// beside the config file is loaded first so those fallbacks can live there.
//
// Always obtain settings through this package so the server and the CLI see
// the same sanitized paths, URLs, and credentials.
package config
