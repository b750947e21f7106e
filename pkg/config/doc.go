// Package config provides configuration management for tictoc.
//
// Settings are resolved from built-in defaults, then an optional YAML file,
// then environment variables. Each attribute remembers which of the three it
// came from so `tictocctl configuration show` can report it.
//
// # Configuration Sources
//
//   - $TICTOC_CONFIG_PATH/tictoc.yml (default /etc/tictoc/tictoc.yml)
//   - TICTOC_* environment variables (take precedence)
//
// # Key Configuration Options
//
//   - TICTOC_TOKEN_SECRET: HMAC secret used to sign login tokens
//   - TICTOC_TOKEN_TTL: token lifetime in seconds, 0 for tokens without expiry
//   - TICTOC_BCRYPT_COST: bcrypt work factor for password hashes
//   - TICTOC_USER_LIST_LIMIT_MAX: cap on GET /users page size
//   - TICTOC_MIN_PASSWORD_LENGTH: shortest accepted password
//
// The server also calls Watch to pick up edits to the config file without a
// restart.
package config
