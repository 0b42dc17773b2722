// Package config loads lumina-project configuration.
//
// Layers, lowest precedence first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/lumina-project/config.toml
//  3. .lumina-project.toml in the working directory
//  4. LUMINA_PROJECT_* environment variables, "__" separating sections
//     (LUMINA_PROJECT_HOOKS__GENERATE__TIMEOUT=2m)
//  5. LUMINA_DIR for engine_dir
//  6. explicit overrides, usually from command line flags
package config
