// Package paths resolves the directories lumina-project works with.
//
// The engine checkout is located through LUMINA_DIR or the engine_dir
// setting; the templates root and the tools directory are resolved under it
// unless configured as absolute paths. Configuration and state directories
// follow the XDG Base Directory specification (adrg/xdg):
//
//   - LUMINA_PROJECT_CONFIG_DIR overrides $XDG_CONFIG_HOME/lumina-project
//   - $XDG_STATE_HOME/lumina-project holds the log file
package paths
