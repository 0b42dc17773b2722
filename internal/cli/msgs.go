package cli

// Command descriptions
const (
	MsgRootShort = "Create game projects from engine templates"
	MsgRootLong  = `lumina-project instantiates a project template shipped with a Lumina
engine checkout. Token placeholders such as ${PROJECT_NAME} are replaced in
file and directory names and inside text files, binary assets are copied
untouched, and post-generation hooks copy the engine tools and run the
template's GenerateProject.py.

The engine checkout is found through LUMINA_DIR or the engine_dir setting.`

	MsgNewShort = "Create a new project from a template"
	MsgNewLong  = `New copies the template into <path>/<name>, substituting tokens in names and
text file contents. The destination must not exist. Hooks run afterwards;
a failing hook is reported as a warning and does not fail the command.`

	MsgTemplatesShort = "List installed project templates"
	MsgTemplatesLong  = "Templates lists the directories under the templates root of the engine checkout."
	MsgShowShort      = "Show a template's metadata and README"
	MsgTokensShort    = "Show the tokens a project name binds"
	MsgConfigShort    = "Print the effective configuration"
	MsgConfigLong     = `Config prints the effective configuration as TOML, after merging the
built-in defaults, the user config file, .lumina-project.toml in the current
directory, LUMINA_PROJECT_* environment variables and command line flags.`
	MsgVersionShort = "Print version information"
	MsgVersionLong  = "Print detailed version information including commit hash and build date"
	MsgManShort     = "Generate man page"
)

// Status messages
const (
	MsgConfigWritten = "Configuration written to %s"
	MsgNoReadme      = "No README.md in template %s"
)
