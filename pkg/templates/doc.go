// Package templates implements the template registry.
//
// A template is any immediate subdirectory of the templates root; its
// directory name is its identity. A template may carry a metadata file
// (template.json by default) at its root:
//
//	{
//	  // comments are accepted
//	  "name": "Blank Project",
//	  "description": "An empty Lumina project",
//	  "exclude": ["**/*.tmp", "Build/**"]
//	}
//
// Metadata is advisory. A missing or malformed file falls back to the
// directory name and a placeholder description, it never makes a template
// unusable.
package templates
