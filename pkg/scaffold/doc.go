// Package scaffold runs a complete project generation: it validates a
// Generation Request, resolves the template, instantiates it and then runs
// the post-generation hooks.
//
// Generate is the only entry point the command line needs. Fatal problems
// come back as the returned error; recoverable ones (undecodable text files,
// failing hooks) are warning events in the Result and leave the run
// successful.
package scaffold
