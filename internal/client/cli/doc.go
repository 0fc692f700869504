// Package cli implements the strapi command-line client.
//
// Every backend operation is a cobra subcommand:
//
//	strapi register <username> <email>     strapi create <model> [json]
//	strapi login <identifier>              strapi list <model>
//	strapi logout                          strapi get <model> <id>
//	strapi whoami                          strapi update <model> <id> [json]
//	strapi files                           strapi delete <model> <id>
//	strapi file <id>                       strapi upload <path>...
//	strapi version
//
// Results are printed to stdout as indented JSON; prompts, upload progress
// and logs go to stderr. The session obtained by register or login is kept
// in the state database and restored before every command, so a login
// survives between invocations until logout.
//
// Execute returns the process exit code: 0 on success, 1 when the request
// was rejected (bad arguments, a non-200 status, an unexpected response
// body) and 2 when it could not be carried out (configuration, state
// database, network).
package cli
