// Package execshell runs the external tools a release build depends on.
//
// ShellExecutor wraps a CommandRunner (OSCommandRunner in production) with zap
// logging and converts non-zero exits into CommandFailedError, so every build
// step that shells out to git, tar, shasum, or docker fails loudly and names
// the command that broke. CommandMessageFormatter renders the human-readable
// lines shown when console logging is enabled.
package execshell
