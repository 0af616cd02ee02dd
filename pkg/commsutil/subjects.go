package commsutil

import "strings"

// Default COMMS subjects.
const (
	SubjectCommand = "slashbot.command"
	SubjectInvoked = "slashbot.invoked"
)

var subjectTokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// SafeToken makes a value usable as a single subject token.
func SafeToken(s string) string {
	if s == "" {
		return "_"
	}
	return subjectTokenReplacer.Replace(s)
}

// BuildInvokedSubject builds the per-command invocation event subject under base.
func BuildInvokedSubject(base, command string) string {
	return base + "." + SafeToken(command)
}
