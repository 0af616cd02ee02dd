// Package manifest loads declarative commands (templated replies) from a JSON file.
package manifest

// CommandSpec is a command declared in a manifest.
type CommandSpec struct {
	// Usage is the command name followed by parameter labels, e.g. "greet name".
	Usage       string `json:"usage"`
	Description string `json:"description"`
	// Reply is a text/template rendered with ReplyData.
	Reply string `json:"reply"`
	// Visibility is "in_channel" or "ephemeral" (default).
	Visibility string `json:"visibility,omitempty"`
}

// Manifest is the root of a commands file.
type Manifest struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Description string        `json:"description,omitempty"`
	Commands    []CommandSpec `json:"commands"`
}

// ReplyData is the template data for a reply.
type ReplyData struct {
	User    string
	UserID  string
	Channel string
	Args    []string
}

// Arg returns the i-th argument, or "" when out of range.
func (d ReplyData) Arg(i int) string {
	if i < 0 || i >= len(d.Args) {
		return ""
	}
	return d.Args[i]
}
