// Package argparser splits slash-command text and aligns supplied tokens to declared parameters.
package argparser

import "strings"

// Split separates free text into a command name and its argument tokens.
// Runs of whitespace never produce empty tokens.
func Split(text string) (name string, args []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// Align matches supplied tokens to declared parameter slots. The last slot absorbs
// any overflow tokens, re-joined with single spaces. It reports false when fewer
// tokens were supplied than parameters declared.
//
// With no declared parameters every supplied token is passed through unchanged.
func Align(declared, supplied []string) ([]string, bool) {
	if len(declared) == 0 {
		out := make([]string, len(supplied))
		copy(out, supplied)
		return out, true
	}
	if len(supplied) < len(declared) {
		return nil, false
	}

	last := len(declared) - 1
	out := make([]string, len(declared))
	copy(out, supplied[:last])
	out[last] = strings.Join(supplied[last:], " ")
	return out, true
}
