package report

import "strings"

// DefaultOutput is the report name used when none is given.
const DefaultOutput = "dict_table.pdf"

// OutputPath resolves the user-supplied output name. An empty name gives
// DefaultOutput; a name without a .pdf extension (any case) gets one.
func OutputPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultOutput
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
