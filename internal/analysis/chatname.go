package analysis

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const defaultChatName = "Bloop Analysis"

// ChatName titles a chat after its participants' first names: "Chat with A",
// "A & B" or "A, B & N others". Without usable names it falls back to the file
// name.
func ChatName(filename string, senders []string) string {
	names := DisplayNames(senders)
	switch len(names) {
	case 0:
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		if name == "" || name == "." || name == string(filepath.Separator) {
			return defaultChatName
		}
		return name
	case 1:
		return fmt.Sprintf("Chat with %s", names[0])
	case 2:
		return fmt.Sprintf("%s & %s", names[0], names[1])
	default:
		return fmt.Sprintf("%s, %s & %d others", names[0], names[1], len(names)-2)
	}
}

// DisplayNames returns the first word of each sender that contains a letter.
// Senders that are only phone numbers or symbols are skipped.
func DisplayNames(senders []string) []string {
	var out []string
	for _, s := range senders {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			continue
		}
		if strings.IndexFunc(fields[0], unicode.IsLetter) < 0 {
			continue
		}
		out = append(out, fields[0])
	}
	return out
}
