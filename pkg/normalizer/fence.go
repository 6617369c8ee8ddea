package normalizer

import "strings"

const fence = "```"

// StripFences removes code-fence markers from one line.
//
// A marker that opens the line may carry a language tag (```json), which is
// removed with it when nothing but whitespace or a '{' follows the tag. Any
// other marker is removed on its own, so text glued to it survives. The
// substitution is textual: a marker inside a JSON string value is removed as
// well.
func StripFences(s string) string {
	if !strings.Contains(s, fence) {
		return s
	}

	body := strings.TrimLeft(s, " \t\r")
	lead := s[:len(s)-len(body)]

	if rest, ok := strings.CutPrefix(body, fence); ok {
		tag := len(rest) - len(strings.TrimLeft(rest, fenceTagChars))
		if tag > 0 {
			after := strings.TrimLeft(rest[tag:], " \t\r")
			if after == "" || after[0] == '{' {
				rest = rest[tag:]
			}
		}
		body = rest
	}

	return lead + strings.ReplaceAll(body, fence, "")
}

const fenceTagChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_+.-"
