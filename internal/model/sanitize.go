package model

import "strings"

// maxNameLen is the emission-name length limit of the target LP format.
const maxNameLen = 255

// RawName builds the verbatim pre-sanitization name: the base name, and
// for indexed entities the index values joined by commas inside
// parentheses. The parentheses and commas are structural and are never
// sanitized.
func RawName(base string, index []string) string {
	if len(index) == 0 {
		return base
	}
	return base + "(" + strings.Join(index, ",") + ")"
}

// sanitized builds the emission name from the same parts, applying the
// character rules to the base name and to the inside of each index
// position. A change is logged as an informational notice, never an
// error.
func (m *Model) sanitized(base string, index []string) string {
	cleanBase := sanitizeComponent(base)
	if len(cleanBase) > 0 && cleanBase[0] >= '0' && cleanBase[0] <= '9' {
		cleanBase = "n" + cleanBase
	}
	name := cleanBase
	if len(index) > 0 {
		parts := make([]string, len(index))
		for i, v := range index {
			parts[i] = sanitizeComponent(v)
		}
		name = cleanBase + "(" + strings.Join(parts, ",") + ")"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	if raw := RawName(base, index); name != raw {
		m.logger.Info("sanitized name for emission", "raw", raw, "name", name)
	}
	return name
}

// sanitizeComponent replaces characters the target format cannot carry
// inside a name component with underscores.
func sanitizeComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '.' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
