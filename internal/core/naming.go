package core

import "strings"

// ToSnakeCase converts an identifier such as "OrderLineItem" to
// "order_line_item" for use in generated file and table names.
func ToSnakeCase(name string) string {
	return toSnakeCase(name)
}

// toSnakeCase converts an identifier such as "OrderLineItem" or "orderKey"
// to snake_case ("order_line_item", "order_key"). Identifiers already in
// snake_case pass through unchanged.
func toSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if prev != '_' && (prev < 'A' || prev > 'Z' || nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pluralizeSnake applies a simple English pluralization suitable for table
// names derived from entity names. It is intentionally conservative: the
// irregular-noun cases a real pluralizer would need never occur in entity
// names, which are identifiers chosen by spec authors.
func pluralizeSnake(s string) string {
	switch {
	case strings.HasSuffix(s, "y") && !strings.HasSuffix(s, "ay") && !strings.HasSuffix(s, "ey") && !strings.HasSuffix(s, "oy"):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	default:
		return s + "s"
	}
}
