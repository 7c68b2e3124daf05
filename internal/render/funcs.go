package render

import (
	"fmt"
	"strings"
	"unicode"

	"text/template"
)

// Helpers returns the function map available to every generator template.
// Every helper is a pure string transform; nothing here may read state
// outside its arguments.
func Helpers() template.FuncMap {
	return template.FuncMap{
		// Case conversion
		"pascalCase": PascalCase, // user_name → UserName
		"camelCase":  CamelCase,  // user_name → userName
		"snakeCase":  SnakeCase,  // UserName → user_name

		// String manipulation
		"plural":    Pluralize,
		"quote":     Quote,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     Title,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"split":     strings.Split,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,

		// Utilities
		"dict":    Dict,
		"default": Default,
	}
}

// acronyms that stay upper-case when a word is capitalized.
var acronyms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uri":  "URI",
	"http": "HTTP",
	"api":  "API",
	"uuid": "UUID",
	"sql":  "SQL",
	"html": "HTML",
	"css":  "CSS",
	"json": "JSON",
	"xml":  "XML",
	"db":   "DB",
	"ui":   "UI",
}

// PascalCase converts snake_case or camelCase to PascalCase.
// Examples: user_name → UserName, userName → UserName, user_id → UserID
func PascalCase(s string) string {
	if s == "" {
		return ""
	}

	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		for i, part := range parts {
			if part != "" {
				parts[i] = capitalizeWord(part)
			}
		}
		return strings.Join(parts, "")
	}

	if unicode.IsLower(rune(s[0])) {
		return capitalizeWord(s)
	}
	return s
}

func capitalizeWord(s string) string {
	if s == "" {
		return ""
	}
	if acronym, ok := acronyms[strings.ToLower(s)]; ok {
		return acronym
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}

// CamelCase converts snake_case or PascalCase to camelCase.
// Examples: user_name → userName, UserName → userName
func CamelCase(s string) string {
	if s == "" {
		return ""
	}

	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		for i, part := range parts {
			if part == "" {
				continue
			}
			if i == 0 {
				parts[i] = strings.ToLower(part)
			} else {
				parts[i] = strings.ToUpper(string(part[0])) + strings.ToLower(part[1:])
			}
		}
		return strings.Join(parts, "")
	}

	if unicode.IsUpper(rune(s[0])) {
		return strings.ToLower(string(s[0])) + s[1:]
	}
	return s
}

// SnakeCase converts PascalCase or camelCase to snake_case.
// Examples: UserName → user_name, HTTPServer → http_server
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}

	if strings.Contains(s, "_") {
		return strings.ToLower(s)
	}

	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			// Break before an upper rune that starts a new word, either
			// after a lower rune or at the end of an acronym run.
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) {
					result.WriteRune('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Pluralize converts a singular noun to its plural form. Covers the
// irregulars and suffix rules that show up in identifier names; it is not
// a full inflection engine.
func Pluralize(word string) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)

	irregulars := map[string]string{
		"person": "people",
		"child":  "children",
		"man":    "men",
		"woman":  "women",
		"mouse":  "mice",
	}
	if plural, ok := irregulars[lower]; ok {
		return plural
	}

	switch {
	case strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return word + "es"
	case strings.HasSuffix(lower, "y") && len(word) > 1 && !isVowel(lower[len(lower)-2]):
		return word[:len(word)-1] + "ies"
	default:
		return word + "s"
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// Quote wraps a string in double quotes.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Title capitalizes the first letter of each space-separated word.
func Title(s string) string {
	if s == "" {
		return ""
	}

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// Dict builds a map from alternating key-value pairs, for passing grouped
// values to nested templates.
func Dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}

	result := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, got %T at position %d", values[i], i)
		}
		result[key] = values[i+1]
	}
	return result, nil
}

// Default returns defaultVal when val is nil, an empty string, or an empty
// collection. Numeric zero is a real value and passes through.
func Default(defaultVal, val any) any {
	if val == nil {
		return defaultVal
	}

	switch v := val.(type) {
	case string:
		if v == "" {
			return defaultVal
		}
	case []any:
		if len(v) == 0 {
			return defaultVal
		}
	case map[string]any:
		if len(v) == 0 {
			return defaultVal
		}
	}
	return val
}
