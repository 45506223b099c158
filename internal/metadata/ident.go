package metadata

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeIdent converts a model ident to its canonical form: NFC,
// slash-separated, lower-case segments with CamelCase words split by dashes. Namespaced type names are
// accepted ("Shop\ProductCategory" becomes "shop/product-category").
func NormalizeIdent(ident string) (string, error) {
	ident = norm.NFC.String(strings.TrimSpace(ident))
	ident = strings.ReplaceAll(ident, `\`, "/")
	ident = strings.Trim(ident, "/")
	if ident == "" {
		return "", fmt.Errorf("ident can not be empty")
	}

	segments := strings.Split(ident, "/")
	for i, segment := range segments {
		switch segment {
		case "", ".", "..":
			return "", fmt.Errorf("invalid ident %q: bad segment %q", ident, segment)
		}
		segments[i] = kebab(segment)
	}
	return strings.Join(segments, "/"), nil
}

// kebab converts a CamelCase segment to kebab-case. Underscores are kept.
func kebab(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == ' ':
			sb.WriteRune('-')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' && runes[i-1] != '-' && runes[i-1] != ' ' &&
				(unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteRune('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
