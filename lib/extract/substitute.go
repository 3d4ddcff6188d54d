package extract

import (
	"strings"
	"unicode"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

// Substitute replaces every raster name token of expression that equals the dataset
// id, or else the bare dataset name, with mapID.
//
// A token is a maximal run of letters, digits, '_', '.' and '@'. The expression is
// scanned once from left to right and replaced text is never scanned again, so a map
// id containing the dataset name is inserted verbatim. Tokens matching neither form
// are left as they are; an expression without any match is returned unchanged.
func Substitute(expression string, dataset tgis.ID, mapID tgis.ID) string {
	name := dataset.Name()

	var sb strings.Builder
	sb.Grow(len(expression))

	runes := []rune(expression)
	for i := 0; i < len(runes); {
		if !isTokenRune(runes[i]) {
			sb.WriteRune(runes[i])
			i++
			continue
		}

		j := i
		for j < len(runes) && isTokenRune(runes[j]) {
			j++
		}
		token := string(runes[i:j])
		if token == string(dataset) || token == name {
			sb.WriteString(string(mapID))
		} else {
			sb.WriteString(token)
		}
		i = j
	}
	return sb.String()
}

// Statement builds the r.mapcalc statement assigning expression to the raster name.
func Statement(name, expression string) string {
	return name + " = " + expression
}

func isTokenRune(r rune) bool {
	return r == '_' || r == '.' || r == '@' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
