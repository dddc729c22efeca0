package personname

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name is a display name split into comparable parts. Nickname keeps its
// original casing; First/Last keep theirs too, folding happens only in keys.
type Name struct {
	First    string
	Last     string
	Nickname string
}

var generationalSuffixes = map[string]struct{}{
	"jr":  {},
	"jr.": {},
	"sr":  {},
	"sr.": {},
	"ii":  {},
	"iii": {},
	"iv":  {},
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize splits a scraped display name into first name, last name and an
// optional nickname. Single-token names land in Last so fighters known by one
// name round-trip correctly.
func Normalize(raw string) Name {
	working := strings.TrimSpace(raw)
	if strings.Contains(working, "%") {
		if decoded, err := url.QueryUnescape(working); err == nil {
			working = decoded
		}
	}

	working, nickname := extractNickname(working)

	tokens := strings.Fields(working)
	if len(tokens) == 0 {
		return Name{Nickname: nickname}
	}
	if len(tokens) == 1 {
		return Name{Last: tokens[0], Nickname: nickname}
	}

	last := tokens[len(tokens)-1]
	cut := len(tokens) - 1
	if _, ok := generationalSuffixes[strings.ToLower(last)]; ok && cut > 0 {
		// "John Smith Jr" keeps "Smith Jr" as the last name.
		last = tokens[cut-1] + " " + last
		cut--
	}
	if cut == 0 {
		return Name{Last: last, Nickname: nickname}
	}

	return Name{
		First:    strings.Join(tokens[:cut], " "),
		Last:     last,
		Nickname: nickname,
	}
}

// LastNameKey is the comparison primitive used by fight matching: the
// normalized last name, diacritic-stripped and lowercased.
func LastNameKey(raw string) string {
	return FoldKey(Normalize(raw).Last)
}

// FoldKey lowercases and strips diacritics so "Mélèdje" and "Meledje" compare equal.
func FoldKey(value string) string {
	folded, _, err := transform.String(diacriticFolder, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func extractNickname(working string) (string, string) {
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}, {"(", ")"}} {
		open := strings.Index(working, pair[0])
		if open < 0 {
			continue
		}
		// Apostrophes inside a name (O'Brien) are not nickname quotes.
		if pair[0] == "'" && open > 0 && working[open-1] != ' ' {
			continue
		}
		start := open + len(pair[0])
		end := strings.Index(working[start:], pair[1])
		if end < 0 {
			continue
		}
		nickname := strings.TrimSpace(working[start : start+end])
		if nickname == "" {
			continue
		}
		stripped := working[:open] + working[start+end+len(pair[1]):]
		return strings.Join(strings.Fields(stripped), " "), nickname
	}

	return working, ""
}
