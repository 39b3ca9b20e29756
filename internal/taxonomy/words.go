package taxonomy

import (
	"regexp"
	"strings"
)

// boundary is anything that cannot continue a word. Tokens such as "c++" or
// "next.js" carry their own punctuation, so \b is not enough.
const boundary = `[^\p{L}\p{N}_]`

// WordPattern matches keyword only when it is not glued to a letter, digit or
// underscore on either side.
func WordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|` + boundary + `)` + regexp.QuoteMeta(keyword) + `(?:$|` + boundary + `)`)
}

// HasWord reports whether lowered text contains keyword as a whole word.
// Keywords from the table use precompiled patterns.
func (t *Table) HasWord(text, keyword string) bool {
	keyword = strings.ToLower(keyword)
	if re, ok := t.words[keyword]; ok {
		return re.MatchString(text)
	}
	return WordPattern(keyword).MatchString(text)
}

// FirstFamily returns the first family with a keyword anywhere in lowered
// text. Keywords match inside longer words, so "lead" hits "leadership" and
// "developer" hits "developers".
func (t *Table) FirstFamily(text string, families []Family) (Family, bool) {
	for _, f := range families {
		for _, kw := range f.Keywords {
			if strings.Contains(text, kw) {
				return f, true
			}
		}
	}
	return Family{}, false
}

// compileWords precompiles the skill tokens, the only table matched by whole word.
func (t *Table) compileWords() {
	for _, s := range t.Skills {
		if _, ok := t.words[s.Token]; !ok {
			t.words[s.Token] = WordPattern(s.Token)
		}
	}
}
