package arxiv

import (
	"strings"
)

type CleanFunc func(string) string

func Clean(str string, cleanFuncs ...CleanFunc) string {
	cleaned := str
	for _, clean := range cleanFuncs {
		cleaned = clean(cleaned)
	}

	return cleaned
}

func CleaningPipe(cleanFuncs ...CleanFunc) CleanFunc {
	return func(str string) string {
		return Clean(str, cleanFuncs...)
	}
}

// OneLine joins the lines of str. The Atom feed wraps long titles and
// summaries, indenting the continuation lines.
func OneLine(str string) string {
	return strings.Join(strings.Fields(str), " ")
}
