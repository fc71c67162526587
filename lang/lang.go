package lang

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gertd/go-pluralize"
)

const (
	DefaultPattern   = "%s"
	DefaultSeparator = ","
	DefaultOperator  = "and"
)

var (
	pluralizer = pluralize.NewClient()
)

type Enumerator struct {
	Pattern   string
	Separator string
	Operator  string
}

func (e Enumerator) Do(elements ...string) string {
	pattern, separator, operator := DefaultPattern, DefaultSeparator, DefaultOperator
	if e.Pattern != "" {
		pattern = e.Pattern
	}
	if e.Separator != "" {
		separator = e.Separator
	}
	if e.Operator != "" {
		operator = e.Operator
	}
	res := &bytes.Buffer{}
	for idx, element := range elements {
		fmt.Fprintf(res, pattern, element)
		switch {
		case idx+2 < len(elements):
			fmt.Fprintf(res, "%s ", separator)
		case idx+2 == len(elements) && len(elements) > 2:
			fmt.Fprintf(res, "%s %s ", separator, operator)
		case idx+2 == len(elements):
			fmt.Fprintf(res, " %s ", operator)
		}
	}
	return res.String()
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func Plural(word string) string {
	return pluralizer.Plural(word)
}

func Singular(word string) string {
	return pluralizer.Singular(word)
}

// Article returns the indefinite article for word.
func Article(word string) string {
	lower := strings.ToLower(word)
	for _, prefix := range []string{"hour", "honest", "heir", "8", "11", "18"} {
		if strings.HasPrefix(lower, prefix) {
			return "an"
		}
	}
	for _, prefix := range []string{"uni", "use", "one", "once", "eu"} {
		if strings.HasPrefix(lower, prefix) {
			return "a"
		}
	}
	if lower != "" && strings.ContainsRune("aeiou", rune(lower[0])) {
		return "an"
	}
	return "a"
}

func Indef(word string) string {
	return fmt.Sprintf("%s %s", Article(word), word)
}

var smallCards = []string{"no", "one", "two", "three"}

// Card returns a count of word in English, e.g. "no swords", "an axe", "two knives" or "12 enemies".
func Card(count int, word string) string {
	switch {
	case count == 1:
		return Indef(word)
	case count >= 0 && count < len(smallCards):
		return fmt.Sprintf("%s %s", smallCards[count], Plural(word))
	}
	return fmt.Sprintf("%d %s", count, Plural(word))
}

// ThirdPersonSingular conjugates a present tense verb, e.g. "sit" to "sits" or "crouch" to "crouches".
func ThirdPersonSingular(verb string) string {
	lower := strings.ToLower(verb)
	switch {
	case lower == "":
		return verb
	case lower == "be":
		return "is"
	case lower == "have":
		return "has"
	case strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"), strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"), strings.HasSuffix(lower, "z"), strings.HasSuffix(lower, "o"):
		return verb + "es"
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !strings.ContainsRune("aeiou", rune(lower[len(lower)-2])):
		return verb[:len(verb)-1] + "ies"
	}
	return verb + "s"
}
