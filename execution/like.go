package execution

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgraph-io/ristretto"
)

var patternCache *ristretto.Cache

func init() {
	var err error
	patternCache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 14,
		MaxCost:     1 << 12,
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Errorf("couldn't initialize pattern cache: %w", err))
	}
}

// compilePattern compiles a LIKE, ILIKE or regular expression pattern, reusing earlier compilations.
func compilePattern(pattern string, like, caseInsensitive bool) (*regexp.Regexp, error) {
	key := fmt.Sprintf("%t/%t/%s", like, caseInsensitive, pattern)
	if out, ok := patternCache.Get(key); ok {
		return out.(*regexp.Regexp), nil
	}

	var re *regexp.Regexp
	var err error
	if like {
		re, err = likeToRegexp(pattern, caseInsensitive)
	} else {
		re, err = regexp.Compile(pattern)
	}
	if err != nil {
		return nil, err
	}
	patternCache.Set(key, re, 1)

	return re, nil
}

// likeToRegexp translates a SQL LIKE pattern into an anchored regular expression.
// % matches any sequence, _ matches a single character and \ escapes the next character.
func likeToRegexp(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	var builder strings.Builder
	if caseInsensitive {
		builder.WriteString("(?is)^")
	} else {
		builder.WriteString("(?s)^")
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '%':
			builder.WriteString(".*")
		case '_':
			builder.WriteString(".")
		case '\\':
			if i+1 < len(runes) {
				i++
			}
			builder.WriteString(regexp.QuoteMeta(string(runes[i])))
		default:
			builder.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}
	builder.WriteString("$")

	return regexp.Compile(builder.String())
}
