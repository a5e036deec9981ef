package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/titanous/json5"
)

// MaxActors caps the cast kept per movie.
const MaxActors = 20

// actorSeparators are tried in priority order.
var actorSeparators = []string{";", ",", "|"}

// DecodeActors normalises the actors field. The first matching shape wins:
//  1. a list ([]string or []any) is used directly
//  2. a string holding a literal list ("['A', 'B']") is parsed
//  3. a string containing ";", then ",", then "|" is split on the first found
//  4. any other string is a single name
//
// Names are trimmed, empties dropped and the result truncated to MaxActors.
func DecodeActors(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		return cleanNames(t)
	case []any:
		return cleanNames(stringify(t))
	case string:
		return decodeActorString(t)
	default:
		return decodeActorString(fmt.Sprint(t))
	}
}

func decodeActorString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []any
		if err := json5.Unmarshal([]byte(trimmed), &list); err == nil {
			return cleanNames(stringify(list))
		}
	}

	for _, sep := range actorSeparators {
		if strings.Contains(trimmed, sep) {
			return cleanNames(strings.Split(trimmed, sep))
		}
	}
	return []string{trimmed}
}

func stringify(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, fmt.Sprint(it))
	}
	return out
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, n)
		if len(out) == MaxActors {
			break
		}
	}
	return out
}

// EncodeActors renders names as a JSON list, a literal-list form that
// DecodeActors reads back from the refined CSV.
func EncodeActors(names []string) string {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return strings.Join(names, ";")
	}
	return string(b)
}
