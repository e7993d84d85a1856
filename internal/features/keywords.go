package features

import (
	"regexp"
	"sort"
	"strings"
)

// synonymRule adds aliases to every category whose label contains one of the triggers.
type synonymRule struct {
	triggers []string
	aliases  []string
}

var scienceFiction = []string{"science fiction", "sci-fi", "sci fi", "scifi"}

var synonymRules = []synonymRule{
	{triggers: scienceFiction, aliases: scienceFiction},
	{triggers: []string{"romance"}, aliases: []string{"romantic"}},
	{triggers: []string{"thriller"}, aliases: []string{"suspense"}},
	{triggers: []string{"comedy"}, aliases: []string{"funny", "humor"}},
	{triggers: []string{"horror"}, aliases: []string{"scary"}},
	{triggers: []string{"animation"}, aliases: []string{"animated"}},
	{triggers: []string{"biography"}, aliases: []string{"biopic"}},
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Keywords returns the lowercase phrases that select category in free text,
// sorted for stable output.
func Keywords(category string) []string {
	lower := strings.ToLower(category)
	variants := []string{
		lower,
		strings.ReplaceAll(lower, "-", " "),
		strings.ReplaceAll(lower, "&", " and "),
		strings.ReplaceAll(lower, "/", " "),
		whitespaceRe.ReplaceAllString(lower, " "),
	}
	set := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		set[v] = struct{}{}
	}
	for _, rule := range synonymRules {
		if !containsAny(lower, rule.triggers) {
			continue
		}
		for _, alias := range rule.aliases {
			set[alias] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
