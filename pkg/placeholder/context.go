package placeholder

import (
	"regexp"
	"strconv"
)

// Group is one capture group of a match. Matched is false for optional
// groups that did not participate.
type Group struct {
	Value   string
	Matched bool
}

// MatchContext holds everything a template can refer to after a rule
// matched a file name. It is created per match attempt and never shared.
type MatchContext struct {
	Filename  string
	FullMatch string
	// Groups[0] is the full match, Groups[i] the i-th capture group.
	Groups  []Group
	Named   map[string]Group
	Globals map[string]string
}

// NewMatchContext builds a context from the result of
// re.FindStringSubmatchIndex(filename). It returns nil when loc is nil.
func NewMatchContext(re *regexp.Regexp, filename string, loc []int, globals map[string]string) *MatchContext {
	if loc == nil {
		return nil
	}

	mc := &MatchContext{
		Filename: filename,
		Groups:   make([]Group, len(loc)/2),
		Named:    make(map[string]Group),
		Globals:  globals,
	}
	for i := range mc.Groups {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		mc.Groups[i] = Group{Value: filename[start:end], Matched: true}
	}
	mc.FullMatch = mc.Groups[0].Value

	for i, name := range re.SubexpNames() {
		if name != "" && i < len(mc.Groups) {
			mc.Named[name] = mc.Groups[i]
		}
	}
	return mc
}

// Values flattens the context into the key set templates are expanded
// against.
func (mc *MatchContext) Values() map[string]string {
	values := make(map[string]string, len(mc.Groups)+len(mc.Named)+len(mc.Globals)+1)

	for name, g := range mc.Named {
		values[name] = g.Value
	}
	for i, g := range mc.Groups {
		values["re_"+strconv.Itoa(i)] = g.Value
	}
	for key, value := range mc.Globals {
		values[key] = value
	}
	values["filename"] = mc.Filename

	return values
}
