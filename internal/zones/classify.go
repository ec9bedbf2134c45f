package zones

import (
	"strings"

	"kampalabites/internal/structs"
)

// Classifier decides whether a candidate's textual name denotes a known zone.
// Proximity never plays a part here: a place 2 km from a centroid can still sit
// outside the real service boundary, so only name/alias evidence counts.
type Classifier struct {
	reg *Registry
}

func NewClassifier(reg *Registry) *Classifier {
	return &Classifier{reg: reg}
}

// ZoneMatch pairs a matched zone with the confidence of the match.
type ZoneMatch struct {
	Zone       structs.DeliveryZone
	Confidence structs.Confidence
}

// Match returns the first zone, in registry order, whose name or aliases the
// candidate name denotes. Confidence is "exact" only for a full lowercased
// match on the canonical name; prefix, first-token and alias hits all report
// "alias".
func (c *Classifier) Match(name string) (ZoneMatch, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ZoneMatch{}, false
	}

	for _, z := range c.reg.zones {
		zoneName := strings.ToLower(z.Name)
		if n == zoneName {
			return ZoneMatch{Zone: z, Confidence: structs.ConfidenceExact}, true
		}
		if denotes(n, zoneName) {
			return ZoneMatch{Zone: z, Confidence: structs.ConfidenceAlias}, true
		}
		for _, alias := range c.reg.aliases[z.Name] {
			if n == alias || denotes(n, alias) {
				return ZoneMatch{Zone: z, Confidence: structs.ConfidenceAlias}, true
			}
		}
	}
	return ZoneMatch{}, false
}

// Matches returns every zone the name denotes, in registry order. Used by the
// session to surface locally-known zones even when the geocoder is down.
func (c *Classifier) Matches(name string) []ZoneMatch {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return nil
	}

	var out []ZoneMatch
	for _, z := range c.reg.zones {
		zoneName := strings.ToLower(z.Name)
		switch {
		case n == zoneName:
			out = append(out, ZoneMatch{Zone: z, Confidence: structs.ConfidenceExact})
		case denotes(n, zoneName):
			out = append(out, ZoneMatch{Zone: z, Confidence: structs.ConfidenceAlias})
		default:
			for _, alias := range c.reg.aliases[z.Name] {
				if n == alias || denotes(n, alias) {
					out = append(out, ZoneMatch{Zone: z, Confidence: structs.ConfidenceAlias})
					break
				}
			}
		}
	}
	return out
}

// denotes applies the prefix and first-token rules: the candidate starts with
// "{target} " or "{target}," or its first whitespace/comma-delimited token
// equals the target.
func denotes(candidate, target string) bool {
	if strings.HasPrefix(candidate, target+" ") || strings.HasPrefix(candidate, target+",") {
		return true
	}
	return firstToken(candidate) == target
}

func firstToken(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
