package layout

import (
	"regexp"
	"strings"
)

// ============================================================
// Brief notes parser
// ============================================================

type Relation struct {
	A, B     int  // индексы помещений
	Attract  bool // near / away from
	Clause   string
	Resolved bool
}

type Orientation struct {
	Room      int
	Direction string // north, north-east, ...
	Clause    string
	Resolved  bool
}

var (
	clauseSplit   = regexp.MustCompile(`[;,\n]+`)
	adjacencyRe   = regexp.MustCompile(`(?i)^(.+?)\s+(near|next to|adjacent to|close to|beside|along with|away from|far from|not near|separate from)\s+(.+?)\.?$`)
	orientationRe = regexp.MustCompile(`(?i)^(.+?)\s+(?:should\s+)?(?:to\s+)?(?:face|faces|facing|be in|in|on|at|toward|towards)\s+(?:the\s+)?(north[\s-]?east|north[\s-]?west|south[\s-]?east|south[\s-]?west|north|south|east|west)\b`)
)

func splitClauses(notes string) []string {
	var out []string
	for _, c := range clauseSplit.Split(notes, -1) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ParseAdjacency разбирает "Kitchen near Dining; Bedroom away from Living".
// Нераспознанные предложения возвращаются с Resolved=false.
func ParseAdjacency(notes string, names []string) []Relation {
	var out []Relation
	for _, clause := range splitClauses(notes) {
		m := adjacencyRe.FindStringSubmatch(clause)
		if m == nil {
			out = append(out, Relation{A: -1, B: -1, Clause: clause})
			continue
		}

		verb := strings.ToLower(m[2])
		rel := Relation{
			A:       MatchName(names, m[1]),
			B:       MatchName(names, m[3]),
			Attract: !(verb == "away from" || verb == "far from" || verb == "not near" || verb == "separate from"),
			Clause:  clause,
		}
		rel.Resolved = rel.A >= 0 && rel.B >= 0 && rel.A != rel.B
		out = append(out, rel)
	}
	return out
}

// ParseOrientation разбирает "Living to face North".
func ParseOrientation(notes string, names []string) []Orientation {
	var out []Orientation
	for _, clause := range splitClauses(notes) {
		m := orientationRe.FindStringSubmatch(clause)
		if m == nil {
			out = append(out, Orientation{Room: -1, Clause: clause})
			continue
		}
		o := Orientation{
			Room:      MatchName(names, m[1]),
			Direction: normalizeDirection(m[2]),
			Clause:    clause,
		}
		o.Resolved = o.Room >= 0
		out = append(out, o)
	}
	return out
}

func normalizeDirection(d string) string {
	d = strings.ToLower(d)
	d = strings.Join(strings.Fields(strings.ReplaceAll(d, "-", " ")), "-")
	switch d {
	case "northeast":
		return "north-east"
	case "northwest":
		return "north-west"
	case "southeast":
		return "south-east"
	case "southwest":
		return "south-west"
	}
	return d
}

// Faces сообщает, лежит ли зона в заданном направлении:
// north покрывает north-west, north и north-east.
func Faces(zone, direction string) bool {
	if zone == direction {
		return true
	}
	if strings.Contains(direction, "-") {
		return false
	}
	for _, part := range strings.Split(zone, "-") {
		if part == direction {
			return true
		}
	}
	return false
}
