package ingest

import "strings"

// columnSpec describes how to locate one logical column. Resolution walks an
// ordered list of strategies: the canonical header first, then each alias,
// then the positional fallback. The first strategy that matches wins; there
// is no ad hoc branching beyond this list.
type columnSpec struct {
	// Key names the logical column in logs and adapter output.
	Key string
	// Canonical is the preferred header, as written by the exporter.
	Canonical string
	// Aliases are accepted alternative headers, in preference order.
	Aliases []string
	// Position is the zero-based fallback index for headerless sources,
	// or -1 when no positional fallback applies.
	Position int
	// Required marks columns without which a source is unusable.
	Required bool
}

// The expected Match History layout. Canonical names match the export
// sheet; snake_case aliases match the raw crawl field names.
var matchHistoryColumns = []columnSpec{
	{
		Key:       "rating_before",
		Canonical: "Player Rating Before",
		Aliases:   []string{"player_team_rating_before", "rating_before"},
		Position:  0,
		Required:  true,
	},
	{
		Key:       "opponent_rating_before",
		Canonical: "Opponent Rating Before",
		Aliases:   []string{"opponent_team_rating_before", "opponent_rating_before"},
		Position:  1,
		Required:  true,
	},
	{
		Key:       "result",
		Canonical: "Result",
		Aliases:   []string{"result", "player_team_winner"},
		Position:  2,
		Required:  true,
	},
	{
		Key:       "rating_after",
		Canonical: "Player Rating After",
		Aliases:   []string{"player_team_rating_after", "rating_after"},
		Position:  -1,
		Required:  false,
	},
}

// resolvedColumn records where a logical column was found and which
// strategy located it.
type resolvedColumn struct {
	Index int
	Via   string // "canonical", "alias", or "position"
}

// resolve locates spec within headers. A miss on every strategy returns
// ok=false; callers decide whether that is fatal (required columns) or not.
func (spec columnSpec) resolve(headers []string) (resolvedColumn, bool) {
	for i, header := range headers {
		if normalizeHeader(header) == normalizeHeader(spec.Canonical) {
			return resolvedColumn{Index: i, Via: "canonical"}, true
		}
	}
	for _, alias := range spec.Aliases {
		for i, header := range headers {
			if normalizeHeader(header) == normalizeHeader(alias) {
				return resolvedColumn{Index: i, Via: "alias"}, true
			}
		}
	}
	if spec.Position >= 0 && (len(headers) == 0 || spec.Position < len(headers)) {
		return resolvedColumn{Index: spec.Position, Via: "position"}, true
	}
	return resolvedColumn{}, false
}

// normalizeHeader folds case and separator differences so
// "Player Rating Before" and "player_rating_before" compare equal.
func normalizeHeader(header string) string {
	header = strings.TrimSpace(strings.ToLower(header))
	header = strings.ReplaceAll(header, " ", "_")
	return header
}
