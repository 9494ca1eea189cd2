package models

import "time"

// ClubInfo summarises one crawled club.
type ClubInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TotalMembers   int       `json:"total_members"`
	ScrapedMatches int       `json:"scraped_matches"`
	CrawledAt      time.Time `json:"crawled_at"`
}

// Member is a club member as returned by the members listing.
type Member struct {
	ID                 string   `json:"id"`
	DuprID             string   `json:"dupr_id"`
	FullName           string   `json:"full_name"`
	Gender             string   `json:"gender"`
	Age                *int     `json:"age,omitempty"`
	ShortAddress       string   `json:"short_address"`
	ClubName           string   `json:"club_name"`
	Singles            *float64 `json:"singles,omitempty"`
	Doubles            *float64 `json:"doubles,omitempty"`
	SinglesVerified    *float64 `json:"singles_verified,omitempty"`
	DoublesVerified    *float64 `json:"doubles_verified,omitempty"`
	SinglesReliability *float64 `json:"singles_reliability,omitempty"`
	DoublesReliability *float64 `json:"doubles_reliability,omitempty"`
}

// PlayerProfile is the detailed profile fetched per member, with the
// display ratings from the player endpoint layered on top of the listing.
type PlayerProfile struct {
	Member
	SinglesDisplay string `json:"singles_rating"`
	DoublesDisplay string `json:"doubles_rating"`
}

// MatchRow is one historical match flattened to the subject player's
// perspective. It is the shape written to the Match History sheet and read
// back by the ingestion adapter.
type MatchRow struct {
	PlayerID       string   `json:"player_id"`
	MatchID        string   `json:"match_id"`
	EventName      string   `json:"event_name"`
	EventDate      string   `json:"event_date"`
	EventFormat    string   `json:"event_format"`
	League         string   `json:"league"`
	Tournament     string   `json:"tournament"`
	ScoreFormat    string   `json:"score_format"`
	Result         string   `json:"result"`
	ScoreSummary   string   `json:"score_summary"`
	Confirmed      bool     `json:"confirmed"`
	Player1Name    string   `json:"player1_name"`
	Player2Name    string   `json:"player2_name"`
	Opponent1Name  string   `json:"opponent1_name"`
	Opponent2Name  string   `json:"opponent2_name"`
	PlayerGames    []int    `json:"player_games"`
	OpponentGames  []int    `json:"opponent_games"`
	RatingBefore   *float64 `json:"rating_before,omitempty"`
	RatingAfter    *float64 `json:"rating_after,omitempty"`
	OpponentBefore *float64 `json:"opponent_before,omitempty"`
	OpponentAfter  *float64 `json:"opponent_after,omitempty"`
}

// ClubData is a full crawl snapshot: the club summary plus everything needed
// for export and calibration.
type ClubData struct {
	Club         ClubInfo              `json:"club_info"`
	Members      []Member              `json:"members"`
	Profiles     []PlayerProfile       `json:"player_profiles"`
	MatchHistory map[string][]MatchRow `json:"match_history"`
}

// AllMatches returns every match row across players in a stable order
// (players sorted by crawl insertion is not guaranteed by Go maps, so the
// caller passes the player order used during the crawl).
func (c ClubData) AllMatches(playerOrder []string) []MatchRow {
	rows := make([]MatchRow, 0, c.Club.ScrapedMatches)
	for _, pid := range playerOrder {
		rows = append(rows, c.MatchHistory[pid]...)
	}
	return rows
}
