package dupr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/dupr-insight/internal/models"
)

// historyAuthRetries bounds how many token refreshes one player's history
// crawl may trigger before giving up on that player.
const historyAuthRetries = 3

// TeamPlayer is one player slot on a match team.
type TeamPlayer struct {
	ID              json.Number `json:"id"`
	FullName        string      `json:"fullName"`
	DuprID          string      `json:"duprId"`
	PostMatchRating struct {
		Singles FlexFloat `json:"singles"`
		Doubles FlexFloat `json:"doubles"`
	} `json:"postMatchRating"`
}

// Team is one side of a match.
type Team struct {
	ID      json.Number `json:"id"`
	Winner  bool        `json:"winner"`
	Game1   int         `json:"game1"`
	Game2   int         `json:"game2"`
	Game3   int         `json:"game3"`
	Player1 *TeamPlayer `json:"player1"`
	Player2 *TeamPlayer `json:"player2"`
	// PreMatchRatingAndImpact carries keys like preMatchSingleRatingPlayer1;
	// which one applies depends on the event format.
	PreMatchRatingAndImpact map[string]FlexFloat `json:"preMatchRatingAndImpact"`
}

// Match is one historical match as returned by the history endpoint.
type Match struct {
	ID          json.Number     `json:"id"`
	EventName   string          `json:"eventName"`
	EventDate   string          `json:"eventDate"`
	EventFormat string          `json:"eventFormat"`
	League      string          `json:"league"`
	Tournament  string          `json:"tournament"`
	ScoreFormat json.RawMessage `json:"scoreFormat"`
	Confirmed   bool            `json:"confirmed"`
	Teams       []Team          `json:"teams"`
}

type historyRequest struct {
	Filters map[string]interface{} `json:"filters"`
	Sort    historySort            `json:"sort"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

type historySort struct {
	Order     string `json:"order"`
	Parameter string `json:"parameter"`
}

// GetMatchHistory pages through a player's match history, newest first,
// stopping at maxMatches (0 means no cap). Auth failures are retried up to
// historyAuthRetries times; other errors abort the player.
func (c *Client) GetMatchHistory(ctx context.Context, playerID string, pageSize, maxMatches int) ([]Match, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	var matches []Match
	offset := 0
	authRetries := 0

	for {
		if err := ctx.Err(); err != nil {
			return matches, err
		}

		result, err := c.post(ctx, fmt.Sprintf("/player/v1.0/%s/history", playerID), historyRequest{
			Filters: map[string]interface{}{},
			Sort:    historySort{Order: "DESC", Parameter: "MATCH_DATE"},
			Limit:   pageSize,
			Offset:  offset,
		}, "get_member_match_history")
		if err != nil {
			var authErr *AuthenticationError
			if errors.As(err, &authErr) && authRetries < historyAuthRetries {
				authRetries++
				c.logger.WithField("player_id", playerID).
					WithField("attempt", authRetries).
					Warn("History request rejected, retrying after refresh")
				continue
			}
			return nil, fmt.Errorf("failed to fetch history for player %s: %w", playerID, err)
		}

		next, hits, err := handlePaging(result)
		if err != nil {
			return nil, fmt.Errorf("failed to page history for player %s: %w", playerID, err)
		}

		var pageMatches []Match
		if len(hits) > 0 {
			if err := json.Unmarshal(hits, &pageMatches); err != nil {
				return nil, fmt.Errorf("failed to decode history page: %w", err)
			}
		}
		if len(pageMatches) == 0 {
			break
		}

		matches = append(matches, pageMatches...)
		if maxMatches > 0 && len(matches) >= maxMatches {
			return matches[:maxMatches], nil
		}

		if next == nil {
			break
		}
		offset = *next
	}

	return matches, nil
}

// ScoreFormatLabel extracts a readable label from the score format field,
// which the API serves either as a string or as an object with a format key.
func (m Match) ScoreFormatLabel() string {
	if len(m.ScoreFormat) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.ScoreFormat, &s); err == nil {
		return s
	}
	var obj struct {
		Format string `json:"format"`
	}
	if err := json.Unmarshal(m.ScoreFormat, &obj); err == nil {
		return obj.Format
	}
	return ""
}

// Flatten reduces the match to the given player's perspective. ok is false
// when the player is on neither team or a side is missing.
func (m Match) Flatten(playerID string) (models.MatchRow, bool) {
	var playerTeam, opponentTeam *Team
	for i := range m.Teams {
		team := &m.Teams[i]
		if teamHasPlayer(team, playerID) {
			playerTeam = team
		} else {
			opponentTeam = team
		}
	}
	if playerTeam == nil || opponentTeam == nil {
		return models.MatchRow{}, false
	}

	doubles := m.EventFormat == "DOUBLES"

	row := models.MatchRow{
		PlayerID:       playerID,
		MatchID:        m.ID.String(),
		EventName:      m.EventName,
		EventDate:      m.EventDate,
		EventFormat:    m.EventFormat,
		League:         m.League,
		Tournament:     m.Tournament,
		ScoreFormat:    m.ScoreFormatLabel(),
		Confirmed:      m.Confirmed,
		Player1Name:    playerName(playerTeam.Player1),
		Player2Name:    playerName(playerTeam.Player2),
		Opponent1Name:  playerName(opponentTeam.Player1),
		Opponent2Name:  playerName(opponentTeam.Player2),
		RatingBefore:   teamRatingBefore(playerTeam, doubles),
		RatingAfter:    teamRatingAfter(playerTeam, doubles),
		OpponentBefore: teamRatingBefore(opponentTeam, doubles),
		OpponentAfter:  teamRatingAfter(opponentTeam, doubles),
	}

	if playerTeam.Winner {
		row.Result = "Win"
	} else {
		row.Result = "Loss"
	}

	row.PlayerGames, row.OpponentGames, row.ScoreSummary = summariseGames(playerTeam, opponentTeam)
	return row, true
}

func teamHasPlayer(team *Team, playerID string) bool {
	if team.Player1 != nil && team.Player1.ID.String() == playerID {
		return true
	}
	if team.Player2 != nil && team.Player2.ID.String() == playerID {
		return true
	}
	return false
}

func playerName(p *TeamPlayer) string {
	if p == nil {
		return ""
	}
	return p.FullName
}

// teamRatingBefore reads the pre-match team rating for the relevant
// discipline from the impact map.
func teamRatingBefore(team *Team, doubles bool) *float64 {
	key := "preMatchSingleRatingPlayer1"
	if doubles {
		key = "preMatchDoubleRatingPlayer1"
	}
	if v, ok := team.PreMatchRatingAndImpact[key]; ok {
		return v.Value
	}
	return nil
}

// teamRatingAfter reads player1's post-match rating for the relevant
// discipline.
func teamRatingAfter(team *Team, doubles bool) *float64 {
	if team.Player1 == nil {
		return nil
	}
	if doubles {
		return team.Player1.PostMatchRating.Doubles.Value
	}
	return team.Player1.PostMatchRating.Singles.Value
}

// summariseGames collects the per-game scores, skipping unplayed games
// (reported as -1), and renders the "11-9, 7-11" display string.
func summariseGames(playerTeam, opponentTeam *Team) ([]int, []int, string) {
	playerScores := []int{playerTeam.Game1, playerTeam.Game2, playerTeam.Game3}
	opponentScores := []int{opponentTeam.Game1, opponentTeam.Game2, opponentTeam.Game3}

	var playerGames, opponentGames []int
	var parts []string
	for i := range playerScores {
		if playerScores[i] < 0 || opponentScores[i] < 0 {
			continue
		}
		playerGames = append(playerGames, playerScores[i])
		opponentGames = append(opponentGames, opponentScores[i])
		parts = append(parts, fmt.Sprintf("%d-%d", playerScores[i], opponentScores[i]))
	}
	return playerGames, opponentGames, strings.Join(parts, ", ")
}
