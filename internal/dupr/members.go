package dupr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/dupr-insight/internal/models"
)

// membersPageSize is the listing page size the club endpoint accepts.
const membersPageSize = 25

// FlexFloat decodes DUPR rating fields, which arrive either as JSON numbers
// or as display strings such as "4.25" or "NR" (not rated).
type FlexFloat struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		f.Value = nil
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" || strings.EqualFold(s, "NR") || strings.EqualFold(s, "N/A") {
		f.Value = nil
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.Value = nil
		return nil
	}
	f.Value = &v
	return nil
}

// memberRecord is the wire shape of one club member listing entry.
type memberRecord struct {
	ID                 json.Number `json:"id"`
	DuprID             string      `json:"duprId"`
	FullName           string      `json:"fullName"`
	Gender             string      `json:"gender"`
	Age                *int        `json:"age"`
	ShortAddress       string      `json:"shortAddress"`
	ClubName           string      `json:"clubName"`
	Singles            FlexFloat   `json:"singles"`
	Doubles            FlexFloat   `json:"doubles"`
	SinglesVerified    FlexFloat   `json:"singlesVerified"`
	DoublesVerified    FlexFloat   `json:"doublesVerified"`
	SinglesReliability FlexFloat   `json:"singlesReliability"`
	DoublesReliability FlexFloat   `json:"doublesReliability"`
}

func (r memberRecord) toModel() models.Member {
	return models.Member{
		ID:                 r.ID.String(),
		DuprID:             r.DuprID,
		FullName:           r.FullName,
		Gender:             r.Gender,
		Age:                r.Age,
		ShortAddress:       r.ShortAddress,
		ClubName:           r.ClubName,
		Singles:            r.Singles.Value,
		Doubles:            r.Doubles.Value,
		SinglesVerified:    r.SinglesVerified.Value,
		DoublesVerified:    r.DoublesVerified.Value,
		SinglesReliability: r.SinglesReliability.Value,
		DoublesReliability: r.DoublesReliability.Value,
	}
}

type membersRequest struct {
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Query  string `json:"query"`
}

// GetMembersByClub pages through the club member listing, stopping once
// maxMembers have been collected (0 means no cap).
func (c *Client) GetMembersByClub(ctx context.Context, clubID string, maxMembers int) ([]models.Member, error) {
	var members []models.Member
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return members, err
		}

		result, err := c.post(ctx, fmt.Sprintf("/club/%s/members/v1.0/all", clubID), membersRequest{
			Offset: offset,
			Limit:  membersPageSize,
			Query:  "*",
		}, "get_members_by_club")
		if err != nil {
			return nil, fmt.Errorf("failed to list members of club %s: %w", clubID, err)
		}

		next, hits, err := handlePaging(result)
		if err != nil {
			return nil, fmt.Errorf("failed to page members of club %s: %w", clubID, err)
		}

		var records []memberRecord
		if len(hits) > 0 {
			if err := json.Unmarshal(hits, &records); err != nil {
				return nil, fmt.Errorf("failed to decode members page: %w", err)
			}
		}
		if len(records) == 0 {
			break
		}

		for _, rec := range records {
			members = append(members, rec.toModel())
			if maxMembers > 0 && len(members) >= maxMembers {
				return members, nil
			}
		}

		if next == nil {
			break
		}
		offset = *next
	}

	return members, nil
}

// ratingDetail is the per-discipline rating object on the player endpoint.
type ratingDetail struct {
	Display string `json:"display"`
}

// GetPlayer fetches the detailed profile for one player. The display ratings
// are layered on top of the listing fields.
func (c *Client) GetPlayer(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	result, err := c.get(ctx, fmt.Sprintf("/player/v1.0/%s", playerID), "get_player")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player %s: %w", playerID, err)
	}

	var rec struct {
		ID      json.Number `json:"id"`
		DuprID  string      `json:"duprId"`
		Name    string      `json:"fullName"`
		Ratings struct {
			Singles ratingDetail `json:"singles"`
			Doubles ratingDetail `json:"doubles"`
		} `json:"ratings"`
	}
	if err := unmarshalResult(result, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode player %s: %w", playerID, err)
	}

	profile := &models.PlayerProfile{
		SinglesDisplay: displayOrNA(rec.Ratings.Singles.Display),
		DoublesDisplay: displayOrNA(rec.Ratings.Doubles.Display),
	}
	profile.ID = rec.ID.String()
	profile.DuprID = rec.DuprID
	profile.FullName = rec.Name
	return profile, nil
}

func displayOrNA(display string) string {
	if strings.TrimSpace(display) == "" {
		return "N/A"
	}
	return display
}
