package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/config"
	"github.com/yourusername/dupr-insight/internal/dupr"
	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/models"
	"github.com/yourusername/dupr-insight/internal/repository"
)

// CrawlService walks one club through the DUPR API: member listing, detailed
// profiles, then per-player match history. Crawl limits come from config so a
// large club cannot run unbounded.
type CrawlService struct {
	client *dupr.Client
	cfg    *config.CrawlConfig
	repo   repository.CrawlRepository
	logger *logrus.Logger
}

// NewCrawlService creates a crawl service. repo may be nil when persistence
// is disabled.
func NewCrawlService(
	client *dupr.Client,
	cfg *config.CrawlConfig,
	repo repository.CrawlRepository,
	logger *logrus.Logger,
) *CrawlService {
	if logger == nil {
		logger = logrus.New()
	}
	return &CrawlService{
		client: client,
		cfg:    cfg,
		repo:   repo,
		logger: logger,
	}
}

// CrawlClub runs the full crawl for the configured club. It returns the
// snapshot plus the player order used, so exports stay stable across runs.
// Cancelling ctx stops the crawl at the next player boundary; whatever was
// collected so far is still returned.
func (s *CrawlService) CrawlClub(ctx context.Context) (*models.ClubData, []string, error) {
	start := time.Now()
	clubID := s.cfg.ClubID

	s.logger.WithField("club_id", clubID).Info("Starting club crawl")

	if err := s.client.RefreshSession(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	members, err := s.client.GetMembersByClub(ctx, clubID, s.cfg.MaxMembers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to crawl club %s: %w", clubID, err)
	}
	if len(members) == 0 {
		return nil, nil, fmt.Errorf("club %s has no members: %w", clubID, models.ErrEmptyDataset)
	}

	data := &models.ClubData{
		Club: models.ClubInfo{
			ID:           clubID,
			Name:         members[0].ClubName,
			TotalMembers: len(members),
			CrawledAt:    time.Now().UTC(),
		},
		Members:      members,
		MatchHistory: make(map[string][]models.MatchRow),
	}

	s.crawlProfiles(ctx, data)
	playerOrder := s.crawlHistories(ctx, data)

	data.Club.ScrapedMatches = 0
	for _, rows := range data.MatchHistory {
		data.Club.ScrapedMatches += len(rows)
	}

	if s.repo != nil {
		if err := s.repo.SaveSnapshot(ctx, data); err != nil {
			s.logger.WithError(err).Warn("Failed to persist crawl snapshot")
		}
	}

	elapsed := time.Since(start)
	metrics.RecordCrawl(elapsed.Seconds())
	s.logger.WithFields(logrus.Fields{
		"club_id":  clubID,
		"members":  len(data.Members),
		"profiles": len(data.Profiles),
		"matches":  data.Club.ScrapedMatches,
		"duration": elapsed.Round(time.Second),
	}).Info("Club crawl complete")

	return data, playerOrder, ctx.Err()
}

// crawlProfiles fetches detailed profiles for every member. Profile failures
// are logged and skipped; the listing entry already covers the basics.
func (s *CrawlService) crawlProfiles(ctx context.Context, data *models.ClubData) {
	for _, member := range data.Members {
		if ctx.Err() != nil {
			s.logger.Info("Crawl cancelled during profile fetch")
			return
		}

		profile, err := s.client.GetPlayer(ctx, member.ID)
		if err != nil {
			s.logger.WithError(err).WithField("player_id", member.ID).
				Warn("Failed to fetch player profile")
			continue
		}
		// Carry the listing fields the player endpoint does not repeat.
		profile.Gender = member.Gender
		profile.Age = member.Age
		profile.ShortAddress = member.ShortAddress
		profile.ClubName = member.ClubName
		data.Profiles = append(data.Profiles, *profile)
	}
}

// crawlHistories fetches match history for the first HistoryPlayers members
// and returns the player order crawled.
func (s *CrawlService) crawlHistories(ctx context.Context, data *models.ClubData) []string {
	limit := s.cfg.HistoryPlayers
	if limit > len(data.Members) {
		limit = len(data.Members)
	}

	playerOrder := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			s.logger.Info("Crawl cancelled during history fetch")
			break
		}

		playerID := data.Members[i].ID
		s.logger.WithFields(logrus.Fields{
			"player_id": playerID,
			"progress":  fmt.Sprintf("%d/%d", i+1, limit),
		}).Info("Fetching match history")

		matches, err := s.client.GetMatchHistory(ctx, playerID, s.cfg.MatchesPerPlayer, s.cfg.MatchesPerPlayer)
		if err != nil {
			s.logger.WithError(err).WithField("player_id", playerID).
				Warn("Failed to fetch match history")
			continue
		}

		rows := make([]models.MatchRow, 0, len(matches))
		for _, match := range matches {
			if row, ok := match.Flatten(playerID); ok {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			data.MatchHistory[playerID] = rows
			playerOrder = append(playerOrder, playerID)
		}
	}
	return playerOrder
}
