package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ballotcore/contexts/election-core/turnout-reports/domain/entities"
	"ballotcore/contexts/election-core/turnout-reports/ports"
	registryentities "ballotcore/contexts/election-core/voter-registry/domain/entities"

	"gorm.io/gorm"
)

// Source reads the live election, candidate, vote and registry tables. It
// owns no tables of its own and never writes.
type Source struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewSource(db *gorm.DB, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		db:     db,
		logger: logger,
	}
}

func (s *Source) GetElectionFacts(ctx context.Context, electionID string) (ports.ElectionFacts, bool, error) {
	var row electionFactsRow
	err := s.db.WithContext(ctx).
		Table("elections").
		Select("id", "organization_id", "title", "status", "total_voters", "results_published").
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ElectionFacts{}, false, nil
		}
		return ports.ElectionFacts{}, false, s.logError("reports_source_election_facts_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return ports.ElectionFacts{
		ElectionID:       row.ID,
		OrganizationID:   row.OrganizationID,
		Title:            row.Title,
		Status:           row.Status,
		TotalVoters:      row.TotalVoters,
		ResultsPublished: row.ResultsPublished,
	}, true, nil
}

func (s *Source) ListCandidateTallies(ctx context.Context, electionID string) ([]entities.CandidateTally, error) {
	var rows []candidateTallyRow
	if err := s.db.WithContext(ctx).
		Table("candidates").
		Select("id", "name", "position", "active", "write_in", "vote_count").
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, s.logError("reports_source_candidate_tallies_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	tallies := make([]entities.CandidateTally, 0, len(rows))
	for _, row := range rows {
		tallies = append(tallies, entities.CandidateTally{
			CandidateID: row.ID,
			Name:        row.Name,
			Position:    row.Position,
			Active:      row.Active,
			WriteIn:     row.WriteIn,
			VoteCount:   row.VoteCount,
		})
	}
	return tallies, nil
}

func (s *Source) CountVotesByElection(ctx context.Context, electionID string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Table("votes").
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Count(&count).Error; err != nil {
		return 0, s.logError("reports_source_count_votes_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return int(count), nil
}

func (s *Source) GetRegistryFacts(ctx context.Context, organizationID string) (ports.RegistryFacts, error) {
	organizationID = strings.TrimSpace(organizationID)
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).
			Table("voter_registry_entries").
			Where("organization_id = ?", organizationID)
	}

	var total, voted, locked int64
	if err := base().Count(&total).Error; err != nil {
		return ports.RegistryFacts{}, s.logError("reports_source_registry_total_failed", err,
			"organization_id", organizationID,
		)
	}
	if err := base().Where("used = ?", true).Count(&voted).Error; err != nil {
		return ports.RegistryFacts{}, s.logError("reports_source_registry_voted_failed", err,
			"organization_id", organizationID,
		)
	}
	if err := base().Where("verification_attempts >= ?", registryentities.LockoutThreshold).Count(&locked).Error; err != nil {
		return ports.RegistryFacts{}, s.logError("reports_source_registry_locked_failed", err,
			"organization_id", organizationID,
		)
	}
	return ports.RegistryFacts{
		TotalVoters:  int(total),
		VotedCount:   int(voted),
		LockedVoters: int(locked),
	}, nil
}

func (s *Source) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/turnout-reports",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("report source operation failed", fields...)
	return err
}

type electionFactsRow struct {
	ID               string `gorm:"column:id"`
	OrganizationID   string `gorm:"column:organization_id"`
	Title            string `gorm:"column:title"`
	Status           string `gorm:"column:status"`
	TotalVoters      int    `gorm:"column:total_voters"`
	ResultsPublished bool   `gorm:"column:results_published"`
}

type candidateTallyRow struct {
	ID        string `gorm:"column:id"`
	Name      string `gorm:"column:name"`
	Position  string `gorm:"column:position"`
	Active    bool   `gorm:"column:active"`
	WriteIn   bool   `gorm:"column:write_in"`
	VoteCount int    `gorm:"column:vote_count"`
}

var _ ports.ReportSource = (*Source)(nil)
