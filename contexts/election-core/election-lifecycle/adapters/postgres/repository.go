package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	domainerrors "ballotcore/contexts/election-core/election-lifecycle/domain/errors"
	"ballotcore/contexts/election-core/election-lifecycle/ports"
	"ballotcore/internal/shared/record"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("lifecycle_repo_save_election_failed", create.Error,
			"election_id", strings.TrimSpace(election.ID),
			"organization_id", strings.TrimSpace(election.OrganizationID),
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// UpdateElection writes the full row guarded by the previous version, so a
// stale in-memory copy loses the race instead of overwriting a newer state.
func (r *Repository) UpdateElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	result := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ? AND version = ?", row.ID, election.PreviousVersion()).
		Updates(map[string]any{
			"title":               row.Title,
			"description":         row.Description,
			"status":              row.Status,
			"start_time":          row.StartTime,
			"end_time":            row.EndTime,
			"total_voters":        row.TotalVoters,
			"voter_turnout":       row.VoterTurnout,
			"max_votes_per_voter": row.MaxVotesPerVoter,
			"allow_write_in":      row.AllowWriteIn,
			"results_published":   row.ResultsPublished,
			"version":             row.Version,
			"updated_at":          row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_election_failed", result.Error,
			"election_id", row.ID,
		)
	}
	if result.RowsAffected == 0 {
		var existing electionModel
		err := r.db.WithContext(ctx).
			Select("id").
			Where("id = ?", row.ID).
			First(&existing).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrElectionNotFound
		}
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("lifecycle_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListElectionsByOrganization(ctx context.Context, organizationID string, status entities.ElectionStatus) ([]entities.Election, error) {
	tx := r.db.WithContext(ctx).Model(&electionModel{}).
		Where("organization_id = ?", strings.TrimSpace(organizationID))
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	var rows []electionModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_elections_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	return toElectionEntities(rows), nil
}

// TransitionStatus is the sweep primitive: a single conditional UPDATE that
// only fires while the row still holds one of the expected statuses.
func (r *Repository) TransitionStatus(
	ctx context.Context,
	electionID string,
	from []entities.ElectionStatus,
	to entities.ElectionStatus,
	updatedAt time.Time,
) (bool, error) {
	statuses := make([]string, 0, len(from))
	for _, status := range from {
		statuses = append(statuses, string(status))
	}
	result := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ?", strings.TrimSpace(electionID)).
		Where("status IN ?", statuses).
		Updates(map[string]any{
			"status":     string(to),
			"version":    gorm.Expr("version + 1"),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("lifecycle_repo_transition_status_failed", result.Error,
			"election_id", strings.TrimSpace(electionID),
			"to_status", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ListDueForActivation(ctx context.Context, now time.Time) ([]entities.Election, error) {
	var rows []electionModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.ElectionStatusDraft)).
		Where("start_time <= ?", now.UTC()).
		Where("end_time > ?", now.UTC()).
		Order("start_time ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("lifecycle_repo_list_due_activation_failed", err)
	}
	return toElectionEntities(rows), nil
}

func (r *Repository) ListDueForCompletion(ctx context.Context, now time.Time) ([]entities.Election, error) {
	var rows []electionModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(entities.ElectionStatusDraft),
			string(entities.ElectionStatusActive),
		}).
		Where("end_time <= ?", now.UTC()).
		Order("end_time ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("lifecycle_repo_list_due_completion_failed", err)
	}
	return toElectionEntities(rows), nil
}

func (r *Repository) CountVotesByElection(ctx context.Context, electionID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("votes").
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("lifecycle_repo_count_votes_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return int(count), nil
}

// CompleteWithTurnout closes an election and records its turnout in one
// statement; the status predicate keeps it idempotent under concurrent
// manual transitions.
func (r *Repository) CompleteWithTurnout(
	ctx context.Context,
	electionID string,
	from []entities.ElectionStatus,
	turnout int,
	updatedAt time.Time,
) (bool, error) {
	statuses := make([]string, 0, len(from))
	for _, status := range from {
		statuses = append(statuses, string(status))
	}
	result := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ?", strings.TrimSpace(electionID)).
		Where("status IN ?", statuses).
		Updates(map[string]any{
			"status":        string(entities.ElectionStatusCompleted),
			"voter_turnout": turnout,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("lifecycle_repo_complete_with_turnout_failed", result.Error,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("lifecycle_repo_save_candidate_failed", create.Error,
			"candidate_id", strings.TrimSpace(candidate.ID),
			"election_id", strings.TrimSpace(candidate.ElectionID),
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) UpdateCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	result := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"name":       row.Name,
			"position":   row.Position,
			"active":     row.Active,
			"write_in":   row.WriteIn,
			"version":    row.Version,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_candidate_failed", result.Error,
			"candidate_id", row.ID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("lifecycle_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidatesByElection(ctx context.Context, electionID string, activeOnly bool) ([]entities.Candidate, error) {
	tx := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID))
	if activeOnly {
		tx = tx.Where("active = ?", true)
	}
	var rows []candidateModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_candidates_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/election-lifecycle",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("lifecycle repository operation failed", fields...)
	return err
}

type electionModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	OrganizationID   string    `gorm:"column:organization_id;index"`
	Title            string    `gorm:"column:title"`
	Description      string    `gorm:"column:description"`
	Status           string    `gorm:"column:status;index"`
	StartTime        time.Time `gorm:"column:start_time"`
	EndTime          time.Time `gorm:"column:end_time"`
	TotalVoters      int       `gorm:"column:total_voters"`
	VoterTurnout     int       `gorm:"column:voter_turnout"`
	MaxVotesPerVoter int       `gorm:"column:max_votes_per_voter"`
	AllowWriteIn     bool      `gorm:"column:allow_write_in"`
	ResultsPublished bool      `gorm:"column:results_published"`
	Version          int64     `gorm:"column:version"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	row := electionModel{
		ID:               strings.TrimSpace(election.ID),
		OrganizationID:   strings.TrimSpace(election.OrganizationID),
		Title:            strings.TrimSpace(election.Title),
		Description:      strings.TrimSpace(election.Description),
		Status:           string(election.Status),
		StartTime:        election.StartTime.UTC(),
		EndTime:          election.EndTime.UTC(),
		TotalVoters:      election.TotalVoters,
		VoterTurnout:     election.VoterTurnout,
		MaxVotesPerVoter: election.MaxVotesPerVoter,
		AllowWriteIn:     election.AllowWriteIn,
		ResultsPublished: election.ResultsPublished,
		Version:          election.Version,
		CreatedAt:        election.CreatedAt.UTC(),
		UpdatedAt:        election.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		Record: record.Record{
			ID:        m.ID,
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
			Version:   m.Version,
		},
		OrganizationID:   m.OrganizationID,
		Title:            m.Title,
		Description:      m.Description,
		Status:           entities.ElectionStatus(m.Status),
		StartTime:        m.StartTime.UTC(),
		EndTime:          m.EndTime.UTC(),
		TotalVoters:      m.TotalVoters,
		VoterTurnout:     m.VoterTurnout,
		MaxVotesPerVoter: m.MaxVotesPerVoter,
		AllowWriteIn:     m.AllowWriteIn,
		ResultsPublished: m.ResultsPublished,
	}
}

type candidateModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ElectionID string    `gorm:"column:election_id;index"`
	Name       string    `gorm:"column:name"`
	Position   string    `gorm:"column:position"`
	Active     bool      `gorm:"column:active"`
	WriteIn    bool      `gorm:"column:write_in"`
	VoteCount  int       `gorm:"column:vote_count"`
	Version    int64     `gorm:"column:version"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:         strings.TrimSpace(candidate.ID),
		ElectionID: strings.TrimSpace(candidate.ElectionID),
		Name:       strings.TrimSpace(candidate.Name),
		Position:   strings.TrimSpace(candidate.Position),
		Active:     candidate.Active,
		WriteIn:    candidate.WriteIn,
		VoteCount:  candidate.VoteCount,
		Version:    candidate.Version,
		CreatedAt:  candidate.CreatedAt.UTC(),
		UpdatedAt:  candidate.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		Record: record.Record{
			ID:        m.ID,
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
			Version:   m.Version,
		},
		ElectionID: m.ElectionID,
		Name:       m.Name,
		Position:   m.Position,
		Active:     m.Active,
		WriteIn:    m.WriteIn,
		VoteCount:  m.VoteCount,
	}
}

func toElectionEntities(rows []electionModel) []entities.Election {
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.CandidateRepository = (*Repository)(nil)
