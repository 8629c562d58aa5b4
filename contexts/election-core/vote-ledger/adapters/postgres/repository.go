package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-core/vote-ledger/domain/errors"
	"ballotcore/contexts/election-core/vote-ledger/ports"
	registryentities "ballotcore/contexts/election-core/voter-registry/domain/entities"
	"ballotcore/internal/shared/record"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

// ApplyCastVote commits the ledger row and its side effects in one
// transaction. The unique index on (election_id, voter_registry_id) resolves
// the concurrent-duplicate race: the loser's insert fails with 23505 and the
// whole transaction rolls back.
func (r *Repository) ApplyCastVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}

		markUsed := tx.Table("voter_registry_entries").
			Where("id = ? AND used = ?", row.VoterRegistryID, false).
			Updates(map[string]any{
				"used":       true,
				"voted_at":   row.CastAt,
				"version":    gorm.Expr("version + 1"),
				"updated_at": row.CastAt,
			})
		if markUsed.Error != nil {
			return markUsed.Error
		}
		if markUsed.RowsAffected == 0 {
			return domainerrors.ErrAlreadyVoted
		}

		tally := tx.Table("candidates").
			Where("id = ?", row.CandidateID).
			Updates(map[string]any{
				"vote_count": gorm.Expr("vote_count + 1"),
				"version":    gorm.Expr("version + 1"),
				"updated_at": row.CastAt,
			})
		if tally.Error != nil {
			return tally.Error
		}
		if tally.RowsAffected == 0 {
			return domainerrors.ErrCandidateNotFound
		}

		var votes int64
		if err := tx.Model(&voteModel{}).
			Where("election_id = ?", row.ElectionID).
			Count(&votes).Error; err != nil {
			return err
		}
		var totalVoters int
		if err := tx.Table("elections").
			Select("total_voters").
			Where("id = ?", row.ElectionID).
			Scan(&totalVoters).Error; err != nil {
			return err
		}
		if totalVoters > 0 {
			turnout := int(float64(votes)/float64(totalVoters)*100 + 0.5)
			if err := tx.Table("elections").
				Where("id = ?", row.ElectionID).
				Updates(map[string]any{
					"voter_turnout": turnout,
					"version":       gorm.Expr("version + 1"),
					"updated_at":    row.CastAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) || errors.Is(err, domainerrors.ErrCandidateNotFound) {
			return err
		}
		return r.logError("ledger_repo_apply_cast_vote_failed", err,
			"vote_id", row.ID,
			"election_id", row.ElectionID,
		)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, voteID string) (entities.Vote, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, domainerrors.ErrVoteNotFound
		}
		return entities.Vote{}, r.logError("ledger_repo_get_vote_failed", err,
			"vote_id", strings.TrimSpace(voteID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListVotesByElection(ctx context.Context, electionID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_by_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return toEntities(rows), nil
}

func (r *Repository) ListVotesByVoter(ctx context.Context, voterRegistryID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("voter_registry_id = ?", strings.TrimSpace(voterRegistryID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_by_voter_failed", err,
			"voter_registry_id", strings.TrimSpace(voterRegistryID),
		)
	}
	return toEntities(rows), nil
}

func (r *Repository) HasVoted(ctx context.Context, electionID, voterRegistryID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("election_id = ? AND voter_registry_id = ?",
			strings.TrimSpace(electionID), strings.TrimSpace(voterRegistryID)).
		Count(&count).Error; err != nil {
		return false, r.logError("ledger_repo_has_voted_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return count > 0, nil
}

func (r *Repository) CountVotesByElection(ctx context.Context, electionID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_by_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return int(count), nil
}

func (r *Repository) CountVotesByCandidate(ctx context.Context, candidateID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("candidate_id = ?", strings.TrimSpace(candidateID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_by_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return int(count), nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (ports.ElectionProjection, bool, error) {
	var row electionProjectionRow
	err := r.db.WithContext(ctx).
		Table("elections").
		Select("id", "organization_id", "status", "start_time", "end_time", "total_voters", "allow_write_in").
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ElectionProjection{}, false, nil
		}
		return ports.ElectionProjection{}, false, r.logError("ledger_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return ports.ElectionProjection{
		ElectionID:     row.ID,
		OrganizationID: row.OrganizationID,
		Status:         row.Status,
		StartTime:      row.StartTime.UTC(),
		EndTime:        row.EndTime.UTC(),
		TotalVoters:    row.TotalVoters,
		AllowWriteIn:   row.AllowWriteIn,
	}, true, nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (ports.CandidateProjection, bool, error) {
	var row candidateProjectionRow
	err := r.db.WithContext(ctx).
		Table("candidates").
		Select("id", "election_id", "active", "write_in").
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CandidateProjection{}, false, nil
		}
		return ports.CandidateProjection{}, false, r.logError("ledger_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return ports.CandidateProjection{
		CandidateID: row.ID,
		ElectionID:  row.ElectionID,
		Active:      row.Active,
		WriteIn:     row.WriteIn,
	}, true, nil
}

func (r *Repository) GetVoter(ctx context.Context, voterRegistryID string) (ports.VoterProjection, bool, error) {
	var row voterProjectionRow
	err := r.db.WithContext(ctx).
		Table("voter_registry_entries").
		Select("id", "organization_id", "used", "verification_attempts").
		Where("id = ?", strings.TrimSpace(voterRegistryID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.VoterProjection{}, false, nil
		}
		return ports.VoterProjection{}, false, r.logError("ledger_repo_get_voter_failed", err,
			"voter_registry_id", strings.TrimSpace(voterRegistryID),
		)
	}
	return ports.VoterProjection{
		VoterRegistryID: row.ID,
		OrganizationID:  row.OrganizationID,
		Used:            row.Used,
		Locked:          row.VerificationAttempts >= registryentities.LockoutThreshold,
	}, true, nil
}

func (r *Repository) HasActivePolicy(ctx context.Context, organizationID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("identity_policies").
		Where("organization_id = ? AND active = ?", strings.TrimSpace(organizationID), true).
		Count(&count).Error; err != nil {
		return false, r.logError("ledger_repo_has_active_policy_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	return count > 0, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/vote-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("vote ledger repository operation failed", fields...)
	return err
}

type voteModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	ElectionID         string    `gorm:"column:election_id;uniqueIndex:idx_votes_election_voter;index:idx_votes_election"`
	CandidateID        string    `gorm:"column:candidate_id;index:idx_votes_candidate"`
	VoterRegistryID    string    `gorm:"column:voter_registry_id;uniqueIndex:idx_votes_election_voter"`
	CastAt             time.Time `gorm:"column:cast_at"`
	IPAddress          string    `gorm:"column:ip_address"`
	UserAgent          string    `gorm:"column:user_agent"`
	Anonymous          bool      `gorm:"column:anonymous"`
	WriteInName        string    `gorm:"column:write_in_name"`
	VerificationMethod string    `gorm:"column:verification_method"`
	Version            int64     `gorm:"column:version"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

type electionProjectionRow struct {
	ID             string    `gorm:"column:id"`
	OrganizationID string    `gorm:"column:organization_id"`
	Status         string    `gorm:"column:status"`
	StartTime      time.Time `gorm:"column:start_time"`
	EndTime        time.Time `gorm:"column:end_time"`
	TotalVoters    int       `gorm:"column:total_voters"`
	AllowWriteIn   bool      `gorm:"column:allow_write_in"`
}

type candidateProjectionRow struct {
	ID         string `gorm:"column:id"`
	ElectionID string `gorm:"column:election_id"`
	Active     bool   `gorm:"column:active"`
	WriteIn    bool   `gorm:"column:write_in"`
}

type voterProjectionRow struct {
	ID                   string `gorm:"column:id"`
	OrganizationID       string `gorm:"column:organization_id"`
	Used                 bool   `gorm:"column:used"`
	VerificationAttempts int    `gorm:"column:verification_attempts"`
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:                 strings.TrimSpace(vote.ID),
		ElectionID:         strings.TrimSpace(vote.ElectionID),
		CandidateID:        strings.TrimSpace(vote.CandidateID),
		VoterRegistryID:    strings.TrimSpace(vote.VoterRegistryID),
		CastAt:             vote.CastAt.UTC(),
		IPAddress:          strings.TrimSpace(vote.IPAddress),
		UserAgent:          strings.TrimSpace(vote.UserAgent),
		Anonymous:          vote.Anonymous,
		WriteInName:        strings.TrimSpace(vote.WriteInName),
		VerificationMethod: strings.TrimSpace(vote.VerificationMethod),
		Version:            vote.Version,
		CreatedAt:          vote.CreatedAt.UTC(),
		UpdatedAt:          vote.UpdatedAt.UTC(),
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = row.CastAt
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		Record: record.Record{
			ID:        m.ID,
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
			Version:   m.Version,
		},
		ElectionID:         m.ElectionID,
		CandidateID:        m.CandidateID,
		VoterRegistryID:    m.VoterRegistryID,
		CastAt:             m.CastAt.UTC(),
		IPAddress:          m.IPAddress,
		UserAgent:          m.UserAgent,
		Anonymous:          m.Anonymous,
		WriteInName:        m.WriteInName,
		VerificationMethod: m.VerificationMethod,
	}
}

func toEntities(rows []voteModel) []entities.Vote {
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.ElectionDirectory = (*Repository)(nil)
var _ ports.VoterDirectory = (*Repository)(nil)
var _ ports.PolicyDirectory = (*Repository)(nil)
