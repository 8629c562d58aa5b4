package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	domainerrors "ballotcore/contexts/election-core/identity-challenge/domain/errors"
	"ballotcore/contexts/election-core/identity-challenge/ports"
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

func (r *Repository) SavePolicy(ctx context.Context, policy entities.IdentityPolicy) error {
	row := policyModelFromEntity(policy)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("identity_repo_save_policy_failed", create.Error,
			"policy_id", strings.TrimSpace(policy.ID),
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) UpdatePolicy(ctx context.Context, policy entities.IdentityPolicy) error {
	row := policyModelFromEntity(policy)
	result := r.db.WithContext(ctx).
		Model(&policyModel{}).
		Where("id = ? AND version = ?", row.ID, policy.PreviousVersion()).
		Updates(map[string]any{
			"name":               row.Name,
			"description":        row.Description,
			"identifier_fields":  row.IdentifierFields,
			"otp_channel":        row.OTPChannel,
			"locked":             row.Locked,
			"active":             row.Active,
			"otp_expiry_minutes": row.OTPExpiryMinutes,
			"max_otp_attempts":   row.MaxOTPAttempts,
			"code_length":        row.CodeLength,
			"version":            row.Version,
			"updated_at":         row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("identity_repo_update_policy_failed", result.Error, "policy_id", row.ID)
	}
	if result.RowsAffected == 0 {
		var existing policyModel
		err := r.db.WithContext(ctx).
			Select("id").
			Where("id = ?", row.ID).
			First(&existing).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrPolicyNotFound
		}
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) GetPolicy(ctx context.Context, policyID string) (entities.IdentityPolicy, error) {
	var row policyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(policyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.IdentityPolicy{}, domainerrors.ErrPolicyNotFound
		}
		return entities.IdentityPolicy{}, r.logError("identity_repo_get_policy_failed", err,
			"policy_id", strings.TrimSpace(policyID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetActivePolicy(ctx context.Context, organizationID string) (entities.IdentityPolicy, bool, error) {
	var row policyModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Where("active = ?", true).
		Order("updated_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.IdentityPolicy{}, false, nil
		}
		return entities.IdentityPolicy{}, false, r.logError("identity_repo_get_active_policy_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListPoliciesByOrganization(ctx context.Context, organizationID string) ([]entities.IdentityPolicy, error) {
	var rows []policyModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("identity_repo_list_policies_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	items := make([]entities.IdentityPolicy, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ActivateExclusive(ctx context.Context, policyID string, organizationID string, updatedAt time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&policyModel{}).
			Where("organization_id = ?", strings.TrimSpace(organizationID)).
			Where("active = ?", true).
			Updates(map[string]any{
				"active":     false,
				"version":    gorm.Expr("version + 1"),
				"updated_at": updatedAt.UTC(),
			}).Error; err != nil {
			return err
		}
		result := tx.Model(&policyModel{}).
			Where("id = ?", strings.TrimSpace(policyID)).
			Updates(map[string]any{
				"active":     true,
				"version":    gorm.Expr("version + 1"),
				"updated_at": updatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrPolicyNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPolicyNotFound) {
			return err
		}
		return r.logError("identity_repo_activate_policy_failed", err,
			"policy_id", strings.TrimSpace(policyID),
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	return nil
}

func (r *Repository) SaveChallenge(ctx context.Context, challenge entities.OTPChallenge) error {
	row := challengeModelFromEntity(challenge)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("identity_repo_save_challenge_failed", create.Error,
			"challenge_id", strings.TrimSpace(challenge.ID),
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// RecordAttempt bumps the counter in the database so concurrent verifiers
// never write each other's stale value; RETURNING hands back the slot drawn.
func (r *Repository) RecordAttempt(ctx context.Context, challengeID string, now time.Time) (int, error) {
	var row challengeModel
	result := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "attempts"}}}).
		Where("id = ?", strings.TrimSpace(challengeID)).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"version":    gorm.Expr("version + 1"),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, r.logError("identity_repo_record_attempt_failed", result.Error,
			"challenge_id", strings.TrimSpace(challengeID),
		)
	}
	if result.RowsAffected == 0 {
		return 0, domainerrors.ErrChallengeNotFound
	}
	return row.Attempts, nil
}

// MarkChallengeUsed is the single-success guard: the used = false predicate
// lets only one racing verifier flip the latch.
func (r *Repository) MarkChallengeUsed(ctx context.Context, challengeID string, usedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&challengeModel{}).
		Where("id = ?", strings.TrimSpace(challengeID)).
		Where("used = ?", false).
		Updates(map[string]any{
			"used":       true,
			"used_at":    usedAt.UTC(),
			"version":    gorm.Expr("version + 1"),
			"updated_at": usedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("identity_repo_mark_used_failed", result.Error,
			"challenge_id", strings.TrimSpace(challengeID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrChallengeUsed
	}
	return nil
}

func (r *Repository) LatestChallenge(ctx context.Context, identifier string, purpose string) (entities.OTPChallenge, bool, error) {
	var row challengeModel
	err := r.db.WithContext(ctx).
		Where("identifier = ?", strings.TrimSpace(identifier)).
		Where("purpose = ?", strings.TrimSpace(purpose)).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OTPChallenge{}, false, nil
		}
		return entities.OTPChallenge{}, false, r.logError("identity_repo_latest_challenge_failed", err,
			"purpose", strings.TrimSpace(purpose),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) InvalidateLive(ctx context.Context, identifier string, purpose string, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&challengeModel{}).
		Where("identifier = ?", strings.TrimSpace(identifier)).
		Where("purpose = ?", strings.TrimSpace(purpose)).
		Where("used = ?", false).
		Where("expires_at > ?", now.UTC()).
		Updates(map[string]any{
			"used":       true,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now.UTC(),
		}).Error
	if err != nil {
		return r.logError("identity_repo_invalidate_live_failed", err,
			"purpose", strings.TrimSpace(purpose),
		)
	}
	return nil
}

func (r *Repository) DeleteExpiredBefore(ctx context.Context, horizon time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", horizon.UTC()).
		Delete(&challengeModel{})
	if result.Error != nil {
		return 0, r.logError("identity_repo_delete_expired_failed", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/identity-challenge",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("identity repository operation failed", fields...)
	return err
}

type policyModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	OrganizationID   string    `gorm:"column:organization_id;index"`
	Name             string    `gorm:"column:name"`
	Description      string    `gorm:"column:description"`
	IdentifierFields string    `gorm:"column:identifier_fields"`
	OTPChannel       string    `gorm:"column:otp_channel"`
	Locked           bool      `gorm:"column:locked"`
	Active           bool      `gorm:"column:active"`
	OTPExpiryMinutes int       `gorm:"column:otp_expiry_minutes"`
	MaxOTPAttempts   int       `gorm:"column:max_otp_attempts"`
	CodeLength       int       `gorm:"column:code_length"`
	Version          int64     `gorm:"column:version"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (policyModel) TableName() string {
	return "identity_policies"
}

func policyModelFromEntity(policy entities.IdentityPolicy) policyModel {
	row := policyModel{
		ID:               strings.TrimSpace(policy.ID),
		OrganizationID:   strings.TrimSpace(policy.OrganizationID),
		Name:             strings.TrimSpace(policy.Name),
		Description:      strings.TrimSpace(policy.Description),
		IdentifierFields: strings.Join(policy.IdentifierFields, ","),
		OTPChannel:       string(policy.OTPChannel),
		Locked:           policy.Locked,
		Active:           policy.Active,
		OTPExpiryMinutes: policy.OTPExpiryMinutes,
		MaxOTPAttempts:   policy.MaxOTPAttempts,
		CodeLength:       policy.CodeLength,
		Version:          policy.Version,
		CreatedAt:        policy.CreatedAt.UTC(),
		UpdatedAt:        policy.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m policyModel) toEntity() entities.IdentityPolicy {
	fields := make([]string, 0)
	for _, field := range strings.Split(m.IdentifierFields, ",") {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return entities.IdentityPolicy{
		Record: record.Record{
			ID:        m.ID,
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
			Version:   m.Version,
		},
		OrganizationID:   m.OrganizationID,
		Name:             m.Name,
		Description:      m.Description,
		IdentifierFields: fields,
		OTPChannel:       entities.OTPChannel(m.OTPChannel),
		Locked:           m.Locked,
		Active:           m.Active,
		OTPExpiryMinutes: m.OTPExpiryMinutes,
		MaxOTPAttempts:   m.MaxOTPAttempts,
		CodeLength:       m.CodeLength,
	}
}

type challengeModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	Identifier      string     `gorm:"column:identifier;index:idx_challenge_identifier_purpose"`
	Purpose         string     `gorm:"column:purpose;index:idx_challenge_identifier_purpose"`
	Code            string     `gorm:"column:code"`
	Channel         string     `gorm:"column:channel"`
	Attempts        int        `gorm:"column:attempts"`
	MaxAttempts     int        `gorm:"column:max_attempts"`
	Used            bool       `gorm:"column:used"`
	ExpiresAt       time.Time  `gorm:"column:expires_at;index"`
	UsedAt          *time.Time `gorm:"column:used_at"`
	OrganizationID  string     `gorm:"column:organization_id"`
	VoterRegistryID string     `gorm:"column:voter_registry_id"`
	Version         int64      `gorm:"column:version"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (challengeModel) TableName() string {
	return "otp_challenges"
}

func challengeModelFromEntity(challenge entities.OTPChallenge) challengeModel {
	row := challengeModel{
		ID:              strings.TrimSpace(challenge.ID),
		Identifier:      strings.TrimSpace(challenge.Identifier),
		Purpose:         strings.TrimSpace(challenge.Purpose),
		Code:            challenge.Code,
		Channel:         string(challenge.Channel),
		Attempts:        challenge.Attempts,
		MaxAttempts:     challenge.MaxAttempts,
		Used:            challenge.Used,
		ExpiresAt:       challenge.ExpiresAt.UTC(),
		UsedAt:          normalizeOptionalTime(challenge.UsedAt),
		OrganizationID:  strings.TrimSpace(challenge.OrganizationID),
		VoterRegistryID: strings.TrimSpace(challenge.VoterRegistryID),
		Version:         challenge.Version,
		CreatedAt:       challenge.CreatedAt.UTC(),
		UpdatedAt:       challenge.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m challengeModel) toEntity() entities.OTPChallenge {
	return entities.OTPChallenge{
		Record: record.Record{
			ID:        m.ID,
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
			Version:   m.Version,
		},
		Identifier:      m.Identifier,
		Code:            m.Code,
		Channel:         entities.OTPChannel(m.Channel),
		Purpose:         m.Purpose,
		Attempts:        m.Attempts,
		MaxAttempts:     m.MaxAttempts,
		Used:            m.Used,
		ExpiresAt:       m.ExpiresAt.UTC(),
		UsedAt:          normalizeOptionalTime(m.UsedAt),
		OrganizationID:  m.OrganizationID,
		VoterRegistryID: m.VoterRegistryID,
	}
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.PolicyRepository = (*Repository)(nil)
var _ ports.ChallengeRepository = (*Repository)(nil)
