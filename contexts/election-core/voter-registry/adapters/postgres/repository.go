package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-core/voter-registry/domain/entities"
	domainerrors "ballotcore/contexts/election-core/voter-registry/domain/errors"
	"ballotcore/contexts/election-core/voter-registry/ports"
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

func (r *Repository) SaveEntry(ctx context.Context, entry entities.VoterRegistryEntry) error {
	row := entryModelFromEntity(entry)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		// The per-organization identifier indexes are load-bearing: a race
		// past the application-level duplicate check lands here.
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("registry_repo_save_entry_failed", create.Error,
			"entry_id", strings.TrimSpace(entry.ID),
			"organization_id", strings.TrimSpace(entry.OrganizationID),
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) UpdateEntry(ctx context.Context, entry entities.VoterRegistryEntry) error {
	row := entryModelFromEntity(entry)
	result := r.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("id = ? AND version = ?", row.ID, entry.PreviousVersion()).
		Updates(map[string]any{
			"matric_number":             row.MatricNumber,
			"email":                     row.Email,
			"phone":                     row.Phone,
			"full_name":                 row.FullName,
			"used":                      row.Used,
			"voted_at":                  row.VotedAt,
			"verification_attempts":     row.VerificationAttempts,
			"last_verification_attempt": row.LastVerificationAttempt,
			"version":                   row.Version,
			"updated_at":                row.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("registry_repo_update_entry_failed", result.Error, "entry_id", row.ID)
	}
	if result.RowsAffected == 0 {
		var existing entryModel
		err := r.db.WithContext(ctx).
			Select("id").
			Where("id = ?", row.ID).
			First(&existing).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrEntryNotFound
		}
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, entryID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(entryID)).
		Delete(&entryModel{})
	if result.Error != nil {
		return r.logError("registry_repo_delete_entry_failed", result.Error,
			"entry_id", strings.TrimSpace(entryID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEntryNotFound
	}
	return nil
}

func (r *Repository) GetEntry(ctx context.Context, entryID string) (entities.VoterRegistryEntry, error) {
	var row entryModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(entryID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterRegistryEntry{}, domainerrors.ErrEntryNotFound
		}
		return entities.VoterRegistryEntry{}, r.logError("registry_repo_get_entry_failed", err,
			"entry_id", strings.TrimSpace(entryID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByIdentifiers(ctx context.Context, organizationID string, identifiers entities.Identifiers) (entities.VoterRegistryEntry, bool, error) {
	normalized := identifiers.Normalized()
	tx := r.db.WithContext(ctx).Model(&entryModel{}).
		Where("organization_id = ?", strings.TrimSpace(organizationID))

	match := r.db.Where("1 = 0")
	if normalized.MatricNumber != "" {
		match = match.Or("matric_number = ?", normalized.MatricNumber)
	}
	if normalized.Email != "" {
		match = match.Or("email = ?", normalized.Email)
	}
	if normalized.Phone != "" {
		match = match.Or("phone = ?", normalized.Phone)
	}

	var row entryModel
	err := tx.Where(match).Order("created_at ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterRegistryEntry{}, false, nil
		}
		return entities.VoterRegistryEntry{}, false, r.logError("registry_repo_find_by_identifiers_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) IdentifierExists(ctx context.Context, organizationID string, field entities.IdentifierField, value string, excludeEntryID string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&entryModel{}).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Where(string(field)+" = ?", strings.TrimSpace(value))
	if strings.TrimSpace(excludeEntryID) != "" {
		tx = tx.Where("id <> ?", strings.TrimSpace(excludeEntryID))
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, r.logError("registry_repo_identifier_exists_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
			"field", string(field),
		)
	}
	return count > 0, nil
}

func (r *Repository) ListEntriesByOrganization(ctx context.Context, organizationID string) ([]entities.VoterRegistryEntry, error) {
	var rows []entryModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_entries_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	items := make([]entities.VoterRegistryEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("organization_id = ?", strings.TrimSpace(organizationID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("registry_repo_count_entries_failed", err,
			"organization_id", strings.TrimSpace(organizationID),
		)
	}
	return int(count), nil
}

func (r *Repository) MarkUsed(ctx context.Context, entryID string, votedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("id = ?", strings.TrimSpace(entryID)).
		Where("used = ?", false).
		Updates(map[string]any{
			"used":       true,
			"voted_at":   votedAt.UTC(),
			"version":    gorm.Expr("version + 1"),
			"updated_at": votedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("registry_repo_mark_used_failed", result.Error,
			"entry_id", strings.TrimSpace(entryID),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/voter-registry",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("registry repository operation failed", fields...)
	return err
}

type entryModel struct {
	ID                      string     `gorm:"column:id;primaryKey"`
	OrganizationID          string     `gorm:"column:organization_id;uniqueIndex:idx_registry_org_matric;uniqueIndex:idx_registry_org_email;uniqueIndex:idx_registry_org_phone"`
	MatricNumber            *string    `gorm:"column:matric_number;uniqueIndex:idx_registry_org_matric,where:matric_number IS NOT NULL"`
	Email                   *string    `gorm:"column:email;uniqueIndex:idx_registry_org_email,where:email IS NOT NULL"`
	Phone                   *string    `gorm:"column:phone;uniqueIndex:idx_registry_org_phone,where:phone IS NOT NULL"`
	FullName                string     `gorm:"column:full_name"`
	Used                    bool       `gorm:"column:used"`
	VotedAt                 *time.Time `gorm:"column:voted_at"`
	VerificationAttempts    int        `gorm:"column:verification_attempts"`
	LastVerificationAttempt *time.Time `gorm:"column:last_verification_attempt"`
	Version                 int64      `gorm:"column:version"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
	UpdatedAt               time.Time  `gorm:"column:updated_at"`
}

func (entryModel) TableName() string {
	return "voter_registry_entries"
}

func entryModelFromEntity(entry entities.VoterRegistryEntry) entryModel {
	row := entryModel{
		ID:                      strings.TrimSpace(entry.ID),
		OrganizationID:          strings.TrimSpace(entry.OrganizationID),
		MatricNumber:            optionalString(entry.MatricNumber),
		Email:                   optionalString(entry.Email),
		Phone:                   optionalString(entry.Phone),
		FullName:                strings.TrimSpace(entry.FullName),
		Used:                    entry.Used,
		VotedAt:                 normalizeOptionalTime(entry.VotedAt),
		VerificationAttempts:    entry.VerificationAttempts,
		LastVerificationAttempt: normalizeOptionalTime(entry.LastVerificationAttempt),
		Version:                 entry.Version,
		CreatedAt:               entry.CreatedAt.UTC(),
		UpdatedAt:               entry.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m entryModel) toEntity() entities.VoterRegistryEntry {
	return entities.VoterRegistryEntry{
		Record: record.Record{
			ID:        m.ID,
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
			Version:   m.Version,
		},
		OrganizationID:          m.OrganizationID,
		MatricNumber:            derefString(m.MatricNumber),
		Email:                   derefString(m.Email),
		Phone:                   derefString(m.Phone),
		FullName:                m.FullName,
		Used:                    m.Used,
		VotedAt:                 normalizeOptionalTime(m.VotedAt),
		VerificationAttempts:    m.VerificationAttempts,
		LastVerificationAttempt: normalizeOptionalTime(m.LastVerificationAttempt),
	}
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
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

var _ ports.EntryRepository = (*Repository)(nil)
