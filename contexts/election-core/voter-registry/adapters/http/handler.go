package httpadapter

import (
	"context"
	"log/slog"

	"ballotcore/contexts/election-core/voter-registry/application/commands"
	"ballotcore/contexts/election-core/voter-registry/application/queries"
	"ballotcore/contexts/election-core/voter-registry/domain/entities"
	httptransport "ballotcore/contexts/election-core/voter-registry/transport/http"
)

type Handler struct {
	Registry commands.RegistryUseCase
	Queries  queries.RegistryQueryUseCase
	Logger   *slog.Logger
}

func (h Handler) EnrollHandler(ctx context.Context, req httptransport.EnrollRequest) (httptransport.EntryResponse, error) {
	entry, err := h.Registry.Enroll(ctx, commands.EnrollCommand{
		OrganizationID: req.OrganizationID,
		Identifiers: entities.Identifiers{
			MatricNumber: req.MatricNumber,
			Email:        req.Email,
			Phone:        req.Phone,
		},
		FullName: req.FullName,
	})
	if err != nil {
		return httptransport.EntryResponse{}, err
	}
	return toEntryResponse(entry), nil
}

func (h Handler) UpdateEntryHandler(ctx context.Context, entryID string, req httptransport.UpdateEntryRequest) (httptransport.EntryResponse, error) {
	entry, err := h.Registry.UpdateEntry(ctx, commands.UpdateEntryCommand{
		EntryID: entryID,
		Identifiers: entities.Identifiers{
			MatricNumber: req.MatricNumber,
			Email:        req.Email,
			Phone:        req.Phone,
		},
		FullName: req.FullName,
	})
	if err != nil {
		return httptransport.EntryResponse{}, err
	}
	return toEntryResponse(entry), nil
}

func (h Handler) RemoveEntryHandler(ctx context.Context, entryID string) error {
	return h.Registry.RemoveEntry(ctx, entryID)
}

func (h Handler) GetEntryHandler(ctx context.Context, entryID string) (httptransport.EntryResponse, error) {
	entry, err := h.Queries.GetEntry(ctx, entryID)
	if err != nil {
		return httptransport.EntryResponse{}, err
	}
	return toEntryResponse(entry), nil
}

func (h Handler) ListEntriesHandler(ctx context.Context, organizationID string) (httptransport.EntryListResponse, error) {
	entries, err := h.Queries.ListByOrganization(ctx, organizationID)
	if err != nil {
		return httptransport.EntryListResponse{}, err
	}
	items := make([]httptransport.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toEntryResponse(entry))
	}
	return httptransport.EntryListResponse{Items: items}, nil
}

func (h Handler) EligibilityHandler(ctx context.Context, req httptransport.EligibilityRequest) (httptransport.EntryResponse, error) {
	entry, err := h.Queries.Eligible(ctx, req.OrganizationID, entities.Identifiers{
		MatricNumber: req.MatricNumber,
		Email:        req.Email,
		Phone:        req.Phone,
	})
	if err != nil {
		return httptransport.EntryResponse{}, err
	}
	return toEntryResponse(entry), nil
}

func (h Handler) ResetVerificationAttemptsHandler(ctx context.Context, entryID string) (httptransport.EntryResponse, error) {
	entry, err := h.Registry.ResetVerificationAttempts(ctx, entryID)
	if err != nil {
		return httptransport.EntryResponse{}, err
	}
	return toEntryResponse(entry), nil
}

func toEntryResponse(entry entities.VoterRegistryEntry) httptransport.EntryResponse {
	return httptransport.EntryResponse{
		EntryID:              entry.ID,
		OrganizationID:       entry.OrganizationID,
		MatricNumber:         entry.MatricNumber,
		Email:                entry.Email,
		Phone:                entry.Phone,
		FullName:             entry.FullName,
		Used:                 entry.Used,
		VotedAt:              entry.VotedAt,
		VerificationAttempts: entry.VerificationAttempts,
		Locked:               entry.Locked(),
		CreatedAt:            entry.CreatedAt,
		UpdatedAt:            entry.UpdatedAt,
	}
}
