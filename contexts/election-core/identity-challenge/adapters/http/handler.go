package httpadapter

import (
	"context"
	"log/slog"

	"ballotcore/contexts/election-core/identity-challenge/application/commands"
	"ballotcore/contexts/election-core/identity-challenge/application/queries"
	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	httptransport "ballotcore/contexts/election-core/identity-challenge/transport/http"
)

type Handler struct {
	Policies      commands.PolicyUseCase
	Challenges    commands.ChallengeUseCase
	PolicyQueries queries.PolicyQueryUseCase
	Logger        *slog.Logger
}

func (h Handler) CreatePolicyHandler(ctx context.Context, req httptransport.CreatePolicyRequest) (httptransport.PolicyResponse, error) {
	policy, err := h.Policies.CreatePolicy(ctx, commands.CreatePolicyCommand{
		OrganizationID:   req.OrganizationID,
		Name:             req.Name,
		Description:      req.Description,
		IdentifierFields: req.IdentifierFields,
		OTPChannel:       entities.OTPChannel(req.OTPChannel),
		OTPExpiryMinutes: req.OTPExpiryMinutes,
		MaxOTPAttempts:   req.MaxOTPAttempts,
		CodeLength:       req.CodeLength,
	})
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return toPolicyResponse(policy), nil
}

func (h Handler) UpdatePolicyHandler(ctx context.Context, policyID string, req httptransport.UpdatePolicyRequest) (httptransport.PolicyResponse, error) {
	policy, err := h.Policies.UpdatePolicy(ctx, commands.UpdatePolicyCommand{
		PolicyID:         policyID,
		Name:             req.Name,
		Description:      req.Description,
		IdentifierFields: req.IdentifierFields,
		OTPChannel:       entities.OTPChannel(req.OTPChannel),
		OTPExpiryMinutes: req.OTPExpiryMinutes,
		MaxOTPAttempts:   req.MaxOTPAttempts,
		CodeLength:       req.CodeLength,
	})
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return toPolicyResponse(policy), nil
}

func (h Handler) LockPolicyHandler(ctx context.Context, policyID string) (httptransport.PolicyResponse, error) {
	policy, err := h.Policies.LockPolicy(ctx, policyID)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return toPolicyResponse(policy), nil
}

func (h Handler) ActivatePolicyHandler(ctx context.Context, policyID string) (httptransport.PolicyResponse, error) {
	policy, err := h.Policies.ActivatePolicy(ctx, policyID)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return toPolicyResponse(policy), nil
}

func (h Handler) DeactivatePolicyHandler(ctx context.Context, policyID string) (httptransport.PolicyResponse, error) {
	policy, err := h.Policies.DeactivatePolicy(ctx, policyID)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return toPolicyResponse(policy), nil
}

func (h Handler) GetPolicyHandler(ctx context.Context, policyID string) (httptransport.PolicyResponse, error) {
	policy, err := h.PolicyQueries.GetPolicy(ctx, policyID)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return toPolicyResponse(policy), nil
}

func (h Handler) ListPoliciesHandler(ctx context.Context, organizationID string) (httptransport.PolicyListResponse, error) {
	policies, err := h.PolicyQueries.ListByOrganization(ctx, organizationID)
	if err != nil {
		return httptransport.PolicyListResponse{}, err
	}
	items := make([]httptransport.PolicyResponse, 0, len(policies))
	for _, policy := range policies {
		items = append(items, toPolicyResponse(policy))
	}
	return httptransport.PolicyListResponse{Items: items}, nil
}

func (h Handler) VerifyVoterHandler(ctx context.Context, req httptransport.VerifyVoterRequest) (httptransport.PendingVerificationResponse, error) {
	pending, err := h.Challenges.VerifyVoter(ctx, commands.VerifyVoterCommand{
		OrganizationID: req.OrganizationID,
		Identifiers:    req.Identifiers,
	})
	if err != nil {
		return httptransport.PendingVerificationResponse{}, err
	}
	return httptransport.PendingVerificationResponse{
		VoterRegistryID: pending.VoterRegistryID,
		Identifier:      pending.Identifier,
		OTPRequired:     pending.OTPRequired,
		Channel:         string(pending.Channel),
	}, nil
}

func (h Handler) ConfirmOTPHandler(ctx context.Context, req httptransport.ConfirmOTPRequest) (httptransport.VerifiedVoterResponse, error) {
	verified, err := h.Challenges.ConfirmOTP(ctx, req.Identifier, req.Code)
	if err != nil {
		return httptransport.VerifiedVoterResponse{}, err
	}
	return httptransport.VerifiedVoterResponse{
		VoterRegistryID:    verified.VoterRegistryID,
		OrganizationID:     verified.OrganizationID,
		VerificationMethod: verified.VerificationMethod,
	}, nil
}

func (h Handler) ResendHandler(ctx context.Context, req httptransport.ResendRequest) (httptransport.ChallengeResponse, error) {
	challenge, err := h.Challenges.Resend(ctx, commands.ResendCommand{
		OrganizationID: req.OrganizationID,
		Identifier:     req.Identifier,
		Purpose:        entities.PurposeVoterVerification,
	})
	if err != nil {
		return httptransport.ChallengeResponse{}, err
	}
	return httptransport.ChallengeResponse{
		ChallengeID: challenge.ID,
		Identifier:  challenge.Identifier,
		Channel:     string(challenge.Channel),
		Purpose:     challenge.Purpose,
		ExpiresAt:   challenge.ExpiresAt,
	}, nil
}

func toPolicyResponse(policy entities.IdentityPolicy) httptransport.PolicyResponse {
	return httptransport.PolicyResponse{
		PolicyID:         policy.ID,
		OrganizationID:   policy.OrganizationID,
		Name:             policy.Name,
		Description:      policy.Description,
		IdentifierFields: policy.IdentifierFields,
		OTPChannel:       string(policy.OTPChannel),
		Locked:           policy.Locked,
		Active:           policy.Active,
		OTPExpiryMinutes: policy.OTPExpiryMinutes,
		MaxOTPAttempts:   policy.MaxOTPAttempts,
		CodeLength:       policy.CodeLength,
		CreatedAt:        policy.CreatedAt,
		UpdatedAt:        policy.UpdatedAt,
	}
}
