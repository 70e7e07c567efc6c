package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docflow/internal/db/repositories"
	"docflow/internal/logging"
	"docflow/pkg/models"
)

var (
	// ErrInstanceFinalized is returned for a decision against an instance
	// that already reached a terminal status. Terminal states are absorbing.
	ErrInstanceFinalized = errors.New("workflow instance is already finalized")
	// ErrRejectNotAllowed is returned for a rejecting decision on a step
	// whose can_reject flag is off.
	ErrRejectNotAllowed = errors.New("step does not permit rejection")
	// ErrCommentNotAllowed is returned for a commented decision on a step
	// whose can_comment flag is off.
	ErrCommentNotAllowed = errors.New("step does not accept comments")
	// ErrInvalidDecision is returned for a decision other than approved or
	// rejected.
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)

// InstanceService owns the instance state machine and the approval ledger:
// starting instances, recording decisions, computing step consensus, and
// driving the advance/terminate transitions that consensus triggers.
//
// The engine is purely reactive. Nothing here polls or runs in the
// background; deadlines on approvals are advisory data for an external
// reminder process.
type InstanceService struct {
	repos    *repositories.Repositories
	resolver *ApproverResolver
	locks    *instanceLocks
}

func NewInstanceService(repos *repositories.Repositories, resolver *ApproverResolver) *InstanceService {
	return &InstanceService{
		repos:    repos,
		resolver: resolver,
		locks:    newInstanceLocks(),
	}
}

// Start creates a running instance of a definition against a subject
// document, activates the first step, and fans out its pending approvals.
// A definition with zero steps yields an immediately approved instance with
// no approvals at all.
func (s *InstanceService) Start(ctx context.Context, workflowID int64, subjectID string, startedBy int64) (*models.WorkflowInstance, error) {
	workflow, err := s.repos.Workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	first, err := s.repos.Steps.First(ctx, workflowID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	params := repositories.CreateInstanceParams{
		InstanceID:     uuid.NewString(),
		OrganizationID: workflow.OrganizationID,
		WorkflowID:     workflow.ID,
		SubjectID:      subjectID,
		StartedBy:      startedBy,
	}
	var fanOut []repositories.CreateApprovalParams
	if first == nil {
		// Empty workflow: vacuously approved.
		now := time.Now().UTC()
		params.Status = models.InstanceStatusApproved
		params.CompletedAt = &now
	} else {
		params.Status = models.InstanceStatusInProgress
		params.CurrentStepID = &first.ID
		fanOut, err = s.resolveFanOut(ctx, workflow.OrganizationID, first)
		if err != nil {
			return nil, fmt.Errorf("failed to fan out approvals for first step: %w", err)
		}
	}

	// One transaction: a fan-out failure must not leave a running instance
	// behind with only part of its consensus set.
	instance, err := s.repos.Instances.CreateWithApprovals(ctx, params, fanOut)
	if err != nil {
		return nil, err
	}

	logging.Info("Started workflow instance %s (workflow %d, subject %s)", instance.InstanceID, workflow.ID, subjectID)
	return instance, nil
}

// Decide records one approver's decision on an approval slot and applies the
// resulting lifecycle transition in the same critical section:
//
//   - rejected: the instance is terminated as rejected, unconditionally. One
//     rejecting vote sinks the whole instance no matter how its sibling
//     approvals stand.
//   - approved: consensus is re-evaluated for the approval's step, and when
//     every approval on a required current step is approved the instance
//     advances (or finalizes as approved after the last step).
//
// Re-deciding the same slot overwrites the earlier decision in place.
func (s *InstanceService) Decide(ctx context.Context, approvalID string, decision string, comment *string) (*models.Approval, error) {
	if decision != models.ApprovalStatusApproved && decision != models.ApprovalStatusRejected {
		return nil, ErrInvalidDecision
	}

	approval, err := s.repos.Approvals.GetByApprovalID(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	// All decide/advance work for one instance runs under its lock so two
	// concurrent approvers cannot both observe "everyone has approved" and
	// double-advance.
	lock := s.locks.acquire(approval.InstanceID)
	defer s.locks.release(approval.InstanceID, lock)

	instance, err := s.repos.Instances.Get(ctx, approval.InstanceID)
	if err != nil {
		return nil, err
	}
	if instance.Status != models.InstanceStatusInProgress {
		return nil, ErrInstanceFinalized
	}

	step, err := s.repos.Steps.Get(ctx, approval.StepID)
	if err != nil {
		return nil, err
	}
	if decision == models.ApprovalStatusRejected && !step.CanReject {
		return nil, ErrRejectNotAllowed
	}
	if comment != nil && *comment != "" && !step.CanComment {
		return nil, ErrCommentNotAllowed
	}

	decided, err := s.repos.Approvals.Decide(ctx, approval.ID, decision, comment, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if decision == models.ApprovalStatusRejected {
		if err := s.finalize(ctx, instance, models.InstanceStatusRejected); err != nil {
			return nil, err
		}
		return decided, nil
	}

	reached, err := s.stepConsensusReached(ctx, instance, step)
	if err != nil {
		return nil, err
	}
	if reached {
		if err := s.advance(ctx, instance, step); err != nil {
			return nil, err
		}
	}
	return decided, nil
}

// PendingApprovalsFor returns an approver's open decision slots with their
// instance and step context, oldest first.
func (s *InstanceService) PendingApprovalsFor(ctx context.Context, approverID int64) ([]*models.PendingApproval, error) {
	return s.repos.Approvals.ListPendingForApprover(ctx, approverID)
}

// InstanceDetail returns the instance with its definition, current step (when
// still in progress), and the full approval history across all steps.
func (s *InstanceService) InstanceDetail(ctx context.Context, instanceID string) (*models.InstanceDetail, error) {
	instance, err := s.repos.Instances.GetByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	workflow, err := s.repos.Workflows.Get(ctx, instance.WorkflowID)
	if err != nil {
		return nil, err
	}

	var currentStep *models.WorkflowStep
	if instance.CurrentStepID != nil {
		currentStep, err = s.repos.Steps.Get(ctx, *instance.CurrentStepID)
		if err != nil {
			return nil, err
		}
	}

	approvals, err := s.repos.Approvals.ListByInstance(ctx, instance.ID)
	if err != nil {
		return nil, err
	}

	return &models.InstanceDetail{
		Instance:    *instance,
		Workflow:    *workflow,
		CurrentStep: currentStep,
		Approvals:   approvals,
	}, nil
}

// ListInstancesForSubject returns every instance started against a subject
// document, newest first.
func (s *InstanceService) ListInstancesForSubject(ctx context.Context, subjectID string) ([]*models.WorkflowInstance, error) {
	return s.repos.Instances.ListBySubject(ctx, subjectID)
}

// resolveFanOut resolves the step's approvers into pending approval rows, one
// per identity, for insertion alongside the step transition. Resolution is
// point-in-time: an empty result fans out to nobody and leaves the instance
// stalled on this step.
func (s *InstanceService) resolveFanOut(ctx context.Context, organizationID int64, step *models.WorkflowStep) ([]repositories.CreateApprovalParams, error) {
	approvers, err := s.resolver.Resolve(ctx, organizationID, step)
	if err != nil {
		return nil, err
	}
	if len(approvers) == 0 {
		logging.Info("Step %d resolved to no approvers; the instance will stall until membership changes", step.ID)
		return nil, nil
	}

	var deadline *time.Time
	if step.TimeoutDays != nil {
		d := time.Now().UTC().Add(time.Duration(*step.TimeoutDays) * 24 * time.Hour)
		deadline = &d
	}

	params := make([]repositories.CreateApprovalParams, 0, len(approvers))
	for _, approverID := range approvers {
		params = append(params, repositories.CreateApprovalParams{
			ApprovalID: uuid.NewString(),
			StepID:     step.ID,
			ApproverID: approverID,
			Deadline:   deadline,
		})
	}
	return params, nil
}

// stepConsensusReached reports whether every required approval for the step
// is approved. A non-required step contributes no required approvals, so its
// consensus is never reached and the instance stays put; likewise a step
// whose fan-out produced nothing.
func (s *InstanceService) stepConsensusReached(ctx context.Context, instance *models.WorkflowInstance, step *models.WorkflowStep) (bool, error) {
	if instance.CurrentStepID == nil || *instance.CurrentStepID != step.ID {
		// A re-decided approval from an already-passed step must not
		// re-trigger advancement.
		return false, nil
	}
	if !step.IsRequired {
		return false, nil
	}

	approvals, err := s.repos.Approvals.ListByInstanceAndStep(ctx, instance.ID, step.ID)
	if err != nil {
		return false, err
	}
	if len(approvals) == 0 {
		return false, nil
	}
	for _, approval := range approvals {
		if approval.Status != models.ApprovalStatusApproved {
			return false, nil
		}
	}
	return true, nil
}

// advance moves the instance to the step with the smallest step_order greater
// than the current one, fanning out its approvals in the same transaction, or
// finalizes the instance as approved when the current step was the last.
func (s *InstanceService) advance(ctx context.Context, instance *models.WorkflowInstance, current *models.WorkflowStep) error {
	next, err := s.repos.Steps.NextAfter(ctx, instance.WorkflowID, current.StepOrder)
	if errors.Is(err, repositories.ErrNotFound) {
		return s.finalize(ctx, instance, models.InstanceStatusApproved)
	}
	if err != nil {
		return err
	}

	fanOut, err := s.resolveFanOut(ctx, instance.OrganizationID, next)
	if err != nil {
		return err
	}
	if err := s.repos.Instances.AdvanceStep(ctx, instance.ID, next.ID, fanOut); err != nil {
		return err
	}
	instance.CurrentStepID = &next.ID

	logging.Debug("Instance %s advanced to step %d (order %d)", instance.InstanceID, next.ID, next.StepOrder)
	return nil
}

func (s *InstanceService) finalize(ctx context.Context, instance *models.WorkflowInstance, status string) error {
	if err := s.repos.Instances.Finalize(ctx, instance.ID, status, time.Now().UTC()); err != nil {
		return err
	}
	logging.Info("Instance %s finalized as %s", instance.InstanceID, status)
	return nil
}
