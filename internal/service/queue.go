package service

import (
	"context"
	"fmt"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/repository"
)

type queueProcessor struct {
	queueRepo   repository.QueueRepository
	approvalSvc ApprovalService
	chatSvc     ChatMessenger
}

func NewQueueProcessor(
	queueRepo repository.QueueRepository,
	approvalSvc ApprovalService,
	chatSvc ChatMessenger,
) QueueProcessor {
	return &queueProcessor{
		queueRepo:   queueRepo,
		approvalSvc: approvalSvc,
		chatSvc:     chatSvc,
	}
}

func (p *queueProcessor) Enqueue(ctx context.Context, entry *domain.QueueEntry) error {
	if err := p.queueRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append queue entry: %w", err)
	}
	return nil
}

// dedupKey identifies the unit of idempotence: one operation per registration
// executes at most once per drain, whatever the number of enqueued duplicates.
type dedupKey struct {
	op             domain.Operation
	registrationID string
}

// Drain processes all unprocessed entries in append order. A failed entry is
// logged and left unprocessed; the next drain retries it. There is no backoff
// and no attempt ceiling: failures are either transient or need a human, and
// the queue doubles as the audit log they review.
func (p *queueProcessor) Drain(ctx context.Context) (int, int, error) {
	entries, err := p.queueRepo.ListUnprocessed(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list unprocessed entries: %w", err)
	}

	seen := make(map[dedupKey]bool)
	processed := 0

	for _, entry := range entries {
		key := dedupKey{op: entry.Operation, registrationID: entry.RegistrationID}
		if seen[key] {
			// Duplicate within this batch: the first submission already won.
			// Mark it processed without re-executing.
			if err := p.queueRepo.MarkProcessed(ctx, entry.ID); err != nil {
				logger.Error("Failed to mark duplicate entry processed", "entry_id", entry.ID, "error", err)
				continue
			}
			logger.Info("Skipped duplicate queue entry", "entry_id", entry.ID,
				"registration_id", entry.RegistrationID, "operation", entry.Operation)
			processed++
			continue
		}

		reg, err := p.applyEntry(ctx, &entry)
		if err != nil {
			logger.Error("Deferred entry failed, leaving for retry", "entry_id", entry.ID,
				"registration_id", entry.RegistrationID, "operation", entry.Operation, "error", err)
			continue
		}
		seen[key] = true

		if entry.OriginChannel != "" && entry.OriginMessageTS != "" {
			if err := p.chatSvc.UpdateMessage(ctx, entry.OriginChannel, entry.OriginMessageTS, DecisionText(reg)); err != nil {
				logger.Error("Failed to update origin message", "entry_id", entry.ID, "error", err)
			}
		}

		if err := p.queueRepo.MarkProcessed(ctx, entry.ID); err != nil {
			logger.Error("Failed to mark entry processed", "entry_id", entry.ID, "error", err)
			continue
		}
		processed++
	}

	remaining, err := p.queueRepo.CountUnprocessed(ctx)
	if err != nil {
		return processed, 0, fmt.Errorf("failed to count remaining entries: %w", err)
	}
	return processed, remaining, nil
}

func (p *queueProcessor) applyEntry(ctx context.Context, entry *domain.QueueEntry) (*domain.Registration, error) {
	switch entry.Operation {
	case domain.OperationApprove:
		return p.approvalSvc.Approve(ctx, entry.RegistrationID, entry.ActingUser)
	case domain.OperationReject:
		return p.approvalSvc.Reject(ctx, entry.RegistrationID, entry.ActingUser, entry.Payload)
	case domain.OperationRevert:
		return p.approvalSvc.Revert(ctx, entry.RegistrationID)
	default:
		return nil, fmt.Errorf("unknown queue operation: %q", entry.Operation)
	}
}
