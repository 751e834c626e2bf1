package cashflow

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/cashflow"
	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProjectionService matches forecast lines with the documents that realize them
type ProjectionService struct {
	scope     TransactionScope
	tolerance decimal.Decimal
	metrics   *telemetry.TreasuryMetrics
	logger    *zap.Logger
}

// NewProjectionService creates a new ProjectionService. A negative tolerance
// falls back to cashflow.DefaultTolerance.
func NewProjectionService(scope TransactionScope, tolerance decimal.Decimal, metrics *telemetry.TreasuryMetrics, logger *zap.Logger) *ProjectionService {
	if tolerance.IsNegative() {
		tolerance = cashflow.DefaultTolerance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectionService{
		scope:     scope,
		tolerance: tolerance,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateProjectionRequest is the input of CreateProjection
type CreateProjectionRequest struct {
	TenantID    uuid.UUID
	Type        cashflow.ProjectionType
	Category    string
	Description string
	DueDate     time.Time
	Amount      decimal.Decimal
}

// CreateProjection creates a PENDING projection
func (s *ProjectionService) CreateProjection(ctx context.Context, req CreateProjectionRequest) (*cashflow.CashflowProjection, error) {
	projection, err := cashflow.NewCashflowProjection(req.TenantID, req.Type, req.Category, req.Description, req.DueDate, req.Amount)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.ProjectionRepo().Create(ctx, projection)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create projection: %w", err)
	}
	return projection, nil
}

// LinkDocumentRequest is the input of LinkDocument
type LinkDocumentRequest struct {
	TenantID     uuid.UUID
	ProjectionID uuid.UUID
	Document     cashflow.DocumentRef
	Amount       decimal.Decimal
	Notes        string
}

// LinkDocumentResult carries the new link and the projection after recompute
type LinkDocumentResult struct {
	Link       *cashflow.ProjectionDocumentLink
	Projection *cashflow.CashflowProjection
}

// LinkDocument attaches part of a document to a projection and recomputes
// its confirmed amount from all of its links
func (s *ProjectionService) LinkDocument(ctx context.Context, req LinkDocumentRequest) (*LinkDocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cashflow_projection", "link_document")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrProjectionID, req.ProjectionID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := req.Document.Validate(); err != nil {
		return nil, err
	}

	result := &LinkDocumentResult{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		projection, err := loadProjectionForUpdate(ctx, repos, req.TenantID, req.ProjectionID)
		if err != nil {
			return err
		}
		if err := projection.CanAccept(req.Document.Kind, req.Amount, s.tolerance); err != nil {
			return err
		}

		link, err := cashflow.NewProjectionDocumentLink(projection, req.Document, req.Amount, req.Notes)
		if err != nil {
			return err
		}
		if err := repos.LinkRepo().Create(ctx, link); err != nil {
			return fmt.Errorf("failed to create projection link: %w", err)
		}
		if _, err := recompute(ctx, repos, projection); err != nil {
			return err
		}
		result.Link = link
		result.Projection = projection
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordProjectionLinked(ctx, req.TenantID, string(req.Document.Kind))
	s.logger.Info("projection linked",
		zap.String("projection_id", req.ProjectionID.String()),
		zap.String("document_kind", string(req.Document.Kind)),
		zap.String("document_id", req.Document.ID.String()),
		zap.String("confirmed_amount", result.Projection.ConfirmedAmount.StringFixed(2)),
		zap.String("status", string(result.Projection.Status)),
	)
	return result, nil
}

// UnlinkDocument removes a link and recomputes its projection. The status
// can move back from CONFIRMED or PARTIAL.
func (s *ProjectionService) UnlinkDocument(ctx context.Context, tenantID, linkID uuid.UUID) (*cashflow.CashflowProjection, error) {
	var projection *cashflow.CashflowProjection
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		link, err := repos.LinkRepo().FindByIDForTenant(ctx, tenantID, linkID)
		if err != nil {
			return fmt.Errorf("failed to load projection link: %w", err)
		}
		if link == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Projection link %s not found", linkID))
		}
		projection, err = loadProjectionForUpdate(ctx, repos, tenantID, link.ProjectionID)
		if err != nil {
			return err
		}
		if err := repos.LinkRepo().Delete(ctx, tenantID, link.ID); err != nil {
			return fmt.Errorf("failed to delete projection link: %w", err)
		}
		changed, err := recompute(ctx, repos, projection)
		if err != nil {
			return err
		}
		if changed {
			s.logger.Info("projection status changed after unlink",
				zap.String("projection_id", projection.ID.String()),
				zap.String("status", string(projection.Status)),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projection, nil
}

// GetProjection returns a projection of the tenant
func (s *ProjectionService) GetProjection(ctx context.Context, tenantID, id uuid.UUID) (*cashflow.CashflowProjection, error) {
	var projection *cashflow.CashflowProjection
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		projection, err = repos.ProjectionRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return fmt.Errorf("failed to load projection: %w", err)
		}
		if projection == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Projection %s not found", id))
		}
		return nil
	})
	return projection, err
}

func recompute(ctx context.Context, repos TransactionalRepositories, projection *cashflow.CashflowProjection) (bool, error) {
	amounts, err := repos.LinkRepo().AmountsByProjection(ctx, projection.TenantID, projection.ID)
	if err != nil {
		return false, fmt.Errorf("failed to sum projection links: %w", err)
	}
	changed := projection.Recompute(amounts)
	if err := repos.ProjectionRepo().Save(ctx, projection); err != nil {
		return false, fmt.Errorf("failed to save projection: %w", err)
	}
	return changed, nil
}

func loadProjectionForUpdate(ctx context.Context, repos TransactionalRepositories, tenantID, id uuid.UUID) (*cashflow.CashflowProjection, error) {
	projection, err := repos.ProjectionRepo().FindByIDForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load projection: %w", err)
	}
	if projection == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Projection %s not found", id))
	}
	return projection, nil
}
