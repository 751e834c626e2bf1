package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashService manages cash registers, their sessions and movements
type CashService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewCashService creates a new CashService
func NewCashService(scope TransactionScope, logger *zap.Logger) *CashService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashService{scope: scope, logger: logger}
}

// CreateCashRegister creates an ACTIVE register
func (s *CashService) CreateCashRegister(ctx context.Context, tenantID uuid.UUID, name string) (*treasury.CashRegister, error) {
	register, err := treasury.NewCashRegister(tenantID, name)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.CashRegisterRepo().Create(ctx, register)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cash register: %w", err)
	}
	return register, nil
}

// OpenCashSessionRequest is the input of OpenCashSession
type OpenCashSessionRequest struct {
	TenantID       uuid.UUID
	RegisterID     uuid.UUID
	OpeningBalance decimal.Decimal
	Notes          string
	UserID         *uuid.UUID
}

// OpenCashSession opens a session on an active register. At most one session
// per register can be OPEN; the store enforces it even under concurrent opens.
func (s *CashService) OpenCashSession(ctx context.Context, req OpenCashSessionRequest) (*treasury.CashSession, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "open")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrCashRegisterID, req.RegisterID.String(),
	)

	var session *treasury.CashSession
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		register, err := repos.CashRegisterRepo().FindByIDForUpdate(ctx, req.TenantID, req.RegisterID)
		if err != nil {
			return fmt.Errorf("failed to load cash register: %w", err)
		}
		if register == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Cash register %s not found", req.RegisterID))
		}

		open, err := repos.CashSessionRepo().FindOpenByRegisterForUpdate(ctx, req.TenantID, req.RegisterID)
		if err != nil {
			return fmt.Errorf("failed to check open session: %w", err)
		}
		if open != nil {
			return shared.ErrSessionAlreadyOpen.WithMessage(
				fmt.Sprintf("Cash register %s already has an open session", register.Name))
		}

		session, err = treasury.OpenCashSession(register, req.OpeningBalance, req.Notes, req.UserID)
		if err != nil {
			return err
		}
		if err := repos.CashSessionRepo().Create(ctx, session); err != nil {
			if errors.Is(err, shared.ErrSessionAlreadyOpen) {
				return err
			}
			return fmt.Errorf("failed to create cash session: %w", err)
		}

		opening, err := treasury.NewCashMovement(session, treasury.CashMovementOpening, "", session.OpeningBalance, "Opening balance")
		if err != nil {
			return err
		}
		opening.CreatedBy = req.UserID
		if err := repos.CashMovementRepo().Create(ctx, opening); err != nil {
			return fmt.Errorf("failed to record opening movement: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("cash session opened",
		zap.String("cash_session_id", session.ID.String()),
		zap.String("cash_register_id", req.RegisterID.String()),
		zap.String("opening_balance", session.OpeningBalance.StringFixed(2)),
	)
	return session, nil
}

// CloseCashSessionRequest is the input of CloseCashSession
type CloseCashSessionRequest struct {
	TenantID      uuid.UUID
	SessionID     uuid.UUID
	ActualBalance decimal.Decimal
	Notes         string
	UserID        *uuid.UUID
}

// CloseCashSession records the counted balance and persists the difference
// against the expected balance
func (s *CashService) CloseCashSession(ctx context.Context, req CloseCashSessionRequest) (*treasury.CashSession, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "close")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCashSessionID, req.SessionID.String())

	var session *treasury.CashSession
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		session, err = loadSessionForUpdate(ctx, repos, req.TenantID, req.SessionID)
		if err != nil {
			return err
		}
		if err := session.Close(req.ActualBalance, req.Notes, req.UserID); err != nil {
			return err
		}
		if err := repos.CashSessionRepo().Save(ctx, session); err != nil {
			return fmt.Errorf("failed to close cash session: %w", err)
		}

		closing := &treasury.CashMovement{
			BaseEntity:  shared.NewBaseEntity(),
			TenantID:    session.TenantID,
			SessionID:   session.ID,
			RegisterID:  session.RegisterID,
			Type:        treasury.CashMovementClosing,
			Direction:   treasury.CashOut,
			Amount:      *session.ActualBalance,
			Description: "Closing balance",
			CreatedBy:   req.UserID,
		}
		if err := repos.CashMovementRepo().Create(ctx, closing); err != nil {
			return fmt.Errorf("failed to record closing movement: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("cash session closed",
		zap.String("cash_session_id", session.ID.String()),
		zap.String("expected_balance", session.ExpectedBalance.StringFixed(2)),
		zap.String("actual_balance", session.ActualBalance.StringFixed(2)),
		zap.String("difference", session.Difference.StringFixed(2)),
	)
	return session, nil
}

// AddCashMovementRequest is the input of AddCashMovement
type AddCashMovementRequest struct {
	TenantID    uuid.UUID
	SessionID   uuid.UUID
	Type        treasury.CashMovementType
	Direction   treasury.CashDirection
	Amount      decimal.Decimal
	Description string
	UserID      *uuid.UUID
}

// AddCashMovement records a manual INCOME, EXPENSE or ADJUSTMENT on an open
// session and moves its expected balance
func (s *CashService) AddCashMovement(ctx context.Context, req AddCashMovementRequest) (*treasury.CashMovement, error) {
	if !req.Type.IsUserManaged() {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("%s movements are recorded by the system", req.Type))
	}

	var movement *treasury.CashMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		session, err := loadSessionForUpdate(ctx, repos, req.TenantID, req.SessionID)
		if err != nil {
			return err
		}
		if err := session.EnsureOpen(); err != nil {
			return err
		}
		movement, err = treasury.NewCashMovement(session, req.Type, req.Direction, req.Amount, req.Description)
		if err != nil {
			return err
		}
		movement.CreatedBy = req.UserID
		if err := repos.CashMovementRepo().Create(ctx, movement); err != nil {
			return fmt.Errorf("failed to create cash movement: %w", err)
		}
		session.ApplyDelta(movement.Delta())
		return repos.CashSessionRepo().Save(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// DeleteCashMovement removes a manual movement of an open session and
// reverses its delta
func (s *CashService) DeleteCashMovement(ctx context.Context, tenantID, movementID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := repos.CashMovementRepo().FindByIDForTenant(ctx, tenantID, movementID)
		if err != nil {
			return fmt.Errorf("failed to load cash movement: %w", err)
		}
		if movement == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Cash movement %s not found", movementID))
		}
		if err := movement.EnsureDeletable(); err != nil {
			return err
		}
		session, err := loadSessionForUpdate(ctx, repos, tenantID, movement.SessionID)
		if err != nil {
			return err
		}
		if err := session.EnsureOpen(); err != nil {
			return err
		}
		if err := repos.CashMovementRepo().Delete(ctx, tenantID, movement.ID); err != nil {
			return fmt.Errorf("failed to delete cash movement: %w", err)
		}
		session.ApplyDelta(movement.Delta().Neg())
		return repos.CashSessionRepo().Save(ctx, session)
	})
}

// ListSessionMovements returns the ledger of a session
func (s *CashService) ListSessionMovements(ctx context.Context, tenantID, sessionID uuid.UUID) ([]treasury.CashMovement, error) {
	var movements []treasury.CashMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movements, err = repos.CashMovementRepo().FindBySession(ctx, tenantID, sessionID)
		return err
	})
	return movements, err
}

func loadSessionForUpdate(ctx context.Context, repos TransactionalRepositories, tenantID, id uuid.UUID) (*treasury.CashSession, error) {
	session, err := repos.CashSessionRepo().FindByIDForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash session: %w", err)
	}
	if session == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Cash session %s not found", id))
	}
	return session, nil
}
