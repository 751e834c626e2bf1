package treasury

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BankService manages bank accounts and their movement ledger
type BankService struct {
	scope   TransactionScope
	metrics *telemetry.TreasuryMetrics
	logger  *zap.Logger
}

// NewBankService creates a new BankService
func NewBankService(scope TransactionScope, metrics *telemetry.TreasuryMetrics, logger *zap.Logger) *BankService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BankService{scope: scope, metrics: metrics, logger: logger}
}

// CreateBankAccountRequest is the input of CreateBankAccount
type CreateBankAccountRequest struct {
	TenantID       uuid.UUID
	Name           string
	BankName       string
	AccountNumber  string
	OpeningBalance decimal.Decimal
}

// CreateBankAccount opens an ACTIVE account. Account numbers are unique per tenant.
func (s *BankService) CreateBankAccount(ctx context.Context, req CreateBankAccountRequest) (*treasury.BankAccount, error) {
	account, err := treasury.NewBankAccount(req.TenantID, req.Name, req.BankName, req.AccountNumber, req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.BankAccountRepo().ExistsByAccountNumber(ctx, req.TenantID, req.AccountNumber)
		if err != nil {
			return fmt.Errorf("failed to check account number: %w", err)
		}
		if exists {
			return shared.ErrResourceConflict.WithMessage(
				fmt.Sprintf("Bank account number %s already exists", req.AccountNumber))
		}
		if err := repos.BankAccountRepo().Create(ctx, account); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.ErrResourceConflict.WithMessage(
					fmt.Sprintf("Bank account number %s already exists", req.AccountNumber))
			}
			return fmt.Errorf("failed to create bank account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account created",
		zap.String("bank_account_id", account.ID.String()),
		zap.String("account_number", account.AccountNumber),
	)
	return account, nil
}

// SetBankAccountActive deactivates or re-activates an account
func (s *BankService) SetBankAccountActive(ctx context.Context, tenantID, accountID uuid.UUID, active bool) (*treasury.BankAccount, error) {
	return s.updateAccount(ctx, tenantID, accountID, func(a *treasury.BankAccount) error {
		if active {
			return a.Activate()
		}
		return a.Deactivate()
	})
}

// CloseBankAccount closes an account whose balance is exactly zero
func (s *BankService) CloseBankAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*treasury.BankAccount, error) {
	return s.updateAccount(ctx, tenantID, accountID, (*treasury.BankAccount).Close)
}

func (s *BankService) updateAccount(ctx context.Context, tenantID, accountID uuid.UUID, mutate func(*treasury.BankAccount) error) (*treasury.BankAccount, error) {
	var account *treasury.BankAccount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		account, err = loadAccountForUpdate(ctx, repos, tenantID, accountID)
		if err != nil {
			return err
		}
		if err := mutate(account); err != nil {
			return err
		}
		return repos.BankAccountRepo().Save(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// CreateBankMovementRequest is the input of CreateBankMovement
type CreateBankMovementRequest struct {
	TenantID             uuid.UUID
	BankAccountID        uuid.UUID
	Type                 treasury.BankMovementType
	Amount               decimal.Decimal
	Date                 time.Time
	Description          string
	Reference            string
	CounterpartAccountID *uuid.UUID
}

// CreateBankMovement writes a movement and moves the account balance in the
// same transaction. Transfers also write the mirror movement on the
// counterpart account.
func (s *BankService) CreateBankMovement(ctx context.Context, req CreateBankMovementRequest) (*treasury.BankMovement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bank_movement", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrBankAccountID, req.BankAccountID.String(),
		telemetry.SpanAttrMovementType, string(req.Type),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var movement *treasury.BankMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movement, err = s.createMovement(ctx, repos, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordBankMovementCreated(ctx, req.TenantID, string(req.Type))
	s.logger.Info("bank movement created",
		zap.String("bank_movement_id", movement.ID.String()),
		zap.String("bank_account_id", req.BankAccountID.String()),
		zap.String("type", string(movement.Type)),
		zap.String("amount", movement.Amount.StringFixed(2)),
	)
	return movement, nil
}

func (s *BankService) createMovement(ctx context.Context, repos TransactionalRepositories, req CreateBankMovementRequest) (*treasury.BankMovement, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown bank movement type %q", req.Type))
	}

	// Lock both sides of a transfer in a stable order
	ids := []uuid.UUID{req.BankAccountID}
	if req.Type.IsTransfer() && req.CounterpartAccountID != nil {
		ids = append(ids, *req.CounterpartAccountID)
	}
	ids = lockOrder(ids...)
	locked := make(map[uuid.UUID]*treasury.BankAccount, len(ids))
	for _, id := range ids {
		acc, err := repos.BankAccountRepo().FindByIDForUpdate(ctx, req.TenantID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load bank account: %w", err)
		}
		locked[id] = acc
	}

	account := locked[req.BankAccountID]
	if account == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank account %s not found", req.BankAccountID))
	}
	if err := account.EnsureActive(); err != nil {
		return nil, err
	}
	var counterpart *treasury.BankAccount
	if req.CounterpartAccountID != nil {
		if *req.CounterpartAccountID == req.BankAccountID {
			counterpart = account
		} else {
			counterpart = locked[*req.CounterpartAccountID]
		}
	}
	if err := treasury.ValidateCounterpart(req.Type, account, counterpart, req.CounterpartAccountID); err != nil {
		return nil, err
	}

	movement, err := treasury.NewBankMovement(req.TenantID, account.ID, req.Type, req.Amount, req.Date, req.Description)
	if err != nil {
		return nil, err
	}
	movement.Reference = req.Reference
	movement.CounterpartAccountID = req.CounterpartAccountID

	var mirror *treasury.BankMovement
	if req.Type.IsTransfer() {
		mirror, err = treasury.NewBankMovement(req.TenantID, counterpart.ID, req.Type.Mirror(), req.Amount, movement.Date, req.Description)
		if err != nil {
			return nil, err
		}
		mirror.Reference = req.Reference
		mirror.CounterpartAccountID = &account.ID
		mirror.LinkedMovementID = &movement.ID
		movement.LinkedMovementID = &mirror.ID
	}

	if err := repos.BankMovementRepo().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to create bank movement: %w", err)
	}
	account.ApplyDelta(movement.Delta())
	if err := repos.BankAccountRepo().Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update bank account balance: %w", err)
	}

	if mirror != nil {
		if err := repos.BankMovementRepo().Create(ctx, mirror); err != nil {
			return nil, fmt.Errorf("failed to create mirror movement: %w", err)
		}
		counterpart.ApplyDelta(mirror.Delta())
		if err := repos.BankAccountRepo().Save(ctx, counterpart); err != nil {
			return nil, fmt.Errorf("failed to update counterpart balance: %w", err)
		}
	}
	return movement, nil
}

// DeleteBankMovement removes an unreconciled movement and reverses its exact
// delta. The mirror of a transfer goes with it.
func (s *BankService) DeleteBankMovement(ctx context.Context, tenantID, movementID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "bank_movement", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrMovementID, movementID.String())

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		peek, err := repos.BankMovementRepo().FindByIDForTenant(ctx, tenantID, movementID)
		if err != nil {
			return fmt.Errorf("failed to load bank movement: %w", err)
		}
		if peek == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank movement %s not found", movementID))
		}

		// both legs of a transfer, then both accounts, in id order so that
		// deleting either leg takes the locks the same way
		ids := []uuid.UUID{movementID}
		if peek.LinkedMovementID != nil {
			ids = append(ids, *peek.LinkedMovementID)
		}
		legs := make(map[uuid.UUID]*treasury.BankMovement, len(ids))
		for _, id := range lockOrder(ids...) {
			leg, err := repos.BankMovementRepo().FindByIDForUpdate(ctx, tenantID, id)
			if err != nil {
				return fmt.Errorf("failed to load bank movement: %w", err)
			}
			if leg != nil {
				legs[id] = leg
			}
		}

		movement := legs[movementID]
		if movement == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank movement %s not found", movementID))
		}
		if err := movement.EnsureDeletable(); err != nil {
			return err
		}
		var mirror *treasury.BankMovement
		if movement.LinkedMovementID != nil {
			mirror = legs[*movement.LinkedMovementID]
		}
		if mirror != nil {
			if err := mirror.EnsureDeletable(); err != nil {
				return shared.ErrMovementReconciled.WithMessage("The mirror movement of this transfer is reconciled")
			}
		}

		accountIDs := []uuid.UUID{movement.BankAccountID}
		if mirror != nil {
			accountIDs = append(accountIDs, mirror.BankAccountID)
		}
		accounts := make(map[uuid.UUID]*treasury.BankAccount, len(accountIDs))
		for _, id := range lockOrder(accountIDs...) {
			account, err := loadAccountForUpdate(ctx, repos, tenantID, id)
			if err != nil {
				return err
			}
			accounts[id] = account
		}

		if err := removeMovement(ctx, repos, movement, accounts[movement.BankAccountID]); err != nil {
			return err
		}
		if mirror == nil {
			return nil
		}
		return removeMovement(ctx, repos, mirror, accounts[mirror.BankAccountID])
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.logger.Info("bank movement deleted", zap.String("bank_movement_id", movementID.String()))
	return nil
}

// removeMovement deletes a movement and reverses its delta on the account,
// which the caller has locked
func removeMovement(ctx context.Context, repos TransactionalRepositories, movement *treasury.BankMovement, account *treasury.BankAccount) error {
	if err := repos.BankMovementRepo().Delete(ctx, movement.TenantID, movement.ID); err != nil {
		return fmt.Errorf("failed to delete bank movement: %w", err)
	}
	account.ApplyDelta(movement.ReversalDelta())
	if err := repos.BankAccountRepo().Save(ctx, account); err != nil {
		return fmt.Errorf("failed to update bank account balance: %w", err)
	}
	return nil
}

// ReconcileBankMovement sets or clears the reconciled flag. Asking for the
// state the movement is already in changes nothing, including reconciledAt.
func (s *BankService) ReconcileBankMovement(ctx context.Context, tenantID, movementID uuid.UUID, reconcile bool, userID *uuid.UUID) (*treasury.BankMovement, error) {
	var movement *treasury.BankMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movement, err = repos.BankMovementRepo().FindByIDForUpdate(ctx, tenantID, movementID)
		if err != nil {
			return fmt.Errorf("failed to load bank movement: %w", err)
		}
		if movement == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank movement %s not found", movementID))
		}
		if !movement.SetReconciled(reconcile, userID, time.Now()) {
			return nil
		}
		return repos.BankMovementRepo().Save(ctx, movement)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// ReconcileBankMovements updates a set of movements with one statement and
// returns how many actually changed state
func (s *BankService) ReconcileBankMovements(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, reconcile bool, userID *uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		count, err = repos.BankMovementRepo().SetReconciledBulk(ctx, tenantID, ids, reconcile, userID, time.Now())
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile bank movements: %w", err)
	}
	s.logger.Info("bank movements reconciled",
		zap.Int("requested", len(ids)),
		zap.Int64("changed", count),
		zap.Bool("reconciled", reconcile),
	)
	return count, nil
}

// ListBankMovements returns the ledger of an account
func (s *BankService) ListBankMovements(ctx context.Context, tenantID, accountID uuid.UUID) ([]treasury.BankMovement, error) {
	var movements []treasury.BankMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movements, err = repos.BankMovementRepo().FindByAccount(ctx, tenantID, accountID)
		return err
	})
	return movements, err
}

// GetBankAccount returns an account or NOT_FOUND
func (s *BankService) GetBankAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*treasury.BankAccount, error) {
	var account *treasury.BankAccount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		account, err = repos.BankAccountRepo().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank account %s not found", accountID))
		}
		return nil
	})
	return account, err
}

func loadAccountForUpdate(ctx context.Context, repos TransactionalRepositories, tenantID, id uuid.UUID) (*treasury.BankAccount, error) {
	account, err := repos.BankAccountRepo().FindByIDForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account: %w", err)
	}
	if account == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank account %s not found", id))
	}
	return account, nil
}

// lockOrder dedupes ids and sorts them into the order rows are locked in
func lockOrder(ids ...uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}
