package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	treasuryapp "github.com/erp/treasury/internal/application/treasury"
	"github.com/erp/treasury/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the services a command works with
type runtime struct {
	creditNotes *treasuryapp.CreditNoteService
	bank        *treasuryapp.BankService
	logger      *zap.Logger
	closers     []func() error
}

func newRuntime(db *gorm.DB, implicitCreditNotes bool, log *zap.Logger) *runtime {
	scope := persistence.NewGormTransactionScope(db)
	opts := treasuryapp.Options{IncludeImplicitCreditNotes: implicitCreditNotes}
	return &runtime{
		creditNotes: treasuryapp.NewCreditNoteService(scope, opts, nil, log),
		bank:        treasuryapp.NewBankService(scope, nil, log),
		logger:      log,
	}
}

func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	return errors.Join(errs...)
}

type opener func(logLevel string) (*runtime, error)

type rootOptions struct {
	tenant   string
	logLevel string
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "treasuryctl",
		Short: "Maintenance jobs for the treasury ledger",
		Long: `treasuryctl runs one-off maintenance jobs against the treasury database.

The database comes from the usual configuration (config.toml or
TREASURY_DATABASE_* environment variables). Every job is scoped to one tenant.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.tenant, "tenant", "", "Tenant ID the job runs for (required)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	_ = cmd.MarkPersistentFlagRequired("tenant")

	cmd.AddCommand(
		newBackfillCreditNotesCmd(open, opts),
		newRecomputeInvoiceStatusesCmd(open, opts),
		newReconcileCmd(open, opts),
	)
	return cmd
}

// withRuntime parses the tenant, opens the runtime and closes it after run
func withRuntime(open opener, opts *rootOptions, run func(cmd *cobra.Command, rt *runtime, tenantID uuid.UUID) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		tenantID, err := uuid.Parse(opts.tenant)
		if err != nil {
			return fmt.Errorf("invalid --tenant %q: %w", opts.tenant, err)
		}
		rt, err := open(opts.logLevel)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := rt.Close(); cerr != nil {
				rt.logger.Warn("failed to release resources", zap.Error(cerr))
			}
		}()
		return run(cmd, rt, tenantID)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
