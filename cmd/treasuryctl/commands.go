package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBackfillCreditNotesCmd(open opener, root *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "backfill-credit-notes",
		Short: "Turn implicit credit note links into explicit applications",
		Long: `Creates an explicit application for every confirmed credit note that only
references its invoice through the original invoice link. Each application
takes min(credit note remainder, invoice pending). Once a tenant has been
backfilled, treasury.implicit_credit_notes can be switched off.`,
		Example: `  treasuryctl backfill-credit-notes --tenant 6f1c... --dry-run`,
		RunE: withRuntime(open, root, func(cmd *cobra.Command, rt *runtime, tenantID uuid.UUID) error {
			report, err := rt.creditNotes.BackfillImplicitCreditNotes(cmd.Context(), tenantID, dryRun)
			if err != nil {
				return err
			}
			rt.logger.Info("credit note backfill finished",
				zap.String("tenant_id", tenantID.String()),
				zap.Bool("dry_run", report.DryRun),
				zap.Int("applied", report.Applied),
				zap.Int("skipped", report.Skipped),
			)
			return printJSON(cmd.OutOrStdout(), report)
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be applied without writing")
	return cmd
}

func newRecomputeInvoiceStatusesCmd(open opener, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-invoice-statuses",
		Short: "Re-derive invoice statuses from their payments",
		RunE: withRuntime(open, root, func(cmd *cobra.Command, rt *runtime, tenantID uuid.UUID) error {
			report, err := rt.creditNotes.RecomputeInvoiceStatuses(cmd.Context(), tenantID)
			if err != nil {
				return err
			}
			rt.logger.Info("invoice statuses recomputed",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("checked", report.Checked),
				zap.Int("changed", report.Changed),
			)
			return printJSON(cmd.OutOrStdout(), report)
		}),
	}
}

type reconcileResult struct {
	Requested  int   `json:"requested"`
	Updated    int64 `json:"updated"`
	Reconciled bool  `json:"reconciled"`
}

func newReconcileCmd(open opener, root *rootOptions) *cobra.Command {
	var (
		file  string
		undo  bool
		batch int
	)
	cmd := &cobra.Command{
		Use:   "reconcile [movement-id...]",
		Short: "Mark bank movements as reconciled in bulk",
		Long: `Marks the given bank movements as reconciled against the bank statement.
IDs come from the arguments or from --file (one per line, "-" reads stdin).
Unknown IDs are skipped.`,
		Example: `  treasuryctl reconcile --tenant 6f1c... --file statement-ids.txt
  treasuryctl reconcile --tenant 6f1c... --undo 0b8e...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := collectIDs(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("no movement IDs given")
			}
			if batch <= 0 {
				return fmt.Errorf("--batch-size must be positive")
			}
			return withRuntime(open, root, func(cmd *cobra.Command, rt *runtime, tenantID uuid.UUID) error {
				result := reconcileResult{Requested: len(ids), Reconciled: !undo}
				for start := 0; start < len(ids); start += batch {
					end := min(start+batch, len(ids))
					n, err := rt.bank.ReconcileBankMovements(cmd.Context(), tenantID, ids[start:end], !undo, nil)
					if err != nil {
						return fmt.Errorf("batch %d-%d: %w", start, end, err)
					}
					result.Updated += n
				}
				rt.logger.Info("bank movements reconciled",
					zap.String("tenant_id", tenantID.String()),
					zap.Int("requested", result.Requested),
					zap.Int64("updated", result.Updated),
					zap.Bool("reconciled", result.Reconciled),
				)
				return printJSON(cmd.OutOrStdout(), result)
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", `File with one movement ID per line ("-" for stdin)`)
	cmd.Flags().BoolVar(&undo, "undo", false, "Clear the reconciled flag instead of setting it")
	cmd.Flags().IntVar(&batch, "batch-size", 500, "Movements updated per transaction")
	return cmd
}

// collectIDs merges IDs from args and file. Blank lines and lines starting
// with # are ignored.
func collectIDs(stdin io.Reader, args []string, file string) ([]uuid.UUID, error) {
	raw := append([]string(nil), args...)
	if file != "" {
		r := stdin
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()
			r = f
		}
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid movement ID %q: %w", s, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
