package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/client"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "servicectl",
		Short:         "Command line client for the service center API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&a.addr, "addr", envOr("SERVICE_CENTER_URL", "http://localhost:4001"), "server address")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv("SERVICE_CENTER_TOKEN"), "api token, fetched from the server when empty")

	root.AddCommand(
		newRepairsCmd(a),
		newRepairCmd(a),
		newNextReceiptCmd(a),
		newStatusCmd(a),
		newPartsCmd(a),
		newBalanceCmd(a),
		newReconcileCmd(a),
		newBackupCmd(a),
	)

	return root
}

func newRepairsCmd(a *app) *cobra.Command {
	var q client.RepairQuery

	cmd := &cobra.Command{
		Use:   "repairs [query]",
		Short: "List repairs, optional search",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			q.Search = strings.Join(args, " ")
			list, err := api.Repairs(cmd.Context(), q)
			if err != nil {
				return err
			}

			printRepairs(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&q.Statuses, "status", nil, "only these statuses, comma separated")
	cmd.Flags().StringVar(&q.Executor, "executor", "", "only repairs of this executor")
	cmd.Flags().IntVar(&q.Limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "rows to skip")

	return cmd
}

func newRepairCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <id>",
		Short: "Show one repair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			r, err := api.Repair(cmd.Context(), id)
			if err != nil {
				return err
			}

			printRepair(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func newNextReceiptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next-receipt",
		Short: "Print the next free receipt number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			next, err := api.NextReceiptID(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var payment string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change repair status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			r, err := api.SetStatus(cmd.Context(), id, args[1], payment)
			if err != nil {
				return err
			}

			printRepair(cmd.OutOrStdout(), r)
			return nil
		},
	}

	cmd.Flags().StringVar(&payment, "payment", "", "payment type when issuing: cash or card")

	return cmd
}

func newPartsCmd(a *app) *cobra.Command {
	var (
		q        client.PartQuery
		inStock  bool
		repairID int64
	)

	cmd := &cobra.Command{
		Use:   "parts [query]",
		Short: "List warehouse parts or the parts of one repair",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			if repairID > 0 {
				if len(args) > 0 {
					return fmt.Errorf("search is not supported together with --repair")
				}
				list, err := api.RepairParts(cmd.Context(), repairID)
				if err != nil {
					return err
				}
				printParts(cmd.OutOrStdout(), list)
				return nil
			}

			q.Search = strings.Join(args, " ")
			if cmd.Flags().Changed("in-stock") {
				q.InStock = &inStock
			}
			list, err := api.Parts(cmd.Context(), q)
			if err != nil {
				return err
			}

			printParts(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Supplier, "supplier", "", "only parts of this supplier")
	cmd.Flags().BoolVar(&inStock, "in-stock", false, "only parts in stock (false: only sold ones)")
	cmd.Flags().IntVar(&q.Limit, "limit", 100, "max rows")
	cmd.Flags().Int64Var(&repairID, "repair", 0, "list parts installed into this repair")

	return cmd
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "balance",
		Aliases: []string{"balances"},
		Short:   "Cash register balances",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			b, err := api.Balances(cmd.Context())
			if err != nil {
				return err
			}

			printBalances(cmd.OutOrStdout(), *b)
			return nil
		},
	}
}

func newReconcileCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "reconcile <cash> <card>",
		Short: "Bring the register to the counted amounts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cash, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid cash amount %q", args[0])
			}
			card, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid card amount %q", args[1])
			}

			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			res, err := api.Reconcile(cmd.Context(), cash, card, description)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Adjustment == nil {
				fmt.Fprintln(out, "no adjustment needed")
			} else {
				fmt.Fprintf(out, "adjusted: cash %+.2f card %+.2f\n", res.Adjustment.Cash, res.Adjustment.Card)
			}
			printBalances(out, res.Balances)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "note for the adjustment transaction")

	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups (admin token required)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List backups on the server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				api, err := a.client(cmd.Context())
				if err != nil {
					return err
				}

				list, err := api.Backups(cmd.Context())
				if err != nil {
					return err
				}

				printBackups(cmd.OutOrStdout(), list)
				return nil
			},
		},
		newBackupCreateCmd(a),
	)

	return cmd
}

func newBackupCreateCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Make a backup now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			info, err := api.CreateBackup(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d bytes)\n", info.Name, info.Size)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "give up after this long, 0 waits forever")

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
