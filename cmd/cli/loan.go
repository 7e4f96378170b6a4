package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bengbengle/nft-lend/internal/adapter/http/dto"
	"github.com/bengbengle/nft-lend/internal/domain"
)

func loanCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan operations",
	}

	cmd.AddCommand(
		loanGetCmd(opts),
		loanListCmd(opts),
		loanCreateCmd(opts),
		loanLendCmd(opts),
		loanCloseCmd(opts),
		loanRepayCmd(opts),
		loanSeizeCmd(opts),
		loanOwedCmd(opts),
	)
	return cmd
}

// loanPath validates the id argument before it reaches the URL.
func loanPath(arg string, suffix string) (string, error) {
	id, err := domain.ParseLoanID(arg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/api/v1/loans/%d%s", id, suffix), nil
}

// durationSeconds converts a Go duration flag into whole seconds.
func durationSeconds(d time.Duration) (uint64, error) {
	if d <= 0 || d%time.Second != 0 {
		return 0, fmt.Errorf("%w: duration must be a positive whole number of seconds", domain.ErrInvalidParameter)
	}
	return uint64(d / time.Second), nil
}

func loanGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loanPath(args[0], "")
			if err != nil {
				return err
			}
			return newAPIClient(opts).call(cmd.Context(), http.MethodGet, path, nil, cmd.OutOrStdout())
		},
	}
}

func loanListCmd(opts *rootOptions) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loans by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			return newAPIClient(opts).call(cmd.Context(), http.MethodGet, "/api/v1/loans?"+q.Encode(), nil, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func loanCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		req      dto.CreateLoanRequest
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Lock collateral and open a loan request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := durationSeconds(duration)
			if err != nil {
				return err
			}
			req.DurationSeconds = seconds
			return newAPIClient(opts).call(cmd.Context(), http.MethodPost, "/api/v1/loans", &req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&req.CollateralContract, "collateral", "", "Collateral collection address")
	cmd.Flags().StringVar(&req.CollateralTokenID, "token-id", "", "Collateral token id")
	cmd.Flags().StringVar(&req.DenominationAsset, "asset", "", "Denomination token address")
	cmd.Flags().StringVar(&req.Principal, "principal", "", "Minimum principal in base units")
	cmd.Flags().StringVar(&req.Rate, "rate", "", "Maximum yearly rate in tenths of a percent")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Minimum duration, e.g. 720h")
	cmd.Flags().StringVar(&req.Recipient, "recipient", "", "Receiver of the Borrow ticket (defaults to caller)")
	cmd.Flags().BoolVar(&req.AllowAmountIncrease, "allow-increase", false, "Let buyouts raise the principal")
	for _, name := range []string{"collateral", "token-id", "asset", "principal", "rate", "duration"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func loanLendCmd(opts *rootOptions) *cobra.Command {
	var (
		req      dto.LendRequest
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "lend <id>",
		Short: "Fund a loan or buy out its lender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loanPath(args[0], "/lend")
			if err != nil {
				return err
			}
			seconds, err := durationSeconds(duration)
			if err != nil {
				return err
			}
			req.DurationSeconds = seconds
			return newAPIClient(opts).call(cmd.Context(), http.MethodPost, path, &req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&req.Principal, "principal", "", "Principal in base units")
	cmd.Flags().StringVar(&req.Rate, "rate", "", "Yearly rate in tenths of a percent")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Duration, e.g. 720h")
	cmd.Flags().StringVar(&req.Recipient, "recipient", "", "Receiver of the Lend ticket (defaults to caller)")
	for _, name := range []string{"principal", "rate", "duration"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func loanCloseCmd(opts *rootOptions) *cobra.Command {
	var req dto.CloseLoanRequest
	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close an unfunded loan and take back the collateral",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loanPath(args[0], "/close")
			if err != nil {
				return err
			}
			return newAPIClient(opts).call(cmd.Context(), http.MethodPost, path, &req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&req.ReturnTo, "return-to", "", "Collateral destination (defaults to caller)")
	return cmd
}

func loanRepayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repay <id>",
		Short: "Repay principal plus interest and release the collateral",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loanPath(args[0], "/repay")
			if err != nil {
				return err
			}
			return newAPIClient(opts).call(cmd.Context(), http.MethodPost, path, nil, cmd.OutOrStdout())
		},
	}
}

func loanSeizeCmd(opts *rootOptions) *cobra.Command {
	var req dto.SeizeRequest
	cmd := &cobra.Command{
		Use:   "seize <id>",
		Short: "Take the collateral of a late loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loanPath(args[0], "/seize")
			if err != nil {
				return err
			}
			return newAPIClient(opts).call(cmd.Context(), http.MethodPost, path, &req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&req.To, "to", "", "Collateral destination (defaults to caller)")
	return cmd
}

func loanOwedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "owed <id>",
		Short: "Show interest and total owed now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loanPath(args[0], "/owed")
			if err != nil {
				return err
			}
			return newAPIClient(opts).call(cmd.Context(), http.MethodGet, path, nil, cmd.OutOrStdout())
		},
	}
}
