package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bengbengle/nft-lend/internal/adapter/http/dto"
	"github.com/bengbengle/nft-lend/internal/domain"
)

func protocolCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocol",
		Short: "Protocol parameters and origination fees",
	}

	cmd.AddCommand(
		protocolParamsCmd(opts),
		protocolFeeRateCmd(opts),
		protocolImprovementRateCmd(opts),
		protocolFeesCmd(opts),
		protocolWithdrawCmd(opts),
	)
	return cmd
}

func protocolParamsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show manager, fee rate and buyout improvement rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).call(cmd.Context(), http.MethodGet, "/api/v1/protocol", nil, cmd.OutOrStdout())
		},
	}
}

func protocolFeeRateCmd(opts *rootOptions) *cobra.Command {
	var percent bool
	cmd := &cobra.Command{
		Use:   "fee-rate <rate>",
		Short: "Set the origination fee rate (manager only)",
		Long: `Set the origination fee rate. The rate is in tenths of a percent
(10 = 1%) unless --percent is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateFeeRateRequest
			if percent {
				p, err := decimal.NewFromString(args[0])
				if err != nil {
					return fmt.Errorf("%w: rate %q", domain.ErrInvalidParameter, args[0])
				}
				req.RatePercent = &p
			} else {
				req.Rate = args[0]
			}
			return newAPIClient(opts).call(cmd.Context(), http.MethodPut, "/api/v1/protocol/fee-rate", &req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&percent, "percent", false, "Interpret the rate as a percentage, e.g. 2.5")
	return cmd
}

func protocolImprovementRateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "improvement-rate <percent>",
		Short: "Set the minimum buyout improvement in percent (manager only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: rate %q", domain.ErrInvalidParameter, args[0])
			}
			req := dto.UpdateImprovementRateRequest{Rate: rate}
			return newAPIClient(opts).call(cmd.Context(), http.MethodPut, "/api/v1/protocol/improvement-rate", &req, cmd.OutOrStdout())
		},
	}
}

func protocolFeesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fees <asset>",
		Short: "Show collected origination fees for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := domain.ParseAddress(args[0])
			if err != nil {
				return err
			}
			return newAPIClient(opts).call(cmd.Context(), http.MethodGet, "/api/v1/protocol/fees/"+asset.Hex(), nil, cmd.OutOrStdout())
		},
	}
}

func protocolWithdrawCmd(opts *rootOptions) *cobra.Command {
	var req dto.WithdrawFeesRequest
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw collected origination fees (manager only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAPIClient(opts).call(cmd.Context(), http.MethodPost, "/api/v1/protocol/fees/withdraw", &req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&req.Asset, "asset", "", "Fee asset address")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount in base units")
	cmd.Flags().StringVar(&req.To, "to", "", "Destination address")
	for _, name := range []string{"asset", "amount", "to"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
