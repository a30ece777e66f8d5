package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banksim/banksim/sim"
)

// presetsCmd lists the named policy presets and their distinguishing settings
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the named policy presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printPresets(cmd.OutOrStdout())
	},
}

func printPresets(w io.Writer) error {
	fmt.Fprintf(w, "%-30s %-6s %-8s %-9s %-9s %-11s %-9s %s\n",
		"PRESET", "POOLS", "CAPITAL", "GUARANTEE", "INSURANCE", "PRIORITY", "INTERBANK", "WITHDRAW")
	for _, name := range sim.PresetNames() {
		cfg, err := sim.PresetConfig(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-30s %-6d %-8s %-9s %-9s %-11s %-9.4f %.2f\n",
			name,
			len(cfg.Tiers()),
			onOff(cfg.CentralBank.CapitalRequirementActive),
			onOff(cfg.ClearingGuaranteeAvailable),
			onOff(cfg.CentralBank.DepositInsurance),
			cfg.InterbankPriority,
			cfg.Rates.Interbank,
			cfg.Depositors.WithdrawalProbability)
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
