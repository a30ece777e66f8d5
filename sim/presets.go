package sim

import (
	"fmt"
	"sort"
)

// Named policy presets.
const (
	PresetHighSpread                = "high-spread"
	PresetLowSpread                 = "low-spread"
	PresetClearingHouse             = "clearing-house"
	PresetClearingHouseLowSpread    = "clearing-house-low-spread"
	PresetBasel                     = "basel"
	PresetBaselBenchmark            = "basel-benchmark"
	PresetDepositInsurance          = "deposit-insurance"
	PresetDepositInsuranceBenchmark = "deposit-insurance-benchmark"
	PresetRestrictiveMonetaryPolicy = "restrictive-monetary-policy"
	PresetExpansiveMonetaryPolicy   = "expansive-monetary-policy"
)

// presets maps each preset name to the edits it makes on top of DefaultConfig.
// Each function receives a fresh copy, so presets never share state.
//
// Tier edits are written to whichever pool the preset runs on: the spread and
// Basel presets shift every tier, standard included, so the edit reaches the
// banks whether or not dual_risk_pool is later overridden.
var presets = map[string]func(*Config){
	PresetHighSpread: func(*Config) {},
	PresetLowSpread: func(c *Config) {
		narrowSpread(c)
	},
	PresetClearingHouse: func(c *Config) {
		c.ClearingGuaranteeAvailable = true
	},
	PresetClearingHouseLowSpread: func(c *Config) {
		c.ClearingGuaranteeAvailable = true
		narrowSpread(c)
	},
	PresetBasel: func(c *Config) {
		c.DualRiskPool = true
		c.CentralBank.CapitalRequirementActive = true
		c.InterbankPriority = "risk-sorted"
		raiseDefaultRates(c)
	},
	PresetBaselBenchmark: func(c *Config) {
		c.DualRiskPool = true
		raiseDefaultRates(c)
	},
	PresetDepositInsurance: func(c *Config) {
		c.CentralBank.DepositInsurance = true
	},
	PresetDepositInsuranceBenchmark: func(c *Config) {
		c.CentralBank.DepositInsurance = false
	},
	PresetRestrictiveMonetaryPolicy: func(c *Config) {
		c.Rates.Interbank = 0.02
		c.LowRisk.DefaultRate = 0.06
		c.HighRisk.DefaultRate = 0.10
		c.HighRisk.LoanInterestRate = 0.10
		c.LowRisk.LoanInterestRate = 0.08
		c.Depositors.WithdrawalProbability = 0.20
	},
	PresetExpansiveMonetaryPolicy: func(c *Config) {
		c.Rates.Interbank = 0.005
		c.LowRisk.DefaultRate = 0.02
		c.HighRisk.DefaultRate = 0.03
		c.HighRisk.LoanInterestRate = 0.12
		c.LowRisk.LoanInterestRate = 0.045
		c.Depositors.WithdrawalProbability = 0.10
	},
}

// lowSpreadCut is how far the low-spread presets lower every loan rate.
const lowSpreadCut = 0.02

// baselDefaultRise is how far the Basel presets raise every default rate.
const baselDefaultRise = 0.01

// narrowSpread lowers the loan rate of every tier, taking the standard tier
// from 0.08 to 0.06.
func narrowSpread(c *Config) {
	for _, t := range []*RiskTier{&c.LowRisk, &c.HighRisk, &c.Standard} {
		t.LoanInterestRate -= lowSpreadCut
	}
}

// raiseDefaultRates raises the default rate of every tier, taking the
// standard tier from 0.04 to 0.05.
func raiseDefaultRates(c *Config) {
	for _, t := range []*RiskTier{&c.LowRisk, &c.HighRisk, &c.Standard} {
		t.DefaultRate += baselDefaultRise
	}
}

// PresetConfig returns a new Config for the named preset.
// An empty name selects the high-spread baseline.
func PresetConfig(name string) (Config, error) {
	if name == "" {
		name = PresetHighSpread
	}
	edit, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown preset %q; valid: %v", name, PresetNames())
	}
	cfg := DefaultConfig()
	edit(&cfg)
	cfg.Preset = name
	return cfg, nil
}

// PresetNames lists the recognised preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
