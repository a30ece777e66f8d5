package sim

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PresetHighSpread, cfg.Preset)
	assert.Equal(t, 30*20*30, NewCatalog(cfg.Learning).Len())
}

func TestPresetConfig_EveryPresetIsValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, err := PresetConfig(name)
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Preset)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestPresetConfig_UnknownName_ReturnsError(t *testing.T) {
	_, err := PresetConfig("too-big-to-fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
}

func TestPresetConfig_EmptyName_SelectsHighSpread(t *testing.T) {
	cfg, err := PresetConfig("")
	require.NoError(t, err)
	assert.Equal(t, PresetHighSpread, cfg.Preset)
}

func TestPresetConfig_AppliesEdits(t *testing.T) {
	// GIVEN the baseline economy
	base := DefaultConfig()

	tests := []struct {
		preset string
		check  func(t *testing.T, cfg Config)
	}{
		{PresetBasel, func(t *testing.T, cfg Config) {
			assert.True(t, cfg.CentralBank.CapitalRequirementActive)
			assert.Equal(t, "risk-sorted", cfg.InterbankPriority)
		}},
		{PresetDepositInsuranceBenchmark, func(t *testing.T, cfg Config) {
			assert.False(t, cfg.CentralBank.DepositInsurance)
		}},
		{PresetRestrictiveMonetaryPolicy, func(t *testing.T, cfg Config) {
			assert.Equal(t, 0.02, cfg.Rates.Interbank)
			assert.Equal(t, 0.10, cfg.HighRisk.DefaultRate)
			assert.Equal(t, 0.20, cfg.Depositors.WithdrawalProbability)
		}},
		{PresetExpansiveMonetaryPolicy, func(t *testing.T, cfg Config) {
			assert.Equal(t, 0.005, cfg.Rates.Interbank)
			assert.Equal(t, 0.045, cfg.LowRisk.LoanInterestRate)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.preset, func(t *testing.T) {
			// WHEN the preset is built
			cfg, err := PresetConfig(tc.preset)
			require.NoError(t, err)
			// THEN its edits are present
			tc.check(t, cfg)
		})
	}

	// AND building presets never mutates the baseline
	assert.Equal(t, base, DefaultConfig())
}

func TestPresetConfig_TierEditsReachTheBanks(t *testing.T) {
	tests := []struct {
		preset, baseline string
		check            func(t *testing.T, tier, base RiskTier)
	}{
		{PresetLowSpread, PresetHighSpread, func(t *testing.T, tier, base RiskTier) {
			assert.InDelta(t, base.LoanInterestRate-0.02, tier.LoanInterestRate, 1e-12, tier.Name)
			assert.Equal(t, base.DefaultRate, tier.DefaultRate, tier.Name)
		}},
		{PresetClearingHouseLowSpread, PresetClearingHouse, func(t *testing.T, tier, base RiskTier) {
			assert.InDelta(t, base.LoanInterestRate-0.02, tier.LoanInterestRate, 1e-12, tier.Name)
		}},
		{PresetBasel, PresetHighSpread, func(t *testing.T, tier, base RiskTier) {
			assert.InDelta(t, base.DefaultRate+0.01, tier.DefaultRate, 1e-12, tier.Name)
			assert.Equal(t, base.LoanInterestRate, tier.LoanInterestRate, tier.Name)
		}},
		{PresetBaselBenchmark, PresetHighSpread, func(t *testing.T, tier, base RiskTier) {
			assert.InDelta(t, base.DefaultRate+0.01, tier.DefaultRate, 1e-12, tier.Name)
		}},
	}
	for _, tc := range tests {
		for _, dual := range []bool{true, false} {
			t.Run(fmt.Sprintf("%s/dual=%v", tc.preset, dual), func(t *testing.T) {
				// GIVEN the preset and its baseline on the same pool layout
				cfg, err := PresetConfig(tc.preset)
				require.NoError(t, err)
				base, err := PresetConfig(tc.baseline)
				require.NoError(t, err)
				cfg.DualRiskPool, base.DualRiskPool = dual, dual

				// WHEN the tiers the banks lend to are resolved
				tiers, baseTiers := cfg.Tiers(), base.Tiers()

				// THEN every one of them carries the preset's edit
				require.Len(t, tiers, len(baseTiers))
				assert.NotEqual(t, baseTiers, tiers)
				for i := range tiers {
					tc.check(t, tiers[i], baseTiers[i])
				}
			})
		}
	}
}

func TestPresetConfig_TiersStayValid(t *testing.T) {
	for _, name := range []string{PresetLowSpread, PresetBasel} {
		cfg, err := PresetConfig(name)
		require.NoError(t, err)
		for _, tier := range []RiskTier{cfg.LowRisk, cfg.HighRisk, cfg.Standard} {
			assert.Positive(t, tier.LoanInterestRate, "%s %s", name, tier.Name)
			assert.Less(t, tier.DefaultRate, 1.0, "%s %s", name, tier.Name)
		}
	}
}

func TestConfig_Tiers(t *testing.T) {
	cfg := DefaultConfig()
	tiers := cfg.Tiers()
	require.Len(t, tiers, 2)
	assert.Equal(t, "low-risk", tiers[0].Name)
	assert.Equal(t, "high-risk", tiers[1].Name)

	cfg.DualRiskPool = false
	tiers = cfg.Tiers()
	require.Len(t, tiers, 1)
	assert.Equal(t, "standard", tiers[0].Name)
}

func TestConfig_Validate_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"no banks", func(c *Config) { c.NumBanks = 0 }, "number of banks"},
		{"negative cycles", func(c *Config) { c.Cycles = -1 }, "cycles"},
		{"no depositors", func(c *Config) { c.NumDepositorsPerBank = 0 }, "depositors per bank"},
		{"no clients", func(c *Config) { c.NumCorporateClientsPerBank = 0 }, "corporate clients"},
		{"unknown size distribution", func(c *Config) { c.BankSizeDistribution = "pareto" }, "bank size distribution"},
		{"unknown priority", func(c *Config) { c.InterbankPriority = "fifo" }, "interbank priority"},
		{"NaN deposit rate", func(c *Config) { c.Rates.Deposit = math.NaN() }, "rates.deposit"},
		{"Inf minimum ratio", func(c *Config) { c.CentralBank.MinimumCapitalRatio = math.Inf(1) }, "minimum_capital_ratio"},
		{"discount of -100%", func(c *Config) { c.IlliquidAssetDiscountRate = -1 }, "illiquid_asset_discount_rate"},
		{"withdrawal probability above 1", func(c *Config) { c.Depositors.WithdrawalProbability = 1.5 }, "withdrawal_probability"},
		{"negative cash weight", func(c *Config) { c.CashRiskWeight = -0.1 }, "cash_risk_weight"},
		{"zero decay", func(c *Config) { c.Learning.Decay = 0 }, "learning.decay"},
		{"decay above 1", func(c *Config) { c.Learning.Decay = 1.01 }, "learning.decay"},
		{"empty catalog dimension", func(c *Config) { c.Learning.BetaOptions = 0 }, "catalog dimensions"},
		{"coarse resolution", func(c *Config) { c.Learning.Resolution = 10 }, "learning.resolution"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
