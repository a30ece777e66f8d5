package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigOverrides_ParsesNestedSections(t *testing.T) {
	// GIVEN a YAML file touching several sections
	path := writeYAML(t, `
preset: basel
seed: 7
cycles: 12
banks:
  count: 5
  adaptive: false
rates:
  interbank: 0.02
central_bank:
  minimum_capital_ratio: 0.08
loans:
  high_risk:
    default_rate: 0.1
    loss_given_default: 0.5
    loan_interest_rate: 0.12
    risk_weight: 1.5
    bank_run_write_down: 0.1
`)

	// WHEN loaded and applied to the baseline
	o, err := LoadConfigOverrides(path)
	require.NoError(t, err)
	cfg := o.Apply(DefaultConfig())

	// THEN set values are written and everything else is untouched
	assert.Equal(t, "basel", o.Preset)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 12, cfg.Cycles)
	assert.Equal(t, 5, cfg.NumBanks)
	assert.False(t, cfg.AdaptiveBanks)
	assert.Equal(t, 0.02, cfg.Rates.Interbank)
	assert.Equal(t, 0.005, cfg.Rates.Deposit)
	assert.Equal(t, 0.08, cfg.CentralBank.MinimumCapitalRatio)
	assert.Equal(t, 0.1, cfg.HighRisk.DefaultRate)
	assert.Equal(t, "high-risk", cfg.HighRisk.Name, "missing tier name keeps the base name")
	assert.Equal(t, DefaultConfig().LowRisk, cfg.LowRisk)
}

func TestLoadConfigOverrides_UnknownKey_Rejected(t *testing.T) {
	path := writeYAML(t, "rates:\n  deposit: 0.01\n  mortgage: 0.03\n")
	_, err := LoadConfigOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mortgage")
}

func TestLoadConfigOverrides_EmptyFile_NoOverrides(t *testing.T) {
	o, err := LoadConfigOverrides(writeYAML(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), o.Apply(DefaultConfig()))
}

func TestLoadConfigOverrides_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadConfigOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfigOverrides_Apply_DoesNotMutateBase(t *testing.T) {
	banks := 3
	withdraw := 0.5
	o := &ConfigOverrides{
		Banks:      BankOverrides{Count: &banks},
		Depositors: DepositorOverrides{WithdrawalProbability: &withdraw},
	}
	base := DefaultConfig()

	cfg := o.Apply(base)

	assert.Equal(t, 3, cfg.NumBanks)
	assert.Equal(t, 0.5, cfg.Depositors.WithdrawalProbability)
	assert.Equal(t, DefaultConfig(), base)
}

func TestConfigOverrides_Apply_NilReceiver(t *testing.T) {
	var o *ConfigOverrides
	assert.Equal(t, DefaultConfig(), o.Apply(DefaultConfig()))
}

func TestLoadConfigOverrides_PartialTier_KeepsOtherFields(t *testing.T) {
	// GIVEN a YAML file setting one field of the low-risk tier
	path := writeYAML(t, "loans:\n  low_risk:\n    default_rate: 0.05\n")

	// WHEN loaded and applied to the baseline
	o, err := LoadConfigOverrides(path)
	require.NoError(t, err)
	cfg := o.Apply(DefaultConfig())

	// THEN only that field moves
	want := DefaultConfig().LowRisk
	want.DefaultRate = 0.05
	assert.Equal(t, want, cfg.LowRisk)
	assert.Equal(t, 0.06, cfg.LowRisk.LoanInterestRate)
	assert.Equal(t, 0.8, cfg.LowRisk.RiskWeight)
	assert.Equal(t, DefaultConfig().HighRisk, cfg.HighRisk)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides_UnknownTierKey_Rejected(t *testing.T) {
	path := writeYAML(t, "loans:\n  high_risk:\n    default_rat: 0.1\n")
	_, err := LoadConfigOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_rat")
}
