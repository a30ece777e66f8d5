package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksim/banksim/sim"
	"github.com/banksim/banksim/sim/trace"
)

// parseRunFlags registers the run flags on a fresh command, resetting every
// flag variable to its default, and parses args.
func parseRunFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	registerRunFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func writeOverrides(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestResolveConfig_DefaultsToBaselinePreset(t *testing.T) {
	c := parseRunFlags(t)

	cfg, err := resolveConfig(c)

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestResolveConfig_PresetFlag(t *testing.T) {
	c := parseRunFlags(t, "--preset", sim.PresetBasel)

	cfg, err := resolveConfig(c)

	require.NoError(t, err)
	want, err := sim.PresetConfig(sim.PresetBasel)
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}

func TestResolveConfig_UnknownPreset(t *testing.T) {
	c := parseRunFlags(t, "--preset", "no-such-policy")

	_, err := resolveConfig(c)

	assert.ErrorContains(t, err, "no-such-policy")
}

func TestResolveConfig_ExplicitFlagsOverrideYAML(t *testing.T) {
	// GIVEN a YAML file that sets seed, cycles and bank count
	path := writeOverrides(t, `
seed: 7
cycles: 30
banks:
  count: 12
rates:
  interbank: 0.03
`)

	// WHEN only --seed is passed on the command line
	c := parseRunFlags(t, "--config", path, "--seed", "99")
	cfg, err := resolveConfig(c)

	// THEN the flag wins for seed and YAML wins everywhere else
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 30, cfg.Cycles)
	assert.Equal(t, 12, cfg.NumBanks)
	assert.Equal(t, 0.03, cfg.Rates.Interbank)
}

func TestResolveConfig_UnsetFlagsKeepPresetValues(t *testing.T) {
	c := parseRunFlags(t, "--banks", "8")

	cfg, err := resolveConfig(c)

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.NumBanks)
	assert.Equal(t, sim.DefaultConfig().Cycles, cfg.Cycles)
	assert.Equal(t, sim.DefaultConfig().Seed, cfg.Seed)
}

func TestResolveConfig_PresetPrecedence(t *testing.T) {
	path := writeOverrides(t, "preset: basel\n")

	t.Run("file preset used when flag unset", func(t *testing.T) {
		cfg, err := resolveConfig(parseRunFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, sim.PresetBasel, cfg.Preset)
	})

	t.Run("flag beats file", func(t *testing.T) {
		cfg, err := resolveConfig(parseRunFlags(t, "--config", path, "--preset", sim.PresetLowSpread))
		require.NoError(t, err)
		assert.Equal(t, sim.PresetLowSpread, cfg.Preset)
	})
}

func TestResolveConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		args []string
	}{
		{name: "unknown YAML key", yaml: "banks:\n  cuont: 3\n"},
		{name: "invalid value", yaml: "depositors:\n  withdrawal_probability: 1.5\n"},
		{name: "invalid flag value", yaml: "", args: []string{"--banks", "0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"--config", writeOverrides(t, tc.yaml)}, tc.args...)
			_, err := resolveConfig(parseRunFlags(t, args...))
			assert.Error(t, err)
		})
	}
}

func TestResolveConfig_MissingFile(t *testing.T) {
	c := parseRunFlags(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := resolveConfig(c)

	assert.Error(t, err)
}

func TestPrintPresets_ListsEveryPreset(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, printPresets(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(sim.PresetNames())+1, "header plus one line per preset")
	assert.True(t, strings.HasPrefix(lines[0], "PRESET"))
	for i, name := range sim.PresetNames() {
		assert.True(t, strings.HasPrefix(lines[i+1], name+" "), "line %d: %q", i+1, lines[i+1])
	}
}

func TestPrintTraceSummary(t *testing.T) {
	// GIVEN a trace in which strategy 3 was chosen most often
	cfg := sim.DefaultConfig()
	catalog := sim.NewCatalog(cfg.Learning)
	st := trace.NewSectorTrace(trace.TraceLevelBanks)
	for _, idx := range []int{3, 3, 5} {
		st.RecordBank(trace.BankCycleRecord{StrategyIndex: idx, ROE: 0.1})
	}
	st.RecordLiquidation(trace.LiquidationRecord{PayoutRatio: 0.5, DepositorLoss: 2})

	// WHEN the summary is printed
	var buf bytes.Buffer
	printTraceSummary(&buf, trace.Summarize(st), catalog)
	out := buf.String()

	// THEN it reports counts and ranks strategies by frequency
	assert.Contains(t, out, "Bank Cycles          : 3")
	assert.Contains(t, out, "Mean Payout Ratio    : 0.5000")
	first := strings.Index(out, catalog.At(3).String())
	second := strings.Index(out, catalog.At(5).String())
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestResolveConfig_ExampleFileIsValid(t *testing.T) {
	c := parseRunFlags(t, "--config", filepath.Join("..", "configs", "example.yaml"))

	cfg, err := resolveConfig(c)

	require.NoError(t, err)
	assert.Equal(t, sim.PresetBasel, cfg.Preset)
	assert.Equal(t, 40, cfg.NumBanks)
	assert.Equal(t, "risk-sorted", cfg.InterbankPriority)
	assert.Equal(t, 0.07, cfg.HighRisk.DefaultRate)
}
