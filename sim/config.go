package sim

import (
	"fmt"
	"math"
)

// MaxRiskTiers bounds the number of loan risk tiers a bank can hold.
// Dual-pool mode uses both slots (low risk first); single-pool mode uses one.
const MaxRiskTiers = 2

// RiskTier describes one pool of corporate borrowers.
type RiskTier struct {
	Name             string  `yaml:"name"`
	DefaultRate      float64 `yaml:"default_rate"`        // probability a client defaults in a cycle
	LossGivenDefault float64 `yaml:"loss_given_default"`  // fraction of principal lost on default
	LoanInterestRate float64 `yaml:"loan_interest_rate"`  // per-cycle rate paid by non-defaulting clients
	RiskWeight       float64 `yaml:"risk_weight"`         // capital-adequacy weight of this loan class
	BankRunWriteDown float64 `yaml:"bank_run_write_down"` // extra loss fraction of the loan delta on a bank run
}

// Rates groups the per-cycle interest rates supplied to the engine.
type Rates struct {
	Deposit            float64 // paid to depositors
	Interbank          float64 // charged on interbank positions
	CentralBankLending float64 // charged on discount-window debt
	LiquidAssets       float64 // earned on liquid assets
}

// CentralBankConfig groups the regulator's policy switches.
type CentralBankConfig struct {
	OffersDiscountWindow     bool
	MinimumCapitalRatio      float64
	CapitalRequirementActive bool
	DepositInsurance         bool
}

// DepositorConfig groups withdrawal behaviour.
type DepositorConfig struct {
	WithdrawalProbability float64 // chance a depositor withdraws in a cycle
	AmountWithdrawn       float64 // fraction of the balance withdrawn
	BankRunsPossible      bool
}

// LearningConfig groups the EWA learning constants and the catalog shape.
type LearningConfig struct {
	Decay        float64 // forgetting factor applied to attractions, in (0,1]
	Damping      float64 // multiplier on realised return before it feeds attraction
	AlphaOptions int
	BetaOptions  int
	GammaOptions int
	Resolution   float64 // index i maps to (i+1)/Resolution
}

// Config is the complete, per-run configuration snapshot. It is built once
// (DefaultConfig, PresetConfig, ConfigOverrides.Apply) and then only read.
type Config struct {
	Preset string

	Seed   int64
	Cycles int

	NumBanks                   int
	NumDepositorsPerBank       int
	NumCorporateClientsPerBank int
	BankSizeDistribution       string // "vanilla" or "lognormal"
	AdaptiveBanks              bool   // false = zero-intelligence banks

	Rates                     Rates
	IlliquidAssetDiscountRate float64
	SellIlliquidAssets        bool
	InterbankMarketAvailable  bool
	LimitedLiability          bool

	CentralBank                CentralBankConfig
	ClearingGuaranteeAvailable bool
	InterbankPriority          string // "random" or "risk-sorted"

	Depositors DepositorConfig

	DualRiskPool bool
	LowRisk      RiskTier
	HighRisk     RiskTier
	Standard     RiskTier

	CashRiskWeight      float64
	InterbankRiskWeight float64

	Learning LearningConfig
}

// Valid enum registries.
var (
	validBankSizeDistributions = map[string]bool{"vanilla": true, "lognormal": true}
	validInterbankPriorities   = map[string]bool{"random": true, "risk-sorted": true}
)

// DefaultConfig returns the baseline high-spread economy.
func DefaultConfig() Config {
	return Config{
		Preset:                     PresetHighSpread,
		Seed:                       42,
		Cycles:                     100,
		NumBanks:                   50,
		NumDepositorsPerBank:       100,
		NumCorporateClientsPerBank: 50,
		BankSizeDistribution:       "vanilla",
		AdaptiveBanks:              true,
		Rates: Rates{
			Deposit:            0.005,
			Interbank:          0.01,
			CentralBankLending: 0.04,
			LiquidAssets:       0,
		},
		IlliquidAssetDiscountRate: 0.15,
		SellIlliquidAssets:        true,
		InterbankMarketAvailable:  true,
		LimitedLiability:          false,
		CentralBank: CentralBankConfig{
			OffersDiscountWindow:     true,
			MinimumCapitalRatio:      -10,
			CapitalRequirementActive: true,
			DepositInsurance:         true,
		},
		ClearingGuaranteeAvailable: true,
		InterbankPriority:          "random",
		Depositors: DepositorConfig{
			WithdrawalProbability: 0.15,
			AmountWithdrawn:       1.0,
			BankRunsPossible:      true,
		},
		DualRiskPool: true,
		LowRisk: RiskTier{
			Name:             "low-risk",
			DefaultRate:      0.04,
			LossGivenDefault: 1,
			LoanInterestRate: 0.06,
			RiskWeight:       0.8,
			BankRunWriteDown: 0.02,
		},
		HighRisk: RiskTier{
			Name:             "high-risk",
			DefaultRate:      0.07,
			LossGivenDefault: 1,
			LoanInterestRate: 0.08,
			RiskWeight:       1,
			BankRunWriteDown: 0.06,
		},
		Standard: RiskTier{
			Name:             "standard",
			DefaultRate:      0.04,
			LossGivenDefault: 1,
			LoanInterestRate: 0.08,
			RiskWeight:       1,
			BankRunWriteDown: 0.04,
		},
		CashRiskWeight:      0,
		InterbankRiskWeight: 1,
		Learning: LearningConfig{
			Decay:        0.9999,
			Damping:      1,
			AlphaOptions: 30,
			BetaOptions:  20,
			GammaOptions: 30,
			Resolution:   100,
		},
	}
}

// Tiers returns the active risk tiers in increasing order of risk.
func (c *Config) Tiers() []RiskTier {
	if c.DualRiskPool {
		return []RiskTier{c.LowRisk, c.HighRisk}
	}
	return []RiskTier{c.Standard}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Cycles < 0 {
		return fmt.Errorf("cycles must be non-negative, got %d", c.Cycles)
	}
	if c.NumBanks < 1 {
		return fmt.Errorf("number of banks must be >= 1, got %d", c.NumBanks)
	}
	if c.NumDepositorsPerBank < 1 {
		return fmt.Errorf("depositors per bank must be >= 1, got %d", c.NumDepositorsPerBank)
	}
	if c.NumCorporateClientsPerBank < 1 {
		return fmt.Errorf("corporate clients per bank must be >= 1, got %d", c.NumCorporateClientsPerBank)
	}
	if !validBankSizeDistributions[c.BankSizeDistribution] {
		return fmt.Errorf("unknown bank size distribution %q; valid: vanilla, lognormal", c.BankSizeDistribution)
	}
	if !validInterbankPriorities[c.InterbankPriority] {
		return fmt.Errorf("unknown interbank priority %q; valid: random, risk-sorted", c.InterbankPriority)
	}
	finite := []struct {
		name string
		v    float64
	}{
		{"rates.deposit", c.Rates.Deposit},
		{"rates.interbank", c.Rates.Interbank},
		{"rates.central_bank_lending", c.Rates.CentralBankLending},
		{"rates.liquid_assets", c.Rates.LiquidAssets},
		{"illiquid_asset_discount_rate", c.IlliquidAssetDiscountRate},
		{"minimum_capital_ratio", c.CentralBank.MinimumCapitalRatio},
		{"learning.damping", c.Learning.Damping},
	}
	for _, f := range finite {
		if err := validateFinite(f.name, f.v); err != nil {
			return err
		}
	}
	if c.IlliquidAssetDiscountRate <= -1 {
		return fmt.Errorf("illiquid_asset_discount_rate must be > -1, got %f", c.IlliquidAssetDiscountRate)
	}
	if err := validateProbability("withdrawal_probability", c.Depositors.WithdrawalProbability); err != nil {
		return err
	}
	if err := validateProbability("amount_withdrawn", c.Depositors.AmountWithdrawn); err != nil {
		return err
	}
	if err := validateNonNegative("cash_risk_weight", c.CashRiskWeight); err != nil {
		return err
	}
	if err := validateNonNegative("interbank_risk_weight", c.InterbankRiskWeight); err != nil {
		return err
	}
	for _, tier := range c.Tiers() {
		if err := validateTier(&tier); err != nil {
			return err
		}
	}
	l := c.Learning
	if math.IsNaN(l.Decay) || l.Decay <= 0 || l.Decay > 1 {
		return fmt.Errorf("learning.decay must be in (0,1], got %f", l.Decay)
	}
	if l.AlphaOptions < 1 || l.BetaOptions < 1 || l.GammaOptions < 1 {
		return fmt.Errorf("catalog dimensions must be >= 1, got %dx%dx%d", l.AlphaOptions, l.BetaOptions, l.GammaOptions)
	}
	// Every index must map into (0,1].
	maxOptions := max(l.AlphaOptions, l.BetaOptions, l.GammaOptions)
	if l.Resolution < float64(maxOptions) {
		return fmt.Errorf("learning.resolution %f is below the largest catalog dimension %d", l.Resolution, maxOptions)
	}
	return nil
}

func validateTier(t *RiskTier) error {
	prefix := "tier " + t.Name
	if err := validateProbability(prefix+".default_rate", t.DefaultRate); err != nil {
		return err
	}
	if err := validateProbability(prefix+".loss_given_default", t.LossGivenDefault); err != nil {
		return err
	}
	if err := validateProbability(prefix+".bank_run_write_down", t.BankRunWriteDown); err != nil {
		return err
	}
	if err := validateFinite(prefix+".loan_interest_rate", t.LoanInterestRate); err != nil {
		return err
	}
	return validateNonNegative(prefix+".risk_weight", t.RiskWeight)
}

func validateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, v)
	}
	return nil
}

func validateNonNegative(name string, v float64) error {
	if err := validateFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, v)
	}
	return nil
}

func validateProbability(name string, v float64) error {
	if err := validateFinite(name, v); err != nil {
		return err
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0,1], got %f", name, v)
	}
	return nil
}
