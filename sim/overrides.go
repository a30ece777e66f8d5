package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigOverrides holds per-run configuration edits, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and leave the base Config untouched.
// Decoding is strict: unrecognised keys are rejected.
type ConfigOverrides struct {
	Preset string `yaml:"preset"`

	Seed   *int64 `yaml:"seed"`
	Cycles *int   `yaml:"cycles"`

	Banks      BankOverrides      `yaml:"banks"`
	Rates      RateOverrides      `yaml:"rates"`
	Market     MarketOverrides    `yaml:"market"`
	Regulator  RegulatorOverrides `yaml:"central_bank"`
	Depositors DepositorOverrides `yaml:"depositors"`
	Loans      LoanBookOverrides  `yaml:"loans"`
	Learning   LearningOverrides  `yaml:"learning"`
}

// BankOverrides edits the population shape.
type BankOverrides struct {
	Count                   *int    `yaml:"count"`
	DepositorsPerBank       *int    `yaml:"depositors_per_bank"`
	CorporateClientsPerBank *int    `yaml:"corporate_clients_per_bank"`
	SizeDistribution        *string `yaml:"size_distribution"`
	Adaptive                *bool   `yaml:"adaptive"`
	LimitedLiability        *bool   `yaml:"limited_liability"`
}

// RateOverrides edits the per-cycle interest rates.
type RateOverrides struct {
	Deposit            *float64 `yaml:"deposit"`
	Interbank          *float64 `yaml:"interbank"`
	CentralBankLending *float64 `yaml:"central_bank_lending"`
	LiquidAssets       *float64 `yaml:"liquid_assets"`
}

// MarketOverrides edits interbank and fire-sale behaviour.
type MarketOverrides struct {
	IlliquidAssetDiscountRate  *float64 `yaml:"illiquid_asset_discount_rate"`
	SellIlliquidAssets         *bool    `yaml:"sell_illiquid_assets"`
	InterbankMarketAvailable   *bool    `yaml:"interbank_market_available"`
	ClearingGuaranteeAvailable *bool    `yaml:"clearing_guarantee_available"`
	InterbankPriority          *string  `yaml:"interbank_priority"`
}

// RegulatorOverrides edits central-bank policy.
type RegulatorOverrides struct {
	OffersDiscountWindow     *bool    `yaml:"offers_discount_window"`
	MinimumCapitalRatio      *float64 `yaml:"minimum_capital_ratio"`
	CapitalRequirementActive *bool    `yaml:"capital_requirement_active"`
	DepositInsurance         *bool    `yaml:"deposit_insurance"`
}

// DepositorOverrides edits withdrawal behaviour.
type DepositorOverrides struct {
	WithdrawalProbability *float64 `yaml:"withdrawal_probability"`
	AmountWithdrawn       *float64 `yaml:"amount_withdrawn"`
	BankRunsPossible      *bool    `yaml:"bank_runs_possible"`
}

// LoanBookOverrides edits the risk tiers and risk weights.
type LoanBookOverrides struct {
	DualRiskPool        *bool             `yaml:"dual_risk_pool"`
	CashRiskWeight      *float64          `yaml:"cash_risk_weight"`
	InterbankRiskWeight *float64          `yaml:"interbank_risk_weight"`
	LowRisk             RiskTierOverrides `yaml:"low_risk"`
	HighRisk            RiskTierOverrides `yaml:"high_risk"`
	Standard            RiskTierOverrides `yaml:"standard"`
}

// RiskTierOverrides edits individual fields of one risk tier.
type RiskTierOverrides struct {
	Name             *string  `yaml:"name"`
	DefaultRate      *float64 `yaml:"default_rate"`
	LossGivenDefault *float64 `yaml:"loss_given_default"`
	LoanInterestRate *float64 `yaml:"loan_interest_rate"`
	RiskWeight       *float64 `yaml:"risk_weight"`
	BankRunWriteDown *float64 `yaml:"bank_run_write_down"`
}

// LearningOverrides edits EWA constants and the catalog shape.
type LearningOverrides struct {
	Decay        *float64 `yaml:"decay"`
	Damping      *float64 `yaml:"damping"`
	AlphaOptions *int     `yaml:"alpha_options"`
	BetaOptions  *int     `yaml:"beta_options"`
	GammaOptions *int     `yaml:"gamma_options"`
	Resolution   *float64 `yaml:"resolution"`
}

// LoadConfigOverrides reads and strictly parses a YAML override file.
func LoadConfigOverrides(path string) (*ConfigOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config overrides: %w", err)
	}
	var o ConfigOverrides
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config overrides: %w", err)
	}
	return &o, nil
}

// Apply returns a copy of base with every set override written over it.
func (o *ConfigOverrides) Apply(base Config) Config {
	cfg := base
	if o == nil {
		return cfg
	}
	setInt64(&cfg.Seed, o.Seed)
	setInt(&cfg.Cycles, o.Cycles)

	setInt(&cfg.NumBanks, o.Banks.Count)
	setInt(&cfg.NumDepositorsPerBank, o.Banks.DepositorsPerBank)
	setInt(&cfg.NumCorporateClientsPerBank, o.Banks.CorporateClientsPerBank)
	setString(&cfg.BankSizeDistribution, o.Banks.SizeDistribution)
	setBool(&cfg.AdaptiveBanks, o.Banks.Adaptive)
	setBool(&cfg.LimitedLiability, o.Banks.LimitedLiability)

	setFloat(&cfg.Rates.Deposit, o.Rates.Deposit)
	setFloat(&cfg.Rates.Interbank, o.Rates.Interbank)
	setFloat(&cfg.Rates.CentralBankLending, o.Rates.CentralBankLending)
	setFloat(&cfg.Rates.LiquidAssets, o.Rates.LiquidAssets)

	setFloat(&cfg.IlliquidAssetDiscountRate, o.Market.IlliquidAssetDiscountRate)
	setBool(&cfg.SellIlliquidAssets, o.Market.SellIlliquidAssets)
	setBool(&cfg.InterbankMarketAvailable, o.Market.InterbankMarketAvailable)
	setBool(&cfg.ClearingGuaranteeAvailable, o.Market.ClearingGuaranteeAvailable)
	setString(&cfg.InterbankPriority, o.Market.InterbankPriority)

	setBool(&cfg.CentralBank.OffersDiscountWindow, o.Regulator.OffersDiscountWindow)
	setFloat(&cfg.CentralBank.MinimumCapitalRatio, o.Regulator.MinimumCapitalRatio)
	setBool(&cfg.CentralBank.CapitalRequirementActive, o.Regulator.CapitalRequirementActive)
	setBool(&cfg.CentralBank.DepositInsurance, o.Regulator.DepositInsurance)

	setFloat(&cfg.Depositors.WithdrawalProbability, o.Depositors.WithdrawalProbability)
	setFloat(&cfg.Depositors.AmountWithdrawn, o.Depositors.AmountWithdrawn)
	setBool(&cfg.Depositors.BankRunsPossible, o.Depositors.BankRunsPossible)

	setBool(&cfg.DualRiskPool, o.Loans.DualRiskPool)
	setFloat(&cfg.CashRiskWeight, o.Loans.CashRiskWeight)
	setFloat(&cfg.InterbankRiskWeight, o.Loans.InterbankRiskWeight)
	o.Loans.LowRisk.apply(&cfg.LowRisk)
	o.Loans.HighRisk.apply(&cfg.HighRisk)
	o.Loans.Standard.apply(&cfg.Standard)

	setFloat(&cfg.Learning.Decay, o.Learning.Decay)
	setFloat(&cfg.Learning.Damping, o.Learning.Damping)
	setInt(&cfg.Learning.AlphaOptions, o.Learning.AlphaOptions)
	setInt(&cfg.Learning.BetaOptions, o.Learning.BetaOptions)
	setInt(&cfg.Learning.GammaOptions, o.Learning.GammaOptions)
	setFloat(&cfg.Learning.Resolution, o.Learning.Resolution)
	return cfg
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (o RiskTierOverrides) apply(t *RiskTier) {
	setString(&t.Name, o.Name)
	setFloat(&t.DefaultRate, o.DefaultRate)
	setFloat(&t.LossGivenDefault, o.LossGivenDefault)
	setFloat(&t.LoanInterestRate, o.LoanInterestRate)
	setFloat(&t.RiskWeight, o.RiskWeight)
	setFloat(&t.BankRunWriteDown, o.BankRunWriteDown)
}
