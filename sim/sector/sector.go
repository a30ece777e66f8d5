// Package sector steps a population of banks through settlement cycles and
// hosts the default interbank, central-bank and depositor collaborators.
package sector

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/banksim/banksim/sim"
	"github.com/banksim/banksim/sim/recorder"
	"github.com/banksim/banksim/sim/trace"
)

// Options configures how a Sector runs. Nil collaborators are replaced by
// the defaults derived from the Config.
type Options struct {
	// Workers bounds the per-phase fan-out; 0 means one per CPU.
	Workers    int
	TraceLevel trace.TraceLevel
	Recorder   recorder.Recorder

	Withdrawals WithdrawalProcess
	Clearing    ClearingHouse
	CentralBank CentralBank
	Insurer     DepositInsurer
}

// Sector orchestrates the bank population through Cycles cycles. Per-bank
// phase work fans out across workers between barriers; interbank clearing,
// the discount window, fire sales and liquidation run serially in bank-id
// order, so results do not depend on the number of workers.
type Sector struct {
	cfg     sim.Config
	catalog *sim.Catalog
	rng     *sim.PartitionedRNG
	banks   []*sim.Bank
	active  []*sim.Bank
	workers int

	withdrawals WithdrawalProcess
	clearing    ClearingHouse
	centralBank CentralBank
	insurer     DepositInsurer
	recorder    recorder.Recorder

	trace   *trace.SectorTrace
	metrics *Metrics
	runID   string
	hasRun  bool
}

// NewSector validates cfg and builds the bank population.
func NewSector(cfg sim.Config, opts Options) (*Sector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", opts.Workers)
	}
	if !trace.IsValidTraceLevel(string(opts.TraceLevel)) {
		return nil, fmt.Errorf("unknown trace level %q", opts.TraceLevel)
	}

	s := &Sector{
		cfg:         cfg,
		catalog:     sim.NewCatalog(cfg.Learning),
		rng:         sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
		workers:     opts.Workers,
		withdrawals: opts.Withdrawals,
		clearing:    opts.Clearing,
		centralBank: opts.CentralBank,
		insurer:     opts.Insurer,
		recorder:    opts.Recorder,
		trace:       trace.NewSectorTrace(opts.TraceLevel),
		metrics:     NewMetrics(),
	}
	if s.workers == 0 {
		s.workers = runtime.NumCPU()
	}
	if s.withdrawals == nil {
		s.withdrawals = RandomWithdrawals{
			Probability: cfg.Depositors.WithdrawalProbability,
			Fraction:    cfg.Depositors.AmountWithdrawn,
		}
	}
	if s.clearing == nil {
		s.clearing = NewInterbankMarket(cfg.InterbankPriority, cfg.ClearingGuaranteeAvailable,
			s.rng.ForSubsystem(sim.SubsystemClearing))
	}
	if s.centralBank == nil {
		s.centralBank = DiscountWindow{
			Offered:                  cfg.CentralBank.OffersDiscountWindow,
			CapitalRequirementActive: cfg.CentralBank.CapitalRequirementActive,
			MinimumCapitalRatio:      cfg.CentralBank.MinimumCapitalRatio,
		}
	}
	if s.insurer == nil {
		if cfg.CentralBank.DepositInsurance {
			s.insurer = FullInsurance{}
		} else {
			s.insurer = NoInsurance{}
		}
	}
	if s.recorder == nil {
		s.recorder = recorder.NewNoopRecorder()
	}

	// Every stream is created here, before any fan-out touches it.
	s.banks = buildBanks(&s.cfg, s.catalog, s.rng)
	s.active = append([]*sim.Bank(nil), s.banks...)
	return s, nil
}

// Banks returns every bank in id order, liquidated ones included.
func (s *Sector) Banks() []*sim.Bank { return s.banks }

// Active returns the banks that have not been liquidated, in id order.
func (s *Sector) Active() []*sim.Bank { return s.active }

// Catalog returns the strategy catalog shared by all banks.
func (s *Sector) Catalog() *sim.Catalog { return s.catalog }

// Trace returns the collected decision trace (empty unless tracing is on).
func (s *Sector) Trace() *trace.SectorTrace { return s.trace }

// RunID returns the recorder's identifier for this run ("" without a database).
func (s *Sector) RunID() string { return s.runID }

// Metrics returns the per-cycle sector metrics.
// Panics if called before Run().
func (s *Sector) Metrics() *Metrics {
	if !s.hasRun {
		panic("Sector.Metrics() called before Run()")
	}
	return s.metrics
}

// Run executes the configured number of cycles. It stops early when every
// bank has been liquidated. A non-finite ledger value or a cancelled context
// aborts the run with an error.
// Panics if called more than once.
func (s *Sector) Run(ctx context.Context) error {
	if s.hasRun {
		panic("Sector.Run() called more than once")
	}
	s.hasRun = true

	s.beginRecording()
	logrus.Infof("sector run: preset=%s seed=%d banks=%d cycles=%d workers=%d",
		s.cfg.Preset, s.cfg.Seed, len(s.banks), s.cfg.Cycles, s.workers)

	for cycle := 0; cycle < s.cfg.Cycles; cycle++ {
		if len(s.active) == 0 {
			logrus.Infof("every bank liquidated after %d cycles", cycle)
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(ctx, cycle); err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
	}
	logrus.Infof("sector run finished: %d of %d banks active", len(s.active), len(s.banks))
	return nil
}

func (s *Sector) beginRecording() {
	cfgYAML, err := yaml.Marshal(s.cfg)
	if err != nil {
		logrus.Warnf("serialize config for recorder: %v", err)
	}
	id, err := s.recorder.BeginRun(recorder.RunInfo{
		Preset:    s.cfg.Preset,
		Seed:      s.cfg.Seed,
		Cycles:    s.cfg.Cycles,
		NumBanks:  s.cfg.NumBanks,
		StartedAt: time.Now(),
		Config:    cfgYAML,
	})
	if err != nil {
		s.recorderFailed(err)
		return
	}
	s.runID = id
}

// recorderFailed logs err and stops recording for the rest of the run.
func (s *Sector) recorderFailed(err error) {
	logrus.Warnf("recorder disabled: %v", err)
	s.recorder = recorder.NewNoopRecorder()
}

// fanOut runs fn on every active bank with at most s.workers in flight and
// waits for all of them: the barrier between two phases.
func (s *Sector) fanOut(ctx context.Context, fn func(b *sim.Bank) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, b := range s.active {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(b)
		})
	}
	return g.Wait()
}

// step runs one cycle: RESET and PERIOD_0, PERIOD_1, serial settlement,
// PERIOD_2, then CYCLE_END with insolvency resolution.
func (s *Sector) step(ctx context.Context, cycle int) error {
	rec := trace.CycleRecord{Cycle: cycle, ActiveBanks: len(s.active)}

	err := s.fanOut(ctx, func(b *sim.Bank) error {
		b.Reset()
		b.Period0()
		return b.CheckLedger()
	})
	if err != nil {
		return err
	}

	err = s.fanOut(ctx, func(b *sim.Bank) error {
		s.withdrawals.Withdraw(b)
		b.Period1()
		return b.CheckLedger()
	})
	if err != nil {
		return err
	}

	s.settle(&rec)

	err = s.fanOut(ctx, func(b *sim.Bank) error {
		b.Period2()
		b.EndCycle()
		return b.CheckLedger()
	})
	if err != nil {
		return err
	}

	s.resolve(cycle, &rec)
	return nil
}

// settle funds the shortfalls left after the liquid-asset draw: interbank
// market, then discount window, then fire sale.
func (s *Sector) settle(rec *trace.CycleRecord) {
	if s.cfg.InterbankMarketAvailable {
		rec.InterbankVolume = s.clearing.Clear(s.active)
	}
	rec.DiscountWindowVolume = s.centralBank.Lend(s.active)
	for _, b := range s.active {
		if !b.IsShort() || !s.cfg.SellIlliquidAssets {
			continue
		}
		need := -b.LiquidityNeeds()
		proceeds := b.SellIlliquidAssets()
		rec.FireSaleProceeds += proceeds
		logrus.Debugf("bank %d: fire sale raised %.6f of %.6f", b.ID, proceeds, need)
	}
	for _, b := range s.active {
		if b.IsShort() {
			rec.ShortBanks++
		}
	}
	if rec.ShortBanks > 0 {
		logrus.Warnf("cycle %d: %d banks left short after settlement", rec.Cycle, rec.ShortBanks)
	}
}

// resolve records every outcome and liquidates insolvent banks in id order.
func (s *Sector) resolve(cycle int, rec *trace.CycleRecord) {
	outcomes := make([]sim.CycleOutcome, len(s.active))
	bankRecords := make([]trace.BankCycleRecord, len(s.active))
	for i, b := range s.active {
		o := b.Outcome()
		outcomes[i] = o
		bankRecords[i] = bankRecord(cycle, o)
	}
	observeOutcomes(rec, outcomes)

	if s.trace.Enabled() {
		for _, r := range bankRecords {
			s.trace.RecordBank(r)
		}
	}

	survivors := s.active[:0]
	var liquidations []trace.LiquidationRecord
	for i, b := range s.active {
		if !outcomes[i].Insolvent() {
			survivors = append(survivors, b)
			continue
		}
		liquidations = append(liquidations, s.liquidate(cycle, b))
	}
	s.active = survivors

	for i := range liquidations {
		rec.Liquidations++
		rec.InsuranceOutlay += liquidations[i].InsuranceOutlay
	}

	if err := s.recorder.RecordCycle(rec, bankRecords); err != nil {
		s.recorderFailed(err)
	}
	for i := range liquidations {
		if s.trace.Enabled() {
			s.trace.RecordLiquidation(liquidations[i])
		}
		if err := s.recorder.RecordLiquidation(&liquidations[i]); err != nil {
			s.recorderFailed(err)
		}
	}
	s.metrics.Cycles = append(s.metrics.Cycles, *rec)

	logrus.Infof("cycle %d: active=%d liquidated=%d runs=%d fire sales=%d interbank=%.4f discount window=%.4f",
		cycle, rec.ActiveBanks, rec.Liquidations, rec.BankRuns, rec.FireSales,
		rec.InterbankVolume, rec.DiscountWindowVolume)
}

// liquidate winds up b and compensates its depositors.
func (s *Sector) liquidate(cycle int, b *sim.Bank) trace.LiquidationRecord {
	depositors := b.Depositors()
	claims := make([]float64, len(depositors))
	for i, d := range depositors {
		claims[i] = d.Balance
	}

	res := b.Liquidate()
	outlay := s.insurer.Cover(b, claims)
	logrus.Debugf("bank %d liquidated: payout ratio %.4f, insurance %.4f", b.ID, res.PayoutRatio, outlay)

	return trace.LiquidationRecord{
		Cycle:                  cycle,
		BankID:                 b.ID,
		Estate:                 res.Estate,
		PayoutRatio:            res.PayoutRatio,
		ResidualDiscountWindow: res.ResidualDiscountWindow,
		ResidualInterbank:      res.ResidualInterbank,
		DepositorLoss:          res.DepositorLoss(),
		InsuranceOutlay:        outlay,
	}
}

func bankRecord(cycle int, o sim.CycleOutcome) trace.BankCycleRecord {
	return trace.BankCycleRecord{
		Cycle:          cycle,
		BankID:         o.BankID,
		StrategyIndex:  o.StrategyIndex,
		Alpha:          o.Strategy.Alpha(),
		Beta:           o.Strategy.Beta(),
		Gamma:          o.Strategy.Gamma(),
		CapitalRatio:   o.CapitalRatio,
		Profit:         o.Profit,
		ROE:            o.ProfitFraction,
		LiquidityNeeds: o.LiquidityNeeds,
		InterbankLoan:  o.Sheet.Interbank,
		DiscountWindow: o.Sheet.DiscountWindow,
		BankRun:        o.BankRun,
		FireSale:       o.FireSale,
		Insolvent:      o.Insolvent(),
	}
}
