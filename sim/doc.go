// Package sim provides the bank balance-sheet engine for banksim.
//
// # Reading Guide
//
// Start with these files to understand a single bank:
//   - balance_sheet.go: the signed ledger (assets > 0, liabilities < 0) and solvency predicates
//   - bank.go: the Bank agent, its phase steps and balance-sheet construction
//   - liquidity.go: withdrawals, the liquid-asset draw, interbank and discount-window
//     settlement, and the loan fire sale
//   - profit.go / liquidation.go: end-of-cycle profit feedback and the insolvency waterfall
//
// # Architecture
//
// The sim package holds everything one bank owns; the sector that steps many
// banks through a cycle lives in a sub-package:
//   - sim/sector/: cycle orchestration, clearing house, central bank, deposit insurer
//   - sim/trace/: per-cycle decision records
//   - sim/recorder/: persistent run storage
//
// Every bank carries its own RNG stream (see PartitionedRNG), so banks can be
// stepped concurrently between phase barriers and still reproduce exactly.
//
// # Key Types
//
//   - Config: exogenous parameters, named presets and YAML overrides
//   - Catalog / Selector: the (alpha, beta, gamma) strategy grid and EWA learning over it
//   - LoanBook / CorporateClient: per-tier borrower pools
//   - Phase: RESET -> PERIOD_0 -> PERIOD_1 -> PERIOD_2 -> CYCLE_END, or LIQUIDATED
package sim
