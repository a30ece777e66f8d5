package sim

import "fmt"

// Strategy is one point of the discretised strategy space: target capital
// ratio (alpha), target liquidity ratio (beta) and risk appetite (gamma).
// Strategies are immutable; learning state lives in a bank's Selector.
type Strategy struct {
	AlphaIndex int
	BetaIndex  int
	GammaIndex int
	resolution float64
}

// Alpha returns the target capital ratio in (0,1].
func (s Strategy) Alpha() float64 { return float64(s.AlphaIndex+1) / s.resolution }

// Beta returns the target liquidity ratio in (0,1].
func (s Strategy) Beta() float64 { return float64(s.BetaIndex+1) / s.resolution }

// Gamma returns the risk appetite (high-risk client share) in (0,1].
func (s Strategy) Gamma() float64 { return float64(s.GammaIndex+1) / s.resolution }

func (s Strategy) String() string {
	return fmt.Sprintf("(a=%d,b=%d,g=%d)", s.AlphaIndex, s.BetaIndex, s.GammaIndex)
}

// Catalog is the full cross-product of alpha, beta and gamma indices in a
// fixed enumeration order (alpha-major, gamma fastest). It is shared
// read-only by every bank.
type Catalog struct {
	alphaOptions int
	betaOptions  int
	gammaOptions int
	strategies   []Strategy
}

// NewCatalog builds the catalog described by l.
// Panics if any dimension is < 1 or the resolution is not positive.
func NewCatalog(l LearningConfig) *Catalog {
	if l.AlphaOptions < 1 || l.BetaOptions < 1 || l.GammaOptions < 1 {
		panic(fmt.Sprintf("NewCatalog: dimensions must be >= 1, got %dx%dx%d",
			l.AlphaOptions, l.BetaOptions, l.GammaOptions))
	}
	if !(l.Resolution > 0) {
		panic(fmt.Sprintf("NewCatalog: resolution must be positive, got %f", l.Resolution))
	}
	c := &Catalog{
		alphaOptions: l.AlphaOptions,
		betaOptions:  l.BetaOptions,
		gammaOptions: l.GammaOptions,
		strategies:   make([]Strategy, 0, l.AlphaOptions*l.BetaOptions*l.GammaOptions),
	}
	for a := 0; a < l.AlphaOptions; a++ {
		for b := 0; b < l.BetaOptions; b++ {
			for g := 0; g < l.GammaOptions; g++ {
				c.strategies = append(c.strategies, Strategy{
					AlphaIndex: a,
					BetaIndex:  b,
					GammaIndex: g,
					resolution: l.Resolution,
				})
			}
		}
	}
	return c
}

// Len returns the number of strategies.
func (c *Catalog) Len() int { return len(c.strategies) }

// At returns the strategy at enumeration position i.
func (c *Catalog) At(i int) Strategy { return c.strategies[i] }

// Index returns the enumeration position of (a, b, g).
func (c *Catalog) Index(a, b, g int) int {
	return (a*c.betaOptions+b)*c.gammaOptions + g
}
