// Package reorder decides which reorder level is authoritative for a drug
// and classifies current stock against it.
//
// Three candidate levels compete: the intelligent level derived from the
// forecasting service, the calculated level derived from local usage history
// and the manually configured level. The first usable candidate in that order
// wins; when none is usable the resolver's DefaultLevel is returned.
//
// Everything here is pure and safe for concurrent use.
package reorder

// DefaultLevel is used when no candidate is usable and no other default has
// been configured.
const DefaultLevel = 100

// ZeroPolicy controls whether a present candidate of zero counts as usable.
type ZeroPolicy int

const (
	// ZeroAsAbsent treats a present zero exactly like a missing value, so a
	// lower-priority candidate or the default takes over.
	ZeroAsAbsent ZeroPolicy = iota
	// ZeroIsValid lets a present zero win, which makes "never reorder"
	// representable.
	ZeroIsValid
)

// Source names the tier that produced an effective reorder level.
type Source string

const (
	SourceIntelligent Source = "intelligent"
	SourceCalculated  Source = "calculated"
	SourceManual      Source = "manual"
	SourceDefault     Source = "default"
)

// Candidates carries the three competing reorder levels for one drug. A nil
// field means the level has not been set.
type Candidates struct {
	Intelligent *int `json:"intelligent_reorder_level"`
	Calculated  *int `json:"calculated_reorder_level"`
	Manual      *int `json:"reorder_level"`
}

// Variance holds the pairwise differences between candidates. A field is nil
// when either operand is absent.
type Variance struct {
	CalculatedVsManual      *int `json:"calculated_vs_manual"`
	IntelligentVsCalculated *int `json:"intelligent_vs_calculated"`
	IntelligentVsManual     *int `json:"intelligent_vs_manual"`
}

// Resolver resolves effective reorder levels. The zero value resolves with a
// default level of 0, so build one with New or Default.
type Resolver struct {
	DefaultLevel int
	ZeroPolicy   ZeroPolicy
}

// Default returns the resolver used when nothing is configured: default level
// 100, zeros treated as absent.
func Default() Resolver {
	return Resolver{DefaultLevel: DefaultLevel, ZeroPolicy: ZeroAsAbsent}
}

// New returns a resolver with the given fallback level and zero policy.
// Negative fallbacks are clamped to zero.
func New(defaultLevel int, policy ZeroPolicy) Resolver {
	if defaultLevel < 0 {
		defaultLevel = 0
	}
	return Resolver{DefaultLevel: defaultLevel, ZeroPolicy: policy}
}

// Int returns a pointer to n, for building Candidates inline.
func Int(n int) *int {
	return &n
}

func (r Resolver) usable(v *int) bool {
	if v == nil || *v < 0 {
		return false
	}
	if *v == 0 {
		return r.ZeroPolicy == ZeroIsValid
	}
	return true
}

// pick walks the candidates in priority order and reports the winning value
// and its tier.
func (r Resolver) pick(c Candidates) (int, Source) {
	switch {
	case r.usable(c.Intelligent):
		return *c.Intelligent, SourceIntelligent
	case r.usable(c.Calculated):
		return *c.Calculated, SourceCalculated
	case r.usable(c.Manual):
		return *c.Manual, SourceManual
	default:
		return r.DefaultLevel, SourceDefault
	}
}

// ResolveEffectiveLevel returns the authoritative reorder level for c.
func (r Resolver) ResolveEffectiveLevel(c Candidates) int {
	level, _ := r.pick(c)
	return level
}

// DetermineSource reports which tier ResolveEffectiveLevel would use for c.
func (r Resolver) DetermineSource(c Candidates) Source {
	_, src := r.pick(c)
	return src
}

// ComputeVariance returns the pairwise deltas between the candidates. Only
// nil counts as absent here; a present zero takes part in the difference.
func ComputeVariance(c Candidates) Variance {
	return Variance{
		CalculatedVsManual:      diff(c.Calculated, c.Manual),
		IntelligentVsCalculated: diff(c.Intelligent, c.Calculated),
		IntelligentVsManual:     diff(c.Intelligent, c.Manual),
	}
}

func diff(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}

// Evaluation bundles everything callers usually need about one drug.
type Evaluation struct {
	EffectiveLevel int         `json:"effective_reorder_level"`
	Source         Source      `json:"reorder_level_source"`
	Status         StockStatus `json:"stock_status"`
	Variance       Variance    `json:"variance"`
}

// Evaluate resolves the effective level for c and classifies currentStock
// against it.
func (r Resolver) Evaluate(c Candidates, currentStock int) Evaluation {
	level, src := r.pick(c)
	return Evaluation{
		EffectiveLevel: level,
		Source:         src,
		Status:         ClassifyStockStatus(currentStock, level),
		Variance:       ComputeVariance(c),
	}
}
