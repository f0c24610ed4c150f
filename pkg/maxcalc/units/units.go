// Package units holds the unit registry and converts values between units
// of the same category.
//
// Every category has a base unit and each unit carries a Rule that maps a
// value to and from that base. Conversion from a to b is therefore always
// a -> base -> b. Units outside the built-in categories live in the
// Unknown category and are partitioned into groups; conversion only
// happens within a group.
package units

import (
	"fmt"
	"math"
	"sort"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/cases"

	merrors "github.com/Mishamax/maxcalc/pkg/maxcalc/errors"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

// Category groups units that can be converted into each other.
type Category int

const (
	Unknown Category = iota
	Length
	Weight
	Time
	Speed
	Temperature
	Angle
)

var categoryNames = map[Category]string{
	Unknown:     "unknown",
	Length:      "length",
	Weight:      "weight",
	Time:        "time",
	Speed:       "speed",
	Temperature: "temperature",
	Angle:       "angle",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// RuleKind distinguishes proportional conversions from offset ones.
type RuleKind int

const (
	LinearRule RuleKind = iota
	AffineRule
)

// Rule maps a value in some unit to the base unit of its category:
//
//	Linear: base = x * Scale / Divisor
//	Affine: base = (x + Offset) * Scale / Divisor
//
// A zero Divisor means 1. Keeping the ratio as two terms lets factors such
// as 5/9 for Fahrenheit convert exactly.
type Rule struct {
	Kind    RuleKind
	Scale   float64
	Divisor float64
	Offset  float64
}

// Linear returns a proportional rule.
func Linear(scale float64) Rule {
	return Rule{Kind: LinearRule, Scale: scale}
}

// Ratio returns a proportional rule with the factor num/den.
func Ratio(num, den float64) Rule {
	return Rule{Kind: LinearRule, Scale: num, Divisor: den}
}

// Affine returns a rule with an additive offset applied before scaling by
// num/den.
func Affine(num, den, offset float64) Rule {
	return Rule{Kind: AffineRule, Scale: num, Divisor: den, Offset: offset}
}

func (r Rule) divisor() float64 {
	if r.Divisor == 0 {
		return 1
	}
	return r.Divisor
}

// Factor returns the rule's scale as a single float.
func (r Rule) Factor() float64 {
	return r.Scale / r.divisor()
}

func (r Rule) isIdentity() bool {
	return r.Kind == LinearRule && r.Scale == r.divisor()
}

// decimalContext carries enough digits that the decimal forms of float64
// operands add and multiply exactly.
var decimalContext = apd.BaseContext.WithPrecision(40)

func decimalOf(x float64) (*apd.Decimal, error) {
	return new(apd.Decimal).SetFloat64(x)
}

// apply runs a sequence of decimal operations over x and rounds the result
// back to a float.
func apply(x number.Value, steps ...func(d *apd.Decimal) error) (number.Value, error) {
	if !x.IsReal() {
		return number.NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	d, err := decimalOf(x.Re())
	if err != nil {
		return number.NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	for _, op := range steps {
		if err := op(d); err != nil {
			return number.NewInvalid(), merrors.New(merrors.ArithmeticError)
		}
	}
	f, err := d.Float64()
	if err != nil && !math.IsInf(f, 0) {
		return number.NewInvalid(), merrors.New(merrors.ArithmeticError)
	}
	return number.CheckReal(f, !d.IsZero())
}

type decimalOp func(d, x, y *apd.Decimal) (apd.Condition, error)

func step(op decimalOp, operand float64) func(d *apd.Decimal) error {
	return func(d *apd.Decimal) error {
		y, err := decimalOf(operand)
		if err != nil {
			return err
		}
		_, err = op(d, d, y)
		return err
	}
}

// ToBase converts x from the rule's unit to the base unit.
func (r Rule) ToBase(x number.Value) (number.Value, error) {
	var steps []func(*apd.Decimal) error
	if r.Kind == AffineRule {
		steps = append(steps, step(decimalContext.Add, r.Offset))
	}
	if !r.isIdentity() {
		steps = append(steps,
			step(decimalContext.Mul, r.Scale),
			step(decimalContext.Quo, r.divisor()))
	}
	return apply(x, steps...)
}

// FromBase converts x from the base unit to the rule's unit.
func (r Rule) FromBase(x number.Value) (number.Value, error) {
	var steps []func(*apd.Decimal) error
	if !r.isIdentity() {
		steps = append(steps,
			step(decimalContext.Mul, r.divisor()),
			step(decimalContext.Quo, r.Scale))
	}
	if r.Kind == AffineRule {
		steps = append(steps, step(decimalContext.Sub, r.Offset))
	}
	return apply(x, steps...)
}

// Unit describes one unit of measure.
type Unit struct {
	Name        string
	Aliases     []string
	Category    Category
	Group       string // partition within Unknown; empty for built-in categories
	Rule        Rule
	Description string
}

// partition returns the key under which units are mutually convertible.
func (u Unit) partition() string {
	if u.Category == Unknown {
		return "unknown/" + fold(u.Group)
	}
	return u.Category.String()
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Registry is a set of units addressable by name or alias.
// A Registry is not safe for concurrent mutation.
type Registry struct {
	units  []Unit
	byName map[string]int
}

// NewRegistry returns a registry loaded with the built-in units.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, u := range builtinUnits {
		if err := r.Register(u); err != nil {
			panic(fmt.Sprintf("units: builtin table: %v", err))
		}
	}
	return r
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		units:  make([]Unit, len(r.units)),
		byName: make(map[string]int, len(r.byName)),
	}
	copy(c.units, r.units)
	for k, v := range r.byName {
		c.byName[k] = v
	}
	return c
}

// Register adds a unit. Its name and aliases must not collide with an
// existing unit, and its rule must have a finite nonzero scale.
func (r *Registry) Register(u Unit) error {
	if u.Name == "" {
		return fmt.Errorf("unit has no name")
	}
	if u.Rule.Scale == 0 || math.IsNaN(u.Rule.Factor()) || math.IsInf(u.Rule.Factor(), 0) {
		return fmt.Errorf("unit %q: scale must be nonzero", u.Name)
	}
	if u.Category == Unknown && u.Group == "" {
		u.Group = u.Name
	}

	names := append([]string{u.Name}, u.Aliases...)
	for _, n := range names {
		if _, exists := r.byName[fold(n)]; exists {
			return fmt.Errorf("unit %q is already registered", n)
		}
	}

	idx := len(r.units)
	r.units = append(r.units, u)
	for _, n := range names {
		r.byName[fold(n)] = idx
	}
	return nil
}

// RegisterConversion adds a user conversion "1 from = factor to" in the
// Unknown category. Units that are already registered in the Unknown
// category extend their group; a unit that is new to both sides starts a
// group with from as its base.
func (r *Registry) RegisterConversion(from, to string, factor float64) error {
	if factor == 0 {
		return fmt.Errorf("conversion %s->%s: factor must be nonzero", from, to)
	}

	fromUnit, fromErr := r.Lookup(from)
	toUnit, toErr := r.Lookup(to)

	switch {
	case fromErr != nil && toErr != nil:
		if err := r.Register(Unit{Name: from, Group: from, Rule: Linear(1)}); err != nil {
			return err
		}
		return r.Register(Unit{Name: to, Group: from, Rule: Ratio(1, factor)})
	case fromErr == nil && toErr != nil:
		if fromUnit.Category != Unknown {
			return fmt.Errorf("unit %q belongs to category %s", from, fromUnit.Category)
		}
		return r.Register(Unit{Name: to, Group: fromUnit.Group, Rule: Ratio(fromUnit.Rule.Scale, fromUnit.Rule.divisor()*factor)})
	case fromErr != nil && toErr == nil:
		if toUnit.Category != Unknown {
			return fmt.Errorf("unit %q belongs to category %s", to, toUnit.Category)
		}
		return r.Register(Unit{Name: from, Group: toUnit.Group, Rule: Ratio(toUnit.Rule.Scale*factor, toUnit.Rule.divisor())})
	default:
		return fmt.Errorf("conversion %s->%s: both units are already registered", from, to)
	}
}

// Lookup finds a unit by name or alias, ignoring case.
func (r *Registry) Lookup(name string) (Unit, error) {
	idx, ok := r.byName[fold(name)]
	if !ok {
		return Unit{}, merrors.New(merrors.UnknownUnit, name)
	}
	return r.units[idx], nil
}

// BaseUnit returns the unit whose rule is the identity within u's
// partition.
func (r *Registry) BaseUnit(u Unit) (Unit, bool) {
	key := u.partition()
	for _, cand := range r.units {
		if cand.partition() == key && cand.Rule.isIdentity() {
			return cand, true
		}
	}
	return Unit{}, false
}

// Convert converts v from one unit to another. An empty from means the
// base unit of to's category.
func (r *Registry) Convert(v number.Value, from, to string) (number.Value, error) {
	target, err := r.Lookup(to)
	if err != nil {
		return number.NewInvalid(), err
	}

	var source Unit
	if from == "" {
		base, ok := r.BaseUnit(target)
		if !ok {
			return number.NewInvalid(), merrors.New(merrors.UnknownUnitConversion, "->"+to)
		}
		source, from = base, base.Name
	} else if source, err = r.Lookup(from); err != nil {
		return number.NewInvalid(), err
	}

	conversion := from + "->" + to
	if source.partition() != target.partition() {
		return number.NewInvalid(), merrors.New(merrors.UnknownUnitConversion, conversion)
	}

	if v.IsComplex() {
		if source.Category == Angle {
			return number.NewInvalid(), merrors.New(merrors.ComplexAngleConversion, conversion)
		}
		return number.NewInvalid(), merrors.New(merrors.ComplexArgumentInUnitConversion, conversion)
	}

	base, err := source.Rule.ToBase(v)
	if err != nil {
		return number.NewInvalid(), err
	}
	return target.Rule.FromBase(base)
}

// Units returns the units of a category in registration order.
func (r *Registry) Units(c Category) []Unit {
	var out []Unit
	for _, u := range r.units {
		if u.Category == c {
			out = append(out, u)
		}
	}
	return out
}

// All returns every registered unit in registration order.
func (r *Registry) All() []Unit {
	out := make([]Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Categories returns the categories that have at least one unit, in
// declaration order.
func (r *Registry) Categories() []Category {
	seen := make(map[Category]bool)
	for _, u := range r.units {
		seen[u.Category] = true
	}
	var out []Category
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns every unit name and alias, sorted. Used for completion
// and suggestions.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for _, u := range r.units {
		out = append(out, u.Name)
		out = append(out, u.Aliases...)
	}
	sort.Strings(out)
	return out
}
