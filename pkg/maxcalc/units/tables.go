package units

import "math"

// Base units of each built-in category. Every rule in a category converts
// to and from its base unit.
const (
	BaseLength      = "m"
	BaseWeight      = "kg"
	BaseTime        = "s"
	BaseSpeed       = "m/s"
	BaseTemperature = "k"
	BaseAngle       = "rad"
)

// builtinUnits is the unit table loaded into every new Registry. Order is
// preserved for listings: categories in declaration order, smallest unit
// first.
var builtinUnits = []Unit{
	// Length (base: metre)
	{Name: "mil", Category: Length, Rule: Linear(2.54e-5), Aliases: []string{"mils", "thou"}, Description: "thousandth of an inch"},
	{Name: "in", Category: Length, Rule: Linear(0.0254), Aliases: []string{"inch", "inches"}, Description: "inch"},
	{Name: "ft", Category: Length, Rule: Linear(0.3048), Aliases: []string{"foot", "feet"}, Description: "foot"},
	{Name: "yd", Category: Length, Rule: Linear(0.9144), Aliases: []string{"yard", "yards"}, Description: "yard"},
	{Name: "mi", Category: Length, Rule: Linear(1609.344), Aliases: []string{"mile", "miles"}, Description: "statute mile"},
	{Name: "nmi", Category: Length, Rule: Linear(1852), Aliases: []string{"nmile", "nmiles"}, Description: "nautical mile"},
	{Name: "micron", Category: Length, Rule: Linear(1e-6), Aliases: []string{"microns", "um", "µm"}, Description: "micrometre"},
	{Name: "mm", Category: Length, Rule: Linear(1e-3), Aliases: []string{"millimeter", "millimeters", "millimetre", "millimetres"}, Description: "millimetre"},
	{Name: "cm", Category: Length, Rule: Linear(1e-2), Aliases: []string{"centimeter", "centimeters", "centimetre", "centimetres"}, Description: "centimetre"},
	{Name: "m", Category: Length, Rule: Linear(1), Aliases: []string{"meter", "meters", "metre", "metres"}, Description: "metre"},
	{Name: "km", Category: Length, Rule: Linear(1000), Aliases: []string{"kilometer", "kilometers", "kilometre", "kilometres"}, Description: "kilometre"},

	// Weight (base: kilogram)
	{Name: "oz", Category: Weight, Rule: Linear(0.028349523125), Aliases: []string{"ounce", "ounces"}, Description: "avoirdupois ounce"},
	{Name: "lb", Category: Weight, Rule: Linear(0.45359237), Aliases: []string{"lbs", "pound", "pounds"}, Description: "avoirdupois pound"},
	{Name: "g", Category: Weight, Rule: Linear(1e-3), Aliases: []string{"gram", "grams"}, Description: "gram"},
	{Name: "kg", Category: Weight, Rule: Linear(1), Aliases: []string{"kilogram", "kilograms", "kilo", "kilos"}, Description: "kilogram"},
	{Name: "t", Category: Weight, Rule: Linear(1000), Aliases: []string{"tonne", "tonnes"}, Description: "metric tonne"},

	// Time (base: second)
	{Name: "micros", Category: Time, Rule: Linear(1e-6), Aliases: []string{"us", "µs", "microsecond", "microseconds"}, Description: "microsecond"},
	{Name: "ms", Category: Time, Rule: Linear(1e-3), Aliases: []string{"millisecond", "milliseconds"}, Description: "millisecond"},
	{Name: "s", Category: Time, Rule: Linear(1), Aliases: []string{"sec", "second", "seconds"}, Description: "second"},
	{Name: "min", Category: Time, Rule: Linear(60), Aliases: []string{"minute", "minutes"}, Description: "minute"},
	{Name: "h", Category: Time, Rule: Linear(3600), Aliases: []string{"hr", "hour", "hours"}, Description: "hour"},
	{Name: "d", Category: Time, Rule: Linear(86400), Aliases: []string{"day", "days"}, Description: "day"},
	{Name: "week", Category: Time, Rule: Linear(604800), Aliases: []string{"weeks", "wk"}, Description: "week"},

	// Speed (base: metre per second)
	{Name: "ft/h", Category: Speed, Rule: Ratio(0.3048, 3600), Aliases: []string{"fph"}, Description: "foot per hour"},
	{Name: "km/h", Category: Speed, Rule: Ratio(1000, 3600), Aliases: []string{"kph", "kmh"}, Description: "kilometre per hour"},
	{Name: "mi/h", Category: Speed, Rule: Linear(0.44704), Aliases: []string{"mph"}, Description: "mile per hour"},
	{Name: "knot", Category: Speed, Rule: Ratio(1852, 3600), Aliases: []string{"knots", "kn", "kt"}, Description: "knot"},
	{Name: "m/s", Category: Speed, Rule: Linear(1), Aliases: []string{"mps"}, Description: "metre per second"},

	// Temperature (base: kelvin, affine)
	{Name: "k", Category: Temperature, Rule: Linear(1), Aliases: []string{"kelvin", "kelvins"}, Description: "kelvin"},
	{Name: "c", Category: Temperature, Rule: Affine(1, 1, 273.15), Aliases: []string{"celsius", "degc"}, Description: "degree Celsius"},
	{Name: "f", Category: Temperature, Rule: Affine(5, 9, 459.67), Aliases: []string{"fahrenheit", "degf"}, Description: "degree Fahrenheit"},

	// Angle (base: radian)
	{Name: "rad", Category: Angle, Rule: Linear(1), Aliases: []string{"radian", "radians"}, Description: "radian"},
	{Name: "deg", Category: Angle, Rule: Ratio(math.Pi, 180), Aliases: []string{"degree", "degrees"}, Description: "degree"},
	{Name: "grad", Category: Angle, Rule: Ratio(math.Pi, 200), Aliases: []string{"grads", "gradian", "gradians", "gon"}, Description: "gradian"},
}
