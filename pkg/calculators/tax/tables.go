package tax

import "math"

// Filing statuses.
const (
	Single                  = "single"
	MarriedFilingJointly    = "married-filing-jointly"
	MarriedFilingSeparately = "married-filing-separately"
	HeadOfHousehold         = "head-of-household"
	QualifyingWidow         = "qualifying-widow"
)

type bracket struct {
	rate float64
	max  float64
}

// 2024 federal brackets. The top bracket is unbounded.
var federalBrackets = map[string][]bracket{
	Single: {
		{0.10, 11600}, {0.12, 47150}, {0.22, 100525}, {0.24, 191950},
		{0.32, 243725}, {0.35, 609350}, {0.37, math.Inf(1)},
	},
	MarriedFilingJointly: {
		{0.10, 23200}, {0.12, 94300}, {0.22, 201050}, {0.24, 383900},
		{0.32, 487450}, {0.35, 731200}, {0.37, math.Inf(1)},
	},
	MarriedFilingSeparately: {
		{0.10, 11600}, {0.12, 47150}, {0.22, 100525}, {0.24, 191950},
		{0.32, 243725}, {0.35, 365600}, {0.37, math.Inf(1)},
	},
	HeadOfHousehold: {
		{0.10, 16550}, {0.12, 63100}, {0.22, 100500}, {0.24, 191950},
		{0.32, 243700}, {0.35, 609350}, {0.37, math.Inf(1)},
	},
	QualifyingWidow: {
		{0.10, 23200}, {0.12, 94300}, {0.22, 201050}, {0.24, 383900},
		{0.32, 487450}, {0.35, 731200}, {0.37, math.Inf(1)},
	},
}

var standardDeductions = map[string]float64{
	Single:                  14600,
	MarriedFilingJointly:    29200,
	MarriedFilingSeparately: 14600,
	HeadOfHousehold:         21900,
	QualifyingWidow:         29200,
}

var amtExemptions = map[string]float64{
	Single:                  85700,
	MarriedFilingJointly:    133300,
	MarriedFilingSeparately: 66650,
	HeadOfHousehold:         85700,
	QualifyingWidow:         133300,
}

// Flat approximations of each state's income tax. States without an income
// tax are listed at zero.
var stateRates = map[string]float64{
	"al": 0.05, "ak": 0, "az": 0.0259, "ar": 0.055, "ca": 0.075, "co": 0.044,
	"ct": 0.0699, "de": 0.066, "fl": 0, "ga": 0.0575, "hi": 0.11, "id": 0.058,
	"il": 0.0495, "in": 0.0323, "ia": 0.0575, "ks": 0.057, "ky": 0.045, "la": 0.0425,
	"me": 0.0715, "md": 0.0575, "ma": 0.05, "mi": 0.0425, "mn": 0.0985, "ms": 0.05,
	"mo": 0.0495, "mt": 0.068, "ne": 0.0584, "nv": 0, "nh": 0, "nj": 0.0637,
	"nm": 0.059, "ny": 0.0685, "nc": 0.0499, "nd": 0.029, "oh": 0.0399, "ok": 0.0475,
	"or": 0.099, "pa": 0.0307, "ri": 0.0599, "sc": 0.07, "sd": 0, "tn": 0,
	"tx": 0, "ut": 0.0485, "vt": 0.0875, "va": 0.0575, "wa": 0, "wv": 0.065,
	"wi": 0.0765, "wy": 0,
}

const (
	saltCap                = 10000
	medicalFloor           = 0.075
	seEarningsShare        = 0.9235
	seTaxRate              = 0.153
	amtRate                = 0.26
	childCredit            = 2000
	childPhaseoutRange     = 40000
	iraLimit               = 7000
	hsaLimit               = 4150
	withholdingTolerance   = 1000
	projectedGrowth        = 1.03
)

type eicSchedule struct {
	start, end float64
}

var eicMaxCredit = []float64{600, 3995, 6604, 7430}

func eicPhaseout(status string) eicSchedule {
	if status == MarriedFilingJointly {
		return eicSchedule{25020, 63498}
	}
	return eicSchedule{16480, 54838}
}

func childPhaseoutStart(status string) float64 {
	if status == MarriedFilingJointly {
		return 400000
	}
	return 200000
}

func lookup(table map[string]float64, status string) float64 {
	if v, ok := table[status]; ok {
		return v
	}
	return table[Single]
}
