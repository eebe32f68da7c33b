package earthquake

import (
	"sort"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

func locationOptions() []calculator.Option {
	codes := make([]string, 0, len(locationFactors))
	for code := range locationFactors {
		if code != "other" {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	opts := make([]calculator.Option, 0, len(codes)+1)
	for _, code := range codes {
		opts = append(opts, calculator.Option{Value: code, Label: code})
	}
	return append(opts, calculator.Option{Value: "other", Label: "Other"})
}

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Earthquake Insurance Calculator",
		Category:    "finance",
		Subcategory: "insurance",
		Description: "Estimate earthquake insurance premiums, seismic risk and the cost-benefit of coverage from building, site and policy characteristics.",
	},
	Fields: []calculator.Field{
		calculator.Number("propertyValue", "Property Value", "USD").Req().Range(50000, 10000000),
		calculator.SelectOptions("location", "State", locationOptions()...).WithDefault("other"),
		calculator.SelectOptions("seismicZone", "Seismic Zone",
			calculator.Option{Value: "zone-1", Label: "Zone 1 (Low)"},
			calculator.Option{Value: "zone-2", Label: "Zone 2 (Moderate)"},
			calculator.Option{Value: "zone-3", Label: "Zone 3 (High)"},
			calculator.Option{Value: "zone-4", Label: "Zone 4 (Very High)"},
		).Req(),
		calculator.Select("buildingType", "Building Type",
			"wood-frame", "steel-frame", "concrete", "masonry", "mixed", "manufactured").Req(),
		calculator.Number("buildingAge", "Building Age", "years").Req().Int().Range(0, 200),
		calculator.Number("stories", "Number of Stories", "").Int().Range(1, 100).WithDefault(1),
		calculator.Number("squareFootage", "Square Footage", "sq ft").Range(0, 1000000).WithDefault(0),
		calculator.Select("foundationType", "Foundation Type",
			"slab", "crawlspace", "basement", "pier-beam", "post-tension").Req(),
		calculator.Select("soilType", "Soil Type", "rock", "hard-soil", "soft-soil", "fill").Req(),
		calculator.Select("retrofitStatus", "Retrofit Status", "none", "partial", "complete", "unknown").
			WithDefault("unknown"),
		calculator.Select("coverageType", "Coverage Type",
			"building-only", "contents-only", "building-contents", "loss-of-use", "comprehensive").Req(),
		calculator.Number("coverageLimit", "Coverage Limit", "USD").Req().Range(1, 15000000),
		calculator.Number("deductiblePercentage", "Deductible", "%").Req().Range(1, 50),
		calculator.Number("contentsValue", "Contents Value", "USD").AtLeast(0).WithDefault(0),
		calculator.Boolean("businessInterruption", "Business Interruption Coverage").WithDefault(false),
		calculator.Number("annualIncome", "Annual Business Income", "USD").AtLeast(0).WithDefault(0),
		calculator.Select("policyType", "Policy Type", "standalone", "endorsement", "commercial").
			WithDefault("standalone"),
		calculator.Select("claimsHistory", "Claims History", "none", "one", "multiple").WithDefault("none"),
	},
	Rules: []validation.Rule{
		{Expr: "coverageLimit <= propertyValue * 1.5", Message: "Coverage limit should not exceed 150% of property value"},
		{Expr: "!businessInterruption || annualIncome > 0.0", Message: "Annual income is required when business interruption coverage is selected"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		if !ZoneMatchesLocation(in.SeismicZone, in.Location) {
			c.Errorf("Zone 4 seismic risk is typically only found in high-risk states")
		}
		if in.CoverageType == "contents-only" && in.ContentsValue == 0 {
			c.Warnf("Contents-only coverage selected but contents value is zero")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Base Rate", Expression: "Base Rate = Zone × Building × Age × Soil × Foundation × Retrofit × Location", Description: "Premium per $1,000 of coverage"},
		{Name: "Annual Premium", Expression: "Annual Premium = Coverage Limit ÷ 1000 × Base Rate × Coverage × Deductible × Policy × Claims"},
		{Name: "Business Interruption", Expression: "BI Premium = Annual Income ÷ 1000 × Base Rate × 0.5"},
		{Name: "Deductible Amount", Expression: "Deductible = Coverage Limit × Deductible %"},
		{Name: "Expected Loss", Expression: "Expected Loss = Property Value × Claim Probability × 60%"},
		{Name: "Break-Even Probability", Expression: "Break-Even = 30-Year Premiums ÷ (Property Value × 60%) × 100"},
	},
	Examples: []calculator.Example{
		{
			Name:        "California Wood Frame Home",
			Description: "30 year old wood frame house on soft soil in zone 3",
			Inputs: calculator.Inputs{
				"propertyValue": 500000, "location": "CA", "seismicZone": "zone-3", "buildingType": "wood-frame",
				"buildingAge": 30, "stories": 2, "squareFootage": 2500, "foundationType": "crawlspace",
				"soilType": "soft-soil", "retrofitStatus": "none", "coverageType": "building-contents",
				"deductiblePercentage": 15, "coverageLimit": 400000, "contentsValue": 50000,
				"businessInterruption": false, "policyType": "standalone", "claimsHistory": "none",
			},
		},
		{
			Name:        "Retrofitted Commercial Building",
			Description: "Steel frame office on rock with business interruption in Washington",
			Inputs: calculator.Inputs{
				"propertyValue": 2500000, "location": "WA", "seismicZone": "zone-4", "buildingType": "steel-frame",
				"buildingAge": 12, "stories": 4, "squareFootage": 20000, "foundationType": "post-tension",
				"soilType": "rock", "retrofitStatus": "complete", "coverageType": "comprehensive",
				"deductiblePercentage": 10, "coverageLimit": 2500000, "contentsValue": 300000,
				"businessInterruption": true, "annualIncome": 800000, "policyType": "commercial", "claimsHistory": "none",
			},
		},
	},
	Calculate: Calculate,
	Report:    Report,
}

// New returns the registered calculator.
func New() (calculator.Calculator, error) {
	return calculator.New(Spec)
}
