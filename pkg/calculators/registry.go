// Package calculators assembles the built-in calculators into a registry.
package calculators

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/calculators/debtyield"
	"github.com/iwvelando/finance-calculators/pkg/calculators/dscr"
	"github.com/iwvelando/finance-calculators/pkg/calculators/earthquake"
	"github.com/iwvelando/finance-calculators/pkg/calculators/ltv"
	"github.com/iwvelando/finance-calculators/pkg/calculators/mezzanine"
	"github.com/iwvelando/finance-calculators/pkg/calculators/mortgagelife"
	"github.com/iwvelando/finance-calculators/pkg/calculators/noi"
	"github.com/iwvelando/finance-calculators/pkg/calculators/tax"
)

var constructors = []func() (calculator.Calculator, error){
	debtyield.New,
	dscr.New,
	earthquake.New,
	ltv.New,
	mezzanine.New,
	mortgagelife.New,
	noi.New,
	tax.New,
}

// Default returns a registry holding every built-in calculator.
func Default() (*calculator.Registry, error) {
	registry := calculator.NewRegistry()
	for _, build := range constructors {
		c, err := build()
		if err != nil {
			return nil, fmt.Errorf("failed to build calculator: %w", err)
		}
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
