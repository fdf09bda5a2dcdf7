package models

import (
	"github.com/san-kum/sysdyn/internal/lookup"
	"github.com/san-kum/sysdyn/internal/model"
	"github.com/san-kum/sysdyn/internal/units"
)

// Inventory is a single-echelon inventory-control model: production
// closes the gap between desired and actual inventory while shipments
// drain it, throttled by availability when inventory runs low.
func Inventory() (*Model, error) {
	reg := units.NewRegistry()
	widget := reg.Define("widget")
	day := reg.Define("day")
	flowDim := widget.Div(day)

	inventory := model.NewStock("Inventory", 200, widget)

	desired := model.NewParameter("desired inventory", 400, widget)
	adjustTime := model.NewParameterDesc("adjustment time", 5, day.Clone(), "days to close the inventory gap")
	demand := model.NewParameter("customer demand", 40, flowDim)

	// Fraction of demand that can ship as inventory coverage thins out.
	availability := lookup.MustTable(
		[]float64{0, 0.25, 0.5, 1},
		[]float64{0, 0.6, 0.9, 1},
	)

	gap := model.NewAuxiliary(model.AuxSpec{
		Name:   "inventory gap",
		Unit:   widget,
		Inputs: []string{"desired inventory", "Inventory"},
		Calc: func(s *model.State) units.Quantity {
			g, err := s.Param("desired inventory").Sub(s.Stock("Inventory"))
			if err != nil {
				panic(err)
			}
			return g
		},
	})
	desiredProduction := model.NewAuxiliary(model.AuxSpec{
		Name:   "desired production",
		Unit:   flowDim,
		Inputs: []string{"inventory gap", "adjustment time"},
		Calc: func(s *model.State) units.Quantity {
			return s.Aux("inventory gap").Div(s.Param("adjustment time"))
		},
	})
	shipmentFraction := model.NewAuxiliary(model.AuxSpec{
		Name:   "shipment fraction",
		Unit:   units.Dimension{},
		Inputs: []string{"Inventory", "desired inventory"},
		Calc: func(s *model.State) units.Quantity {
			coverage := s.Stock("Inventory").Div(s.Param("desired inventory"))
			return units.Raw(availability.Lookup(coverage.Magnitude()))
		},
	})

	production := model.NewFlow(model.FlowSpec{
		Name:   "production",
		Target: "Inventory",
		Unit:   flowDim,
		Inputs: []string{"desired production"},
		Rate: func(s *model.State) units.Quantity {
			p := s.Aux("desired production")
			if p.Magnitude() < 0 {
				return units.New(0, flowDim)
			}
			return p
		},
	})
	shipments := model.NewFlow(model.FlowSpec{
		Name:   "shipments",
		Source: "Inventory",
		Unit:   flowDim,
		Inputs: []string{"customer demand", "shipment fraction"},
		Rate: func(s *model.State) units.Quantity {
			return s.Param("customer demand").Mul(s.Aux("shipment fraction"))
		},
	})

	sys, err := model.NewSystem(
		[]*model.Stock{inventory},
		[]*model.Flow{production, shipments},
		[]*model.Auxiliary{gap, desiredProduction, shipmentFraction},
		[]*model.Parameter{desired, adjustTime, demand},
	)
	if err != nil {
		return nil, err
	}
	return &Model{
		Name:        "inventory",
		Description: "inventory control with production adjustment and availability table",
		System:      sys,
		Registry:    reg,
		Timestep:    units.New(0.25, day),
	}, nil
}
