// Package models provides ready-made stock-and-flow models: an SIR
// epidemic, an inventory-control chain and a predator-prey system. They
// double as living documentation of how to assemble a model and as the
// targets for the CLI and the end-to-end tests.
package models

import (
	"github.com/san-kum/sysdyn/internal/model"
	"github.com/san-kum/sysdyn/internal/units"
)

// Model bundles a built system with its unit registry and the timestep
// it was designed for.
type Model struct {
	Name        string
	Description string
	System      *model.System
	Registry    *units.Registry
	Timestep    units.Quantity
}

// SIR is the classic susceptible-infected-recovered epidemic: infection
// moves people S -> I, recovery moves them I -> R, and total population
// is conserved.
func SIR() (*Model, error) {
	reg := units.NewRegistry()
	person := reg.Define("person")
	day := reg.Define("day")
	perDay := units.Dimension{"day": -1}
	flowDim := person.Div(day)

	susceptible := model.NewStock("Susceptible", 9999, person)
	infected := model.NewStock("Infected", 1, person)
	recovered := model.NewStock("Recovered", 0, person)

	totalPop := model.NewParameter("total population", 10000, person)
	contactRate := model.NewParameterDesc("contact rate", 6, perDay, "contacts per person per day")
	infectivity := model.NewParameterDesc("infectivity", 0.25, units.Dimension{}, "infection probability per contact")
	infectiousPeriod := model.NewParameterDesc("infectious period", 2, day.Clone(), "mean days infectious")

	forceOfInfection := model.NewAuxiliary(model.AuxSpec{
		Name:   "force of infection",
		Unit:   perDay,
		Inputs: []string{"contact rate", "infectivity", "Infected", "total population"},
		Calc: func(s *model.State) units.Quantity {
			return s.Param("contact rate").
				Mul(s.Param("infectivity")).
				Mul(s.Stock("Infected")).
				Div(s.Param("total population"))
		},
	})

	infection := model.NewFlow(model.FlowSpec{
		Name:   "infection",
		Source: "Susceptible",
		Target: "Infected",
		Unit:   flowDim,
		Inputs: []string{"Susceptible", "force of infection"},
		Rate: func(s *model.State) units.Quantity {
			return s.Stock("Susceptible").Mul(s.Aux("force of infection"))
		},
	})
	recovery := model.NewFlow(model.FlowSpec{
		Name:   "recovery",
		Source: "Infected",
		Target: "Recovered",
		Unit:   flowDim,
		Inputs: []string{"Infected", "infectious period"},
		Rate: func(s *model.State) units.Quantity {
			return s.Stock("Infected").Div(s.Param("infectious period"))
		},
	})

	sys, err := model.NewSystem(
		[]*model.Stock{susceptible, infected, recovered},
		[]*model.Flow{infection, recovery},
		[]*model.Auxiliary{forceOfInfection},
		[]*model.Parameter{totalPop, contactRate, infectivity, infectiousPeriod},
	)
	if err != nil {
		return nil, err
	}
	return &Model{
		Name:        "sir",
		Description: "SIR epidemic with conserved population",
		System:      sys,
		Registry:    reg,
		Timestep:    units.New(0.1, day),
	}, nil
}

// PredatorPrey is a Lotka-Volterra system: prey reproduce, predators eat
// prey and starve without them.
func PredatorPrey() (*Model, error) {
	reg := units.NewRegistry()
	prey := reg.Define("prey")
	predator := reg.Define("predator")
	day := reg.Define("day")
	perDay := units.Dimension{"day": -1}

	preyStock := model.NewStock("Prey", 100, prey)
	predStock := model.NewStock("Predators", 20, predator)

	birthRate := model.NewParameter("prey birth rate", 0.1, perDay)
	predationRate := model.NewParameter("predation rate", 0.005,
		units.Dimension{"predator": -1, "day": -1})
	efficiency := model.NewParameterDesc("conversion efficiency", 0.1,
		predator.Div(prey), "predators born per prey eaten")
	deathRate := model.NewParameter("predator death rate", 0.05, perDay)

	births := model.NewFlow(model.FlowSpec{
		Name:   "prey births",
		Target: "Prey",
		Unit:   prey.Div(day),
		Inputs: []string{"Prey", "prey birth rate"},
		Rate: func(s *model.State) units.Quantity {
			return s.Param("prey birth rate").Mul(s.Stock("Prey"))
		},
	})
	predation := model.NewFlow(model.FlowSpec{
		Name:   "predation",
		Source: "Prey",
		Unit:   prey.Div(day),
		Inputs: []string{"Prey", "Predators", "predation rate"},
		Rate: func(s *model.State) units.Quantity {
			return s.Param("predation rate").Mul(s.Stock("Prey")).Mul(s.Stock("Predators"))
		},
	})
	predGrowth := model.NewFlow(model.FlowSpec{
		Name:   "predator growth",
		Target: "Predators",
		Unit:   predator.Div(day),
		Inputs: []string{"Prey", "Predators", "predation rate", "conversion efficiency"},
		Rate: func(s *model.State) units.Quantity {
			// Flows never read each other within a step, so the eaten
			// prey is recomputed from the stocks here.
			return s.Param("conversion efficiency").
				Mul(s.Param("predation rate")).
				Mul(s.Stock("Prey")).
				Mul(s.Stock("Predators"))
		},
	})
	predDeaths := model.NewFlow(model.FlowSpec{
		Name:   "predator deaths",
		Source: "Predators",
		Unit:   predator.Div(day),
		Inputs: []string{"Predators", "predator death rate"},
		Rate: func(s *model.State) units.Quantity {
			return s.Param("predator death rate").Mul(s.Stock("Predators"))
		},
	})

	sys, err := model.NewSystem(
		[]*model.Stock{preyStock, predStock},
		[]*model.Flow{births, predation, predGrowth, predDeaths},
		nil,
		[]*model.Parameter{birthRate, predationRate, efficiency, deathRate},
	)
	if err != nil {
		return nil, err
	}
	return &Model{
		Name:        "predator-prey",
		Description: "Lotka-Volterra predator and prey populations",
		System:      sys,
		Registry:    reg,
		Timestep:    units.New(0.05, day),
	}, nil
}
