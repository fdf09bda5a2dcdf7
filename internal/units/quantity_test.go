package units_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sysdyn/internal/units"
)

var _ = Describe("Quantity", func() {
	var reg *units.Registry
	var person, day units.Dimension

	BeforeEach(func() {
		reg = units.NewRegistry()
		person = reg.Define("person")
		day = reg.Define("day")
	})

	Describe("addition and subtraction", func() {
		It("adds quantities with identical dimensions", func() {
			a := units.New(3, person)
			b := units.New(4, person)
			sum, err := a.Add(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Magnitude()).To(Equal(7.0))
			Expect(sum.Dim().Equal(person)).To(BeTrue())
		})

		It("rejects mismatched dimensions", func() {
			a := units.New(3, person)
			b := units.New(4, day)
			_, err := a.Add(b)
			Expect(err).To(MatchError(units.ErrDimensionMismatch))
			_, err = a.Sub(b)
			Expect(err).To(MatchError(units.ErrDimensionMismatch))
		})

		It("treats dimensionless as its own dimension", func() {
			a := units.Dimensionless(1)
			b := units.New(1, person)
			_, err := a.Add(b)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("multiplication and division", func() {
		It("composes dimensions by adding exponents", func() {
			rate := units.New(2, person.Div(day))
			dt := units.New(0.5, day)
			got := rate.Mul(dt)
			Expect(got.Magnitude()).To(Equal(1.0))
			Expect(got.Dim().Equal(person)).To(BeTrue())
		})

		It("cancels exponents down to dimensionless", func() {
			a := units.New(10, person)
			b := units.New(5, person)
			got := a.Div(b)
			Expect(got.Magnitude()).To(Equal(2.0))
			Expect(got.Dim().IsDimensionless()).To(BeTrue())
		})

		It("keeps the dimensionless unit as multiplicative identity", func() {
			a := units.New(10, person)
			got := a.Mul(units.Dimensionless(1))
			Expect(got.Dim().Equal(person)).To(BeTrue())
			Expect(got.Magnitude()).To(Equal(10.0))
		})
	})

	Describe("Coerce", func() {
		flowDim := func() units.Dimension { return person.Div(day) }

		It("adopts the declared dimension for raw values", func() {
			q, err := units.Coerce(units.Raw(5), flowDim())
			Expect(err).NotTo(HaveOccurred())
			Expect(q.Dim().Equal(flowDim())).To(BeTrue())
			Expect(q.Magnitude()).To(Equal(5.0))
		})

		It("passes through tagged values with the right dimension", func() {
			q, err := units.Coerce(units.New(5, flowDim()), flowDim())
			Expect(err).NotTo(HaveOccurred())
			Expect(q.Magnitude()).To(Equal(5.0))
		})

		It("rejects an explicitly dimensionless value against a dimensioned declaration", func() {
			_, err := units.Coerce(units.Dimensionless(5), flowDim())
			Expect(err).To(MatchError(units.ErrDimensionMismatch))
		})
	})
})

var _ = Describe("Registry", func() {
	var reg *units.Registry

	BeforeEach(func() {
		reg = units.NewRegistry()
		reg.Define("person")
		reg.Define("day")
	})

	It("parses simple and compound expressions", func() {
		d, err := reg.Parse("person/day")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(units.Dimension{"person": 1, "day": -1}))

		d, err = reg.Parse("1/day^2")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(units.Dimension{"day": -2}))

		d, err = reg.Parse("person*person/day")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(units.Dimension{"person": 2, "day": -1}))
	})

	It("parses the dimensionless spellings", func() {
		for _, expr := range []string{"", "1", "dimensionless"} {
			d, err := reg.Parse(expr)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.IsDimensionless()).To(BeTrue())
		}
	})

	It("rejects unknown symbols and malformed expressions", func() {
		_, err := reg.Parse("widget/day")
		Expect(err).To(MatchError(units.ErrUnknownUnit))

		_, err = reg.Parse("person/")
		Expect(err).To(MatchError(units.ErrBadUnitExpr))

		_, err = reg.Parse("person/day^x")
		Expect(err).To(MatchError(units.ErrBadUnitExpr))
	})

	It("supports derived aliases", func() {
		d, err := reg.DefineDerived("flowrate", "person/day")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(units.Dimension{"person": 1, "day": -1}))
	})

	It("round-trips dimensions through String", func() {
		d := reg.MustParse("person/day^2")
		Expect(d.String()).To(Equal("person/day^2"))
		Expect(units.Dimension{}.String()).To(Equal("dimensionless"))
	})
})
