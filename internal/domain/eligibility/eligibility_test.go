package eligibility_test

import (
	"testing"

	"github.com/caremesh/matchd/internal/domain/eligibility"
	"github.com/caremesh/matchd/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int { return &v }

func eligibleFixture() (model.Referral, model.Opening, model.Organization, model.License) {
	referral := model.Referral{
		ID:            "ref-1",
		ClientCounty:  "Hennepin",
		ClientGender:  "female",
		ClientAge:     intPtr(30),
		FundingSource: "CADI Waiver",
	}
	opening := model.Opening{
		ID:                "op-1",
		OrganizationID:    "org-1",
		Status:            model.OpeningActive,
		SpotsAvailable:    1,
		GenderRequirement: model.GenderAny,
		AgeMin:            intPtr(18),
		AgeMax:            intPtr(65),
		FundingAccepted:   []string{"CADI Waiver", "DD Waiver"},
	}
	org := model.Organization{ID: "org-1", Name: "North Star Care"}
	license := model.License{ID: "lic-1", OrganizationID: "org-1", Status: model.LicenseVerified}
	return referral, opening, org, license
}

func TestChecker_Check(t *testing.T) {
	Convey("Given a checker with default constraints", t, func() {
		checker := eligibility.NewChecker()

		Convey("When every constraint is satisfied", func() {
			referral, opening, org, license := eligibleFixture()
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then there should be no violations", func() {
				So(violations, ShouldBeEmpty)
			})
		})

		Convey("When the funding source is not accepted", func() {
			referral, opening, org, license := eligibleFixture()
			referral.FundingSource = "BI Waiver"
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then a funding violation should be reported", func() {
				So(violations, ShouldHaveLength, 1)
				So(violations[0].Type, ShouldEqual, eligibility.ViolationFunding)
				So(violations[0].Message, ShouldContainSubstring, "BI Waiver")
			})
		})

		Convey("When the funding source differs only in case and spacing", func() {
			referral, opening, org, license := eligibleFixture()
			referral.FundingSource = "  cadi waiver "
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then it should still pass", func() {
				So(violations, ShouldBeEmpty)
			})
		})

		Convey("When the opening restricts gender and the referral disagrees", func() {
			referral, opening, org, license := eligibleFixture()
			opening.GenderRequirement = "male"
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then a gender violation should be reported", func() {
				So(violations, ShouldHaveLength, 1)
				So(violations[0].Type, ShouldEqual, eligibility.ViolationGender)
			})
		})

		Convey("When the opening restricts gender but the referral leaves it blank", func() {
			referral, opening, org, license := eligibleFixture()
			opening.GenderRequirement = "male"
			referral.ClientGender = ""
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then an unspecified gender should not hard-fail", func() {
				So(violations, ShouldBeEmpty)
			})
		})

		Convey("When the client is below the opening's age minimum", func() {
			referral, opening, org, license := eligibleFixture()
			referral.ClientAge = intPtr(16)
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then an age violation should be reported", func() {
				So(violations, ShouldHaveLength, 1)
				So(violations[0].Type, ShouldEqual, eligibility.ViolationAge)
				So(violations[0].Message, ShouldContainSubstring, "below")
			})
		})

		Convey("When the client is above the opening's age maximum", func() {
			referral, opening, org, license := eligibleFixture()
			referral.ClientAge = intPtr(70)
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then an age violation should be reported", func() {
				So(violations, ShouldHaveLength, 1)
				So(violations[0].Message, ShouldContainSubstring, "above")
			})
		})

		Convey("When the opening's age range is inverted", func() {
			referral, opening, org, license := eligibleFixture()
			opening.AgeMin = intPtr(40)
			opening.AgeMax = intPtr(20)
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then both bounds should be reported independently", func() {
				So(violations, ShouldHaveLength, 2)
			})
		})

		Convey("When the client age is unknown", func() {
			referral, opening, org, license := eligibleFixture()
			referral.ClientAge = nil
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then the age rule should not hard-fail", func() {
				So(violations, ShouldBeEmpty)
			})
		})

		Convey("When the organization holds no license", func() {
			referral, opening, org, _ := eligibleFixture()
			violations := checker.Check(&referral, &opening, &org, nil)

			Convey("Then a license violation naming the organization is reported", func() {
				So(violations, ShouldHaveLength, 1)
				So(violations[0].Type, ShouldEqual, eligibility.ViolationLicense)
				So(violations[0].Message, ShouldContainSubstring, "North Star Care")
			})
		})

		Convey("When the license is pending rather than verified", func() {
			referral, opening, org, license := eligibleFixture()
			license.Status = "pending"
			violations := checker.Check(&referral, &opening, &org, &license)

			Convey("Then a license violation should be reported", func() {
				So(violations, ShouldHaveLength, 1)
				So(violations[0].Type, ShouldEqual, eligibility.ViolationLicense)
			})
		})

		Convey("When multiple constraints fail at once", func() {
			referral, opening, org, _ := eligibleFixture()
			referral.FundingSource = "private pay"
			opening.GenderRequirement = "male"
			violations := checker.Check(&referral, &opening, &org, nil)

			Convey("Then every failed rule should be reported, not just the first", func() {
				So(violations, ShouldHaveLength, 3)
			})
		})
	})
}

func TestChecker_Options(t *testing.T) {
	Convey("Given a checker with every rule disabled", t, func() {
		checker := eligibility.NewChecker(eligibility.WithConstraints(eligibility.Constraints{}))

		Convey("When checking an otherwise ineligible pair", func() {
			referral, opening, org, _ := eligibleFixture()
			referral.FundingSource = "private pay"
			opening.GenderRequirement = "male"
			violations := checker.Check(&referral, &opening, &org, nil)

			Convey("Then nothing should be reported", func() {
				So(violations, ShouldBeEmpty)
			})
		})
	})

	Convey("Given the default constraint set", t, func() {
		c := eligibility.DefaultConstraints()

		Convey("Then the documented defaults should hold", func() {
			So(c.RequireFundingMatch, ShouldBeTrue)
			So(c.RequireGenderMatch, ShouldBeTrue)
			So(c.RequireAgeRangeMatch, ShouldBeTrue)
			So(c.RequireVerifiedLicense, ShouldBeTrue)
			So(c.RequireCountyProximity, ShouldBeFalse)
		})
	})
}
