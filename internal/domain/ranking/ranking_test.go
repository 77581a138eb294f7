package ranking_test

import (
	"testing"
	"time"

	"github.com/caremesh/matchd/internal/domain/model"
	"github.com/caremesh/matchd/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRanker(opts ...ranking.Option) *ranking.Ranker {
	opts = append([]ranking.Option{ranking.WithClock(func() time.Time { return fixedNow })}, opts...)
	return ranking.NewRanker(opts...)
}

func match(openingID, orgID string, total float64) model.MatchResult {
	return model.MatchResult{
		OpeningID:      openingID,
		OrganizationID: orgID,
		TotalScore:     total,
	}
}

// neutralProviders returns a provider set that yields multiplier 1.0 across
// the board for the named organizations.
func neutralProviders(orgIDs ...string) ranking.Providers {
	orgs := make(map[string]*model.Organization, len(orgIDs))
	for _, id := range orgIDs {
		orgs[id] = &model.Organization{ID: id, VerificationStatus: model.VerificationPending}
	}
	return ranking.Providers{
		Organizations: orgs,
		Subscriptions: map[string]*model.Subscription{},
		Licenses:      map[string][]model.License{},
		Stats:         map[string]*model.ProviderStats{},
		Openings:      map[string]*model.Opening{},
	}
}

func TestRanker_PaidMultiplier(t *testing.T) {
	Convey("Given a ranker with the default plan boosts", t, func() {
		ranker := newRanker()

		rank := func(sub *model.Subscription) model.RankedMatch {
			providers := neutralProviders("org-1")
			if sub != nil {
				providers.Subscriptions["org-1"] = sub
			}
			ranked := ranker.Rank([]model.MatchResult{match("op-1", "org-1", 90)}, providers)
			So(ranked, ShouldHaveLength, 1)
			return ranked[0]
		}

		Convey("When the organization has no subscription", func() {
			r := rank(nil)
			So(r.PaidMultiplier, ShouldEqual, 1.0)
			So(r.Tier, ShouldEqual, "free")
		})

		Convey("When the subscription is inactive", func() {
			r := rank(&model.Subscription{Plan: model.PlanEnterprise, Status: "canceled"})
			So(r.PaidMultiplier, ShouldEqual, 1.0)
			So(r.Tier, ShouldEqual, "free")
		})

		Convey("When the plans escalate", func() {
			So(rank(&model.Subscription{Plan: model.PlanBasic, Status: model.SubscriptionActive}).PaidMultiplier, ShouldEqual, 1.05)
			So(rank(&model.Subscription{Plan: model.PlanProfessional, Status: model.SubscriptionActive}).PaidMultiplier, ShouldEqual, 1.10)
			So(rank(&model.Subscription{Plan: model.PlanEnterprise, Status: model.SubscriptionActive}).PaidMultiplier, ShouldEqual, 1.15)
		})

		Convey("When the subscription carries an explicit boost factor", func() {
			r := rank(&model.Subscription{
				Plan:                model.PlanBasic,
				Status:              model.SubscriptionActive,
				PriorityBoostFactor: floatPtr(1.2),
			})

			Convey("Then the override beats the plan table", func() {
				So(r.PaidMultiplier, ShouldEqual, 1.2)
				So(r.Tier, ShouldEqual, "basic")
			})
		})

		Convey("When the boost factor would demote the match", func() {
			r := rank(&model.Subscription{
				Plan:                model.PlanBasic,
				Status:              model.SubscriptionActive,
				PriorityBoostFactor: floatPtr(0.5),
			})

			Convey("Then the multiplier is held at the neutral floor", func() {
				So(r.PaidMultiplier, ShouldEqual, 1.0)
			})
		})

		Convey("When the boost factor exceeds the ceiling", func() {
			r := rank(&model.Subscription{
				Plan:                model.PlanEnterprise,
				Status:              model.SubscriptionActive,
				PriorityBoostFactor: floatPtr(3.0),
			})

			Convey("Then the multiplier is capped", func() {
				So(r.PaidMultiplier, ShouldEqual, 1.25)
			})
		})
	})
}

func TestRanker_ReliabilityMultiplier(t *testing.T) {
	Convey("Given a ranker and a single high-scoring match", t, func() {
		ranker := newRanker()

		rank := func(mutate func(p *ranking.Providers)) model.RankedMatch {
			providers := neutralProviders("org-1")
			mutate(&providers)
			ranked := ranker.Rank([]model.MatchResult{match("op-1", "org-1", 90)}, providers)
			So(ranked, ShouldHaveLength, 1)
			return ranked[0]
		}

		Convey("When the organization is verified", func() {
			r := rank(func(p *ranking.Providers) {
				p.Organizations["org-1"].VerificationStatus = model.VerificationVerified
			})
			So(r.ReliabilityMultiplier, ShouldAlmostEqual, 1.1, 0.0001)
		})

		Convey("When the organization is unverified", func() {
			r := rank(func(p *ranking.Providers) {
				p.Organizations["org-1"].VerificationStatus = model.VerificationUnverified
			})
			So(r.ReliabilityMultiplier, ShouldAlmostEqual, 0.9, 0.0001)
		})

		Convey("When a verified unexpired license is on file", func() {
			r := rank(func(p *ranking.Providers) {
				p.Licenses["org-1"] = []model.License{
					{Status: model.LicenseVerified, ExpirationDate: fixedNow.AddDate(1, 0, 0)},
				}
			})
			So(r.ReliabilityMultiplier, ShouldAlmostEqual, 1.05, 0.0001)
		})

		Convey("When the only verified license has expired", func() {
			r := rank(func(p *ranking.Providers) {
				p.Licenses["org-1"] = []model.License{
					{Status: model.LicenseVerified, ExpirationDate: fixedNow.AddDate(-1, 0, 0)},
				}
			})
			So(r.ReliabilityMultiplier, ShouldAlmostEqual, 1.0, 0.0001)
		})

		Convey("When the acceptance history is strong", func() {
			r := rank(func(p *ranking.Providers) {
				p.Stats["org-1"] = &model.ProviderStats{ReferralsReceived: 10, ReferralsAccepted: 9}
			})
			So(r.ReliabilityMultiplier, ShouldAlmostEqual, 1.05, 0.0001)
		})

		Convey("When the acceptance history is poor", func() {
			r := rank(func(p *ranking.Providers) {
				p.Stats["org-1"] = &model.ProviderStats{ReferralsReceived: 10, ReferralsAccepted: 1}
			})
			So(r.ReliabilityMultiplier, ShouldAlmostEqual, 0.9, 0.0001)
		})

		Convey("When the history is too short to be meaningful", func() {
			r := rank(func(p *ranking.Providers) {
				p.Stats["org-1"] = &model.ProviderStats{ReferralsReceived: 3, ReferralsAccepted: 0}
			})

			Convey("Then no acceptance adjustment applies", func() {
				So(r.ReliabilityMultiplier, ShouldAlmostEqual, 1.0, 0.0001)
			})
		})

		Convey("When every signal is positive", func() {
			r := rank(func(p *ranking.Providers) {
				p.Organizations["org-1"].VerificationStatus = model.VerificationVerified
				p.Licenses["org-1"] = []model.License{
					{Status: model.LicenseVerified, ExpirationDate: fixedNow.AddDate(1, 0, 0)},
				}
				p.Stats["org-1"] = &model.ProviderStats{ReferralsReceived: 20, ReferralsAccepted: 19}
			})

			Convey("Then the multiplier caps at the ceiling", func() {
				So(r.ReliabilityMultiplier, ShouldAlmostEqual, 1.2, 0.0001)
			})
		})

		Convey("When every signal is negative", func() {
			r := rank(func(p *ranking.Providers) {
				p.Organizations["org-1"].VerificationStatus = model.VerificationUnverified
				p.Stats["org-1"] = &model.ProviderStats{ReferralsReceived: 10, ReferralsAccepted: 0}
			})

			Convey("Then the multiplier floors", func() {
				So(r.ReliabilityMultiplier, ShouldAlmostEqual, 0.8, 0.0001)
			})
		})
	})
}

func TestRanker_FreshnessScore(t *testing.T) {
	Convey("Given a ranker with a fixed clock", t, func() {
		ranker := newRanker()

		rank := func(confirmedAgo *time.Duration) model.RankedMatch {
			providers := neutralProviders("org-1")
			opening := &model.Opening{ID: "op-1"}
			if confirmedAgo != nil {
				opening.LastConfirmedAt = timePtr(fixedNow.Add(-*confirmedAgo))
			}
			providers.Openings["op-1"] = opening
			ranked := ranker.Rank([]model.MatchResult{match("op-1", "org-1", 90)}, providers)
			So(ranked, ShouldHaveLength, 1)
			return ranked[0]
		}

		ago := func(d time.Duration) *time.Duration { return &d }

		Convey("When availability was confirmed an hour ago", func() {
			So(rank(ago(time.Hour)).FreshnessScore, ShouldEqual, 1.0)
		})

		Convey("When it was confirmed thirteen hours ago", func() {
			So(rank(ago(13*time.Hour)).FreshnessScore, ShouldEqual, 0.9)
		})

		Convey("When it was confirmed twenty-five hours ago", func() {
			So(rank(ago(25*time.Hour)).FreshnessScore, ShouldEqual, 0.8)
		})

		Convey("When it was confirmed thirty-seven hours ago", func() {
			So(rank(ago(37*time.Hour)).FreshnessScore, ShouldEqual, 0.7)
		})

		Convey("When the confirmation is older than two days", func() {
			r := rank(ago(49 * time.Hour))

			Convey("Then the freshness and final score both zero out", func() {
				So(r.FreshnessScore, ShouldEqual, 0)
				So(r.FinalScore, ShouldEqual, 0)
			})
		})

		Convey("When availability was never confirmed", func() {
			So(rank(nil).FreshnessScore, ShouldEqual, 0.5)
		})

		Convey("When the opening is missing from the provider set", func() {
			providers := neutralProviders("org-1")
			ranked := ranker.Rank([]model.MatchResult{match("op-1", "org-1", 90)}, providers)

			So(ranked[0].FreshnessScore, ShouldEqual, 0.5)
		})
	})
}

func TestRanker_Bands(t *testing.T) {
	Convey("Given three matches with a paid provider trailing on base score", t, func() {
		ranker := newRanker()

		providers := neutralProviders("org-free", "org-ent", "org-pro")
		providers.Subscriptions["org-ent"] = &model.Subscription{Plan: model.PlanEnterprise, Status: model.SubscriptionActive}
		providers.Subscriptions["org-pro"] = &model.Subscription{Plan: model.PlanProfessional, Status: model.SubscriptionActive}

		matches := []model.MatchResult{
			match("op-free", "org-free", 82),
			match("op-ent", "org-ent", 79),
			match("op-pro", "org-pro", 70),
		}

		Convey("When ranking", func() {
			ranked := ranker.Rank(matches, providers)

			Convey("Then the paid boost reorders only within the band", func() {
				So(ranked, ShouldHaveLength, 3)
				// 82 and 79 share a band; enterprise leads it.
				So(ranked[0].OpeningID, ShouldEqual, "op-ent")
				So(ranked[1].OpeningID, ShouldEqual, "op-free")
				// 70 is more than five points below the anchor; no boost
				// can pull it past the band boundary.
				So(ranked[2].OpeningID, ShouldEqual, "op-pro")
			})
		})
	})

	Convey("Given two matches exactly five points apart", t, func() {
		ranker := newRanker()

		providers := neutralProviders("org-free", "org-ent")
		providers.Subscriptions["org-ent"] = &model.Subscription{Plan: model.PlanEnterprise, Status: model.SubscriptionActive}

		matches := []model.MatchResult{
			match("op-free", "org-free", 85),
			match("op-ent", "org-ent", 80),
		}

		Convey("When ranking", func() {
			ranked := ranker.Rank(matches, providers)

			Convey("Then the boundary score joins the upper band", func() {
				So(ranked[0].OpeningID, ShouldEqual, "op-ent")
				So(ranked[1].OpeningID, ShouldEqual, "op-free")
			})
		})
	})

	Convey("Given a narrower configured band width", t, func() {
		ranker := newRanker(ranking.WithConfig(ranking.Config{BandWidth: 2}))

		providers := neutralProviders("org-free", "org-ent")
		providers.Subscriptions["org-ent"] = &model.Subscription{Plan: model.PlanEnterprise, Status: model.SubscriptionActive}

		matches := []model.MatchResult{
			match("op-free", "org-free", 85),
			match("op-ent", "org-ent", 80),
		}

		Convey("When ranking", func() {
			ranked := ranker.Rank(matches, providers)

			Convey("Then the five-point gap now spans two bands", func() {
				So(ranked[0].OpeningID, ShouldEqual, "op-free")
				So(ranked[1].OpeningID, ShouldEqual, "op-ent")
			})
		})
	})

	Convey("Given matches that tie on every ranking signal", t, func() {
		ranker := newRanker()
		providers := neutralProviders("org-1")

		matches := []model.MatchResult{
			match("op-b", "org-1", 90),
			match("op-a", "org-1", 90),
		}

		Convey("When ranking", func() {
			ranked := ranker.Rank(matches, providers)

			Convey("Then the opening id breaks the tie ascending", func() {
				So(ranked[0].OpeningID, ShouldEqual, "op-a")
				So(ranked[1].OpeningID, ShouldEqual, "op-b")
			})
		})
	})

	Convey("Given an empty match list", t, func() {
		ranker := newRanker()

		Convey("When ranking", func() {
			ranked := ranker.Rank(nil, neutralProviders())

			Convey("Then the result is empty, not nil-panicking", func() {
				So(ranked, ShouldBeEmpty)
			})
		})
	})
}

func TestRanker_FinalScore(t *testing.T) {
	Convey("Given a fully-boosted provider", t, func() {
		ranker := newRanker()

		providers := neutralProviders("org-1")
		providers.Organizations["org-1"].VerificationStatus = model.VerificationVerified
		providers.Subscriptions["org-1"] = &model.Subscription{Plan: model.PlanEnterprise, Status: model.SubscriptionActive}
		providers.Licenses["org-1"] = []model.License{
			{Status: model.LicenseVerified, ExpirationDate: fixedNow.AddDate(1, 0, 0)},
		}
		providers.Openings["op-1"] = &model.Opening{ID: "op-1", LastConfirmedAt: timePtr(fixedNow.Add(-time.Hour))}

		Convey("When ranking a ninety-point match", func() {
			ranked := ranker.Rank([]model.MatchResult{match("op-1", "org-1", 90)}, providers)

			Convey("Then the final score is the product of base and multipliers", func() {
				So(ranked, ShouldHaveLength, 1)
				r := ranked[0]
				So(r.PaidMultiplier, ShouldEqual, 1.15)
				So(r.ReliabilityMultiplier, ShouldAlmostEqual, 1.15, 0.0001)
				So(r.FreshnessScore, ShouldEqual, 1.0)
				So(r.FinalScore, ShouldAlmostEqual, 90*1.15*1.15, 0.0001)
			})
		})
	})
}

func TestRanker_RepeatedRunsAreIdentical(t *testing.T) {
	Convey("Given a mixed field of boosted and neutral providers", t, func() {
		ranker := newRanker()

		providers := neutralProviders("org-1", "org-2", "org-3")
		providers.Organizations["org-1"].VerificationStatus = model.VerificationVerified
		providers.Organizations["org-3"].VerificationStatus = model.VerificationUnverified
		providers.Subscriptions["org-2"] = &model.Subscription{Plan: model.PlanProfessional, Status: model.SubscriptionActive}
		providers.Licenses["org-1"] = []model.License{
			{Status: model.LicenseVerified, ExpirationDate: fixedNow.AddDate(1, 0, 0)},
		}
		providers.Openings["op-1"] = &model.Opening{ID: "op-1", LastConfirmedAt: timePtr(fixedNow.Add(-time.Hour))}
		providers.Openings["op-2"] = &model.Opening{ID: "op-2", LastConfirmedAt: timePtr(fixedNow.Add(-20 * time.Hour))}

		// Mixed multipliers so every second-pass rule participates in the
		// ordering on each run.
		results := []model.MatchResult{
			match("op-1", "org-1", 88),
			match("op-2", "org-2", 90),
			match("op-3", "org-3", 87),
		}

		first := ranker.Rank(results, providers)
		So(first, ShouldHaveLength, 3)

		Convey("When the same field is ranked many times", func() {
			Convey("Then the order and every score are identical each run", func() {
				for i := 0; i < 50; i++ {
					So(ranker.Rank(results, providers), ShouldResemble, first)
				}
			})
		})
	})
}
