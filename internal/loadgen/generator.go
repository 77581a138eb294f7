package loadgen

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/caremesh/matchd/internal/domain/model"
	"github.com/caremesh/matchd/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	percentDivisor     = 100
)

// Value pools the generator draws from. Counties and funding sources mirror
// a Minnesota-style waiver marketplace so the generated data exercises the
// served-county and funding-variant scoring paths.
var (
	counties = []string{"Hennepin", "Ramsey", "Dakota", "Anoka", "Washington", "Scott", "Carver", "Olmsted"}

	fundingSources = []string{"CADI Waiver", "DD Waiver", "BI Waiver", "CAC Waiver", "MA State Plan"}

	genders = []string{"male", "female", ""}

	plans = []model.SubscriptionPlan{model.PlanFree, model.PlanBasic, model.PlanProfessional, model.PlanEnterprise}

	behavioralSummaries = []string{
		"Generally calm, responds well to routine.",
		"History of physical aggression toward staff during transitions.",
		"Elopement risk; has left previous placements unsupervised.",
		"Occasional verbal outbursts, no physical incidents on record.",
		"",
	}

	medicalSummaries = []string{
		"No significant medical needs.",
		"Requires tube feeding at all meals.",
		"Ventilator dependent overnight.",
		"Seizure disorder managed with medication.",
		"",
	}
)

// Age bounds for generated clients and openings.
const (
	clientAgeMin   = 5
	clientAgeRange = 60
	ageBandWidth   = 25
)

// Probability knobs, in percent.
const (
	unknownAgePercent      = 10
	asapStartPercent       = 40
	inactiveOpeningPercent = 15
	unboundedAgePercent    = 30
	neverConfirmedPercent  = 20
	unverifiedOrgPercent   = 25
	expiredLicensePercent  = 15
	orgLevelProfilePercent = 30
	missingProfilePercent  = 10
	boostOverridePercent   = 5
	startDateHorizonDays   = 21
	confirmedWithinHours   = 72
	maxSpotsPerOpening     = 3
	statsReferralRange     = 40
)

// randInt returns a uniform random int in [0, n) using crypto/rand.
func randInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// chance reports true with the given percent probability.
func chance(percent int) bool {
	return randInt(percentDivisor) < percent
}

func pick[T any](pool []T) T {
	return pool[randInt(len(pool))]
}

// generateSnapshot builds a full reference snapshot: organizations with
// sites, licenses, capability profiles, subscriptions and stats, plus the
// referrals the test will submit match jobs for.
func generateSnapshot(ctx context.Context, config *Config, stats *Stats) model.Snapshot {
	logger.Get().Info(ctx, "generating snapshot",
		logger.Int("referrals", config.NumReferrals),
		logger.Int("organizations", config.NumOrgs),
		logger.Int("openingsPerOrg", config.OpeningsPerOrg))

	now := time.Now().UTC()
	var snap model.Snapshot

	for o := 0; o < config.NumOrgs; o++ {
		org := generateOrganization()
		site := generateSite(org.ID)
		snap.Organizations = append(snap.Organizations, org)
		snap.Sites = append(snap.Sites, site)
		snap.Licenses = append(snap.Licenses, generateLicense(org.ID, now))
		if !chance(missingProfilePercent) {
			snap.CapabilityProfiles = append(snap.CapabilityProfiles, generateProfile(org.ID, site.ID))
		}
		if sub := generateSubscription(org.ID); sub != nil {
			snap.Subscriptions = append(snap.Subscriptions, *sub)
		}
		snap.ProviderStats = append(snap.ProviderStats, generateStats(org.ID))

		for i := 0; i < config.OpeningsPerOrg; i++ {
			snap.Openings = append(snap.Openings, generateOpening(org.ID, site.ID, now))
		}
	}

	for r := 0; r < config.NumReferrals; r++ {
		snap.Referrals = append(snap.Referrals, generateReferral(now))
	}

	stats.ReferralsGenerated = len(snap.Referrals)
	stats.OpeningsGenerated = len(snap.Openings)
	logger.Get().Info(ctx, "generated snapshot successfully",
		logger.Int("referrals", len(snap.Referrals)),
		logger.Int("openings", len(snap.Openings)))

	return snap
}

func generateReferral(now time.Time) model.Referral {
	ref := model.Referral{
		ID:                uuid.New().String(),
		ClientCounty:      pick(counties),
		ClientGender:      pick(genders),
		FundingSource:     pick(fundingSources),
		Urgency:           model.UrgencyRoutine,
		BehavioralSummary: pick(behavioralSummaries),
		MedicalSummary:    pick(medicalSummaries),
	}
	if !chance(unknownAgePercent) {
		age := clientAgeMin + randInt(clientAgeRange)
		ref.ClientAge = &age
	}
	if !chance(asapStartPercent) {
		start := now.AddDate(0, 0, randInt(startDateHorizonDays))
		ref.DesiredStartDate = &start
	}
	switch randInt(3) {
	case 0:
		ref.Urgency = model.UrgencyUrgent
	case 1:
		ref.Urgency = model.UrgencyCrisis
	}
	return ref
}

func generateOrganization() model.Organization {
	served := []string{pick(counties)}
	if chance(50) {
		served = append(served, pick(counties))
	}
	status := model.VerificationVerified
	if chance(unverifiedOrgPercent) {
		status = model.VerificationUnverified
	}
	return model.Organization{
		ID:                 uuid.New().String(),
		Name:               "Provider " + uuid.New().String()[:8],
		CountiesServed:     served,
		VerificationStatus: status,
	}
}

func generateSite(orgID string) model.Site {
	return model.Site{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		County:         pick(counties),
	}
}

func generateLicense(orgID string, now time.Time) model.License {
	expiration := now.AddDate(1, 0, 0)
	if chance(expiredLicensePercent) {
		expiration = now.AddDate(0, -1, 0)
	}
	return model.License{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Status:         model.LicenseVerified,
		ExpirationDate: expiration,
	}
}

func generateProfile(orgID, siteID string) model.CapabilityProfile {
	levels := []model.CapabilityLevel{
		model.CapabilityNone, model.CapabilityMild, model.CapabilityModerate, model.CapabilitySevere,
	}
	profile := model.CapabilityProfile{
		ID:                 uuid.New().String(),
		AggressionPhysical: pick(levels),
		Elopement:          pick(levels),
		TubeFeeding:        chance(50),
		Ventilator:         chance(30),
		SeizureManagement:  chance(60),
	}
	if chance(orgLevelProfilePercent) {
		profile.OrganizationID = orgID
	} else {
		profile.SiteID = siteID
	}
	return profile
}

func generateSubscription(orgID string) *model.Subscription {
	plan := pick(plans)
	if plan == model.PlanFree {
		return nil
	}
	sub := model.Subscription{
		OrganizationID: orgID,
		Plan:           plan,
		Status:         model.SubscriptionActive,
	}
	if chance(boostOverridePercent) {
		boost := 1.0 + randFloat()*0.2
		sub.PriorityBoostFactor = &boost
	}
	return &sub
}

func generateStats(orgID string) model.ProviderStats {
	received := randInt(statsReferralRange)
	accepted := 0
	if received > 0 {
		accepted = randInt(received + 1)
	}
	return model.ProviderStats{
		OrganizationID:    orgID,
		ReferralsReceived: received,
		ReferralsAccepted: accepted,
	}
}

func generateOpening(orgID, siteID string, now time.Time) model.Opening {
	opening := model.Opening{
		ID:                uuid.New().String(),
		OrganizationID:    orgID,
		SiteID:            siteID,
		Status:            model.OpeningActive,
		SpotsAvailable:    1 + randInt(maxSpotsPerOpening),
		GenderRequirement: model.GenderAny,
		FundingAccepted:   []string{pick(fundingSources), pick(fundingSources)},
	}
	if chance(inactiveOpeningPercent) {
		opening.Status = model.OpeningFilled
	}
	if chance(30) {
		opening.GenderRequirement = pick([]string{"male", "female"})
	}
	if !chance(unboundedAgePercent) {
		lo := clientAgeMin + randInt(clientAgeRange)
		hi := lo + randInt(ageBandWidth)
		opening.AgeMin = &lo
		opening.AgeMax = &hi
	}
	if chance(50) {
		available := now.AddDate(0, 0, randInt(startDateHorizonDays))
		opening.AvailableDate = &available
	}
	if !chance(neverConfirmedPercent) {
		confirmed := now.Add(-time.Duration(randInt(confirmedWithinHours)) * time.Hour)
		opening.LastConfirmedAt = &confirmed
	}
	return opening
}
