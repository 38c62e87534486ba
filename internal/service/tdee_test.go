package service_test

import (
	"testing"
	"time"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

func TestComputeBaselineMifflinStJeor(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	profile := model.Profile{
		Sex:            "male",
		BirthDate:      "1990-01-15", // birthday not yet reached: age 35
		HeightCM:       180,
		WeightKG:       90,
		ActivityLevel:  "moderate",
		TargetWeightKG: 80,
		TargetDate:     "2026-05-25", // 20 weeks out
	}

	b, err := service.ComputeBaseline(profile, now)
	if err != nil {
		t.Fatalf("compute baseline: %v", err)
	}
	if b.BMR != 1855 {
		t.Errorf("BMR: expected 1855, got %d", b.BMR)
	}
	if b.TDEE != 2875 {
		t.Errorf("TDEE: expected 2875, got %d", b.TDEE)
	}
	if b.PaceKgPerWk != 0.5 {
		t.Errorf("pace: expected 0.5, got %v", b.PaceKgPerWk)
	}
	if b.DailyDeficit != 550 {
		t.Errorf("deficit: expected 550, got %d", b.DailyDeficit)
	}
	if b.DailyBudget != 2325 {
		t.Errorf("budget: expected 2325, got %d", b.DailyBudget)
	}
}

func TestComputeBaselineClampsThePace(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	profile := model.Profile{
		Sex:            "female",
		BirthDate:      "1995-06-01",
		HeightCM:       165,
		WeightKG:       70,
		ActivityLevel:  "light",
		TargetWeightKG: 60,
	}

	// 10 kg in one week clamps to the safe maximum.
	profile.TargetDate = "2026-01-12"
	fast, err := service.ComputeBaseline(profile, now)
	if err != nil {
		t.Fatalf("fast baseline: %v", err)
	}
	if fast.PaceKgPerWk != 0.9 {
		t.Errorf("expected pace clamped to 0.9, got %v", fast.PaceKgPerWk)
	}
	if fast.DailyDeficit != 990 {
		t.Errorf("expected deficit 990, got %d", fast.DailyDeficit)
	}

	// 10 kg over four years clamps to the minimum meaningful pace.
	profile.TargetDate = "2030-01-05"
	slow, err := service.ComputeBaseline(profile, now)
	if err != nil {
		t.Fatalf("slow baseline: %v", err)
	}
	if slow.PaceKgPerWk != 0.1 {
		t.Errorf("expected pace clamped to 0.1, got %v", slow.PaceKgPerWk)
	}
	if slow.DailyDeficit != 110 {
		t.Errorf("expected deficit 110, got %d", slow.DailyDeficit)
	}
}

func TestComputeBaselineRejectsBadProfiles(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	valid := model.Profile{
		Sex:            "male",
		BirthDate:      "1990-01-15",
		HeightCM:       180,
		WeightKG:       90,
		ActivityLevel:  "moderate",
		TargetWeightKG: 80,
		TargetDate:     "2026-05-25",
	}

	cases := []struct {
		name   string
		mutate func(*model.Profile)
	}{
		{"unknown sex", func(p *model.Profile) { p.Sex = "other" }},
		{"unknown activity", func(p *model.Profile) { p.ActivityLevel = "extreme" }},
		{"zero height", func(p *model.Profile) { p.HeightCM = 0 }},
		{"zero target weight", func(p *model.Profile) { p.TargetWeightKG = 0 }},
		{"future birth date", func(p *model.Profile) { p.BirthDate = "2030-01-01" }},
		{"target date in the past", func(p *model.Profile) { p.TargetDate = "2025-12-01" }},
		{"unparseable target date", func(p *model.Profile) { p.TargetDate = "soon" }},
	}
	for _, tc := range cases {
		p := valid
		tc.mutate(&p)
		if _, err := service.ComputeBaseline(p, now); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if p, err := service.LoadProfile(db); err != nil || p != nil {
		t.Fatalf("expected no profile yet, got %+v err=%v", p, err)
	}

	profile := model.Profile{
		Sex:            "Male", // normalized on save
		BirthDate:      "1990-01-15",
		HeightCM:       180,
		WeightKG:       90,
		ActivityLevel:  "moderate",
		TargetWeightKG: 80,
		TargetDate:     "2099-01-01",
	}
	if err := service.SaveProfile(db, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	loaded, err := service.LoadProfile(db)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if loaded == nil || loaded.Sex != "male" || loaded.WeightKG != 90 {
		t.Fatalf("loaded profile: %+v", loaded)
	}

	// Saving again updates the single row instead of growing the table.
	profile.WeightKG = 87.5
	if err := service.SaveProfile(db, profile); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	loaded, err = service.LoadProfile(db)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if loaded.WeightKG != 87.5 {
		t.Fatalf("expected updated weight 87.5, got %v", loaded.WeightKG)
	}

	profile.Sex = "unknown"
	if err := service.SaveProfile(db, profile); err == nil {
		t.Fatalf("expected validation error on save")
	}
}
