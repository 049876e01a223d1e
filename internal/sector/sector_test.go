package sector

import (
	"reflect"
	"testing"

	"BoardPulse/internal/model"
)

func stock(sym string, prevClose, close float64, sectors ...string) *model.InstrumentSnapshot {
	return &model.InstrumentSnapshot{
		Symbol: sym, Date: "20260107", Board: model.BoardMain,
		Open: prevClose, High: close, Low: prevClose,
		Close: close, PrevClose: prevClose, Volume: 1000,
		Sectors: sectors,
	}
}

func TestAggregate_Counts(t *testing.T) {
	day := map[string]*model.InstrumentSnapshot{
		"600001": stock("600001", 10.00, 11.00, "S1"), // limit-up
		"600002": stock("600002", 10.00, 10.50, "S1"), // +5%, up
		"600003": stock("600003", 10.00, 9.50, "S1"),  // down
	}
	// 20% board member with a big gain that is not a limit-up.
	big := stock("300004", 10.00, 11.20, "S1")
	big.Board = model.BoardChiNext
	day["300004"] = big

	stats, errs := Aggregate(day, FromSnapshots(day))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 sector, got %d", len(stats))
	}
	s := stats[0]
	if s.Code != "S1" || s.LimitUpCount != 1 || s.BigGainCount != 1 || s.ActivityScore != 2 {
		t.Errorf("stats = %+v", s)
	}
	// avg gain over up members: 10%, 5%, 12% -> 9.00
	if s.AvgGain != 9.00 {
		t.Errorf("AvgGain = %v, want 9.00", s.AvgGain)
	}
	if s.Members != 4 {
		t.Errorf("Members = %d, want 4", s.Members)
	}
}

func TestAggregate_MultiMembership(t *testing.T) {
	day := map[string]*model.InstrumentSnapshot{
		"600001": stock("600001", 10.00, 11.00, "S1", "S2"),
	}
	stats, _ := Aggregate(day, FromSnapshots(day))
	if len(stats) != 2 {
		t.Fatalf("expected the symbol counted in both sectors, got %d", len(stats))
	}
	for _, s := range stats {
		if s.LimitUpCount != 1 {
			t.Errorf("sector %s LimitUpCount = %d, want 1", s.Code, s.LimitUpCount)
		}
	}
}

func TestMergeRankings_TieBreakAndLabels(t *testing.T) {
	// Scenario: S1 and S2 tie on activity; lower code ranks first.
	stats := []Stats{
		{Code: "S2", ActivityScore: 12, AvgGain: 4.00},
		{Code: "S1", ActivityScore: 12, AvgGain: 8.00},
		{Code: "S3", ActivityScore: 3, AvgGain: 9.00},
		{Code: "S4", ActivityScore: 1, AvgGain: 2.00},
	}
	merged := MergeRankings(stats, 3, 2)

	if merged[0].Code != "S1" || merged[1].Code != "S2" {
		t.Errorf("activity tie must order S1 before S2, got %s, %s", merged[0].Code, merged[1].Code)
	}

	seen := map[string]int{}
	for _, e := range merged {
		seen[e.Code]++
	}
	for code, n := range seen {
		if n != 1 {
			t.Errorf("sector %s appears %d times, want once", code, n)
		}
	}

	// S3 tops avg gain, S1 second: S1 carries both labels.
	var s1 model.SectorEntry
	for _, e := range merged {
		if e.Code == "S1" {
			s1 = e
		}
	}
	want := []string{model.SectorByActivity, model.SectorByAvgGain}
	if !reflect.DeepEqual(s1.Origins, want) {
		t.Errorf("S1 origins = %v, want %v", s1.Origins, want)
	}

	// S4 is in neither top list.
	if _, ok := seen["S4"]; ok {
		t.Error("S4 should not appear in the merged ranking")
	}
}

func TestMembership_MergeDedups(t *testing.T) {
	a := Membership{"S1": {"600001", "600002"}}
	b := Membership{"S1": {"600002", "600003"}, "S2": {"600001"}}
	m := a.Merge(b)
	if got := m["S1"]; !reflect.DeepEqual(got, []string{"600001", "600002", "600003"}) {
		t.Errorf("S1 members = %v", got)
	}
	if got := m["S2"]; !reflect.DeepEqual(got, []string{"600001"}) {
		t.Errorf("S2 members = %v", got)
	}
}
