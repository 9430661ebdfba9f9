package engine

import (
	"errors"
	"testing"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

func liveMatch(sport models.Sport) (*models.Match, *models.Team, *models.Team) {
	t1 := &models.Team{ID: 1, Name: "Phoenix Warriors", Sport: sport}
	t2 := &models.Team{ID: 2, Name: "Thunder Strikers", Sport: sport}
	m := &models.Match{ID: 10, Sport: sport, Team1ID: 1, Team2ID: 2, Status: models.StatusLive}
	models.NewScorePayload(m, 20, 20, 0, 3)
	return m, t1, t2
}

func TestSettleCricketChaseSucceeds(t *testing.T) {
	m, t1, t2 := liveMatch(models.SportCricket)
	m.Cricket.Innings1 = models.Innings{Runs: 120, Wickets: 8}
	m.Cricket.Target = 121
	m.Cricket.CurrentInnings = 2
	m.Cricket.BattingTeamID = 2 // 追分方
	m.Cricket.BowlingTeamID = 1
	m.Cricket.Innings2 = models.Innings{Runs: 121, Wickets: 4}

	if err := SettleMatch(m, t1, t2); err != nil {
		t.Fatalf("SettleMatch failed: %v", err)
	}

	if m.Status != models.StatusCompleted {
		t.Errorf("Expected COMPLETED, got %s", m.Status)
	}
	if m.Result != "Thunder Strikers won by 6 wickets" {
		t.Errorf("Unexpected result: %q", m.Result)
	}
	if t2.Wins != 1 || t1.Losses != 1 {
		t.Errorf("stats not updated: t1=%+v t2=%+v", t1, t2)
	}
	if t2.Points != 2 {
		t.Errorf("winner should earn 2 points, got %d", t2.Points)
	}
	if t1.TotalRunsScored != 120 || t2.TotalRunsScored != 121 {
		t.Errorf("runs credited wrong: %d/%d", t1.TotalRunsScored, t2.TotalRunsScored)
	}
}

func TestSettleCricketDefenceHolds(t *testing.T) {
	m, t1, t2 := liveMatch(models.SportCricket)
	m.Cricket.Innings1 = models.Innings{Runs: 150}
	m.Cricket.Target = 151
	m.Cricket.CurrentInnings = 2
	m.Cricket.BattingTeamID = 2
	m.Cricket.BowlingTeamID = 1
	m.Cricket.Innings2 = models.Innings{Runs: 130, Wickets: 10}

	if err := SettleMatch(m, t1, t2); err != nil {
		t.Fatalf("SettleMatch failed: %v", err)
	}
	if m.Result != "Phoenix Warriors won by 20 runs" {
		t.Errorf("Unexpected result: %q", m.Result)
	}
	if t1.Wins != 1 || t2.Losses != 1 {
		t.Errorf("stats not updated: t1=%+v t2=%+v", t1, t2)
	}
}

func TestSettleKabaddi(t *testing.T) {
	m, t1, t2 := liveMatch(models.SportKabaddi)
	m.Kabaddi.Team1 = models.KabaddiSide{RaidPoints: 10, TacklePoints: 5, AllOuts: 1, BonusPoints: 2} // 19
	m.Kabaddi.Team2 = models.KabaddiSide{RaidPoints: 8, TacklePoints: 4}                              // 12

	if err := SettleMatch(m, t1, t2); err != nil {
		t.Fatalf("SettleMatch failed: %v", err)
	}
	if m.Result != "Phoenix Warriors won by 7 points" {
		t.Errorf("Unexpected result: %q", m.Result)
	}
	if t1.TotalRaidPoints != 10 || t2.TotalTacklePoints != 4 {
		t.Errorf("career totals wrong: %+v %+v", t1, t2)
	}
}

func TestSettleKabaddiTie(t *testing.T) {
	m, t1, t2 := liveMatch(models.SportKabaddi)
	m.Kabaddi.Team1 = models.KabaddiSide{RaidPoints: 5}
	m.Kabaddi.Team2 = models.KabaddiSide{TacklePoints: 5}

	if err := SettleMatch(m, t1, t2); err != nil {
		t.Fatalf("SettleMatch failed: %v", err)
	}
	if m.Result != "Match tied" {
		t.Errorf("Unexpected result: %q", m.Result)
	}
	if t1.Wins != 0 || t2.Wins != 0 || t1.MatchesPlayed != 0 {
		t.Errorf("tie must not award win/loss: %+v %+v", t1, t2)
	}
}

func TestSettleVolleyballSetMode(t *testing.T) {
	m, t1, t2 := liveMatch(models.SportVolleyball)
	m.Volleyball.Team1.Sets = 2
	m.Volleyball.Team2.Sets = 1

	if err := SettleMatch(m, t1, t2); err != nil {
		t.Fatalf("SettleMatch failed: %v", err)
	}
	if m.Result != "Phoenix Warriors won 2-1" {
		t.Errorf("Unexpected result: %q", m.Result)
	}
	if t1.TotalSetsWon != 2 || t2.TotalSetsWon != 1 {
		t.Errorf("sets won wrong: %d/%d", t1.TotalSetsWon, t2.TotalSetsWon)
	}
}

func TestSettleVolleyballTTPMode(t *testing.T) {
	m, t1, t2 := liveMatch(models.SportVolleyball)
	m.Volleyball.TTPPoints = 50
	m.Volleyball.Team1.CurrentPoints = 42
	m.Volleyball.Team2.CurrentPoints = 50

	if err := SettleMatch(m, t1, t2); err != nil {
		t.Fatalf("SettleMatch failed: %v", err)
	}
	if m.Result != "Thunder Strikers won 50-42" {
		t.Errorf("Unexpected result: %q", m.Result)
	}
}

func TestSettleMatchStatusGate(t *testing.T) {
	m, t1, t2 := liveMatch(models.SportKabaddi)
	m.Status = models.StatusUpcoming
	if err := SettleMatch(m, t1, t2); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for UPCOMING, got %v", err)
	}

	m.Status = models.StatusLive
	if err := SettleMatch(m, t1, t2); err != nil {
		t.Fatalf("SettleMatch failed: %v", err)
	}
	// COMPLETED 是终态
	if err := SettleMatch(m, t1, t2); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState on repeat settle, got %v", err)
	}
}

func TestApplyToss(t *testing.T) {
	m, _, _ := liveMatch(models.SportCricket)
	if err := ApplyToss(m, 2, "bat"); err != nil {
		t.Fatalf("ApplyToss failed: %v", err)
	}
	if m.Cricket.BattingTeamID != 2 || m.Cricket.BowlingTeamID != 1 {
		t.Errorf("toss bat choice not applied: %d/%d", m.Cricket.BattingTeamID, m.Cricket.BowlingTeamID)
	}

	if err := ApplyToss(m, 99, "bat"); !errors.Is(err, common.ErrInvalidTeam) {
		t.Errorf("Expected ErrInvalidTeam, got %v", err)
	}

	vb, _, _ := liveMatch(models.SportVolleyball)
	if err := ApplyToss(vb, 2, "serve"); err != nil {
		t.Fatalf("ApplyToss volleyball failed: %v", err)
	}
	if vb.Volleyball.ServeTeamID != 2 {
		t.Errorf("serve should go to toss winner, got %d", vb.Volleyball.ServeTeamID)
	}
}
