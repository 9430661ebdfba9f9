package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"arena-service/pkg/common"
	"arena-service/pkg/engine"
	"arena-service/pkg/models"
)

// fakeMatchStore 内存版比赛存储,测试用
type fakeMatchStore struct {
	mu       sync.Mutex
	matches  map[int64]*models.Match
	settled  []*models.Team
	failSave bool
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: make(map[int64]*models.Match)}
}

func (s *fakeMatchStore) Create(ctx context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = int64(len(s.matches) + 1)
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *fakeMatchStore) Load(ctx context.Context, matchID int64) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeMatchStore) Save(ctx context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return common.ErrStoreUnavailable
	}
	if _, ok := s.matches[m.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *fakeMatchStore) SaveSettled(ctx context.Context, m *models.Match, t1, t2 *models.Team) error {
	if err := s.Save(ctx, m); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c1, c2 := *t1, *t2
	s.settled = append(s.settled, &c1, &c2)
	return nil
}

func (s *fakeMatchStore) List(ctx context.Context, sport, status string) ([]*models.Match, error) {
	return nil, nil
}

func (s *fakeMatchStore) RecentCompleted(ctx context.Context, limit int) ([]*models.Match, error) {
	return nil, nil
}

// fakeTeamStore 内存版队伍存储,测试用
type fakeTeamStore struct {
	mu    sync.Mutex
	teams map[int64]*models.Team
}

func newFakeTeamStore(teams ...*models.Team) *fakeTeamStore {
	s := &fakeTeamStore{teams: make(map[int64]*models.Team)}
	for _, t := range teams {
		s.teams[t.ID] = t
	}
	return s
}

func (s *fakeTeamStore) Create(ctx context.Context, t *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = int64(len(s.teams) + 1)
	s.teams[t.ID] = t
	return nil
}

func (s *fakeTeamStore) Load(ctx context.Context, teamID int64) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTeamStore) LoadByName(ctx context.Context, name string) (*models.Team, error) {
	return nil, common.ErrNotFound
}

func (s *fakeTeamStore) List(ctx context.Context, sport string) ([]*models.Team, error) {
	return nil, nil
}

func (s *fakeTeamStore) TopTeams(ctx context.Context, sport models.Sport, limit int) ([]*models.Team, error) {
	return nil, nil
}

func (s *fakeTeamStore) RecordHolder(ctx context.Context, sport models.Sport, stat string) (*models.Team, error) {
	return nil, common.ErrNotFound
}

// recordingBroker 记录所有发布的事件,测试用
type recordingBroker struct {
	mu     sync.Mutex
	events []models.Event
}

func (b *recordingBroker) Produce(ev models.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBroker) Consume() (<-chan models.Event, error) {
	return nil, nil
}

func (b *recordingBroker) Close() error {
	return nil
}

func (b *recordingBroker) all() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.events...)
}

func newTestService(sport models.Sport, status models.MatchStatus) (*ScoringService, *fakeMatchStore, *recordingBroker, int64) {
	t1 := &models.Team{ID: 1, Name: "Thunder", Sport: sport}
	t2 := &models.Team{ID: 2, Name: "Lightning", Sport: sport}
	teams := newFakeTeamStore(t1, t2)

	matches := newFakeMatchStore()
	m := &models.Match{Sport: sport, Team1ID: 1, Team2ID: 2, Status: status}
	models.NewScorePayload(m, 20, 20, 0, 5)
	matches.Create(context.Background(), m)

	broker := &recordingBroker{}
	svc := NewScoringService(matches, teams, broker)
	return svc, matches, broker, m.ID
}

func TestStartMatch(t *testing.T) {
	svc, _, broker, matchID := newTestService(models.SportCricket, models.StatusUpcoming)

	m, err := svc.StartMatch(context.Background(), matchID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Status != models.StatusLive {
		t.Errorf("Expected status LIVE, got %s", m.Status)
	}

	// 开赛不是广播事件
	if len(broker.all()) != 0 {
		t.Errorf("Expected no events for start, got %d", len(broker.all()))
	}

	// 重复开赛
	if _, err := svc.StartMatch(context.Background(), matchID); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for double start, got %v", err)
	}
}

func TestStartMatchNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(models.SportCricket, models.StatusUpcoming)

	if _, err := svc.StartMatch(context.Background(), 999); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestScoreCricketGates(t *testing.T) {
	// 非板球比赛
	svc, _, _, matchID := newTestService(models.SportKabaddi, models.StatusLive)
	if _, _, err := svc.ScoreCricket(context.Background(), matchID, engine.DeliveryInput{Runs: 4}); !errors.Is(err, common.ErrWrongSport) {
		t.Errorf("Expected ErrWrongSport, got %v", err)
	}

	// 未开赛
	svc, _, _, matchID = newTestService(models.SportCricket, models.StatusUpcoming)
	if _, _, err := svc.ScoreCricket(context.Background(), matchID, engine.DeliveryInput{Runs: 4}); !errors.Is(err, common.ErrNotLive) {
		t.Errorf("Expected ErrNotLive, got %v", err)
	}

	// 不存在
	if _, _, err := svc.ScoreCricket(context.Background(), 999, engine.DeliveryInput{Runs: 4}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestScoreCricketPublishesAfterSave(t *testing.T) {
	svc, matches, broker, matchID := newTestService(models.SportCricket, models.StatusLive)

	m, _, err := svc.ScoreCricket(context.Background(), matchID, engine.DeliveryInput{Runs: 4})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Cricket.Innings1.Runs != 4 {
		t.Errorf("Expected 4 runs, got %d", m.Cricket.Innings1.Runs)
	}

	// 持久化可见
	saved, err := matches.Load(context.Background(), matchID)
	if err != nil {
		t.Fatalf("Expected saved match, got %v", err)
	}
	if saved.Cricket.Innings1.Runs != 4 {
		t.Errorf("Expected saved runs 4, got %d", saved.Cricket.Innings1.Runs)
	}

	events := broker.all()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != models.EventScoreUpdate {
		t.Errorf("Expected score_update, got %s", ev.Kind)
	}
	if ev.MatchID != matchID {
		t.Errorf("Expected match ID %d, got %d", matchID, ev.MatchID)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(ev.Payload, &body); err != nil {
		t.Fatalf("Expected valid JSON payload, got %v", err)
	}
	if body["score"] != float64(4) {
		t.Errorf("Expected score 4 in payload, got %v", body["score"])
	}
	if body["overs"] != "0.1" {
		t.Errorf("Expected overs 0.1 in payload, got %v", body["overs"])
	}
	if body["batting_team"] != "Thunder" {
		t.Errorf("Expected batting_team Thunder, got %v", body["batting_team"])
	}
}

func TestScoreCricketSaveFailureNoEvent(t *testing.T) {
	svc, matches, broker, matchID := newTestService(models.SportCricket, models.StatusLive)
	matches.failSave = true

	_, _, err := svc.ScoreCricket(context.Background(), matchID, engine.DeliveryInput{Runs: 6})
	if !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}

	// 持久化失败时不得广播
	if len(broker.all()) != 0 {
		t.Errorf("Expected no events after failed save, got %d", len(broker.all()))
	}

	// 存储内容不变
	saved, _ := matches.Load(context.Background(), matchID)
	if saved.Cricket.Innings1.Runs != 0 {
		t.Errorf("Expected stored runs unchanged, got %d", saved.Cricket.Innings1.Runs)
	}
}

func TestEndInningsOnce(t *testing.T) {
	svc, _, broker, matchID := newTestService(models.SportCricket, models.StatusLive)

	svc.ScoreCricket(context.Background(), matchID, engine.DeliveryInput{Runs: 4})

	m, err := svc.EndInnings(context.Background(), matchID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Cricket.Target != 5 {
		t.Errorf("Expected target 5, got %d", m.Cricket.Target)
	}
	if m.Cricket.BattingTeamID != 2 {
		t.Errorf("Expected teams swapped, batting team is %d", m.Cricket.BattingTeamID)
	}

	if _, err := svc.EndInnings(context.Background(), matchID); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for second end_innings, got %v", err)
	}

	events := broker.all()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[1].Kind != models.EventInningsChange {
		t.Errorf("Expected innings_change, got %s", events[1].Kind)
	}
}

func TestScoreKabaddiInvalidTeam(t *testing.T) {
	svc, _, broker, matchID := newTestService(models.SportKabaddi, models.StatusLive)

	_, err := svc.ScoreKabaddi(context.Background(), matchID, 42, engine.ActionRaid, 1)
	if !errors.Is(err, common.ErrInvalidTeam) {
		t.Errorf("Expected ErrInvalidTeam, got %v", err)
	}
	if len(broker.all()) != 0 {
		t.Errorf("Expected no events, got %d", len(broker.all()))
	}
}

func TestScoreKabaddiBroadcastsTotals(t *testing.T) {
	svc, _, broker, matchID := newTestService(models.SportKabaddi, models.StatusLive)

	if _, err := svc.ScoreKabaddi(context.Background(), matchID, 1, engine.ActionRaid, 3); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.ScoreKabaddi(context.Background(), matchID, 1, engine.ActionAllOut, 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	events := broker.all()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	var body map[string]interface{}
	if err := json.Unmarshal(events[1].Payload, &body); err != nil {
		t.Fatalf("Expected valid JSON payload, got %v", err)
	}
	side, ok := body["team1_score"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected team1_score object, got %v", body["team1_score"])
	}
	// 3 raid + 1 all-out (计 2 分) = 5
	if side["total"] != float64(5) {
		t.Errorf("Expected derived total 5, got %v", side["total"])
	}
}

func TestSwitchHalfRepeat(t *testing.T) {
	svc, _, broker, matchID := newTestService(models.SportKabaddi, models.StatusLive)

	m, err := svc.SwitchHalf(context.Background(), matchID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Kabaddi.CurrentHalf != 2 {
		t.Errorf("Expected half 2, got %d", m.Kabaddi.CurrentHalf)
	}

	// 重复切换按无操作成功,事件重播
	if _, err := svc.SwitchHalf(context.Background(), matchID); err != nil {
		t.Errorf("Expected repeat switch to succeed, got %v", err)
	}

	events := broker.all()
	if len(events) != 2 {
		t.Fatalf("Expected 2 half_change events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Kind != models.EventHalfChange {
			t.Errorf("Expected half_change, got %s", ev.Kind)
		}
	}
}

func TestScoreVolleyballUndo(t *testing.T) {
	svc, _, _, matchID := newTestService(models.SportVolleyball, models.StatusLive)

	svc.ScoreVolleyball(context.Background(), matchID, 1, engine.ActionPoint)
	svc.ScoreVolleyball(context.Background(), matchID, 2, engine.ActionPoint)

	m, err := svc.ScoreVolleyball(context.Background(), matchID, 1, engine.ActionUndo)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Volleyball.Team1.CurrentPoints != 1 || m.Volleyball.Team2.CurrentPoints != 0 {
		t.Errorf("Expected 1-0 after undo, got %d-%d",
			m.Volleyball.Team1.CurrentPoints, m.Volleyball.Team2.CurrentPoints)
	}
}

func TestSaveToss(t *testing.T) {
	svc, _, broker, matchID := newTestService(models.SportCricket, models.StatusUpcoming)

	m, err := svc.SaveToss(context.Background(), matchID, 2, "bowl")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.TossWinnerID != 2 {
		t.Errorf("Expected toss winner 2, got %d", m.TossWinnerID)
	}

	events := broker.all()
	if len(events) != 1 || events[0].Kind != models.EventToss {
		t.Fatalf("Expected 1 toss event, got %v", events)
	}
	var body map[string]interface{}
	json.Unmarshal(events[0].Payload, &body)
	if body["winner"] != "Lightning" {
		t.Errorf("Expected winner Lightning, got %v", body["winner"])
	}
}

func TestCompleteMatch(t *testing.T) {
	svc, matches, broker, matchID := newTestService(models.SportKabaddi, models.StatusLive)

	svc.ScoreKabaddi(context.Background(), matchID, 1, engine.ActionRaid, 7)
	svc.ScoreKabaddi(context.Background(), matchID, 2, engine.ActionTackle, 0)

	m, err := svc.CompleteMatch(context.Background(), matchID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Status != models.StatusCompleted {
		t.Errorf("Expected status COMPLETED, got %s", m.Status)
	}
	if m.Result != "Thunder won by 6 points" {
		t.Errorf("Expected result 'Thunder won by 6 points', got %q", m.Result)
	}

	// 已结束的比赛拒绝继续计分
	if _, err := svc.ScoreKabaddi(context.Background(), matchID, 1, engine.ActionRaid, 1); !errors.Is(err, common.ErrNotLive) {
		t.Errorf("Expected ErrNotLive after completion, got %v", err)
	}

	// 重复结算
	if _, err := svc.CompleteMatch(context.Background(), matchID); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for double complete, got %v", err)
	}

	events := broker.all()
	last := events[len(events)-1]
	if last.Kind != models.EventMatchEnd {
		t.Errorf("Expected match_end as last event, got %s", last.Kind)
	}

	// 结算落库携带双方生涯统计
	if len(matches.settled) != 2 {
		t.Fatalf("Expected 2 settled teams, got %d", len(matches.settled))
	}
	winner, loser := matches.settled[0], matches.settled[1]
	if winner.Wins != 1 || winner.Points != 2 || winner.MatchesPlayed != 1 {
		t.Errorf("Expected winner stats 1/2/1, got wins=%d points=%d played=%d",
			winner.Wins, winner.Points, winner.MatchesPlayed)
	}
	if loser.Losses != 1 || loser.Points != 0 {
		t.Errorf("Expected loser stats losses=1 points=0, got losses=%d points=%d",
			loser.Losses, loser.Points)
	}
}

func TestConcurrentScoringSameMatch(t *testing.T) {
	svc, matches, _, matchID := newTestService(models.SportKabaddi, models.StatusLive)

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.ScoreKabaddi(context.Background(), matchID, 1, engine.ActionRaid, 1); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	saved, _ := matches.Load(context.Background(), matchID)
	if got := saved.Kabaddi.Team1.RaidPoints; got != writers {
		t.Errorf("Expected %d raid points after concurrent writes, got %d", writers, got)
	}
}

func TestConcurrentScoringIndependentMatches(t *testing.T) {
	t1 := &models.Team{ID: 1, Name: "Thunder", Sport: models.SportKabaddi}
	t2 := &models.Team{ID: 2, Name: "Lightning", Sport: models.SportKabaddi}
	teams := newFakeTeamStore(t1, t2)
	matches := newFakeMatchStore()
	broker := &recordingBroker{}
	svc := NewScoringService(matches, teams, broker)

	var ids []int64
	for i := 0; i < 4; i++ {
		m := &models.Match{Sport: models.SportKabaddi, Team1ID: 1, Team2ID: 2, Status: models.StatusLive}
		models.NewScorePayload(m, 0, 20, 0, 0)
		matches.Create(context.Background(), m)
		ids = append(ids, m.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				svc.ScoreKabaddi(context.Background(), id, 1, engine.ActionRaid, 1)
			}(id)
		}
	}
	wg.Wait()

	for _, id := range ids {
		saved, _ := matches.Load(context.Background(), id)
		if saved.Kabaddi.Team1.RaidPoints != 10 {
			t.Errorf("Expected match %d to have 10 raid points, got %d", id, saved.Kabaddi.Team1.RaidPoints)
		}
	}
}
