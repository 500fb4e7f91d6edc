package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"castlebattle/internal/domain"
	apperrors "castlebattle/internal/platform/errors"
	"castlebattle/internal/ports"
	"castlebattle/internal/storage/sqlite"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	seq := 0
	svc := NewService(store,
		domain.NewEngine(domain.DefaultRules(), rand.New(rand.NewSource(42))),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
		WithClock(func() time.Time { return testNow }),
	)
	return svc, store
}

func openRoom(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()
	view, err := svc.CreateRoom(ctx, "u1", "  arena ")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := svc.JoinRoom(ctx, view.Room.ID, "u2", ports.RolePlayer); err != nil {
		t.Fatalf("join u2: %v", err)
	}
	if _, err := svc.JoinRoom(ctx, view.Room.ID, "watcher", ports.RoleSpectator); err != nil {
		t.Fatalf("join watcher: %v", err)
	}
	return view.Room.ID
}

// deployedMatch returns a match in play. u1 (LEFT) holds C1-C3 at (0,0),(1,0),(2,0);
// u2 (RIGHT) holds C1-C3 at (11,9),(10,9),(9,9).
func deployedMatch(t *testing.T, svc *Service) *domain.Game {
	t.Helper()
	ctx := context.Background()
	g, _, err := svc.CreateMatchFromRoom(ctx, openRoom(t, svc))
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	left, right := g.PlayerByUser("u1"), g.PlayerByUser("u2")
	placements := []struct {
		player *domain.Player
		kind   domain.CampType
		at     domain.Coord
	}{
		{left, domain.CampC1, domain.Coord{X: 0, Y: 0}},
		{left, domain.CampC2, domain.Coord{X: 1, Y: 0}},
		{left, domain.CampC3, domain.Coord{X: 2, Y: 0}},
		{right, domain.CampC1, domain.Coord{X: 11, Y: 9}},
		{right, domain.CampC2, domain.Coord{X: 10, Y: 9}},
		{right, domain.CampC3, domain.Coord{X: 9, Y: 9}},
	}
	var res *DeployResult
	for _, p := range placements {
		at := p.at
		if res, _, err = svc.DeployCamp(ctx, DeployInput{
			MatchID:  g.Match.ID,
			PlayerID: p.player.ID,
			UserID:   p.player.UserID,
			CampType: p.kind,
			At:       &at,
		}); err != nil {
			t.Fatalf("deploy %s for %s: %v", p.kind, p.player.UserID, err)
		}
	}
	if !res.Started {
		t.Fatalf("match did not start after all camps were deployed")
	}
	return res.Game
}

func wantKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if got := apperrors.KindOf(err); got != kind {
		t.Fatalf("error kind = %q (%v), want %q", got, err, kind)
	}
}

func TestRoomMembership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.CreateRoom(ctx, "u1", "  arena ")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if view.Room.Name != "arena" || view.Room.Status != ports.RoomWaiting {
		t.Fatalf("room = %+v", view.Room)
	}
	roomID := view.Room.ID

	if _, err := svc.JoinRoom(ctx, roomID, "u1", ports.RoleSpectator); !errors.Is(err, domain.ErrAlreadyJoined) {
		t.Fatalf("rejoin err = %v, want %v", err, domain.ErrAlreadyJoined)
	}
	if _, err := svc.JoinRoom(ctx, roomID, "u2", "REFEREE"); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("bad role err = %v, want %v", err, domain.ErrInvalidRole)
	}
	view, err = svc.JoinRoom(ctx, roomID, "u2", "")
	if err != nil {
		t.Fatalf("join u2: %v", err)
	}
	if players := view.Players(); len(players) != 2 || players[1].UserID != "u2" || players[1].Slot != 2 {
		t.Fatalf("players = %+v", players)
	}
	_, err = svc.JoinRoom(ctx, roomID, "u3", ports.RolePlayer)
	if !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("third player err = %v, want %v", err, domain.ErrRoomFull)
	}
	wantKind(t, err, apperrors.KindInvalidState)

	view, err = svc.LeaveRoom(ctx, roomID, "u1")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(view.Participants) != 1 || view.Participants[0].UserID != "u2" {
		t.Fatalf("participants after leave = %+v", view.Participants)
	}
	if _, err := svc.LeaveRoom(ctx, roomID, "u1"); !errors.Is(err, domain.ErrNotInRoom) {
		t.Fatalf("second leave err = %v, want %v", err, domain.ErrNotInRoom)
	}

	// The freed slot 1 is reused.
	view, err = svc.JoinRoom(ctx, roomID, "u3", ports.RolePlayer)
	if err != nil {
		t.Fatalf("join u3: %v", err)
	}
	if players := view.Players(); players[0].UserID != "u3" || players[0].Slot != 1 {
		t.Fatalf("players = %+v", players)
	}

	_, err = svc.GetRoom(ctx, "missing")
	wantKind(t, err, apperrors.KindNotFound)
}

func TestQuickJoin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, created, err := svc.QuickJoin(ctx, "u1")
	if err != nil || !created {
		t.Fatalf("quick join u1 = %v, created %v", err, created)
	}
	view, created, err := svc.QuickJoin(ctx, "u2")
	if err != nil || created {
		t.Fatalf("quick join u2 = %v, created %v", err, created)
	}
	if view.Room.ID != first.Room.ID || len(view.Players()) != 2 {
		t.Fatalf("u2 room = %+v, want seat in %s", view, first.Room.ID)
	}
	// u1 already sits in the now full room.
	back, created, err := svc.QuickJoin(ctx, "u1")
	if err != nil || created || back.Room.ID != first.Room.ID {
		t.Fatalf("seated quick join = %v, created %v, room %s", err, created, back.Room.ID)
	}

	second, created, err := svc.QuickJoin(ctx, "u3")
	if err != nil || !created || second.Room.ID == first.Room.ID {
		t.Fatalf("quick join u3 = %v, created %v, room %s", err, created, second.Room.ID)
	}
	again, created, err := svc.QuickJoin(ctx, "u3")
	if err != nil || created || again.Room.ID != second.Room.ID {
		t.Fatalf("repeat quick join = %v, created %v, room %s", err, created, again.Room.ID)
	}

	if _, _, err := svc.CreateMatchFromRoom(ctx, first.Room.ID); err != nil {
		t.Fatalf("create match: %v", err)
	}
	waiting, err := svc.ListRooms(ctx, ports.RoomWaiting, 0)
	if err != nil {
		t.Fatalf("list waiting: %v", err)
	}
	if len(waiting) != 1 || waiting[0].ID != second.Room.ID || waiting[0].Players != 1 {
		t.Fatalf("waiting = %+v", waiting)
	}
	all, err := svc.ListRooms(ctx, "", 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("rooms = %d, want 2", len(all))
	}

	if _, _, err := svc.QuickJoin(ctx, ""); !errors.Is(err, domain.ErrEmptyID) {
		t.Fatalf("empty user err = %v, want %v", err, domain.ErrEmptyID)
	}
}

func TestCreateMatchFromRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	roomID := openRoom(t, svc)

	g, events, err := svc.CreateMatchFromRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if g.Match.Phase != domain.PhaseDeployment || g.Match.Turn != 0 {
		t.Fatalf("match = %+v", g.Match)
	}
	if len(g.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(g.Players))
	}
	if g.Players[0].UserID != "u1" || g.Players[0].Side != domain.SideLeft {
		t.Fatalf("seat 0 = %+v, want u1 LEFT", g.Players[0])
	}
	if g.Players[1].UserID != "u2" || g.Players[1].Side != domain.SideRight {
		t.Fatalf("seat 1 = %+v, want u2 RIGHT", g.Players[1])
	}
	if g.Player(g.Match.InitiatorID) == nil {
		t.Fatalf("initiator %q is not a match player", g.Match.InitiatorID)
	}

	if len(events) != 1 || events[0].Kind != EventMatchCreated {
		t.Fatalf("events = %+v", events)
	}
	if got := len(events[0].Recipients); got != 3 {
		t.Fatalf("recipients = %d, want 3 (players and spectator)", got)
	}

	room, err := svc.GetRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Room.Status != ports.RoomStarted {
		t.Fatalf("room status = %s, want %s", room.Room.Status, ports.RoomStarted)
	}

	if _, _, err := svc.CreateMatchFromRoom(ctx, roomID); !errors.Is(err, domain.ErrRoomNotWaiting) {
		t.Fatalf("second create err = %v, want %v", err, domain.ErrRoomNotWaiting)
	}
	if _, err := svc.JoinRoom(ctx, roomID, "late", ports.RoleSpectator); !errors.Is(err, domain.ErrRoomNotWaiting) {
		t.Fatalf("late join err = %v, want %v", err, domain.ErrRoomNotWaiting)
	}
}

func TestCreateMatchFromRoomRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.CreateMatchFromRoom(ctx, "missing")
	wantKind(t, err, apperrors.KindNotFound)

	solo, err := svc.CreateRoom(ctx, "u1", "solo")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	_, _, err = svc.CreateMatchFromRoom(ctx, solo.Room.ID)
	if !errors.Is(err, domain.ErrRoomPlayerCount) {
		t.Fatalf("solo err = %v, want %v", err, domain.ErrRoomPlayerCount)
	}
	wantKind(t, err, apperrors.KindInvalidState)

	room, err := svc.GetRoom(ctx, solo.Room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Room.Status != ports.RoomWaiting {
		t.Fatalf("room status = %s, want unchanged %s", room.Room.Status, ports.RoomWaiting)
	}
}

func TestDeployCamp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g, _, err := svc.CreateMatchFromRoom(ctx, openRoom(t, svc))
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	left := g.PlayerByUser("u1")
	at := domain.Coord{X: 3, Y: 4}

	// Camp type is checked before the match is looked up.
	_, _, err = svc.DeployCamp(ctx, DeployInput{MatchID: "missing", PlayerID: left.ID, CampType: "C9", At: &at})
	if !errors.Is(err, domain.ErrInvalidCampType) {
		t.Fatalf("err = %v, want %v", err, domain.ErrInvalidCampType)
	}
	_, _, err = svc.DeployCamp(ctx, DeployInput{MatchID: "missing", PlayerID: left.ID, CampType: domain.CampC1, At: &at})
	wantKind(t, err, apperrors.KindNotFound)

	_, _, err = svc.DeployCamp(ctx, DeployInput{
		MatchID: g.Match.ID, PlayerID: left.ID, UserID: "u2", CampType: domain.CampC1, At: &at,
	})
	if !errors.Is(err, domain.ErrUserMismatch) {
		t.Fatalf("err = %v, want %v", err, domain.ErrUserMismatch)
	}
	wantKind(t, err, apperrors.KindForbidden)

	enemy := domain.Coord{X: 8, Y: 4}
	_, _, err = svc.DeployCamp(ctx, DeployInput{MatchID: g.Match.ID, PlayerID: left.ID, CampType: domain.CampC1, At: &enemy})
	if !errors.Is(err, domain.ErrNotOwnHalf) {
		t.Fatalf("err = %v, want %v", err, domain.ErrNotOwnHalf)
	}

	res, events, err := svc.DeployCamp(ctx, DeployInput{
		MatchID: g.Match.ID, PlayerID: left.ID, UserID: "u1", CampType: domain.CampC1, At: &at,
	})
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if res.Started || res.Camp.Cell != at {
		t.Fatalf("result = %+v", res)
	}
	if len(events) != 1 || events[0].Kind != EventCampDeployed {
		t.Fatalf("events = %+v", events)
	}
	if r := events[0].Recipients; len(r) != 1 || r[0] != "u1" {
		t.Fatalf("camp placement leaked to %v", r)
	}

	_, _, err = svc.DeployCamp(ctx, DeployInput{MatchID: g.Match.ID, PlayerID: left.ID, CampType: domain.CampC1, At: &domain.Coord{X: 0, Y: 0}})
	if !errors.Is(err, domain.ErrDuplicateCamp) {
		t.Fatalf("err = %v, want %v", err, domain.ErrDuplicateCamp)
	}
}

func TestDeployCompletesIntoPlay(t *testing.T) {
	svc, _ := newTestService(t)
	g := deployedMatch(t, svc)

	if g.Match.Phase != domain.PhaseInProgress || g.Match.Turn != 1 {
		t.Fatalf("match = %+v", g.Match)
	}
	if g.Match.Subphase != domain.SubphaseNormal {
		t.Fatalf("subphase = %s, want %s", g.Match.Subphase, domain.SubphaseNormal)
	}
	if g.Match.ActivePlayerID != g.Match.InitiatorID {
		t.Fatalf("active = %s, want initiator %s", g.Match.ActivePlayerID, g.Match.InitiatorID)
	}

	state, err := svc.GetMatchState(context.Background(), g.Match.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(state.Camps) != 6 {
		t.Fatalf("camps = %d, want 6", len(state.Camps))
	}
	_, _, err = svc.DeployCamp(context.Background(), DeployInput{
		MatchID: g.Match.ID, PlayerID: g.Players[0].ID, CampType: domain.CampC1, At: &domain.Coord{X: 4, Y: 4},
	})
	if !errors.Is(err, domain.ErrMatchNotDeploying) {
		t.Fatalf("err = %v, want %v", err, domain.ErrMatchNotDeploying)
	}
}

func TestExecuteTurnFireIsLogged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := deployedMatch(t, svc)
	attacker := g.Player(g.Match.InitiatorID)
	defender := g.Opponent(attacker.ID)

	target := domain.Coord{X: 6, Y: 0}
	if attacker.Side == domain.SideRight {
		target = domain.Coord{X: 5, Y: 0}
	}

	// The defender may not act out of turn.
	_, _, err := svc.ExecuteTurn(ctx, TurnInput{
		MatchID: g.Match.ID,
		Request: domain.TurnRequest{PlayerID: defender.ID, Action: domain.ActionPass},
	})
	if !errors.Is(err, domain.ErrNotActivePlayer) {
		t.Fatalf("err = %v, want %v", err, domain.ErrNotActivePlayer)
	}

	out, events, err := svc.ExecuteTurn(ctx, TurnInput{
		MatchID: g.Match.ID,
		UserID:  attacker.UserID,
		Request: domain.TurnRequest{
			PlayerID: attacker.ID,
			Action:   domain.ActionFire,
			Munition: domain.MunitionPoint,
			Target:   &target,
		},
	})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Result.Income.Powder != 6 {
		t.Fatalf("income = %d, want 6", out.Result.Income.Powder)
	}
	if got := out.Game.Player(attacker.ID).Powder; got != 1 {
		t.Fatalf("powder = %d, want 1", got)
	}
	if out.Game.Match.ActivePlayerID != defender.ID || out.Game.Match.Turn != 2 {
		t.Fatalf("match after fire = %+v", out.Game.Match)
	}
	if len(events) != 1 || events[0].Kind != EventTurnResolved || len(events[0].Recipients) != 2 {
		t.Fatalf("events = %+v", events)
	}

	turns, err := svc.ListTurns(ctx, g.Match.ID)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("turns = %d, want 1", len(turns))
	}
	rec := turns[0]
	if rec.ID != out.TurnID || rec.Number != 1 || rec.Action != domain.ActionFire {
		t.Fatalf("turn record = %+v", rec)
	}
	if rec.Munition == nil || rec.Munition.Kind != domain.MunitionPoint || rec.Munition.Target != target {
		t.Fatalf("munition record = %+v", rec.Munition)
	}
	var logged TurnLog
	if err := json.Unmarshal(rec.Result, &logged); err != nil {
		t.Fatalf("decode turn log: %v", err)
	}
	if logged.Shot == nil || len(logged.Shot.Impacts) != 1 || logged.Shot.Impacts[0] != target {
		t.Fatalf("logged shot = %+v", logged.Shot)
	}
	if logged.Outcome.State != string(domain.OutcomeContinue) {
		t.Fatalf("logged outcome = %+v", logged.Outcome)
	}

	state, err := svc.GetMatchState(ctx, g.Match.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !state.Board.Destroyed(target) {
		t.Fatalf("target %v not destroyed", target)
	}
}

func TestExecuteTurnRejectedLeavesNoTrace(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := deployedMatch(t, svc)
	attacker := g.Player(g.Match.InitiatorID)

	own := domain.Coord{X: 0, Y: 5}
	if attacker.Side == domain.SideRight {
		own = domain.Coord{X: 11, Y: 5}
	}
	_, _, err := svc.ExecuteTurn(ctx, TurnInput{
		MatchID: g.Match.ID,
		Request: domain.TurnRequest{PlayerID: attacker.ID, Action: domain.ActionFire, Munition: domain.MunitionPoint, Target: &own},
	})
	if !errors.Is(err, domain.ErrShapeOutsideEnemy) {
		t.Fatalf("err = %v, want %v", err, domain.ErrShapeOutsideEnemy)
	}
	wantKind(t, err, apperrors.KindValidation)

	state, err := svc.GetMatchState(ctx, g.Match.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if p := state.Player(attacker.ID); p.Powder != 0 || p.LastIncomeTurn != 0 {
		t.Fatalf("player mutated by rejected turn: %+v", p)
	}
	turns, err := svc.ListTurns(ctx, g.Match.ID)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("turns = %d, want 0", len(turns))
	}
}

func TestInactivityFinishesMatchAndRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := deployedMatch(t, svc)
	idle := g.Player(g.Match.InitiatorID)
	rival := g.Opponent(idle.ID)

	var (
		out    *TurnOutcome
		events []Event
		err    error
	)
	for i := 0; i < 5; i++ {
		req := domain.TurnRequest{PlayerID: idle.ID, Action: domain.ActionPass, AutoPass: true}
		if i%2 == 1 {
			req = domain.TurnRequest{PlayerID: rival.ID, Action: domain.ActionPass}
		}
		if out, events, err = svc.ExecuteTurn(ctx, TurnInput{MatchID: g.Match.ID, Request: req}); err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
	}

	m := out.Game.Match
	if m.Phase != domain.PhaseFinished || m.WinnerID != rival.ID || m.FinishReason != domain.FinishReasonInactivity {
		t.Fatalf("match = %+v", m)
	}
	if len(events) != 2 || events[1].Kind != EventMatchFinished {
		t.Fatalf("events = %+v", events)
	}
	finished, ok := events[1].Payload.(MatchFinishedPayload)
	if !ok || finished.WinnerID != rival.ID || finished.Reason != domain.FinishReasonInactivity {
		t.Fatalf("finished payload = %+v", events[1].Payload)
	}

	room, err := svc.GetRoom(ctx, m.RoomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Room.Status != ports.RoomFinished {
		t.Fatalf("room status = %s, want %s", room.Room.Status, ports.RoomFinished)
	}

	turns, err := svc.ListTurns(ctx, g.Match.ID)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 5 || !turns[4].AutoPass {
		t.Fatalf("turns = %+v", turns)
	}

	_, _, err = svc.ExecuteTurn(ctx, TurnInput{
		MatchID: g.Match.ID,
		Request: domain.TurnRequest{PlayerID: rival.ID, Action: domain.ActionPass},
	})
	if !errors.Is(err, domain.ErrMatchNotInPlay) {
		t.Fatalf("err = %v, want %v", err, domain.ErrMatchNotInPlay)
	}
}

// wreckHalf destroys n empty cells on side's half directly in storage, which makes the
// other side eligible for emergency supply.
func wreckHalf(t *testing.T, store *sqlite.Store, matchID string, side domain.Side, n int) {
	t.Helper()
	ctx := context.Background()
	err := store.Atomically(ctx, func(tx ports.MatchTx) error {
		if err := tx.LockMatch(ctx, matchID); err != nil {
			return err
		}
		g, err := tx.LoadGame(ctx, matchID)
		if err != nil {
			return err
		}
		for i := range g.Board.Cells {
			cell := &g.Board.Cells[i]
			if n == 0 {
				break
			}
			if side.Owns(cell.Coord) && g.CampAt(cell.Coord) == nil && !cell.Destroyed {
				cell.Destroyed = true
				n--
			}
		}
		return tx.SaveGame(ctx, g)
	})
	if err != nil {
		t.Fatalf("wreck half: %v", err)
	}
}

func TestRequestSupply(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	g := deployedMatch(t, svc)
	left := g.PlayerByUser("u1")

	_, _, err := svc.RequestSupply(ctx, SupplyInput{
		MatchID: g.Match.ID,
		Request: domain.SupplyRequest{PlayerID: left.ID},
	})
	if !errors.Is(err, domain.ErrSupplyIneligible) {
		t.Fatalf("err = %v, want %v", err, domain.ErrSupplyIneligible)
	}
	wantKind(t, err, apperrors.KindValidation)

	wreckHalf(t, store, g.Match.ID, domain.SideRight, 8)

	fail := false
	out, events, err := svc.RequestSupply(ctx, SupplyInput{
		MatchID: g.Match.ID,
		UserID:  "u1",
		Request: domain.SupplyRequest{PlayerID: left.ID, ForceSuccess: &fail},
	})
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if out.Result.Success {
		t.Fatalf("forced failure succeeded")
	}
	if len(events) != 1 || events[0].Kind != EventSupplyResolved || events[0].Recipients[0] != "u1" {
		t.Fatalf("events = %+v", events)
	}

	state, err := svc.GetMatchState(ctx, g.Match.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	p := state.Player(left.ID)
	if p.SupplyCooldown != domain.DefaultRules().SupplyCooldown || p.SupplyUses != 0 {
		t.Fatalf("player after failed roll = %+v", p)
	}

	_, _, err = svc.RequestSupply(ctx, SupplyInput{
		MatchID: g.Match.ID,
		Request: domain.SupplyRequest{PlayerID: left.ID, ForceSuccess: &fail},
	})
	if !errors.Is(err, domain.ErrSupplyIneligible) {
		t.Fatalf("cooldown err = %v, want %v", err, domain.ErrSupplyIneligible)
	}
}

func TestRequestSupplyDome(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	g := deployedMatch(t, svc)
	right := g.PlayerByUser("u2")
	wreckHalf(t, store, g.Match.ID, domain.SideLeft, 10)

	ok := true
	center := domain.Coord{X: 9, Y: 5}
	_, _, err := svc.RequestSupply(ctx, SupplyInput{
		MatchID: g.Match.ID,
		UserID:  "u1",
		Request: domain.SupplyRequest{PlayerID: right.ID, ForceSuccess: &ok, ForceOutcome: domain.SupplyDome, DomeCenter: &center},
	})
	if !errors.Is(err, domain.ErrUserMismatch) {
		t.Fatalf("err = %v, want %v", err, domain.ErrUserMismatch)
	}

	out, events, err := svc.RequestSupply(ctx, SupplyInput{
		MatchID: g.Match.ID,
		UserID:  "u2",
		Request: domain.SupplyRequest{PlayerID: right.ID, ForceSuccess: &ok, ForceOutcome: domain.SupplyDome, DomeCenter: &center},
	})
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if !out.Result.Success || out.Result.Effect != domain.SupplyDome {
		t.Fatalf("result = %+v", out.Result)
	}
	payload := events[0].Payload.(SupplyResolvedPayload)
	if payload.DomeCenter == nil || *payload.DomeCenter != center {
		t.Fatalf("payload = %+v", payload)
	}

	state, err := svc.GetMatchState(ctx, g.Match.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	p := state.Player(right.ID)
	if !p.Dome.Active || p.Dome.Center != center || p.SupplyUses != 1 {
		t.Fatalf("player = %+v", p)
	}
}

func TestGetMatchStateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetMatchState(context.Background(), "missing")
	if !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("err = %v, want %v", err, domain.ErrMatchNotFound)
	}
	_, err = svc.ListTurns(context.Background(), "missing")
	wantKind(t, err, apperrors.KindNotFound)
	_, err = svc.GetMatchState(context.Background(), "")
	wantKind(t, err, apperrors.KindValidation)
}
