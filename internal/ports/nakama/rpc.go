package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"castlebattle/internal/app"
	"castlebattle/internal/domain"
	apperrors "castlebattle/internal/platform/errors"
	"castlebattle/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/grpc/codes"
)

type rpcFunc func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// Module exposes the app service as Nakama RPCs.
type Module struct {
	svc    *app.Service
	notify bool
}

// NewModule constructs a Module. When notify is set, app events are pushed as Nakama notifications.
func NewModule(svc *app.Service, notify bool) *Module {
	return &Module{svc: svc, notify: notify}
}

// Register registers every RPC with the initializer.
func (m *Module) Register(initializer runtime.Initializer) error {
	rpcs := []struct {
		id string
		fn rpcFunc
	}{
		{RpcRoomCreate, m.rpcRoomCreate},
		{RpcRoomJoin, m.rpcRoomJoin},
		{RpcRoomLeave, m.rpcRoomLeave},
		{RpcRoomGet, m.rpcRoomGet},
		{RpcRoomList, m.rpcRoomList},
		{RpcRoomQuick, m.rpcRoomQuick},
		{RpcMatchCreate, m.rpcMatchCreate},
		{RpcMatchDeploy, m.rpcMatchDeploy},
		{RpcMatchTurn, m.rpcMatchTurn},
		{RpcMatchSupply, m.rpcMatchSupply},
		{RpcMatchState, m.rpcMatchState},
		{RpcMatchTurns, m.rpcMatchTurns},
	}
	for _, rpc := range rpcs {
		if err := initializer.RegisterRpc(rpc.id, rpc.fn); err != nil {
			return err
		}
	}
	return nil
}

func callerID(ctx context.Context) string {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	return userID
}

func decode(payload string, v any) error {
	if strings.TrimSpace(payload) == "" {
		payload = "{}"
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return runtime.NewError("Invalid payload", int(codes.InvalidArgument))
	}
	return nil
}

func encode(logger runtime.Logger, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal response: %v", err)
		return "", runtime.NewError("Internal error", int(codes.Internal))
	}
	return string(b), nil
}

// toRuntimeError maps app errors onto Nakama runtime errors carrying gRPC status codes.
// Unclassified errors are logged and masked.
func toRuntimeError(logger runtime.Logger, rpc string, err error) error {
	code := apperrors.CodeOf(err)
	if code.Kind() == apperrors.KindInternal {
		logger.WithField("rpc", rpc).Error("%v", err)
		return runtime.NewError("Internal error", int(codes.Internal))
	}
	fields := map[string]interface{}{"rpc": rpc, "code": string(code)}
	for k, v := range apperrors.MetadataOf(err) {
		fields[k] = v
	}
	logger.WithFields(fields).Warn("%v", err)
	return runtime.NewError(err.Error(), int(code.GRPCCode()))
}

// userFor returns the calling user, or the payload user for server-to-server calls.
func userFor(ctx context.Context, fallback string) (string, error) {
	if userID := callerID(ctx); userID != "" {
		return userID, nil
	}
	if fallback == "" {
		return "", domain.ErrEmptyID
	}
	return fallback, nil
}

func (m *Module) rpcRoomCreate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req roomCreateRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	userID, err := userFor(ctx, req.UserID)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomCreate, err)
	}
	view, err := m.svc.CreateRoom(ctx, userID, req.Name)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomCreate, err)
	}
	logger.Info("rpcRoomCreate [User:%s]: Created room %s", userID, view.Room.ID)
	return encode(logger, newRoomResponse(view))
}

func (m *Module) rpcRoomJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req roomRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	userID, err := userFor(ctx, req.UserID)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomJoin, err)
	}
	view, err := m.svc.JoinRoom(ctx, req.RoomID, userID, ports.RoomRole(strings.ToUpper(req.Role)))
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomJoin, err)
	}
	return encode(logger, newRoomResponse(view))
}

func (m *Module) rpcRoomLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req roomRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	userID, err := userFor(ctx, req.UserID)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomLeave, err)
	}
	view, err := m.svc.LeaveRoom(ctx, req.RoomID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomLeave, err)
	}
	return encode(logger, newRoomResponse(view))
}

func (m *Module) rpcRoomGet(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req roomRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	view, err := m.svc.GetRoom(ctx, req.RoomID)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomGet, err)
	}
	return encode(logger, newRoomResponse(view))
}

func (m *Module) rpcRoomList(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req roomListRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	rooms, err := m.svc.ListRooms(ctx, ports.RoomStatus(strings.ToUpper(req.Status)), req.Limit)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomList, err)
	}
	return encode(logger, newRoomListResponse(rooms))
}

func (m *Module) rpcRoomQuick(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req roomRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	userID, err := userFor(ctx, req.UserID)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomQuick, err)
	}
	view, created, err := m.svc.QuickJoin(ctx, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcRoomQuick, err)
	}
	if created {
		logger.Info("rpcRoomQuick [User:%s]: Created room %s", userID, view.Room.ID)
	}
	return encode(logger, quickJoinResponse{Room: newRoomResponse(view), IsNew: created})
}

func (m *Module) rpcMatchCreate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req matchCreateRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	if userID := callerID(ctx); userID != "" {
		view, err := m.svc.GetRoom(ctx, req.RoomID)
		if err != nil {
			return "", toRuntimeError(logger, RpcMatchCreate, err)
		}
		if !seated(view, userID) {
			return "", toRuntimeError(logger, RpcMatchCreate, domain.ErrPlayerNotInMatch)
		}
	}

	g, events, err := m.svc.CreateMatchFromRoom(ctx, req.RoomID)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchCreate, err)
	}
	logger.Info("rpcMatchCreate [Room:%s]: Created match %s", req.RoomID, g.Match.ID)
	m.dispatch(ctx, logger, nk, events)
	return encode(logger, newMatchState(g, callerID(ctx)))
}

func seated(view *app.RoomView, userID string) bool {
	for _, p := range view.Players() {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (m *Module) rpcMatchDeploy(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req deployRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	res, events, err := m.svc.DeployCamp(ctx, app.DeployInput{
		MatchID:  req.MatchID,
		PlayerID: req.PlayerID,
		UserID:   callerID(ctx),
		CampType: domain.CampType(strings.ToUpper(req.CampType)),
		At:       req.Cell,
	})
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchDeploy, err)
	}
	m.dispatch(ctx, logger, nk, events)
	return encode(logger, deployResponse{
		Camp:    newCampDTO(res.Camp),
		Started: res.Started,
		Match:   newMatchDTO(res.Game.Match),
	})
}

func (m *Module) rpcMatchTurn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req turnRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	out, events, err := m.svc.ExecuteTurn(ctx, app.TurnInput{
		MatchID: req.MatchID,
		UserID:  callerID(ctx),
		Request: req.toDomain(),
	})
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchTurn, err)
	}
	if out.Result.Outcome.State == domain.OutcomeFinished {
		logger.Info("rpcMatchTurn [Match:%s]: Finished (%s)", req.MatchID, out.Game.Match.FinishReason)
	}
	m.dispatch(ctx, logger, nk, events)
	return encode(logger, turnResponse{
		TurnID: out.TurnID,
		Turn:   app.NewTurnLog(out.Result),
		Match:  newMatchDTO(out.Game.Match),
		Player: newPlayerDTO(out.Game.Player(out.Result.PlayerID), true),
	})
}

func (m *Module) rpcMatchSupply(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req supplyRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	userID := callerID(ctx)
	out, events, err := m.svc.RequestSupply(ctx, app.SupplyInput{
		MatchID: req.MatchID,
		UserID:  userID,
		Request: req.toDomain(userID == ""),
	})
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchSupply, err)
	}
	m.dispatch(ctx, logger, nk, events)
	return encode(logger, supplyResponse{
		Result: app.NewSupplyPayload(out.Game.Match.ID, out.Result),
		Player: newPlayerDTO(out.Game.Player(out.Result.PlayerID), true),
	})
}

func (m *Module) rpcMatchState(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req matchRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	g, err := m.svc.GetMatchState(ctx, req.MatchID)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchState, err)
	}
	return encode(logger, newMatchState(g, callerID(ctx)))
}

func (m *Module) rpcMatchTurns(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req matchRequest
	if err := decode(payload, &req); err != nil {
		return "", err
	}
	turns, err := m.svc.ListTurns(ctx, req.MatchID)
	if err != nil {
		return "", toRuntimeError(logger, RpcMatchTurns, err)
	}
	return encode(logger, newTurnsResponse(req.MatchID, turns))
}
