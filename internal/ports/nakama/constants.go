package nakama

// RPC ids registered with Nakama.
const (
	RpcRoomCreate  = "room_create"
	RpcRoomJoin    = "room_join"
	RpcRoomLeave   = "room_leave"
	RpcRoomGet     = "room_get"
	RpcRoomList    = "room_list"
	RpcRoomQuick   = "room_quick"
	RpcMatchCreate = "match_create"
	RpcMatchDeploy = "match_deploy"
	RpcMatchTurn   = "match_turn"
	RpcMatchSupply = "match_supply"
	RpcMatchState  = "match_state"
	RpcMatchTurns  = "match_turns"
)

// Notification codes for server events.
const (
	NotifyMatchCreated   = 101
	NotifyCampDeployed   = 102 // sent privately
	NotifyMatchStarted   = 103
	NotifyTurnResolved   = 104
	NotifyResponseOpened = 105
	NotifyMatchFinished  = 106
	NotifySupplyResolved = 107 // sent privately
)
