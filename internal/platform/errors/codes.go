// Package errors provides structured error handling for the battle engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

// Kind groups codes into the classes callers branch on.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidState Kind = "INVALID_STATE"
	KindValidation   Kind = "VALIDATION"
	KindForbidden    Kind = "FORBIDDEN"
	KindInternal     Kind = "INTERNAL"
)

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeMatchNotFound  Code = "MATCH_NOT_FOUND"
	CodeRoomNotFound   Code = "ROOM_NOT_FOUND"
	CodePlayerNotFound Code = "PLAYER_NOT_FOUND"
	CodeCampNotFound   Code = "CAMP_NOT_FOUND"

	// Phase errors
	CodeMatchNotDeploying    Code = "MATCH_NOT_DEPLOYING"
	CodeMatchNotInProgress   Code = "MATCH_NOT_IN_PROGRESS"
	CodeRoomNotWaiting       Code = "ROOM_NOT_WAITING"
	CodeRoomPlayerCount      Code = "ROOM_PLAYER_COUNT"
	CodeRoomFull             Code = "ROOM_FULL"
	CodeMatchMissingOpponent Code = "MATCH_MISSING_OPPONENT"

	// Input errors
	CodeInvalidCampType       Code = "INVALID_CAMP_TYPE"
	CodeInvalidCoordinate     Code = "INVALID_COORDINATE"
	CodeNotOwnHalf            Code = "NOT_OWN_HALF"
	CodeDuplicateCampType     Code = "DUPLICATE_CAMP_TYPE"
	CodeCellDestroyed         Code = "CELL_DESTROYED"
	CodeCellOccupied          Code = "CELL_OCCUPIED"
	CodeInvalidAction         Code = "INVALID_ACTION"
	CodeInvalidMunition       Code = "INVALID_MUNITION"
	CodeInvalidOrientation    Code = "INVALID_ORIENTATION"
	CodeInsufficientPowder    Code = "INSUFFICIENT_POWDER"
	CodeShapeOutsideEnemy     Code = "SHAPE_OUTSIDE_ENEMY_HALF"
	CodeEmptyShape            Code = "EMPTY_SHAPE"
	CodeSupplyIneligible      Code = "SUPPLY_INELIGIBLE"
	CodeInvalidSupplyEffect   Code = "INVALID_SUPPLY_EFFECT"
	CodeRelocationNotAdjacent Code = "RELOCATION_NOT_ADJACENT"
	CodeRelocationCooldown    Code = "RELOCATION_COOLDOWN"
	CodeInvalidRole           Code = "INVALID_ROLE"
	CodeAlreadyJoined         Code = "ALREADY_JOINED"
	CodeEmptyID               Code = "EMPTY_ID"
	CodeInvalidPayload        Code = "INVALID_PAYLOAD"

	// Authorization errors
	CodePlayerNotInMatch Code = "PLAYER_NOT_IN_MATCH"
	CodeNotActivePlayer  Code = "NOT_ACTIVE_PLAYER"
	CodeCampNotOwned     Code = "CAMP_NOT_OWNED"
	CodeUserMismatch     Code = "USER_MISMATCH"
)

// Kind reports the class of the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeMatchNotFound,
		CodeRoomNotFound,
		CodePlayerNotFound,
		CodeCampNotFound:
		return KindNotFound

	case CodeMatchNotDeploying,
		CodeMatchNotInProgress,
		CodeRoomNotWaiting,
		CodeRoomPlayerCount,
		CodeRoomFull,
		CodeMatchMissingOpponent:
		return KindInvalidState

	case CodeInvalidCampType,
		CodeInvalidCoordinate,
		CodeNotOwnHalf,
		CodeDuplicateCampType,
		CodeCellDestroyed,
		CodeCellOccupied,
		CodeInvalidAction,
		CodeInvalidMunition,
		CodeInvalidOrientation,
		CodeInsufficientPowder,
		CodeShapeOutsideEnemy,
		CodeEmptyShape,
		CodeSupplyIneligible,
		CodeInvalidSupplyEffect,
		CodeRelocationNotAdjacent,
		CodeRelocationCooldown,
		CodeInvalidRole,
		CodeAlreadyJoined,
		CodeEmptyID,
		CodeInvalidPayload:
		return KindValidation

	case CodePlayerNotInMatch,
		CodeNotActivePlayer,
		CodeCampNotOwned,
		CodeUserMismatch:
		return KindForbidden

	default:
		return KindInternal
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	case KindNotFound:
		return codes.NotFound
	case KindInvalidState:
		return codes.FailedPrecondition
	case KindValidation:
		return codes.InvalidArgument
	case KindForbidden:
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}
