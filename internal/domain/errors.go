package domain

import (
	"strconv"

	apperrors "castlebattle/internal/platform/errors"
)

var (
	ErrMatchNotFound      = apperrors.New(apperrors.CodeMatchNotFound, "match not found")
	ErrRoomNotFound       = apperrors.New(apperrors.CodeRoomNotFound, "room not found")
	ErrCampNotFound       = apperrors.New(apperrors.CodeCampNotFound, "camp not found")
	ErrNotInRoom          = apperrors.New(apperrors.CodePlayerNotFound, "user is not in the room")
	ErrMatchNotDeploying  = apperrors.New(apperrors.CodeMatchNotDeploying, "match is not in deployment")
	ErrMatchNotInPlay     = apperrors.New(apperrors.CodeMatchNotInProgress, "match is not in progress")
	ErrMissingOpponent    = apperrors.New(apperrors.CodeMatchMissingOpponent, "opponent not found in match")
	ErrRoomNotWaiting     = apperrors.New(apperrors.CodeRoomNotWaiting, "room is not waiting for players")
	ErrRoomPlayerCount    = apperrors.New(apperrors.CodeRoomPlayerCount, "room needs exactly two players")
	ErrRoomFull           = apperrors.New(apperrors.CodeRoomFull, "room is full")
	ErrAlreadyJoined      = apperrors.New(apperrors.CodeAlreadyJoined, "user already joined the room")
	ErrInvalidRole        = apperrors.New(apperrors.CodeInvalidRole, "role must be player or spectator")
	ErrEmptyID            = apperrors.New(apperrors.CodeEmptyID, "identifier is required")
	ErrInvalidCampType    = apperrors.New(apperrors.CodeInvalidCampType, "invalid camp type")
	ErrInvalidCoordinate  = apperrors.New(apperrors.CodeInvalidCoordinate, "coordinate is off the board")
	ErrNotOwnHalf         = apperrors.New(apperrors.CodeNotOwnHalf, "coordinate is not on your half")
	ErrDuplicateCamp      = apperrors.New(apperrors.CodeDuplicateCampType, "camp type already deployed")
	ErrCellDestroyed      = apperrors.New(apperrors.CodeCellDestroyed, "cell is destroyed")
	ErrCellOccupied       = apperrors.New(apperrors.CodeCellOccupied, "cell already holds a camp")
	ErrInvalidAction      = apperrors.New(apperrors.CodeInvalidAction, "action must be PASS or FIRE")
	ErrInvalidMunition    = apperrors.New(apperrors.CodeInvalidMunition, "invalid munition")
	ErrInvalidOrientation = apperrors.New(apperrors.CodeInvalidOrientation, "orientation not valid for munition")
	ErrInsufficientPowder = apperrors.New(apperrors.CodeInsufficientPowder, "not enough powder")
	ErrShapeOutsideEnemy  = apperrors.New(apperrors.CodeShapeOutsideEnemy, "shot must land entirely on the enemy half")
	ErrEmptyShape         = apperrors.New(apperrors.CodeEmptyShape, "munition hits no valid cell")
	ErrSupplyIneligible   = apperrors.New(apperrors.CodeSupplyIneligible, "player is not eligible for emergency supply")
	ErrInvalidSupply      = apperrors.New(apperrors.CodeInvalidSupplyEffect, "invalid supply effect")
	ErrRelocNotAdjacent   = apperrors.New(apperrors.CodeRelocationNotAdjacent, "camp can only move to an adjacent cell")
	ErrRelocCooldown      = apperrors.New(apperrors.CodeRelocationCooldown, "camp was relocated on the previous turn")
	ErrMissingTarget      = apperrors.New(apperrors.CodeInvalidPayload, "target coordinate is required")
	ErrMissingRelocation  = apperrors.New(apperrors.CodeInvalidPayload, "camp and destination are required for relocation")
	ErrPlayerNotInMatch   = apperrors.New(apperrors.CodePlayerNotInMatch, "player does not belong to the match")
	ErrNotActivePlayer    = apperrors.New(apperrors.CodeNotActivePlayer, "it is not this player's turn")
	ErrCampNotOwned       = apperrors.New(apperrors.CodeCampNotOwned, "camp does not belong to the player")
	ErrUserMismatch       = apperrors.New(apperrors.CodeUserMismatch, "player is controlled by another user")
)

// cellError annotates a cell sentinel with the offending coordinate. errors.Is still matches
// the sentinel by code.
func cellError(sentinel *apperrors.Error, c Coord) error {
	return apperrors.WithMetadata(sentinel.Code, sentinel.Message, map[string]string{
		"x": strconv.Itoa(c.X),
		"y": strconv.Itoa(c.Y),
	})
}
