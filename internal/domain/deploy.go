package domain

// DeployCamp places a camp of type t for playerID at at. It returns the new camp and whether
// the placement completed deployment and started play.
func (e *Engine) DeployCamp(g *Game, campID, playerID string, t CampType, at *Coord) (*Camp, bool, error) {
	if !t.Valid() {
		return nil, false, ErrInvalidCampType
	}
	if g.Match.Phase != PhaseDeployment {
		return nil, false, ErrMatchNotDeploying
	}
	player := g.Player(playerID)
	if player == nil {
		return nil, false, ErrPlayerNotInMatch
	}
	if at == nil || !at.Valid() {
		return nil, false, ErrInvalidCoordinate
	}
	if !player.Side.Owns(*at) {
		return nil, false, ErrNotOwnHalf
	}
	for _, c := range g.CampsOf(player.ID) {
		if c.Type == t {
			return nil, false, ErrDuplicateCamp
		}
	}
	if g.Board.Destroyed(*at) {
		return nil, false, cellError(ErrCellDestroyed, *at)
	}
	if g.CampAt(*at) != nil {
		return nil, false, cellError(ErrCellOccupied, *at)
	}

	camp := &Camp{
		ID:       campID,
		PlayerID: player.ID,
		Type:     t,
		Cell:     *at,
	}
	g.Camps = append(g.Camps, camp)
	return camp, e.startIfReady(g), nil
}

// startIfReady moves the match into play once every player has all camps down.
func (e *Engine) startIfReady(g *Game) bool {
	if g.Match.Phase != PhaseDeployment || len(g.Players) < 2 {
		return false
	}
	for _, p := range g.Players {
		if len(g.CampsOf(p.ID)) != CampsPerPlayer {
			return false
		}
	}
	m := g.Match
	m.Phase = PhaseInProgress
	m.Turn = 1
	m.Subphase = SubphaseNormal
	m.ActivePlayerID = m.InitiatorID
	for _, p := range g.Players {
		p.resetStats(e.rules)
	}
	return true
}
