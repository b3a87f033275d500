package engine

// RoundScore returns the score delta for one player at round end.
//
//   - exact prediction → ExactBonus + PointsPerTrick × tricksWon
//   - otherwise        → −PointsPerTrick × |prediction − tricksWon|
func (r *HouseRules) RoundScore(prediction, tricksWon int) int {
	diff := prediction - tricksWon
	if diff < 0 {
		diff = -diff
	}
	if diff == 0 {
		return r.ExactBonus + r.PointsPerTrick*tricksWon
	}
	return -r.PointsPerTrick * diff
}

// applyScores adds each player's round score to their total and history.
// A missing prediction counts as zero.
func (r *HouseRules) applyScores(players []*Player) {
	for _, p := range players {
		prediction := 0
		if p.Prediction != nil {
			prediction = *p.Prediction
		}
		delta := r.RoundScore(prediction, p.TricksWon)
		p.Score += delta
		p.RoundScores = append(p.RoundScores, delta)
	}
}
