package game

// EvaluateLiberties scores a state by the difference between the number of
// liberties of player and of its opponent. It must not be used on terminal
// states; callers check terminality first.
func EvaluateLiberties(s State, player int) float64 {
	own := s.Liberties(s.Location(player))
	opp := s.Liberties(s.Location(Opponent(player)))
	return float64(len(own) - len(opp))
}

// WeightedLiberties penalizes the opponent's liberties by weight, so that a
// weight above 1 plays aggressively and below 1 defensively.
func WeightedLiberties(weight float64) Evaluate {
	return func(s State, player int) float64 {
		own := s.Liberties(s.Location(player))
		opp := s.Liberties(s.Location(Opponent(player)))
		return float64(len(own)) - weight*float64(len(opp))
	}
}

// EvaluationFns maps the names accepted in configuration to evaluators.
var EvaluationFns = map[string]Evaluate{
	"liberties":  EvaluateLiberties,
	"aggressive": WeightedLiberties(2),
	"defensive":  WeightedLiberties(0.5),
}
