package game

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

const (
	corner = Location(0)        // (0, 0)
	center = Location(4*11 + 5) // (5, 4)
)

func TestIsolationOpening(t *testing.T) {
	t.Run("empty board offers every cell", func(t *testing.T) {
		s := NewIsolation()

		require.Equal(t, 0, s.Player(), "First player should move first")
		require.Equal(t, 0, s.PlyCount(), "Game should start at ply 0")
		require.Len(t, s.Actions(), Cells, "Every cell should be a legal placement")
		require.False(t, s.TerminalTest(), "Empty board should not be terminal")
		require.Equal(t, NoLocation, s.Location(0), "Knight should be unplaced")
	})

	t.Run("second player cannot place on the first knight", func(t *testing.T) {
		s := NewIsolation().Result(Action(center))

		require.Equal(t, 1, s.Player(), "Second player should move next")
		require.Len(t, s.Actions(), Cells-1, "Occupied cell should not be offered")
		require.NotContains(t, s.Actions(), Action(center), "Occupied cell should not be offered")
	})
}

func TestIsolationLiberties(t *testing.T) {
	t.Run("knight in the corner", func(t *testing.T) {
		s, err := IsolationFrom(nil, [2]Location{corner, 60}, 2)
		require.NoError(t, err)

		require.Equal(t, []Location{13, 23}, s.Liberties(corner), "Corner knight should reach (2,1) and (1,2)")
	})

	t.Run("knight in the center", func(t *testing.T) {
		s, err := IsolationFrom(nil, [2]Location{center, corner}, 2)
		require.NoError(t, err)

		require.Len(t, s.Liberties(center), 8, "Center knight should reach all eight squares")
	})

	t.Run("blocked cells are excluded", func(t *testing.T) {
		s, err := IsolationFrom([]Location{13}, [2]Location{corner, 60}, 2)
		require.NoError(t, err)

		require.Equal(t, []Location{23}, s.Liberties(corner), "Blocked cell should not be a liberty")
	})
}

func TestIsolationResult(t *testing.T) {
	t.Run("moving blocks the destination and keeps the origin blocked", func(t *testing.T) {
		s, err := IsolationFrom(nil, [2]Location{corner, center}, 2)
		require.NoError(t, err)

		next := s.Result(Action(13)).(Isolation)

		require.Equal(t, Location(13), next.Location(0), "Knight should move to its destination")
		require.Equal(t, 3, next.PlyCount(), "Ply count should advance")
		require.Equal(t, 1, next.Player(), "Turn should pass to the opponent")
		require.False(t, next.isOpen(13), "Destination should be blocked")
		require.False(t, next.isOpen(corner), "Origin should stay blocked")
		require.Equal(t, corner, s.Location(0), "Original state should not change")
		require.True(t, s.isOpen(13), "Original state should not change")
	})

	t.Run("illegal action panics", func(t *testing.T) {
		s, err := IsolationFrom(nil, [2]Location{corner, center}, 2)
		require.NoError(t, err)

		require.Panics(t, func() { s.Result(Action(1)) }, "Non-knight move should panic")
	})

	t.Run("checked play reports illegal action", func(t *testing.T) {
		s, err := IsolationFrom(nil, [2]Location{corner, center}, 2)
		require.NoError(t, err)

		_, err = Play(s, Action(1))
		require.ErrorIs(t, err, ErrIllegalAction)
	})
}

func TestIsolationTerminal(t *testing.T) {
	// First player is boxed into the corner
	s, err := IsolationFrom([]Location{13, 23}, [2]Location{corner, center}, 2)
	require.NoError(t, err)

	require.True(t, s.TerminalTest(), "Player without liberties should end the game")
	require.Empty(t, s.Actions(), "Terminal state should offer no actions")
	require.Equal(t, math.Inf(-1), s.Utility(0), "Player to move should lose")
	require.Equal(t, math.Inf(1), s.Utility(1), "Opponent should win")
	require.True(t, s.HasLiberties(1), "Opponent should still have liberties")

	winner, ok := Winner(s)
	require.True(t, ok)
	require.Equal(t, 1, winner)
}

func TestIsolationRandomGame(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var s State = NewIsolation()
	for turn := 0; !s.TerminalTest(); turn++ {
		require.Less(t, turn, Cells, "Game should end before the board fills up")
		actions := s.Actions()
		require.NotEmpty(t, actions, "Non-terminal state should offer actions")
		s = s.Result(actions[rng.Intn(len(actions))])
	}

	winner, ok := Winner(s)
	require.True(t, ok)
	require.Equal(t, Opponent(s.Player()), winner, "Player left without moves should lose")
}

func TestIsolationJSON(t *testing.T) {
	s, err := IsolationFrom([]Location{3, 40}, [2]Location{corner, center}, 6)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var restored Isolation
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Equal(t, s, restored, "Snapshot should restore the same position")

	err = json.Unmarshal([]byte(`{"blocked":[500],"locs":[-1,-1],"ply":0}`), &restored)
	require.Error(t, err, "Off-board cells should be rejected")
}

func TestIsolationFromPlacement(t *testing.T) {
	t.Run("knights placed according to the ply", func(t *testing.T) {
		for ply, locs := range [][2]Location{
			{NoLocation, NoLocation},
			{center, NoLocation},
			{center, corner},
			{center, corner},
		} {
			_, err := IsolationFrom(nil, locs, ply)
			require.NoError(t, err, "Locations %v should be valid at ply %d", locs, ply)
		}
	})

	t.Run("missing knight after its first move", func(t *testing.T) {
		_, err := IsolationFrom(nil, [2]Location{NoLocation, NoLocation}, 5)
		require.Error(t, err, "Both knights should be placed by ply 5")

		_, err = IsolationFrom(nil, [2]Location{center, NoLocation}, 2)
		require.Error(t, err, "Second knight should be placed by ply 2")
	})

	t.Run("knight placed before its first move", func(t *testing.T) {
		_, err := IsolationFrom(nil, [2]Location{center, NoLocation}, 0)
		require.Error(t, err, "First knight cannot be placed at ply 0")

		_, err = IsolationFrom(nil, [2]Location{center, corner}, 1)
		require.Error(t, err, "Second knight cannot be placed at ply 1")
	})

	t.Run("snapshot with an impossible placement", func(t *testing.T) {
		var restored Isolation
		err := json.Unmarshal([]byte(`{"blocked":[],"locs":[-1,-1],"ply":5}`), &restored)

		require.Error(t, err)
	})
}
