package game

import (
	"encoding/json"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// Board dimensions of knight's Isolation.
const (
	Width  = 11
	Height = 9
	Cells  = Width * Height

	lastWordMask = 1<<(Cells-64) - 1
)

// Knight offsets (dx, dy) in the order liberties are listed.
var directions = [8][2]int{
	{1, -2}, {2, -1}, {2, 1}, {1, 2},
	{-1, 2}, {-2, 1}, {-2, -1}, {-1, -2},
}

// Isolation is a knight's Isolation position. It is a plain value: copying it
// copies the whole board, so Result never aliases the receiver.
type Isolation struct {
	blocked [2]uint64 // bit i set => cell i is blocked
	ply     int
	locs    [2]Location
}

// NewIsolation returns the empty starting board with both knights unplaced.
func NewIsolation() Isolation {
	return Isolation{locs: [2]Location{NoLocation, NoLocation}}
}

// IsolationFrom builds a position from its blocked cells, knight locations and
// ply count. Knight locations are blocked implicitly. A knight must be placed
// exactly when its player has already moved.
func IsolationFrom(blocked []Location, locs [2]Location, ply int) (Isolation, error) {
	if ply < 0 {
		return Isolation{}, fmt.Errorf("invalid ply count %d", ply)
	}
	s := NewIsolation()
	s.ply = ply
	for _, cell := range blocked {
		if !onBoard(cell) {
			return Isolation{}, fmt.Errorf("blocked cell %d is off the board", cell)
		}
		s.block(cell)
	}
	for player, loc := range locs {
		// Player p places its knight at ply p
		if placed := ply > player; placed != (loc != NoLocation) {
			return Isolation{}, fmt.Errorf("player %d location %d does not match ply %d", player, loc, ply)
		}
		if loc == NoLocation {
			continue
		}
		if !onBoard(loc) {
			return Isolation{}, fmt.Errorf("player %d location %d is off the board", player, loc)
		}
		s.locs[player] = loc
		s.block(loc)
	}
	if locs[0] != NoLocation && locs[0] == locs[1] {
		return Isolation{}, fmt.Errorf("both players at location %d", locs[0])
	}
	return s, nil
}

func onBoard(cell Location) bool {
	return cell >= 0 && cell < Cells
}

func (s *Isolation) block(cell Location) {
	s.blocked[cell/64] |= 1 << (uint(cell) % 64)
}

func (s Isolation) isOpen(cell Location) bool {
	return onBoard(cell) && s.blocked[cell/64]&(1<<(uint(cell)%64)) == 0
}

// OpenCells counts the cells not yet blocked.
func (s Isolation) OpenCells() int {
	return Cells - bits.OnesCount64(s.blocked[0]) - bits.OnesCount64(s.blocked[1]&lastWordMask)
}

func (s Isolation) Player() int {
	return s.ply % 2
}

func (s Isolation) PlyCount() int {
	return s.ply
}

func (s Isolation) Location(player int) Location {
	return s.locs[player]
}

func (s Isolation) Liberties(loc Location) []Location {
	if loc == NoLocation {
		open := make([]Location, 0, Cells)
		for cell := Location(0); cell < Cells; cell++ {
			if s.isOpen(cell) {
				open = append(open, cell)
			}
		}
		return open
	}

	liberties := make([]Location, 0, len(directions))
	x, y := int(loc)%Width, int(loc)/Width
	for _, d := range directions {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= Width || ny < 0 || ny >= Height {
			continue
		}
		if cell := Location(ny*Width + nx); s.isOpen(cell) {
			liberties = append(liberties, cell)
		}
	}
	return liberties
}

func (s Isolation) HasLiberties(player int) bool {
	loc := s.locs[player]
	if loc == NoLocation {
		return s.OpenCells() > 0
	}
	x, y := int(loc)%Width, int(loc)/Width
	for _, d := range directions {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= Width || ny < 0 || ny >= Height {
			continue
		}
		if s.isOpen(Location(ny*Width + nx)) {
			return true
		}
	}
	return false
}

func (s Isolation) Actions() []Action {
	liberties := s.Liberties(s.locs[s.Player()])
	actions := make([]Action, len(liberties))
	for i, loc := range liberties {
		actions[i] = Action(loc)
	}
	return actions
}

func (s Isolation) legal(action Action) bool {
	for _, loc := range s.Liberties(s.locs[s.Player()]) {
		if Action(loc) == action {
			return true
		}
	}
	return false
}

// Result panics on an illegal action; use Play to get an error instead.
func (s Isolation) Result(action Action) State {
	if !s.legal(action) {
		panic(fmt.Sprintf("illegal action %d for player %d at ply %d", action, s.Player(), s.ply))
	}
	next := s
	next.block(Location(action))
	next.locs[s.Player()] = Location(action)
	next.ply++
	return next
}

func (s Isolation) TerminalTest() bool {
	return !s.HasLiberties(s.Player())
}

func (s Isolation) Utility(player int) float64 {
	if !s.TerminalTest() {
		return 0
	}
	// The player to move has run out of liberties and loses
	if player == s.Player() {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

func (s Isolation) String() string {
	var b strings.Builder
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			cell := Location(y*Width + x)
			switch {
			case cell == s.locs[0]:
				b.WriteByte('1')
			case cell == s.locs[1]:
				b.WriteByte('2')
			case s.isOpen(cell):
				b.WriteByte('.')
			default:
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Snapshot is the wire form of an Isolation position.
type Snapshot struct {
	Blocked []Location  `json:"blocked"`
	Locs    [2]Location `json:"locs"`
	Ply     int         `json:"ply"`
}

func (s Isolation) Snapshot() Snapshot {
	blocked := []Location{}
	for cell := Location(0); cell < Cells; cell++ {
		if !s.isOpen(cell) {
			blocked = append(blocked, cell)
		}
	}
	return Snapshot{Blocked: blocked, Locs: s.locs, Ply: s.ply}
}

func (s Isolation) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *Isolation) UnmarshalJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode isolation snapshot: %w", err)
	}
	restored, err := IsolationFrom(snap.Blocked, snap.Locs, snap.Ply)
	if err != nil {
		return fmt.Errorf("invalid isolation snapshot: %w", err)
	}
	*s = restored
	return nil
}
