package searcher

// Playout rewards, credited to the player whose action led to a node. Search
// tunables live in meta.

const WIN = 1.0   // the mover was left without liberties
const LOSS = -WIN // the mover could still move at the end
