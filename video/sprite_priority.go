package video

// spritePriority tracks, per screen column, which sprite (if any) currently
// owns that pixel for the purposes of the X-coordinate-then-OAM-index
// priority rule: a sprite with a smaller X wins, and among sprites sharing
// an X the one with the lower OAM index wins.
type spritePriority struct {
	ownerIndex [Width]int
	ownerX     [Width]int
}

func (s *spritePriority) clear() {
	for i := range s.ownerIndex {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0
	}
}

// tryClaim reports whether the sprite at oamIndex with screen-space x
// spriteX wins the pixel at column x, updating ownership if so.
func (s *spritePriority) tryClaim(x, spriteX, oamIndex int) bool {
	if x < 0 || x >= Width {
		return false
	}
	current := s.ownerIndex[x]
	if current == -1 {
		s.ownerIndex[x] = oamIndex
		s.ownerX[x] = spriteX
		return true
	}
	if spriteX < s.ownerX[x] || (spriteX == s.ownerX[x] && oamIndex < current) {
		s.ownerIndex[x] = oamIndex
		s.ownerX[x] = spriteX
		return true
	}
	return false
}
