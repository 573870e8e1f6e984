package milexer

import "fmt"

// byteSet answers byte membership questions in constant time. It is compiled
// once from the configured delimiter ranges.
type byteSet struct {
	bits [256]bool
}

// newByteSet compiles delimiter ranges. Each range is a string of one byte
// (that byte alone) or two bytes lo, hi (the closed interval between them).
func newByteSet(ranges []string) (byteSet, error) {
	var set byteSet
	for i, r := range ranges {
		switch len(r) {
		case 1:
			set.bits[r[0]] = true
		case 2:
			lo, hi := r[0], r[1]
			if lo > hi {
				return byteSet{}, fmt.Errorf("milexer: delimiter range %d: %q is inverted", i, r)
			}
			for b := int(lo); b <= int(hi); b++ {
				set.bits[b] = true
			}
		default:
			return byteSet{}, fmt.Errorf("milexer: delimiter range %d: %q must be one or two bytes", i, r)
		}
	}
	return set, nil
}

func (s *byteSet) contains(b byte) bool { return s.bits[b] }
