package array

import "sort"

// CompareFunc orders two elements like bytes.Compare.
type CompareFunc func(a, b []byte) int

// Sort sorts the elements in place.
func (a *Array) Sort(cmp CompareFunc) {
	a.Check("array.Sort", Kind)
	sort.Sort(&sorter{a: a, cmp: cmp, tmp: make([]byte, a.elementSize)})
}

// Search returns the index of the first element equal to key under cmp,
// or -1.
func (a *Array) Search(key []byte, cmp CompareFunc) int {
	a.Check("array.Search", Kind)
	for i := range a.num {
		if cmp(key, a.At(i)) == 0 {
			return i
		}
	}
	return -1
}

// SearchSorted binary searches a sorted array for key and returns its
// index, or -1.
func (a *Array) SearchSorted(key []byte, cmp CompareFunc) int {
	a.Check("array.SearchSorted", Kind)
	i := sort.Search(a.num, func(i int) bool {
		return cmp(a.At(i), key) >= 0
	})
	if i < a.num && cmp(a.At(i), key) == 0 {
		return i
	}
	return -1
}

// sorter adapts an element buffer to sort.Interface.
type sorter struct {
	a   *Array
	cmp CompareFunc
	tmp []byte
}

func (s *sorter) Len() int           { return s.a.num }
func (s *sorter) Less(i, j int) bool { return s.cmp(s.a.At(i), s.a.At(j)) < 0 }

func (s *sorter) Swap(i, j int) {
	x, y := s.a.At(i), s.a.At(j)
	copy(s.tmp, x)
	copy(x, y)
	copy(y, s.tmp)
}
