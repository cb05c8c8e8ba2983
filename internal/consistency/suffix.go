package consistency

// runIndex finds text shared with a source string in time linear in both
// lengths. It holds a suffix automaton over the reversed source, so
// streaming the reversed text through it yields, for every position of the
// text, the longest prefix starting there that occurs in the source.
type runIndex struct {
	size int
	sam  *suffixAutomaton
}

func newRunIndex(src string, size int) *runIndex {
	sam := newSuffixAutomaton(len(src))
	for i := len(src) - 1; i >= 0; i-- {
		sam.extend(src[i])
	}
	return &runIndex{size: size, sam: sam}
}

// sharedRuns scans text left to right and returns every maximal run of at
// least size bytes that also occurs in the source. After a match the scan
// resumes past the end of the run, so runs never overlap.
func (idx *runIndex) sharedRuns(text string) []string {
	if idx.size < 1 || len(text) < idx.size {
		return nil
	}
	longest := idx.sam.prefixMatches(text)

	var runs []string
	for j := 0; j+idx.size <= len(text); {
		if n := longest[j]; n >= idx.size {
			runs = append(runs, text[j:j+n])
			j += n
			continue
		}
		j++
	}
	return runs
}

// suffixAutomaton is a byte-level suffix automaton with transitions kept
// in per-state edge lists, so memory stays linear in the input.
type suffixAutomaton struct {
	length []int32
	link   []int32
	head   []int32 // first edge of each state, -1 if none

	edgeNext []int32
	edgeByte []byte
	edgeTo   []int32

	last int32

	// scans counts edge-list steps, for complexity tests.
	scans int
}

func newSuffixAutomaton(n int) *suffixAutomaton {
	a := &suffixAutomaton{
		length:   make([]int32, 0, 2*n+1),
		link:     make([]int32, 0, 2*n+1),
		head:     make([]int32, 0, 2*n+1),
		edgeNext: make([]int32, 0, 3*n),
		edgeByte: make([]byte, 0, 3*n),
		edgeTo:   make([]int32, 0, 3*n),
	}
	a.last = a.addState(0, -1)
	return a
}

func (a *suffixAutomaton) addState(length, link int32) int32 {
	a.length = append(a.length, length)
	a.link = append(a.link, link)
	a.head = append(a.head, -1)
	return int32(len(a.length) - 1)
}

func (a *suffixAutomaton) edge(s int32, c byte) int32 {
	for e := a.head[s]; e != -1; e = a.edgeNext[e] {
		a.scans++
		if a.edgeByte[e] == c {
			return e
		}
	}
	return -1
}

func (a *suffixAutomaton) next(s int32, c byte) int32 {
	if e := a.edge(s, c); e != -1 {
		return a.edgeTo[e]
	}
	return -1
}

func (a *suffixAutomaton) addEdge(s int32, c byte, to int32) {
	a.edgeNext = append(a.edgeNext, a.head[s])
	a.edgeByte = append(a.edgeByte, c)
	a.edgeTo = append(a.edgeTo, to)
	a.head[s] = int32(len(a.edgeTo) - 1)
}

func (a *suffixAutomaton) extend(c byte) {
	cur := a.addState(a.length[a.last]+1, 0)
	p := a.last
	for p != -1 && a.edge(p, c) == -1 {
		a.addEdge(p, c, cur)
		p = a.link[p]
	}
	a.last = cur
	if p == -1 {
		return
	}

	q := a.next(p, c)
	if a.length[p]+1 == a.length[q] {
		a.link[cur] = q
		return
	}

	clone := a.addState(a.length[p]+1, a.link[q])
	for e := a.head[q]; e != -1; e = a.edgeNext[e] {
		a.addEdge(clone, a.edgeByte[e], a.edgeTo[e])
	}
	for p != -1 {
		e := a.edge(p, c)
		if e == -1 || a.edgeTo[e] != q {
			break
		}
		a.edgeTo[e] = clone
		p = a.link[p]
	}
	a.link[q] = clone
	a.link[cur] = clone
}

// prefixMatches returns, for each i, the length of the longest prefix of
// text[i:] that occurs in the source. The automaton holds the reversed
// source, so text is streamed back to front.
func (a *suffixAutomaton) prefixMatches(text string) []int {
	out := make([]int, len(text))
	var (
		state int32
		n     int32
	)
	for i := len(text) - 1; i >= 0; i-- {
		c := text[i]
		for state != 0 && a.edge(state, c) == -1 {
			state = a.link[state]
			n = a.length[state]
		}
		if to := a.next(state, c); to != -1 {
			state = to
			n++
		} else {
			n = 0
		}
		out[i] = int(n)
	}
	return out
}
