package routing

// searchState is one frontier entry of the route search.
type searchState struct {
	cost    float64
	station string
	path    []string
	changes int
	line    string
	pattern string
	seq     int
}

// stateQueue is a min-heap on cost; seq breaks ties in push order.
type stateQueue []*searchState

func (q stateQueue) Len() int { return len(q) }

func (q stateQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}

func (q stateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *stateQueue) Push(x any) { *q = append(*q, x.(*searchState)) }

func (q *stateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
