// Package grid builds timetable grids: one column per trip, one row per stop
// visit, with each cell holding the trip's scheduled time at that stop.
//
// Trips on loop routes can call at the same stop more than once. Such visits
// get a pin so they land on separate rows:
//
//	-1   first visit of a repeated stop
//	+1   last visit of a repeated stop
//	k+2  interior visit k of a repeated stop
//	 0   stop visited once by the trip
//
// Rows are ordered in two passes. The first sorts by the highest stop
// sequence any trip gives the row, then by pin. The second refines that order
// with a pairwise comparison of the rows' times. Trips with conflicting
// timings can make the comparison inconsistent across three or more rows; the
// refinement still terminates with a deterministic order in that case, but
// the order is a best effort rather than a guaranteed visit order.
package grid

import (
	"math"
	"sort"
)

// Visit is one scheduled call of a trip at a stop. Time must be zero-padded
// "HH:MM[:SS]" (hours may exceed 23) so that times compare as strings.
type Visit struct {
	StopID    string
	Sequence  int
	Time      string
	Timepoint bool
}

// TripStops is a trip and its stop visits.
type TripStops struct {
	TripID string
	Visits []Visit
}

// StopInfo is the stop metadata attached to a row.
type StopInfo struct {
	ID   string
	Code string
	Name string
	Zone string
	Lat  float64
	Lon  float64
}

// StopLookup resolves stop metadata. Stops it does not know render blank.
type StopLookup func(stopID string) (StopInfo, bool)

// Row is one stop visit across all trips of the grid.
type Row struct {
	StopID string
	Pin    int
	Stop   StopInfo
	Known  bool
	// Sequence is the highest stop sequence any trip assigns to the row.
	Sequence int
	// Times is indexed by column; "" means the trip does not call here.
	Times     []string
	Timepoint bool
}

// Grid is the built timetable.
type Grid struct {
	// Trips lists trip ids in column order.
	Trips []string
	Rows  []Row
}

// Column returns the column index of a trip.
func (g *Grid) Column(tripID string) (int, bool) {
	for i, id := range g.Trips {
		if id == tripID {
			return i, true
		}
	}
	return 0, false
}

type rowKey struct {
	stopID string
	pin    int
}

// cell is one trip's call at a row. Prev and next are the stops the trip
// calls at either side of it; position is the call's relative place along
// the trip's own visit list. Both match single visits to the right
// repeated-stop row.
type cell struct {
	present   bool
	time      string
	sequence  int
	timepoint bool
	prev      string
	next      string
	position  float64
}

type row struct {
	key   rowKey
	cells []cell
}

func (r *row) sequence() int {
	highest := 0
	for _, c := range r.cells {
		if c.present && c.sequence > highest {
			highest = c.sequence
		}
	}
	return highest
}

func (r *row) meanPosition() float64 {
	sum, n := 0.0, 0
	for _, c := range r.cells {
		if c.present {
			sum += c.position
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Build assembles the grid for trips. Trips without visits are skipped; nil
// is returned when no trip remains. Columns are ordered by each trip's first
// scheduled time, then by position in columnOrderHint, then by trip id.
// stops may be nil.
func Build(trips []TripStops, columnOrderHint []string, stops StopLookup) *Grid {
	columns := orderColumns(trips, columnOrderHint)
	if len(columns) == 0 {
		return nil
	}

	var (
		rows  []*row
		index = make(map[rowKey]*row)
	)
	for c, trip := range columns {
		for _, v := range pinVisits(trip.Visits) {
			r, ok := index[v.key]
			if !ok {
				r = &row{key: v.key, cells: make([]cell, len(columns))}
				index[v.key] = r
				rows = append(rows, r)
			}
			r.cells[c] = cell{
				present:   true,
				time:      v.Time,
				sequence:  v.Sequence,
				timepoint: v.Timepoint,
				prev:      v.prev,
				next:      v.next,
				position:  v.position,
			}
		}
	}

	rows = foldSingleVisits(rows)

	sequences := make(map[*row]int, len(rows))
	for _, r := range rows {
		sequences[r] = r.sequence()
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if si, sj := sequences[rows[i]], sequences[rows[j]]; si != sj {
			return si < sj
		}
		return rows[i].key.pin < rows[j].key.pin
	})
	rows = refine(rows)

	g := &Grid{Trips: make([]string, len(columns)), Rows: make([]Row, len(rows))}
	for i, trip := range columns {
		g.Trips[i] = trip.TripID
	}
	for i, r := range rows {
		out := Row{
			StopID:   r.key.stopID,
			Pin:      r.key.pin,
			Sequence: sequences[r],
			Times:    make([]string, len(columns)),
		}
		for c, cl := range r.cells {
			out.Times[c] = cl.time
			out.Timepoint = out.Timepoint || (cl.present && cl.timepoint)
		}
		if stops != nil {
			out.Stop, out.Known = stops(r.key.stopID)
		}
		g.Rows[i] = out
	}
	return g
}

// orderColumns drops trips without visits, sorts each trip's visits by
// sequence, and orders the trips by start time.
func orderColumns(trips []TripStops, hint []string) []TripStops {
	hintIndex := make(map[string]int, len(hint))
	for i, id := range hint {
		if _, ok := hintIndex[id]; !ok {
			hintIndex[id] = i
		}
	}
	rank := func(id string) int {
		if i, ok := hintIndex[id]; ok {
			return i
		}
		return len(hint)
	}

	columns := make([]TripStops, 0, len(trips))
	for _, trip := range trips {
		if len(trip.Visits) == 0 {
			continue
		}
		visits := append([]Visit(nil), trip.Visits...)
		sort.SliceStable(visits, func(i, j int) bool { return visits[i].Sequence < visits[j].Sequence })
		columns = append(columns, TripStops{TripID: trip.TripID, Visits: visits})
	}

	sort.SliceStable(columns, func(i, j int) bool {
		a, b := startTime(columns[i]), startTime(columns[j])
		if a != b {
			return a < b
		}
		if ra, rb := rank(columns[i].TripID), rank(columns[j].TripID); ra != rb {
			return ra < rb
		}
		return columns[i].TripID < columns[j].TripID
	})
	return columns
}

func startTime(trip TripStops) string {
	for _, v := range trip.Visits {
		if v.Time != "" {
			return v.Time
		}
	}
	return ""
}

type pinnedVisit struct {
	Visit
	key      rowKey
	prev     string
	next     string
	position float64
}

func pinVisits(visits []Visit) []pinnedVisit {
	counts := make(map[string]int, len(visits))
	for _, v := range visits {
		counts[v.StopID]++
	}

	seen := make(map[string]int, len(visits))
	out := make([]pinnedVisit, len(visits))
	for i, v := range visits {
		pin := 0
		if n := counts[v.StopID]; n > 1 {
			k := seen[v.StopID]
			switch k {
			case 0:
				pin = -1
			case n - 1:
				pin = 1
			default:
				pin = k + 2
			}
			seen[v.StopID] = k + 1
		}

		position := 0.0
		if len(visits) > 1 {
			position = float64(i) / float64(len(visits)-1)
		}
		out[i] = pinnedVisit{Visit: v, key: rowKey{stopID: v.StopID, pin: pin}, position: position}
		if i > 0 {
			out[i].prev = visits[i-1].StopID
		}
		if i < len(visits)-1 {
			out[i].next = visits[i+1].StopID
		}
	}
	return out
}

// neighbours is the set of stops the trips of a row call at immediately
// before and after it.
type neighbours struct {
	prev map[string]bool
	next map[string]bool
}

func (r *row) neighbours() neighbours {
	n := neighbours{prev: map[string]bool{}, next: map[string]bool{}}
	for _, c := range r.cells {
		if !c.present {
			continue
		}
		if c.prev != "" {
			n.prev[c.prev] = true
		}
		if c.next != "" {
			n.next[c.next] = true
		}
	}
	return n
}

// score counts the sides of c whose neighbouring stop the row shares.
func (n neighbours) score(c cell) int {
	score := 0
	if c.prev != "" && n.prev[c.prev] {
		score++
	}
	if c.next != "" && n.next[c.next] {
		score++
	}
	return score
}

// foldSingleVisits merges the pin 0 row of a stop into that stop's pinned
// rows when another trip repeats the stop. Each single visit joins the pinned
// row that shares the most neighbouring stops with it. When neighbours do not
// decide, it joins the row whose trips reach the stop at the most similar
// point of their journey; equally close rows resolve to the lower pin.
func foldSingleVisits(rows []*row) []*row {
	pinned := make(map[string][]*row)
	for _, r := range rows {
		if r.key.pin != 0 {
			pinned[r.key.stopID] = append(pinned[r.key.stopID], r)
		}
	}
	if len(pinned) == 0 {
		return rows
	}

	out := rows[:0]
	for _, r := range rows {
		targets := pinned[r.key.stopID]
		if r.key.pin != 0 || len(targets) == 0 {
			out = append(out, r)
			continue
		}

		// Neighbours and mean positions are fixed before any single visit is
		// folded in.
		means := make([]float64, len(targets))
		around := make([]neighbours, len(targets))
		for i, t := range targets {
			means[i] = t.meanPosition()
			around[i] = t.neighbours()
		}

		for c, single := range r.cells {
			if !single.present {
				continue
			}

			best := -1
			for i, t := range targets {
				if t.cells[c].present {
					continue
				}
				if best < 0 {
					best = i
					continue
				}
				if sc, bsc := around[i].score(single), around[best].score(single); sc != bsc {
					if sc > bsc {
						best = i
					}
					continue
				}
				d, bd := math.Abs(means[i]-single.position), math.Abs(means[best]-single.position)
				if d < bd || (d == bd && t.key.pin < targets[best].key.pin) {
					best = i
				}
			}
			if best >= 0 {
				targets[best].cells[c] = single
			}
		}
	}
	return out
}

// before reports whether row a belongs above row b: in every column where
// both rows have a time, a's time is not later than b's, and in at least one
// it is earlier.
func before(a, b *row) bool {
	earlier := false
	for c := range a.cells {
		ta, tb := a.cells[c].time, b.cells[c].time
		if ta == "" || tb == "" {
			continue
		}
		if ta > tb {
			return false
		}
		if ta < tb {
			earlier = true
		}
	}
	return earlier
}

// refine reorders rows so that every row that comes before another by
// time is placed above it, keeping the incoming order wherever the times
// do not decide. Rows are emitted one at a time, always taking the earliest
// remaining row that no remaining row must precede. When conflicting times
// leave no such row, the earliest remaining row is emitted anyway.
func refine(rows []*row) []*row {
	n := len(rows)
	successors := make([][]int, n)
	pending := make([]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case before(rows[i], rows[j]):
				successors[i] = append(successors[i], j)
				pending[j]++
			case before(rows[j], rows[i]):
				successors[j] = append(successors[j], i)
				pending[i]++
			}
		}
	}

	done := make([]bool, n)
	out := make([]*row, 0, n)
	for len(out) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			for i := 0; i < n; i++ {
				if !done[i] {
					next = i
					break
				}
			}
		}

		done[next] = true
		out = append(out, rows[next])
		for _, s := range successors[next] {
			pending[s]--
		}
	}
	return out
}
