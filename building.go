package main

// Building enclosure and fog-of-war. Foundations form 8-connected clusters;
// a cluster whose perimeter is at least 70% covered by walls or doors is
// "enclosed", and the interior of an enclosed building is masked from any
// observer who is not inside the same cluster. The computation mirrors the
// server's enclosure analysis exactly, down to the threshold, so rain
// shelter and visual masking never disagree.

type buildingEdge uint8

const (
	edgeN buildingEdge = 0
	edgeE buildingEdge = 1
	edgeS buildingEdge = 2
	edgeW buildingEdge = 3
)

// adjacentCell returns the cell on the other side of the given edge.
// North is -Y; the world's Y axis grows downward.
func (e buildingEdge) adjacentCell(c cellCoord) cellCoord {
	switch e {
	case edgeN:
		return cellCoord{c.X, c.Y - 1}
	case edgeE:
		return cellCoord{c.X + 1, c.Y}
	case edgeS:
		return cellCoord{c.X, c.Y + 1}
	case edgeW:
		return cellCoord{c.X - 1, c.Y}
	}
	return c
}

type foundationCell struct {
	ID        uint64
	CellX     int
	CellY     int
	Destroyed bool
}

func (f *foundationCell) cell() cellCoord { return cellCoord{f.CellX, f.CellY} }

type wallCell struct {
	ID        uint64
	CellX     int
	CellY     int
	Edge      buildingEdge
	Destroyed bool
}

type doorCell struct {
	ID        uint64
	CellX     int
	CellY     int
	Edge      buildingEdge
	Destroyed bool
	Open      bool
}

// Minimum covered-perimeter fraction for a cluster to count as enclosed.
// Matches the server constant; 30% of the perimeter may be doorways and
// windows before a building stops sheltering.
const enclosureThreshold = 0.70

type edgeKey struct {
	Cell cellCoord
	Edge buildingEdge
}

// buildingCluster is one connected component of foundations plus its
// derived enclosure state. Recomputed wholesale whenever the foundation,
// wall or door collections change; never patched incrementally.
type buildingCluster struct {
	ID          int
	Foundations map[uint64]struct{}
	Cells       map[cellCoord]struct{}
	Enclosed    bool
	Coverage    float64
	Perimeter   int
	Covered     int
}

// clusterSet is the derived query structure the drawer consults per frame.
type clusterSet struct {
	clusters []buildingCluster
	byCell   map[cellCoord]int // cell -> cluster id
	covered  map[edgeKey]bool  // non-destroyed wall or door present
	walls    map[edgeKey]bool  // non-destroyed wall (doors excluded)
}

const noCluster = -1

// computeClusters rebuilds the cluster set from scratch. Destroyed
// foundations and walls are invisible to the analysis.
func computeClusters(foundations map[uint64]foundationCell, walls map[uint64]wallCell, doors map[uint64]doorCell) *clusterSet {
	// Grid-keyed index so the flood fill is O(cells), not a linear scan
	// per visit.
	grid := make(map[cellCoord]uint64, len(foundations))
	for id, f := range foundations {
		if f.Destroyed {
			continue
		}
		grid[f.cell()] = id
	}

	covered := make(map[edgeKey]bool, len(walls)+len(doors))
	wallsAt := make(map[edgeKey]bool, len(walls))
	for _, w := range walls {
		if w.Destroyed {
			continue
		}
		k := edgeKey{cellCoord{w.CellX, w.CellY}, w.Edge}
		covered[k] = true
		wallsAt[k] = true
	}
	for _, d := range doors {
		if d.Destroyed {
			continue
		}
		covered[edgeKey{cellCoord{d.CellX, d.CellY}, d.Edge}] = true
	}

	cs := &clusterSet{
		byCell:  make(map[cellCoord]int),
		covered: covered,
		walls:   wallsAt,
	}

	visited := make(map[cellCoord]bool, len(grid))
	for start, startID := range grid {
		if visited[start] {
			continue
		}
		cl := buildingCluster{
			ID:          len(cs.clusters),
			Foundations: map[uint64]struct{}{},
			Cells:       map[cellCoord]struct{}{},
		}
		_ = startID

		// 8-connected flood fill: Chebyshev distance 1 in every direction.
		queue := []cellCoord{start}
		visited[start] = true
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			id := grid[c]
			cl.Foundations[id] = struct{}{}
			cl.Cells[c] = struct{}{}
			cs.byCell[c] = cl.ID
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					n := cellCoord{c.X + dx, c.Y + dy}
					if visited[n] {
						continue
					}
					if _, ok := grid[n]; ok {
						visited[n] = true
						queue = append(queue, n)
					}
				}
			}
		}

		cl.Perimeter, cl.Covered = measurePerimeter(&cl, covered)
		if cl.Perimeter > 0 {
			cl.Coverage = float64(cl.Covered) / float64(cl.Perimeter)
			cl.Enclosed = cl.Coverage >= enclosureThreshold
		}
		cs.clusters = append(cs.clusters, cl)
	}
	return cs
}

// measurePerimeter counts a cluster's exterior-facing cardinal edges and
// how many of them carry a non-destroyed wall or door.
func measurePerimeter(cl *buildingCluster, covered map[edgeKey]bool) (total, coveredCount int) {
	for c := range cl.Cells {
		for _, e := range [4]buildingEdge{edgeN, edgeE, edgeS, edgeW} {
			if _, ok := cl.Cells[e.adjacentCell(c)]; ok {
				continue // interior edge
			}
			total++
			if covered[edgeKey{c, e}] {
				coveredCount++
			}
		}
	}
	return total, coveredCount
}

// clusterAt returns the cluster id covering a foundation cell, or noCluster.
func (cs *clusterSet) clusterAt(c cellCoord) int {
	if id, ok := cs.byCell[c]; ok {
		return id
	}
	return noCluster
}

// resolveObserverCluster converts a world position to a foundation cell and
// returns the enclosing cluster id — but only when that cluster is actually
// enclosed. Standing on an open slab never confers "inside" status.
func (cs *clusterSet) resolveObserverCluster(x, y float64) int {
	id := cs.clusterAt(worldToFoundationCell(x, y))
	if id == noCluster || !cs.clusters[id].Enclosed {
		return noCluster
	}
	return id
}

// isFoundationVisible decides fog-of-war masking for one foundation.
// Open clusters are always visible; enclosed clusters only to observers
// inside the same cluster; unclustered foundations default to visible.
func (cs *clusterSet) isFoundationVisible(f *foundationCell, observerCluster int) bool {
	id := cs.clusterAt(f.cell())
	if id == noCluster {
		return true
	}
	cl := &cs.clusters[id]
	if !cl.Enclosed {
		return true
	}
	return observerCluster == id
}

// isEntranceWay reports whether a foundation cell reads as a doorway: its
// south-facing perimeter edge is open, or every one of its exposed
// perimeter edges lacks both wall and door (a gazebo). Feeds the roof
// renderer's occlusion cut-outs.
func (cs *clusterSet) isEntranceWay(c cellCoord) bool {
	id := cs.clusterAt(c)
	if id == noCluster {
		return false
	}
	cl := &cs.clusters[id]
	exposed := 0
	open := 0
	southOpen := false
	for _, e := range [4]buildingEdge{edgeN, edgeE, edgeS, edgeW} {
		if _, ok := cl.Cells[e.adjacentCell(c)]; ok {
			continue
		}
		exposed++
		if !cs.covered[edgeKey{c, e}] {
			open++
			if e == edgeS {
				southOpen = true
			}
		}
	}
	if southOpen {
		return true
	}
	return exposed > 0 && open == exposed
}

// hasNorthWall reports a wall or door on the cell's north edge. The roof
// renderer extends occlusion geometry upward over it.
func (cs *clusterSet) hasNorthWall(c cellCoord) bool {
	return cs.covered[edgeKey{c, edgeN}]
}

// hasSouthWall reports a wall or door on the cell's south edge.
func (cs *clusterSet) hasSouthWall(c cellCoord) bool {
	return cs.covered[edgeKey{c, edgeS}]
}
