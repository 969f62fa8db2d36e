package diarization

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

// Linkage selects how the distance between two clusters is derived from their members
type Linkage string

const (
	LinkageWard     Linkage = "ward"
	LinkageAverage  Linkage = "average"
	LinkageComplete Linkage = "complete"
	LinkageSingle   Linkage = "single"

	DefaultMaxPoints = 2000
)

// ParseLinkage maps a config value to a Linkage. Empty means ward.
func ParseLinkage(s string) (Linkage, error) {
	switch Linkage(s) {
	case "":
		return LinkageWard, nil
	case LinkageWard, LinkageAverage, LinkageComplete, LinkageSingle:
		return Linkage(s), nil
	}
	return "", fmt.Errorf("unknown linkage %q", s)
}

// Clusterer groups embeddings bottom-up into a fixed number of speakers
type Clusterer struct {
	linkage   Linkage
	maxPoints int
	logger    logger.Logger
}

// NewClusterer creates a Clusterer. Inputs longer than maxPoints are mean-pooled
// into consecutive blocks first.
func NewClusterer(linkage Linkage, maxPoints int, log logger.Logger) *Clusterer {
	if linkage == "" {
		linkage = LinkageWard
	}
	if maxPoints < 2 {
		maxPoints = DefaultMaxPoints
	}
	return &Clusterer{linkage: linkage, maxPoints: maxPoints, logger: log}
}

// Cluster assigns each vector a label in [0, k'), where k' = min(k, len(vectors)).
// Labels are numbered in order of first appearance.
func (c *Clusterer) Cluster(vectors [][]float32, k int) ([]int, error) {
	if k < 1 {
		return nil, ErrInvalidSpeakers
	}
	n := len(vectors)
	if n == 0 {
		return []int{}, nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	if n < k {
		c.logger.Debug(context.Background(), "Only %d windows for %d speakers, clustering into %d", n, k, max(1, n))
		k = max(1, n)
	}

	points := vectors
	blockSize := 1
	if n > c.maxPoints {
		blockSize = (n + c.maxPoints - 1) / c.maxPoints
		points = meanPool(vectors, blockSize)
		c.logger.Debug(context.Background(), "Pooled %d windows into %d blocks of %d", n, len(points), blockSize)
		if len(points) < k {
			k = len(points)
		}
	}

	blockLabels := agglomerate(points, k, c.linkage)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = blockLabels[i/blockSize]
	}
	return relabel(labels), nil
}

func meanPool(vectors [][]float32, size int) [][]float32 {
	dim := len(vectors[0])
	out := make([][]float32, 0, (len(vectors)+size-1)/size)
	for start := 0; start < len(vectors); start += size {
		end := min(start+size, len(vectors))
		sum := make([]float64, dim)
		for _, v := range vectors[start:end] {
			for d, x := range v {
				sum[d] += float64(x)
			}
		}
		block := make([]float32, dim)
		for d := range sum {
			block[d] = float32(sum[d] / float64(end-start))
		}
		out = append(out, block)
	}
	return out
}

// relabel renumbers labels so they appear as 0, 1, 2, ... in input order
func relabel(labels []int) []int {
	seen := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := seen[l]
		if !ok {
			id = len(seen)
			seen[l] = id
		}
		out[i] = id
	}
	return out
}

type merge struct {
	a, b int // representative points of the two merged clusters
	dist float64
}

// agglomerate runs nearest-neighbour-chain clustering with Lance-Williams updates
// and cuts the resulting dendrogram at k clusters. Ward works on squared distances.
func agglomerate(points [][]float32, k int, linkage Linkage) []int {
	n := len(points)
	labels := make([]int, n)
	if n == 1 || k >= n {
		for i := range labels {
			labels[i] = i
		}
		return labels
	}

	dm := newCondensed(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := sqEuclidean(points[i], points[j])
			if linkage != LinkageWard {
				d = math.Sqrt(d)
			}
			dm.set(i, j, d)
		}
	}

	size := make([]int, n)
	active := make([]bool, n)
	for i := range size {
		size[i] = 1
		active[i] = true
	}

	merges := make([]merge, 0, n-1)
	chain := make([]int, 0, n)
	for len(merges) < n-1 {
		if len(chain) == 0 {
			for i, ok := range active {
				if ok {
					chain = append(chain, i)
					break
				}
			}
		}

		var a, b int
		for {
			a = chain[len(chain)-1]
			prev := -1
			best, bestDist := -1, math.Inf(1)
			if len(chain) > 1 {
				prev = chain[len(chain)-2]
				best, bestDist = prev, dm.get(a, prev)
			}
			for x := 0; x < n; x++ {
				if !active[x] || x == a {
					continue
				}
				if d := dm.get(a, x); d < bestDist {
					best, bestDist = x, d
				}
			}
			if best == prev {
				b = prev
				break
			}
			chain = append(chain, best)
		}
		chain = chain[:len(chain)-2]

		if a > b {
			a, b = b, a
		}
		dist := dm.get(a, b)
		merges = append(merges, merge{a: a, b: b, dist: dist})

		// the merged cluster lives in slot b; slot a is retired
		na, nb := float64(size[a]), float64(size[b])
		for x := 0; x < n; x++ {
			if !active[x] || x == a || x == b {
				continue
			}
			dax, dbx := dm.get(a, x), dm.get(b, x)
			var d float64
			switch linkage {
			case LinkageSingle:
				d = math.Min(dax, dbx)
			case LinkageComplete:
				d = math.Max(dax, dbx)
			case LinkageAverage:
				d = (na*dax + nb*dbx) / (na + nb)
			default:
				nx := float64(size[x])
				d = ((na+nx)*dax + (nb+nx)*dbx - nx*dist) / (na + nb + nx)
			}
			dm.set(b, x, d)
		}
		active[a] = false
		size[b] += size[a]
	}

	sort.SliceStable(merges, func(i, j int) bool { return merges[i].dist < merges[j].dist })

	uf := newUnionFind(n)
	for _, m := range merges[:n-k] {
		uf.union(m.a, m.b)
	}
	for i := range labels {
		labels[i] = uf.find(i)
	}
	return labels
}

func sqEuclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// condensed stores the upper triangle of a symmetric distance matrix
type condensed struct {
	n    int
	data []float64
}

func newCondensed(n int) *condensed {
	return &condensed{n: n, data: make([]float64, n*(n-1)/2)}
}

func (c *condensed) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return c.n*i - i*(i+1)/2 + j - i - 1
}

func (c *condensed) get(i, j int) float64    { return c.data[c.index(i, j)] }
func (c *condensed) set(i, j int, v float64) { c.data[c.index(i, j)] = v }

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
