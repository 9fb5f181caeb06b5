// Package cluster partitions doctors into behavioral segments.
//
// Two interchangeable strategies exist: agglomerative Ward-linkage
// clustering, which produces the adopted labels, and centroid-based
// k-means, which only corroborates the chosen segment count through its
// distortion-versus-k curve. Both run on the full standardized feature
// matrix and on the reduced component space; the reduced-space Ward cut
// is the authoritative segmentation.
package cluster

import (
	"fmt"
	"math"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/features"
)

type wardCluster struct {
	centroid []float64
	size     int
	members  []int
	alive    bool
}

// Ward cuts an agglomerative Ward-linkage dendrogram over the rows of m
// into k flat clusters. Each merge picks the pair minimizing the
// increase in total within-cluster variance (Euclidean distance), with
// ties broken toward the earliest-created clusters so the result is
// fully deterministic. Labels are integers in [1,k], numbered by the
// smallest row index each cluster contains.
func Ward(m *features.Matrix, k int) ([]int, error) {
	const op = "Ward"

	n := m.NumRows()
	if k <= 0 || k > n {
		return nil, errors.NewDataQualityError(op, "", "",
			fmt.Sprintf("cluster count must be in [1,%d], got %d", n, k))
	}

	clusters := make([]wardCluster, n)
	for i := range clusters {
		clusters[i] = wardCluster{
			centroid: append([]float64(nil), m.Data[i]...),
			size:     1,
			members:  []int{i},
			alive:    true,
		}
	}

	for remaining := n; remaining > k; remaining-- {
		bestA, bestB := -1, -1
		bestCost := math.Inf(1)

		for a := range clusters {
			if !clusters[a].alive {
				continue
			}
			for b := a + 1; b < len(clusters); b++ {
				if !clusters[b].alive {
					continue
				}
				cost := wardCost(&clusters[a], &clusters[b])
				if cost < bestCost {
					bestCost = cost
					bestA, bestB = a, b
				}
			}
		}

		merge(&clusters[bestA], &clusters[bestB])
	}

	return flatLabels(clusters, n), nil
}

// wardCost is the increase in total within-cluster variance caused by
// merging a and b: |a||b|/(|a|+|b|) * ||ca - cb||^2.
func wardCost(a, b *wardCluster) float64 {
	dist := 0.0
	for f := range a.centroid {
		d := a.centroid[f] - b.centroid[f]
		dist += d * d
	}
	na, nb := float64(a.size), float64(b.size)
	return na * nb / (na + nb) * dist
}

func merge(a, b *wardCluster) {
	na, nb := float64(a.size), float64(b.size)
	for f := range a.centroid {
		a.centroid[f] = (na*a.centroid[f] + nb*b.centroid[f]) / (na + nb)
	}
	a.size += b.size
	a.members = append(a.members, b.members...)
	b.alive = false
	b.members = nil
}

// flatLabels numbers the surviving clusters 1..k by their smallest
// member row index and assigns each row its cluster's number.
func flatLabels(clusters []wardCluster, n int) []int {
	labels := make([]int, n)
	next := 1
	// Surviving clusters keep index order, and each cluster's first
	// member is its smallest row index by construction.
	for i := range clusters {
		if !clusters[i].alive {
			continue
		}
		for _, row := range clusters[i].members {
			labels[row] = next
		}
		next++
	}
	return labels
}
