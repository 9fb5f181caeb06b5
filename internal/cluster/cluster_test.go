package cluster_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxa/docsegment/internal/cluster"
	"github.com/praxa/docsegment/internal/features"
)

// blobs builds g well-separated groups of points in two dimensions.
func blobs(g, perGroup int, seed int64) (*features.Matrix, []int) {
	rng := rand.New(rand.NewSource(seed))
	m := &features.Matrix{Columns: []string{"x", "y"}}
	truth := make([]int, 0, g*perGroup)

	for group := range g {
		cx := float64(group * 20)
		cy := float64((group % 2) * 20)
		for p := range perGroup {
			m.DoctorIDs = append(m.DoctorIDs, fmt.Sprintf("D%d_%d", group, p))
			m.Data = append(m.Data, []float64{cx + rng.NormFloat64(), cy + rng.NormFloat64()})
			truth = append(truth, group)
		}
	}
	return m, truth
}

// sameGrouping reports whether two labelings induce the same partition.
func sameGrouping(a, b []int) bool {
	mapping := make(map[int]int)
	reverse := make(map[int]int)
	for i := range a {
		if to, ok := mapping[a[i]]; ok {
			if to != b[i] {
				return false
			}
		} else if from, ok := reverse[b[i]]; ok && from != a[i] {
			return false
		} else {
			mapping[a[i]] = b[i]
			reverse[b[i]] = a[i]
		}
	}
	return true
}

func TestWard_RecoversSeparatedGroups(t *testing.T) {
	m, truth := blobs(3, 10, 1)

	labels, err := cluster.Ward(m, 3)
	require.NoError(t, err)

	assert.True(t, sameGrouping(truth, labels), "well-separated blobs must be recovered exactly")
}

func TestWard_LabelRange(t *testing.T) {
	m, _ := blobs(6, 6, 2)

	labels, err := cluster.Ward(m, 6)
	require.NoError(t, err)

	used := make(map[int]bool)
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 1)
		assert.LessOrEqual(t, l, 6)
		used[l] = true
	}
	assert.Len(t, used, 6, "no label unused on a dataset with six populated groups")
}

func TestWard_Deterministic(t *testing.T) {
	buildAndLabel := func() []int {
		m, _ := blobs(4, 8, 5)
		labels, err := cluster.Ward(m, 4)
		require.NoError(t, err)
		return labels
	}

	assert.Equal(t, buildAndLabel(), buildAndLabel())
}

func TestWard_BadClusterCount(t *testing.T) {
	m, _ := blobs(2, 3, 1)

	_, err := cluster.Ward(m, 0)
	require.Error(t, err)
	_, err = cluster.Ward(m, 7)
	require.Error(t, err)
}

func TestKMeans_RecoversSeparatedGroups(t *testing.T) {
	m, truth := blobs(3, 12, 4)

	result, err := cluster.KMeans(m, 3, 42)
	require.NoError(t, err)

	assert.True(t, sameGrouping(truth, result.Labels))
	assert.Positive(t, result.Iterations)
}

func TestKMeans_SameSeedSameLabels(t *testing.T) {
	m, _ := blobs(4, 10, 9)

	a, err := cluster.KMeans(m, 4, 1234)
	require.NoError(t, err)
	b, err := cluster.KMeans(m, 4, 1234)
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Distortion, b.Distortion)
}

func TestSweep_DistortionDecreases(t *testing.T) {
	m, _ := blobs(4, 10, 3)

	curve, err := cluster.Sweep(m, 2, 9, 7)
	require.NoError(t, err)
	require.Len(t, curve, 8)

	assert.Equal(t, 2, curve[0].K)
	assert.Equal(t, 9, curve[len(curve)-1].K)
	// Distortion at the true group count should be far below k=2.
	assert.Less(t, curve[2].Distortion, curve[0].Distortion/2)
}

func TestKneeEstimate_FindsTrueGroupCount(t *testing.T) {
	m, _ := blobs(4, 15, 6)

	curve, err := cluster.Sweep(m, 2, 9, 11)
	require.NoError(t, err)

	knee := cluster.KneeEstimate(curve)
	assert.Equal(t, 4, knee, "elbow should land on the true group count")
}

func TestKneeEstimate_ShortCurve(t *testing.T) {
	assert.Zero(t, cluster.KneeEstimate([]cluster.ElbowPoint{{K: 2, Distortion: 10}}))
}

func TestSilhouette_SeparatedBeatsRandom(t *testing.T) {
	m, truth := blobs(3, 10, 8)

	good := make([]int, len(truth))
	for i, g := range truth {
		good[i] = g + 1
	}

	rng := rand.New(rand.NewSource(13))
	bad := make([]int, len(truth))
	for i := range bad {
		bad[i] = rng.Intn(3) + 1
	}

	goodScore := cluster.Silhouette(m, good)
	badScore := cluster.Silhouette(m, bad)

	assert.Greater(t, goodScore, 0.7)
	assert.Greater(t, goodScore, badScore)
}
