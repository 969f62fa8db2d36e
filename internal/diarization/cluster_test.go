package diarization

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
)

func vecs(values ...float32) [][]float32 {
	out := make([][]float32, len(values))
	for i, v := range values {
		out[i] = []float32{v, 0}
	}
	return out
}

func distinct(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}

func TestClusterLinkages(t *testing.T) {
	points := vecs(0, 0.1, 10, 10.1, 20)
	want := []int{0, 0, 1, 1, 2}

	for _, linkage := range []Linkage{LinkageWard, LinkageAverage, LinkageComplete, LinkageSingle} {
		t.Run(string(linkage), func(t *testing.T) {
			c := NewClusterer(linkage, 0, logger.Discard())
			got, err := c.Cluster(points, 3)
			if err != nil {
				t.Fatalf("Cluster() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClusterLabelsByFirstAppearance(t *testing.T) {
	c := NewClusterer(LinkageWard, 0, logger.Discard())
	got, err := c.Cluster(vecs(50, 50.2, 0, 0.1, 50.1), 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 0, 1, 1, 0}, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestClusterClampsSpeakerCount(t *testing.T) {
	c := NewClusterer(LinkageWard, 0, logger.Discard())

	tests := []struct {
		name  string
		n     int
		k     int
		wantK int
	}{
		{"no windows", 0, 2, 0},
		{"one window", 1, 2, 1},
		{"two windows four speakers", 2, 4, 2},
		{"three windows five speakers", 3, 5, 3},
		{"enough windows", 6, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := make([][]float32, tt.n)
			for i := range points {
				points[i] = []float32{float32(i * i), 1}
			}
			got, err := c.Cluster(points, tt.k)
			if err != nil {
				t.Fatalf("Cluster() error = %v", err)
			}
			if len(got) != tt.n {
				t.Fatalf("got %d labels for %d windows", len(got), tt.n)
			}
			if d := distinct(got); d != tt.wantK {
				t.Errorf("distinct labels = %d, want %d", d, tt.wantK)
			}
		})
	}
}

func TestClusterTiesAreDeterministic(t *testing.T) {
	c := NewClusterer(LinkageWard, 0, logger.Discard())
	points := vecs(1, 1, 1, 1)

	first, err := c.Cluster(points, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 0, 0, 1}, first); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < 5; i++ {
		again, _ := c.Cluster(points, 2)
		if !cmp.Equal(first, again) {
			t.Fatalf("run %d gave %v, want %v", i, again, first)
		}
	}
}

func TestClusterPoolsLargeInputs(t *testing.T) {
	c := NewClusterer(LinkageWard, 2, logger.Discard())
	got, err := c.Cluster(vecs(0, 0.1, 0.2, 5, 5.1, 5.2), 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 0, 0, 1, 1, 1}, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestClusterErrors(t *testing.T) {
	c := NewClusterer(LinkageWard, 0, logger.Discard())

	if _, err := c.Cluster(vecs(1, 2), 0); !errors.Is(err, ErrInvalidSpeakers) {
		t.Errorf("k=0 error = %v, want ErrInvalidSpeakers", err)
	}
	if _, err := c.Cluster([][]float32{{1, 2}, {1}}, 1); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestParseLinkage(t *testing.T) {
	tests := []struct {
		in      string
		want    Linkage
		wantErr bool
	}{
		{"", LinkageWard, false},
		{"average", LinkageAverage, false},
		{"single", LinkageSingle, false},
		{"centroid", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLinkage(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLinkage(%q) = %v, %v", tt.in, got, err)
		}
	}
}
