package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"usos_monitor/internal/model"
)

func group(id string, free int) model.CourseGroup {
	return model.CourseGroup{GroupID: id, RegistrationName: id, FreeSpots: free, TotalSpots: 20}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		previous model.Snapshot
		current  model.Snapshot
		want     []model.ChangeEvent
	}{
		{
			name:     "count change and new group, ordered by group id",
			previous: model.Snapshot{"A": group("A", 0)},
			current:  model.Snapshot{"A": group("A", 5), "B": group("B", 3)},
			want: []model.ChangeEvent{
				{GroupID: "A", Kind: model.CountChanged, PreviousFree: intPtr(0), CurrentFree: intPtr(5)},
				{GroupID: "B", Kind: model.NewAvailable, CurrentFree: intPtr(3)},
			},
		},
		{
			name:     "open group fills up",
			previous: model.Snapshot{"A": group("A", 2)},
			current:  model.Snapshot{"A": group("A", 0)},
			want: []model.ChangeEvent{
				{GroupID: "A", Kind: model.BecameFull, PreviousFree: intPtr(2), CurrentFree: intPtr(0)},
			},
		},
		{
			name:     "identical snapshots yield nothing",
			previous: model.Snapshot{"A": group("A", 4), "B": group("B", 0)},
			current:  model.Snapshot{"A": group("A", 4), "B": group("B", 0)},
			want:     nil,
		},
		{
			name:     "count decrease while still open",
			previous: model.Snapshot{"A": group("A", 5)},
			current:  model.Snapshot{"A": group("A", 2)},
			want: []model.ChangeEvent{
				{GroupID: "A", Kind: model.CountChanged, PreviousFree: intPtr(5), CurrentFree: intPtr(2)},
			},
		},
		{
			name:     "new full group yields nothing",
			previous: model.Snapshot{},
			current:  model.Snapshot{"A": group("A", 0)},
			want:     nil,
		},
		{
			name:     "full stays full yields nothing",
			previous: model.Snapshot{"A": group("A", 0)},
			current:  model.Snapshot{"A": group("A", 0)},
			want:     nil,
		},
		{
			name:     "disappeared group yields nothing",
			previous: model.Snapshot{"A": group("A", 5), "B": group("B", 3)},
			current:  model.Snapshot{"A": group("A", 5)},
			want:     nil,
		},
		{
			name:     "nil previous is the first run",
			previous: nil,
			current:  model.Snapshot{"B": group("B", 1), "A": group("A", 2), "C": group("C", 0)},
			want: []model.ChangeEvent{
				{GroupID: "A", Kind: model.NewAvailable, CurrentFree: intPtr(2)},
				{GroupID: "B", Kind: model.NewAvailable, CurrentFree: intPtr(1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.previous, tt.current)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Diff() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
