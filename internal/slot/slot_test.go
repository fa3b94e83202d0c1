package slot

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"usos_monitor/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []model.TimeInterval
	}{
		{
			name: "single slot",
			raw:  "Pn 8:00-10:00",
			want: []model.TimeInterval{{Day: model.Monday, StartMin: 480, EndMin: 600}},
		},
		{
			name: "two slots comma separated",
			raw:  "Pn 8:00-10:00, Śr 8:00-10:00",
			want: []model.TimeInterval{
				{Day: model.Monday, StartMin: 480, EndMin: 600},
				{Day: model.Wednesday, StartMin: 480, EndMin: 600},
			},
		},
		{
			name: "case insensitive day token",
			raw:  "CZW 16:15-17:45",
			want: []model.TimeInterval{{Day: model.Thursday, StartMin: 975, EndMin: 1065}},
		},
		{
			name: "full polish day name",
			raw:  "poniedziałek 9:00-10:30",
			want: []model.TimeInterval{{Day: model.Monday, StartMin: 540, EndMin: 630}},
		},
		{
			name: "en dash and extra whitespace",
			raw:  "  wt   10:15 – 11:45 ",
			want: []model.TimeInterval{{Day: model.Tuesday, StartMin: 615, EndMin: 705}},
		},
		{
			name: "em dash",
			raw:  "pt 12:00—13:30",
			want: []model.TimeInterval{{Day: model.Friday, StartMin: 720, EndMin: 810}},
		},
		{
			name: "day with trailing dot",
			raw:  "sob. 9:00-12:00",
			want: []model.TimeInterval{{Day: model.Saturday, StartMin: 540, EndMin: 720}},
		},
		{
			name: "english abbreviation",
			raw:  "Mon 8:00-10:00",
			want: []model.TimeInterval{{Day: model.Monday, StartMin: 480, EndMin: 600}},
		},
		{
			name: "surrounding text is ignored",
			raw:  "zajęcia: śr 14:15-15:45, sala 103",
			want: []model.TimeInterval{{Day: model.Wednesday, StartMin: 855, EndMin: 945}},
		},
		{
			name: "unknown day token skipped",
			raw:  "xyz 8:00-10:00",
			want: nil,
		},
		{
			name: "inverted range skipped",
			raw:  "pn 12:00-10:00",
			want: nil,
		},
		{
			name: "complete garbage yields empty",
			raw:  "szczegóły w opisie grupy",
			want: nil,
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "valid slot survives next to broken one",
			raw:  "xyz 8:00-10:00, pt 8:00-9:30",
			want: []model.TimeInterval{{Day: model.Friday, StartMin: 480, EndMin: 570}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}
