package recurrence

import (
	"testing"
	"time"

	"todo-planner/internal/model"
)

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}

func seed(repeat model.RepeatOption, day time.Time) model.Task {
	return model.NewTask("Stretch", day, time.Date(2000, 1, 1, 7, 15, 0, 0, time.UTC), "health", repeat)
}

func TestExpand_Dates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		repeat model.RepeatOption
		start  time.Time
		want   []time.Time
	}{
		{
			name:   "daily from Monday",
			repeat: model.RepeatDaily,
			start:  date(time.January, 1),
			want: []time.Time{
				date(time.January, 2), date(time.January, 3), date(time.January, 4), date(time.January, 5),
				date(time.January, 6), date(time.January, 7), date(time.January, 8), date(time.January, 9),
				date(time.January, 10), date(time.January, 11),
			},
		},
		{
			name:   "weekdays from Friday",
			repeat: model.RepeatWeekdays,
			start:  date(time.January, 5),
			want: []time.Time{
				date(time.January, 8), date(time.January, 9), date(time.January, 10), date(time.January, 11),
				date(time.January, 15), date(time.January, 16), date(time.January, 17), date(time.January, 18),
				date(time.January, 22), date(time.January, 23),
			},
		},
		{
			name:   "weekends from Sunday",
			repeat: model.RepeatWeekends,
			start:  date(time.January, 7),
			want: []time.Time{
				date(time.January, 13), date(time.January, 14), date(time.January, 20), date(time.January, 21),
				date(time.January, 27), date(time.January, 28), date(time.February, 3), date(time.February, 4),
				date(time.February, 10), date(time.February, 11),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := seed(tt.repeat, tt.start)
			got := Expand(s, DefaultCalendar())
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d occurrences, got %d", len(tt.want), len(got))
			}
			for i, occ := range got {
				if !model.SameDay(occ.Date, tt.want[i]) {
					t.Errorf("occurrence %d: expected %s, got %s", i, tt.want[i].Format("2006-01-02 Mon"), occ.Date.Format("2006-01-02 Mon"))
				}
			}
		})
	}
}

func TestExpand_CopiesFieldsWithFreshIDs(t *testing.T) {
	t.Parallel()

	s := seed(model.RepeatDaily, date(time.January, 1))
	s.IsDone = true
	got := Expand(s, DefaultCalendar())

	ids := map[string]bool{s.ID.String(): true}
	for i, occ := range got {
		if occ.Title != s.Title || occ.Category != s.Category || occ.RepeatOption != s.RepeatOption || !occ.Time.Equal(s.Time) {
			t.Errorf("occurrence %d did not copy seed fields: %+v", i, occ)
		}
		if occ.IsDone {
			t.Errorf("occurrence %d should start pending", i)
		}
		if ids[occ.ID.String()] {
			t.Errorf("occurrence %d reused id %s", i, occ.ID)
		}
		ids[occ.ID.String()] = true
	}
}

func TestExpand_WeekdaysSpanMoreThanTenDays(t *testing.T) {
	t.Parallel()

	got := Expand(seed(model.RepeatWeekdays, date(time.January, 5)), DefaultCalendar())
	if len(got) != MaxOccurrences {
		t.Fatalf("expected %d occurrences, got %d", MaxOccurrences, len(got))
	}
	if got[0].Date.Weekday() != time.Monday {
		t.Errorf("expected first occurrence on Monday, got %s", got[0].Date.Weekday())
	}
	span := got[len(got)-1].Date.Sub(got[0].Date)
	if span <= 10*24*time.Hour {
		t.Errorf("expected span over 10 days, got %s", span)
	}
}

func TestExpand_NoneYieldsNothing(t *testing.T) {
	t.Parallel()

	for _, day := range []time.Time{date(time.January, 1), date(time.January, 6), date(time.February, 29)} {
		if got := Expand(seed(model.RepeatNone, day), DefaultCalendar()); len(got) != 0 {
			t.Errorf("expected no occurrences for %s, got %d", day.Format("2006-01-02"), len(got))
		}
	}
}

func TestExpand_CustomWeekend(t *testing.T) {
	t.Parallel()

	cal, err := ParseWeekend("fri,sat")
	if err != nil {
		t.Fatal(err)
	}
	// Thursday 2024-01-04 seed; Friday and Saturday are the weekend.
	got := Expand(seed(model.RepeatWeekends, date(time.January, 4)), cal)
	if len(got) != MaxOccurrences {
		t.Fatalf("expected %d occurrences, got %d", MaxOccurrences, len(got))
	}
	for _, occ := range got {
		wd := occ.Date.Weekday()
		if wd != time.Friday && wd != time.Saturday {
			t.Errorf("unexpected weekend day %s", wd)
		}
	}
}

func TestExpand_UnsatisfiableCalendarTerminates(t *testing.T) {
	t.Parallel()

	cal := NewCalendar(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday)
	got := Expand(seed(model.RepeatWeekdays, date(time.January, 1)), cal)
	if len(got) != 0 {
		t.Errorf("expected no occurrences, got %d", len(got))
	}
}

func TestParseWeekend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		weekend []time.Weekday
		wantErr bool
	}{
		{"", []time.Weekday{time.Saturday, time.Sunday}, false},
		{"Sat, Sun", []time.Weekday{time.Saturday, time.Sunday}, false},
		{"friday,saturday", []time.Weekday{time.Friday, time.Saturday}, false},
		{"funday", nil, true},
		{"sun,mon,tue,wed,thu,fri,sat", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cal, err := ParseWeekend(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if tt.wantErr {
				return
			}
			for _, d := range tt.weekend {
				// 2024-01-07 is a Sunday.
				day := date(time.January, 7+int(d))
				if !cal.IsWeekend(day) {
					t.Errorf("expected %s to be weekend", d)
				}
			}
		})
	}
}
