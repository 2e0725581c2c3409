package domain

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "07:30", want: 7*60 + 30},
		{in: "17:00", want: 17 * 60},
		{in: "23:59", want: 23*60 + 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "7:30", wantErr: true},
		{in: "07:3", wantErr: true},
		{in: "0730", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTimeOfDay(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTimeOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayString_RoundTrips(t *testing.T) {
	for _, s := range []string{"00:00", "07:30", "09:05", "16:30", "23:59"} {
		tod, err := ParseTimeOfDay(s)
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q) error: %v", s, err)
		}
		if tod.String() != s {
			t.Fatalf("String() = %q, want %q", tod.String(), s)
		}
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2024-05-01"); err != nil {
		t.Fatalf("ValidateDate error: %v", err)
	}
	for _, s := range []string{"2024-13-01", "2024-05-32", "01-05-2024", "2024/05/01", "today", ""} {
		if err := ValidateDate(s); err == nil {
			t.Fatalf("ValidateDate(%q) expected error", s)
		}
	}
}
