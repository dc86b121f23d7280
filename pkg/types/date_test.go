package types

import (
	"encoding/json"
	"testing"
)

func TestDateString(t *testing.T) {
	d := Date{Year: 2013, Month: 7, Day: 1}
	if got := d.String(); got != "2013. július 1." {
		t.Errorf("String() = %q, want %q", got, "2013. július 1.")
	}
	if got := d.ISO(); got != "2013-07-01" {
		t.Errorf("ISO() = %q, want %q", got, "2013-07-01")
	}
}

func TestDateValid(t *testing.T) {
	cases := []struct {
		date Date
		want bool
	}{
		{Date{2024, 2, 29}, true},
		{Date{2023, 2, 29}, false},
		{Date{2023, 13, 1}, false},
		{Date{2023, 4, 31}, false},
		{Date{2023, 12, 31}, true},
		{Date{}, false},
	}

	for _, tc := range cases {
		if got := tc.date.Valid(); got != tc.want {
			t.Errorf("%v.Valid() = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{Year: 2013, Month: 12, Day: 20}

	if got, want := d.AddDays(15), (Date{2014, 1, 4}); got != want {
		t.Errorf("AddDays(15) = %v, want %v", got, want)
	}
	if got, want := d.AddMonths(1, 1), (Date{2014, 1, 1}); got != want {
		t.Errorf("AddMonths(1, 1) = %v, want %v", got, want)
	}
	if got, want := d.AddMonths(2, 15), (Date{2014, 2, 15}); got != want {
		t.Errorf("AddMonths(2, 15) = %v, want %v", got, want)
	}
	if !d.Before(d.AddDays(1)) || d.After(d.AddDays(1)) {
		t.Error("Before/After disagree with AddDays")
	}
}

func TestDateJSON(t *testing.T) {
	d := Date{Year: 2013, Month: 7, Day: 1}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"2013-07-01"` {
		t.Errorf("Marshal = %s, want %q", data, "2013-07-01")
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("Unmarshal = %v, want %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"2013-02-30"`), &back); err == nil {
		t.Error("Unmarshal should reject 2013-02-30")
	}
}
