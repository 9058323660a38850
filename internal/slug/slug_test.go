package slug

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"A & B/C", "a-b-c"},
		{"Retail & Shopping", "retail-shopping"},
		{"Food", "food"},
		{"  Café -- Bar  ", "caf-bar"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"", ""},
		{"Bars & Pubs / Nightlife", "bars-pubs-nightlife"},
		{"24/7 Gym", "24-7-gym"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"A & B/C", "Retail & Shopping", "", "x", "Health & Beauty", "a--b"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
