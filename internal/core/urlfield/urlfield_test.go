package urlfield

import (
	"testing"
)

const menuURL = "http://138.23.12.141/foodpro/shortmenu.asp?locationNum=03&locationName=A+%2D+I+Residential+Restaurant&dtdate=11%2F3%2F2017"

func TestGet_CaseInsensitive(t *testing.T) {
	cases := []struct {
		name, key, want string
		ok              bool
	}{
		{"exact casing", "locationNum", "03", true},
		{"lower casing", "locationnum", "03", true},
		{"upper casing", "LOCATIONNAME", "A - I Residential Restaurant", true},
		{"escaped date", "dtdate", "11/3/2017", true},
		{"missing", "mealName", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Get(menuURL, tc.key)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Get(%q) = %q,%v want %q,%v", tc.key, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestGet_FirstValueWins(t *testing.T) {
	got, ok := Get("http://x/menu?LocationNum=01&locationnum=02", "locationNum")
	if !ok || got != "01" {
		t.Fatalf("want first value 01, got %q ok=%v", got, ok)
	}
}

func TestGet_BadURLIsAbsent(t *testing.T) {
	if _, ok := Get("http://[::1", "dtdate"); ok {
		t.Fatalf("unparseable url must report absent")
	}
	if _, ok := Get("http://x/menu", "dtdate"); ok {
		t.Fatalf("url without query must report absent")
	}
}

func TestGetAll_ReportsMissing(t *testing.T) {
	found, missing := GetAll("http://x/menu?locationName=West&dtdate=11/03/2017", "locationName", "locationNum", "dtdate")
	if found["locationName"] != "West" || found["dtdate"] != "11/03/2017" {
		t.Fatalf("unexpected found map %#v", found)
	}
	if len(missing) != 1 || missing[0] != "locationNum" {
		t.Fatalf("unexpected missing %v", missing)
	}
}

func TestEscape_MatchesStrictPercentEncoding(t *testing.T) {
	in := "http://x/menu?a=1&b=two words/~_.-"
	want := "http%3A%2F%2Fx%2Fmenu%3Fa%3D1%26b%3Dtwo%20words%2F~_.-"
	if got := Escape(in); got != want {
		t.Fatalf("Escape = %q, want %q", got, want)
	}
}
