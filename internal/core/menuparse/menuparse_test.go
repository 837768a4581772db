package menuparse

import (
	"encoding/json"
	"strings"
	"testing"

	perr "ucrfood/internal/platform/errors"
	kit "ucrfood/internal/platform/testkit"

	"github.com/google/go-cmp/cmp"
)

// flat turns Categories into comparable pairs that keep order
type pair struct {
	Name  string
	Items []string
}

func flat(c Categories) []pair {
	out := []pair{}
	for _, n := range c.Names() {
		out = append(out, pair{Name: n, Items: c.Items(n)})
	}
	return out
}

func TestGroup_SectionGrouping(t *testing.T) {
	cats, err := Group([]string{"--Entrees--", "Pizza", "Salad", "--Desserts--", "Cake"})
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	want := []pair{
		{Name: "Entrees", Items: []string{"Pizza", "Salad"}},
		{Name: "Desserts", Items: []string{"Cake"}},
	}
	if diff := cmp.Diff(want, flat(cats)); diff != "" {
		t.Fatalf("grouping mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_DropsFragmentsBeforeFirstMarker(t *testing.T) {
	cats, err := Group([]string{"Orphan", "--Drinks--", "Juice"})
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	want := []pair{{Name: "Drinks", Items: []string{"Juice"}}}
	if diff := cmp.Diff(want, flat(cats)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	b, _ := json.Marshal(cats)
	if strings.Contains(string(b), "Orphan") {
		t.Fatalf("pre-marker fragment leaked into output: %s", b)
	}
}

func TestGroup_EdgeCases(t *testing.T) {
	t.Run("no markers yields empty", func(t *testing.T) {
		cats, err := Group([]string{"Pizza", "Salad"})
		if err != nil || cats.Len() != 0 {
			t.Fatalf("want empty categories, got %v err=%v", cats.Names(), err)
		}
	})
	t.Run("empty after cleaning dropped", func(t *testing.T) {
		cats, _ := Group([]string{"-- Sides --", "!!!", "   ", "Fries"})
		if diff := cmp.Diff([]string{"Fries"}, cats.Items("Sides")); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
	})
	t.Run("marker with no items keeps empty list", func(t *testing.T) {
		cats, _ := Group([]string{"-- Soups --"})
		if !cats.Has("Soups") || len(cats.Items("Soups")) != 0 {
			t.Fatalf("want empty Soups category, got %v", flat(cats))
		}
	})
	t.Run("repeated marker resets items keeps position", func(t *testing.T) {
		cats, _ := Group([]string{"--A--", "one", "--B--", "two", "--A--", "three"})
		want := []pair{{Name: "A", Items: []string{"three"}}, {Name: "B", Items: []string{"two"}}}
		if diff := cmp.Diff(want, flat(cats)); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
	})
	t.Run("nameless marker is a page format error", func(t *testing.T) {
		_, err := Group([]string{"----", "Pizza"})
		if !perr.IsCode(err, perr.ErrorCodePageFormat) {
			t.Fatalf("want page format error, got %v", err)
		}
	})
}

func TestMarkerName(t *testing.T) {
	cases := []struct {
		in     string
		name   string
		marker bool
	}{
		{"-- Hot Entrees --", "Hot Entrees", true},
		{"--Entrees--", "Entrees", true},
		{"  -- Padded --  ", "Padded", true},
		{" --X--", "X", true},
		{"\n\t\t--Entrees--\n\t", "Entrees", true},
		{"-- Open ended", "Open ended", true},
		{"-single dash-", "", false},
		{"Pizza -- Large", "", false},
	}
	for _, c := range cases {
		name, ok := MarkerName(c.in)
		if ok != c.marker || name != c.name {
			t.Fatalf("MarkerName(%q) = %q,%v want %q,%v", c.in, name, ok, c.name, c.marker)
		}
	}
}

func TestParse_Fixture(t *testing.T) {
	secs, err := Parse(kit.Fixture(t, "testdata", "shortmenu.html"), "text/html")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	type flatSection struct {
		Label string
		Cats  []pair
	}
	got := make([]flatSection, 0, len(secs))
	for _, s := range secs {
		got = append(got, flatSection{Label: s.Label, Cats: flat(s.Categories)})
	}
	want := []flatSection{
		{Label: "breakfast", Cats: []pair{
			{Name: "Hot Entrees", Items: []string{"Scrambled Eggs", "Hash Browns (veg)"}},
			{Name: "Bakery", Items: []string{"Blueberry Muffin"}},
		}},
		{Label: "lunch", Cats: []pair{
			{Name: "Grill", Items: []string{"Cheeseburger"}},
			{Name: "Soups", Items: []string{}},
		}},
		{Label: "dinner", Cats: []pair{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MissingHeadingIsPageFormat(t *testing.T) {
	page := `<table><tr><td width="30%"><a name="Recipe_Desc">-- Grill --</a><a name="Recipe_Desc">Burger</a></td></tr></table>`
	_, err := Parse([]byte(page), "text/html; charset=utf-8")
	if !perr.IsCode(err, perr.ErrorCodePageFormat) {
		t.Fatalf("want page format error, got %v", err)
	}
}

func TestParse_IndentedMarkers(t *testing.T) {
	page := `<table><tr><td width="30%"><div class="shortmenumeals">Lunch</div>
		<a name="Recipe_Desc">
			-- Grill --
		</a>
		<a name="Recipe_Desc">
			Burger
		</a>
	</td></tr></table>`
	secs, err := Parse([]byte(page), "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(secs) != 1 {
		t.Fatalf("want 1 section, got %d", len(secs))
	}
	if diff := cmp.Diff([]string{"Grill"}, secs[0].Categories.Names()); diff != "" {
		t.Fatalf("categories (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Burger"}, secs[0].Categories.Items("Grill")); diff != "" {
		t.Fatalf("items (-want +got):\n%s", diff)
	}
}

func TestParse_NoZones(t *testing.T) {
	secs, err := Parse([]byte("<html><body><p>Closed today</p></body></html>"), "")
	if err != nil || len(secs) != 0 {
		t.Fatalf("want no sections and no error, got %d err=%v", len(secs), err)
	}
}

func TestParse_DecodesDeclaredCharset(t *testing.T) {
	// 0xE9 is e-acute in windows-1252 and invalid on its own in utf-8
	page := []byte("<table><tr><td width=\"30%\"><div class=\"shortmenumeals\">Breakfast</div>" +
		"<a name=\"Recipe_Desc\">-- Coffee --</a><a name=\"Recipe_Desc\">Caf\xe9 Latte</a></td></tr></table>")

	secs, err := Parse(page, "text/html; charset=windows-1252")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(secs) != 1 {
		t.Fatalf("want 1 section, got %d", len(secs))
	}
	if diff := cmp.Diff([]string{"Cafe Latte"}, secs[0].Categories.Items("Coffee")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestCategories_JSONKeepsOrder(t *testing.T) {
	var c Categories
	c.Set("Zeta", "z1")
	c.Set("Alpha", "a1", "a2")
	c.Start("Empty")

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Zeta":["z1"],"Alpha":["a1","a2"],"Empty":[]}`
	if string(b) != want {
		t.Fatalf("marshal = %s, want %s", b, want)
	}

	var back Categories
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(flat(c), flat(back)); diff != "" {
		t.Fatalf("order lost (-want +got):\n%s", diff)
	}
}

func TestCategories_UnmarshalRejectsArray(t *testing.T) {
	var c Categories
	if err := json.Unmarshal([]byte(`["a"]`), &c); err == nil {
		t.Fatalf("want error for non object input")
	}
}
