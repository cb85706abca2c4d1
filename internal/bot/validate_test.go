package bot

import "testing"

func TestParseCount(t *testing.T) {
	valid := map[string]int{
		"1":    1,
		"3":    3,
		"250":  250,
		" 10 ": 10,
	}
	for input, want := range valid {
		count, err := parseCount(input)
		if err != nil {
			t.Fatalf("parseCount(%q) failed: %v", input, err)
		}
		if count != want {
			t.Fatalf("parseCount(%q) = %d, want %d", input, count, want)
		}
	}

	invalid := []string{"0", "251", "-5", "abc", "2.5", ""}
	for _, input := range invalid {
		if _, err := parseCount(input); err == nil {
			t.Fatalf("parseCount(%q) expected error", input)
		}
	}
}

func TestParseRatingRange(t *testing.T) {
	tests := []struct {
		input    string
		min, max float64
	}{
		{"7-9.5", 7, 9.5},
		{"7 - 9.5", 7, 9.5},
		{"1-10", 1, 10},
		{"7", 7, 10},
		{"10", 10, 10},
	}
	for _, tc := range tests {
		min, max, err := parseRatingRange(tc.input)
		if err != nil {
			t.Fatalf("parseRatingRange(%q) failed: %v", tc.input, err)
		}
		if min != tc.min || max != tc.max {
			t.Fatalf("parseRatingRange(%q) = %g-%g, want %g-%g", tc.input, min, max, tc.min, tc.max)
		}
	}

	invalid := []string{"0-5", "5-11", "9-7", "abc", "1-abc", "11", ""}
	for _, input := range invalid {
		if _, _, err := parseRatingRange(input); err == nil {
			t.Fatalf("parseRatingRange(%q) expected error", input)
		}
	}
}

func TestParseGenre(t *testing.T) {
	if genre := parseGenre("любой"); genre != nil {
		t.Fatalf("expected nil genre, got %q", *genre)
	}
	if genre := parseGenre("ЛЮБОЙ"); genre != nil {
		t.Fatalf("expected nil genre for uppercase literal, got %q", *genre)
	}

	genre := parseGenre("  Драма ")
	if genre == nil {
		t.Fatal("expected genre, got nil")
	}
	if *genre != "драма" {
		t.Fatalf("expected lowercased trimmed genre, got %q", *genre)
	}

	escaped := parseGenre("<b>ужасы</b>")
	if escaped == nil || *escaped != "&lt;b&gt;ужасы&lt;/b&gt;" {
		t.Fatalf("expected escaped genre, got %v", escaped)
	}
}

func TestParseBudgetType(t *testing.T) {
	low, high, err := parseBudgetType("Малобюджетные")
	if err != nil {
		t.Fatalf("low budget label failed: %v", err)
	}
	if low != 0 || high != 1_500_000 {
		t.Fatalf("low budget range = %d-%d", low, high)
	}

	low, high, err = parseBudgetType("Высокобюджетные")
	if err != nil {
		t.Fatalf("high budget label failed: %v", err)
	}
	if low != 100_000_000 || high != 1_000_000_000 {
		t.Fatalf("high budget range = %d-%d", low, high)
	}

	// Диапазоны не пересекаются.
	if 1_500_000 >= 100_000_000 {
		t.Fatal("budget ranges overlap")
	}

	for _, input := range []string{"средние", "малобюджетные", "", "low"} {
		if _, _, err := parseBudgetType(input); err == nil {
			t.Fatalf("parseBudgetType(%q) expected error", input)
		}
	}
}

func TestParseName(t *testing.T) {
	name, err := parseName("  Inception ")
	if err != nil {
		t.Fatalf("parseName failed: %v", err)
	}
	if name != "Inception" {
		t.Fatalf("expected trimmed name, got %q", name)
	}

	escaped, err := parseName("<script>")
	if err != nil {
		t.Fatalf("parseName failed: %v", err)
	}
	if escaped != "&lt;script&gt;" {
		t.Fatalf("expected escaped name, got %q", escaped)
	}

	if _, err := parseName("   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}
