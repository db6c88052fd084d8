package confidence

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"0", 0, true},
		{"0.4", 0.4, true},
		{"0.9", 0.9, true},
		{"1", 1, true},
		{"1.0", 1, true},
		{"90", 0.9, true},
		{"100", 1, true},
		{"45", 0.45, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{" 0.75 ", 0.75, true},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.raw)
		if ok != tt.wantOK {
			t.Errorf("Normalize(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Normalize(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		confidence string
		want       Band
	}{
		{"empty value always red", "", "0.99", Red},
		{"whitespace value always red", "   ", "0.99", Red},
		{"missing confidence is yellow", "x", "", Yellow},
		{"unparsable confidence is yellow", "x", "high", Yellow},
		{"low confidence is red", "x", "0.4", Red},
		{"boundary 0.5 is yellow", "x", "0.5", Yellow},
		{"mid confidence is yellow", "x", "0.89", Yellow},
		{"boundary 0.9 is green", "x", "0.9", Green},
		{"percentage form matches fraction form", "x", "90", Green},
		{"high confidence is green", "x", "0.99", Green},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.value, tt.confidence); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.value, tt.confidence, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"0.9", "90%"},
		{"0.845", "85%"}, // half rounds away from zero
		{"90", "90%"},
		{"1", "100%"},
		{"0", "0%"},
		{"", "N/A"},
		{"garbage", "N/A"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.raw); got != tt.want {
			t.Errorf("FormatPercent(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestShouldAutoGenerate(t *testing.T) {
	values := map[string]string{
		"event_date_time":             "2026-09-12 22:00",
		"location_town_city":          "Bristol",
		"event_title":                 "Bassline Sessions",
		"performers_djs_soundsystems": "DJ Example",
		"venue_name":                  "The Crypt",
	}
	allHigh := map[string]string{
		"event_date_time":             "0.95",
		"location_town_city":          "0.97",
		"event_title":                 "0.99",
		"performers_djs_soundsystems": "0.92",
		"venue_name":                  "0.91",
	}

	t.Run("nil confidence map never auto-generates", func(t *testing.T) {
		if ShouldAutoGenerate(nil, values) {
			t.Error("got true with nil confidence map")
		}
	})

	t.Run("all populated fields above threshold", func(t *testing.T) {
		if !ShouldAutoGenerate(allHigh, values) {
			t.Error("got false, want true")
		}
	})

	t.Run("unpopulated fields are skipped", func(t *testing.T) {
		ok := ShouldAutoGenerate(
			map[string]string{"event_title": "0.95"},
			map[string]string{"event_title": "Foo", "location_town_city": ""},
		)
		if !ok {
			t.Error("got false, want true")
		}
	})

	t.Run("populated field without confidence entry fails", func(t *testing.T) {
		conf := map[string]string{"event_title": "0.95"}
		vals := map[string]string{"event_title": "Foo", "venue_name": "The Crypt"}
		if ShouldAutoGenerate(conf, vals) {
			t.Error("got true with missing confidence entry")
		}
	})

	t.Run("boundary 0.90 fails the strict gate", func(t *testing.T) {
		ok := ShouldAutoGenerate(
			map[string]string{"event_title": "0.90"},
			map[string]string{"event_title": "Foo"},
		)
		if ok {
			t.Error("exactly 0.90 must not pass the gate")
		}
	})

	t.Run("unparsable confidence fails", func(t *testing.T) {
		ok := ShouldAutoGenerate(
			map[string]string{"event_title": "high"},
			map[string]string{"event_title": "Foo"},
		)
		if ok {
			t.Error("got true with unparsable confidence")
		}
	})

	t.Run("single low field suppresses the gate", func(t *testing.T) {
		conf := map[string]string{}
		for k, v := range allHigh {
			conf[k] = v
		}
		conf["venue_name"] = "0.6"
		if ShouldAutoGenerate(conf, values) {
			t.Error("got true with one low-confidence field")
		}
	})
}

func TestGateFields(t *testing.T) {
	got := GateFields()
	want := []string{
		"event_date_time",
		"location_town_city",
		"event_title",
		"performers_djs_soundsystems",
		"venue_name",
	}
	if len(got) != len(want) {
		t.Fatalf("GateFields() has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GateFields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Callers get a copy; mutating it must not change the gate.
	got[0] = "mutated"
	if GateFields()[0] != "event_date_time" {
		t.Error("mutating the returned slice leaked into the gate field set")
	}
}
