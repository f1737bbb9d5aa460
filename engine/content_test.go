package engine

import (
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{"a\n\n\n\nb", "a\n\nb"},
		{"a\n\nb", "a\n\nb"},
		{"a  \t b", "a b"},
		{"\n\n\n  x \t\t y\n\n\n\nz  ", "x y\n\nz"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextAndCleanHTML_Nil(t *testing.T) {
	if Text(nil) != "" || CleanHTML(nil) != "" || OptionsText(nil) != "" {
		t.Fatal("nil node must yield empty strings")
	}
}

func TestCleanHTML_StripsAuxiliaryWidgets(t *testing.T) {
	doc := parsePage(t, `<html><body><div class="alert alert-success">
		<p>Correct: <b>Y</b></p>
		<div id="question_concept_rating_div">Rate</div>
		<div id="question_concept_percentile_div">Top 10%</div>
		<span class="rate_question_concept">★★★</span>
	</div></body></html>`)
	alert := doc.Query(".alert")

	got := CleanHTML(alert, AuxiliaryWidgets...)
	for _, bad := range []string{"Rate", "Top 10%", "★"} {
		if strings.Contains(got, bad) {
			t.Errorf("cleaned HTML still contains %q: %s", bad, got)
		}
	}
	if !strings.HasPrefix(got, "<p>Correct: <b>Y</b></p>") {
		t.Errorf("cleaned HTML: %q", got)
	}
	// The live node is untouched.
	if alert.Query("#question_concept_rating_div") == nil {
		t.Error("strip mutated the document")
	}
}

func TestOptionsText_Dedupes(t *testing.T) {
	doc := parsePage(t, `<html><body><ul class="options">
		<li>Aspirin</li><li>Heparin</li><li>Aspirin</li><li>  </li>
	</ul></body></html>`)
	if got := OptionsText(doc.Query(".options")); got != "Aspirin\nHeparin" {
		t.Errorf("got %q", got)
	}
}
