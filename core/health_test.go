package core

import (
	"testing"
	"time"
)

func TestConstitutionMatches(t *testing.T) {
	cases := []struct {
		c    Constitution
		s    string
		want bool
	}{
		{ConstitutionYangDeficiency, "yang_deficiency", true},
		{ConstitutionYangDeficiency, "yang_deficient", true}, // 内容源的另一种拼写
		{ConstitutionYangDeficiency, " Yang_Deficient ", true},
		{ConstitutionYangDeficiency, "yin_deficiency", false},
		{ConstitutionQiDeficiency, "qi_deficient", true},
		{ConstitutionBalanced, "balanced", true},
		{ConstitutionBalanced, "", false},
		{Constitution(""), "", false},
	}
	for _, tc := range cases {
		if got := tc.c.Matches(tc.s); got != tc.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tc.c, tc.s, got, tc.want)
		}
	}
}

func TestCurrentSeason(t *testing.T) {
	cases := []struct {
		month time.Month
		want  string
	}{
		{time.January, SeasonWinter},
		{time.February, SeasonSpring},
		{time.April, SeasonSpring},
		{time.May, SeasonSummer},
		{time.July, SeasonSummer},
		{time.August, SeasonAutumn},
		{time.October, SeasonAutumn},
		{time.November, SeasonWinter},
		{time.December, SeasonWinter},
	}
	for _, tc := range cases {
		at := time.Date(2025, tc.month, 15, 0, 0, 0, 0, time.UTC)
		if got := CurrentSeason(at); got != tc.want {
			t.Errorf("CurrentSeason(%v) = %v, want %v", tc.month, got, tc.want)
		}
	}
}
