package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DukeRupert/uphill/internal/domain"
)

func resort(name string, pass domain.Pass, access domain.Access) domain.Resort {
	r := domain.Resort{Name: name, Pass: pass, Website: "https://example.com"}
	if access != domain.AccessUnknown {
		r.UphillPolicy = &domain.UphillPolicy{OperationalHoursAccess: access}
	}
	return r
}

func fixture() []domain.Resort {
	return []domain.Resort{
		resort("Winter Park", domain.PassIkon, domain.AccessYes),
		resort("Vail", domain.PassEpic, domain.AccessNo),
		resort("Wolf Creek", domain.PassIndependent, domain.AccessNo),
		resort("Kendall Mountain", domain.PassIndependent, domain.AccessUnknown),
		resort("Copper Mountain", domain.PassIkon, domain.AccessYes),
		resort("Beaver Creek", domain.PassEpic, domain.AccessNo),
	}
}

func names(rs []domain.Resort) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestResorts(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"search case-insensitive", Criteria{Search: "CREEK"}, []string{"Wolf Creek", "Beaver Creek"}},
		{"search substring", Criteria{Search: "mountain"}, []string{"Kendall Mountain", "Copper Mountain"}},
		{"pass only", Criteria{Pass: domain.PassEpic}, []string{"Vail", "Beaver Creek"}},
		{"access yes", Criteria{Access: AccessYes}, []string{"Winter Park", "Copper Mountain"}},
		{"access no excludes unknown", Criteria{Access: AccessNo}, []string{"Vail", "Wolf Creek", "Beaver Creek"}},
		{"combined", Criteria{Search: "creek", Pass: domain.PassEpic, Access: AccessNo}, []string{"Beaver Creek"}},
		{"no match", Criteria{Search: "zermatt"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Resorts(fixture(), tt.criteria)))
		})
	}
}

func TestResorts_ClearedFiltersReturnFullDataset(t *testing.T) {
	all := fixture()
	got := Resorts(all, Criteria{})
	assert.Equal(t, all, got)
	assert.True(t, Criteria{}.IsZero())
}

func TestResorts_IsIdempotent(t *testing.T) {
	criteria := []Criteria{
		{Search: "m"},
		{Pass: domain.PassIkon},
		{Access: AccessNo, Search: "e"},
		{},
	}

	for _, c := range criteria {
		once := Resorts(fixture(), c)
		twice := Resorts(once, c)
		assert.Equal(t, once, twice, "criteria %+v", c)
	}
}

func TestResorts_IsOrderedSubsequence(t *testing.T) {
	all := fixture()
	for _, c := range []Criteria{{Search: "o"}, {Pass: domain.PassIndependent}, {Access: AccessYes}} {
		got := Resorts(all, c)

		// Walk the dataset once; every result must appear in order.
		j := 0
		for _, r := range all {
			if j < len(got) && got[j].Name == r.Name {
				j++
			} else {
				assert.False(t, c.Match(r), "matching record %q omitted", r.Name)
			}
		}
		assert.Equal(t, len(got), j, "result is not a subsequence for %+v", c)
	}
}

func TestParseCriteria(t *testing.T) {
	c := ParseCriteria(url.Values{
		"search": {"Vail"},
		"pass":   {"Epic"},
		"access": {"false"},
	})
	assert.Equal(t, Criteria{Search: "Vail", Pass: domain.PassEpic, Access: AccessNo}, c)

	bogus := ParseCriteria(url.Values{"access": {"maybe"}})
	assert.True(t, bogus.IsZero())

	for _, pass := range []string{"garbage", "epic", " Ikon"} {
		assert.True(t, ParseCriteria(url.Values{"pass": {pass}}).IsZero(), pass)
	}
	assert.Equal(t, domain.PassIndependent, ParsePassFilter("Independent"))

	assert.Equal(t, c, ParseCriteria(c.Values()))
}

func TestTrailMaps(t *testing.T) {
	maps := []domain.TrailMap{
		{Name: "Aspen Snowmass"},
		{Name: "Aspen Highlands"},
		{Name: "Vail"},
	}

	assert.Len(t, TrailMaps(maps, ""), 3)
	got := TrailMaps(maps, "ASPEN")
	assert.Equal(t, []domain.TrailMap{{Name: "Aspen Snowmass"}, {Name: "Aspen Highlands"}}, got)
}
