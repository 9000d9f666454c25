package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankTier(t *testing.T) {
	tests := []struct {
		rank int
		want Tier
	}{
		{1, TierGold},
		{5, TierGold},
		{6, TierSilver},
		{10, TierSilver},
		{11, TierBronze},
		{15, TierBronze},
		{16, TierBase},
		{24, TierBase},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RankTier(tt.rank), "rank %d", tt.rank)
	}
}

func TestParsePass(t *testing.T) {
	assert.Equal(t, PassEpic, ParsePass("Epic"))
	assert.Equal(t, PassIkon, ParsePass("ikon"))
	assert.Equal(t, PassIndependent, ParsePass("independent"))
	assert.Equal(t, PassIndependent, ParsePass("Mountain Collective"))
	assert.Equal(t, Pass(""), ParsePass("  "))
}

func TestResort_UnmarshalJSON(t *testing.T) {
	raw := `[
		{"name": "Alpha", "pass": "Epic", "website": "https://alpha.example.com",
		 "uphillPolicy": {"rank": 3, "operationalHoursAccess": true}},
		{"name": "Bravo", "pass": "independent", "website": "https://bravo.example.com",
		 "uphillPolicy": {"operationalHoursAccess": false}},
		{"name": "Charlie", "pass": "Ikon", "website": "https://charlie.example.com",
		 "uphillPolicy": {"operationalHoursAccess": null}},
		{"name": "Delta", "pass": "Ikon", "website": "https://delta.example.com"}
	]`

	var resorts []Resort
	require.NoError(t, json.Unmarshal([]byte(raw), &resorts))
	require.Len(t, resorts, 4)

	assert.Equal(t, PassEpic, resorts[0].Pass)
	require.NotNil(t, resorts[0].Rank())
	assert.Equal(t, 3, *resorts[0].Rank())
	assert.Equal(t, AccessYes, resorts[0].Access())

	assert.Equal(t, PassIndependent, resorts[1].Pass)
	assert.Equal(t, AccessNo, resorts[1].Access())
	assert.Nil(t, resorts[1].Rank())

	// null and absent both decode as unknown, never as "no"
	assert.Equal(t, AccessUnknown, resorts[2].Access())
	assert.Equal(t, AccessUnknown, resorts[3].Access())
	assert.Nil(t, resorts[3].UphillPolicy)
}

func TestAccess_String(t *testing.T) {
	assert.Equal(t, "true", AccessYes.String())
	assert.Equal(t, "false", AccessNo.String())
	assert.Equal(t, "unknown", AccessUnknown.String())
	assert.False(t, AccessUnknown.Known())
	assert.True(t, AccessNo.Known())
}

func TestResort_Validate(t *testing.T) {
	zero := 0

	tests := []struct {
		name    string
		resort  Resort
		wantErr bool
	}{
		{"valid", Resort{Name: "Alpha", Pass: PassEpic, Website: "https://alpha.example.com"}, false},
		{"missing name", Resort{Pass: PassEpic, Website: "https://alpha.example.com"}, true},
		{"missing website", Resort{Name: "Alpha", Pass: PassEpic}, true},
		{"unknown pass", Resort{Name: "Alpha", Pass: "Gold", Website: "https://alpha.example.com"}, true},
		{"zero rank", Resort{Name: "Alpha", Pass: PassIkon, Website: "https://alpha.example.com",
			UphillPolicy: &UphillPolicy{Rank: &zero}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resort.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromValidation(t *testing.T) {
	err := FromValidation("catalog.load", "Alpha", Resort{Name: "Alpha"}.Validate())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Alpha", ve.Record)
	assert.Contains(t, ve.Fields, "website")
	assert.Equal(t, EINVALID, ErrorCode(err))
}
