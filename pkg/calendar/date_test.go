package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTime_UsesZone(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC del 11 es todavía 10 en São Paulo (UTC-3).
	ts := time.Date(2024, 1, 11, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-10", FromTime(ts, sp).String())
	assert.Equal(t, "2024-01-11", FromTime(ts, time.UTC).String())
	assert.Equal(t, "2024-01-11", FromTime(ts, nil).String())
}

func TestParse(t *testing.T) {
	d, err := Parse(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 29, d.Day())

	_, err = Parse("29/02/2024")
	assert.Error(t, err)

	z, err := ParseOptional("  ")
	require.NoError(t, err)
	assert.True(t, z.IsZero())
	assert.Equal(t, "", z.String())
}

func TestCompareAndAddDays(t *testing.T) {
	a := MustParse("2024-01-31")
	b := a.AddDays(1)
	assert.Equal(t, "2024-02-01", b.String())
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(New(2024, time.January, 31)))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, "2023-12-31", MustParse("2024-01-01").AddDays(-1).String())
}

func TestJSON(t *testing.T) {
	type payload struct {
		On Date `json:"on"`
	}
	out, err := json.Marshal(payload{On: MustParse("2024-01-10")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2024-01-10"}`, string(out))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"on":null}`), &p))
	assert.True(t, p.On.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`{"on":""}`), &p))
	assert.True(t, p.On.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`{"on":"ayer"}`), &p))
}

func TestCivilRoundTrip(t *testing.T) {
	c := civil.Date{Year: 2024, Month: time.March, Day: 5}
	d := FromCivil(c)
	assert.Equal(t, "2024-03-05", d.String())
	assert.Equal(t, c, d.Civil())
	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 1}, New(2024, time.February, 30).Civil())
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d.Time())
	assert.True(t, Date{}.IsZero())
	assert.False(t, d.IsZero())
}
