package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func stopTime(stop *gtfs.Stop, seq int, minutes int) gtfs.ScheduledStopTime {
	at := time.Duration(minutes) * time.Minute
	return gtfs.ScheduledStopTime{Stop: stop, StopSequence: seq, ArrivalTime: at, DepartureTime: at}
}

func sampleFeed() *gtfs.Static {
	agency := &gtfs.Agency{Id: "swr", Name: "South Western Railway"}

	waterloo := &gtfs.Stop{Id: "WAT", Name: "London Waterloo", Latitude: ptr(51.5031), Longitude: ptr(-0.1132), ZoneId: "1"}
	clapham := &gtfs.Stop{Id: "CLJ", Name: "Clapham Junction", Latitude: ptr(51.4643), Longitude: ptr(-0.1704), ZoneId: "2"}
	woking := &gtfs.Stop{Id: "WOK", Name: "Woking", Latitude: ptr(51.3185), Longitude: ptr(-0.5569)}
	wokingP2 := &gtfs.Stop{Id: "WOK2", Name: "Woking Platform 2", Parent: woking}
	farnborough := &gtfs.Stop{Id: "FNB", Name: "Farnborough (Main)", Latitude: ptr(51.2965), Longitude: ptr(-0.7557)}
	guildford := &gtfs.Stop{Id: "GLD", Name: "Guildford"}

	static := &gtfs.Static{
		Agencies: []gtfs.Agency{*agency},
		Routes: []gtfs.Route{
			{Id: "SWML", Agency: agency, ShortName: "SW", LongName: "South Western Main Line"},
			{Id: "SHUTTLE", Agency: agency, ShortName: "Shuttle"},
		},
		Stops: []gtfs.Stop{*waterloo, *clapham, *woking, *wokingP2, *farnborough, *guildford},
	}
	swml := &static.Routes[0]
	shuttle := &static.Routes[1]

	static.Trips = []gtfs.ScheduledTrip{
		{
			ID:    "t1-stopping",
			Route: swml,
			StopTimes: []gtfs.ScheduledStopTime{
				stopTime(woking, 3, 27),
				stopTime(waterloo, 1, 0),
				stopTime(clapham, 2, 6),
				stopTime(farnborough, 4, 39),
			},
		},
		{
			ID:    "t2-fast",
			Route: swml,
			StopTimes: []gtfs.ScheduledStopTime{
				stopTime(waterloo, 1, 0),
				stopTime(wokingP2, 2, 24),
			},
		},
		{
			ID:    "t3-up",
			Route: swml,
			StopTimes: []gtfs.ScheduledStopTime{
				stopTime(farnborough, 1, 0),
				stopTime(woking, 2, 11),
				stopTime(clapham, 3, 33),
				stopTime(waterloo, 4, 40),
			},
		},
		{
			ID:    "t4-shuttle",
			Route: shuttle,
			StopTimes: []gtfs.ScheduledStopTime{
				stopTime(woking, 1, 0),
				stopTime(guildford, 2, 8),
			},
		},
	}
	return static
}

func TestFromGTFS(t *testing.T) {
	ds, err := FromGTFS(sampleFeed(), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"South Western Main Line", "Shuttle"}, ds.LineNames())

	cat := ds.Catalog()
	swml, ok := cat.Line("South Western Main Line")
	require.True(t, ok)

	assert.Equal(t, "South Western Railway", swml.Operator)
	assert.Equal(t, []string{"London Waterloo", "Clapham Junction", "Woking", "Farnborough (Main)"}, swml.StationNames())

	require.True(t, swml.HasPatterns())
	assert.Equal(t, []string{"pattern_1", "stopping"}, swml.Patterns.Codes())
	fast := swml.Patterns.Patterns["pattern_1"]
	assert.Equal(t, []string{"London Waterloo", "Woking"}, fast.Stations)
	assert.Equal(t, "fast", fast.Type.String())

	minutes, ok := swml.JourneyMinutes("London Waterloo", "Clapham Junction")
	assert.True(t, ok)
	assert.Equal(t, 6.0, minutes)

	minutes, ok = swml.JourneyMinutes("Clapham Junction", "Woking")
	assert.True(t, ok)
	assert.Equal(t, 21.0, minutes)

	minutes, ok = swml.JourneyMinutes("Woking", "Clapham Junction")
	assert.True(t, ok)
	assert.Equal(t, 22.0, minutes, "the up direction keeps its own timing")

	minutes, ok = swml.JourneyMinutes("London Waterloo", "Woking")
	assert.True(t, ok)
	assert.Equal(t, 24.0, minutes, "platforms fold into their parent station")

	woking, ok := cat.StationByName("Woking")
	require.True(t, ok)
	assert.Equal(t, []string{"Shuttle"}, woking.Interchange)
	assert.Equal(t, []string{"South Western Main Line", "Shuttle"}, cat.LinesForStation("Woking"))

	guildford, ok := cat.StationByName("Guildford")
	require.True(t, ok)
	assert.True(t, guildford.Coordinates.IsZero())
}

func TestFromGTFS_WriteAndLoad(t *testing.T) {
	ds, err := FromGTFS(sampleFeed(), ImportOptions{})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, WriteDataset(dir, ds))

	cat, err := NewLoader(dir, []string{"London Waterloo", "Guildford"}, nil).Load(context.Background())
	require.NoError(t, err)

	inMemory := ds.Catalog()
	assert.Equal(t, inMemory.Stations(), cat.Stations())
	assert.Empty(t, cat.Report().SkippedLines)

	clapham, ok := cat.StationByName("Clapham Junction")
	require.True(t, ok)
	assert.Equal(t, "2", clapham.Zone)
}

func TestFromGTFS_Filter(t *testing.T) {
	ds, err := FromGTFS(sampleFeed(), ImportOptions{
		Filter: func(r *gtfs.Route) bool { return r.Id == "SWML" },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"South Western Main Line"}, ds.LineNames())

	_, err = FromGTFS(sampleFeed(), ImportOptions{MinStations: 10})
	assert.Error(t, err)

	_, err = FromGTFS(nil, ImportOptions{})
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "south_western_main_line", slugify("South Western Main Line"))
	assert.Equal(t, "reading_basingstoke", slugify("Reading - Basingstoke!"))
}

func TestJourneyTimesFor_KeepsQuickestRun(t *testing.T) {
	a := &gtfs.Stop{Id: "A", Name: "Alpha"}
	b := &gtfs.Stop{Id: "B", Name: "Bravo"}

	times := journeyTimesFor([][]gtfs.ScheduledStopTime{
		{stopTime(a, 1, 0), stopTime(b, 2, 12)},
		{stopTime(a, 1, 60), stopTime(b, 2, 69)},
		{stopTime(a, 1, 30), stopTime(b, 2, 30)},
	})
	assert.Equal(t, map[string]float64{"Alpha-Bravo": 9}, times)

	assert.Nil(t, journeyTimesFor(nil))
}
