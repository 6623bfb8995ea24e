package dataset

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alandotcom/sweepy/route"
)

const header = "X,Y,Route,Posted_Day,Posted_Time,Boundaries,Weeks,Day_Short,STNAME,TDIR,STSFX"

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		len     int
		err     bool
	}{
		{
			"posted and unposted rows",
			header + `
-118.2506,34.0502,N5123,Tuesday,10am-1pm,Sunset to Fountain,2 & 4,Tue,Valerio,W,St
-118.2504,34.0498,N5124,,,,,,Valerio,W,St`,
			2,
			false,
		},
		{
			"empty file",
			header,
			0,
			false,
		},
		{
			"missing route id",
			header + `
-118.2506,34.0502,,Tuesday,10am-1pm,,2 & 4,Tue,Valerio,W,St`,
			0,
			true,
		},
		{
			"centroid out of range",
			header + `
-190.0,34.0502,N5123,Tuesday,10am-1pm,,2 & 4,Tue,Valerio,W,St`,
			0,
			true,
		},
		{
			"unparseable weeks on posted row",
			header + `
-118.2506,34.0502,N5123,Tuesday,10am-1pm,,3 & 5,Tue,Valerio,W,St`,
			0,
			true,
		},
		{
			"unparseable day on posted row",
			header + `
-118.2506,34.0502,N5123,Tuesdayish,10am-1pm,,2 & 4,Tue,Valerio,W,St`,
			0,
			true,
		},
		{
			"unposted row needs no schedule",
			header + `
-118.2506,34.0502,N5123,,,,garbage,,Valerio,W,St`,
			1,
			false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			snapshot, err := Load(bytes.NewBufferString(tc.content))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.len, snapshot.Len())
		})
	}
}

func TestLoadStripsBOM(t *testing.T) {
	content := "\xef\xbb\xbf" + header + `
-118.2506,34.0502,N5123,Tuesday,10am-1pm,,2 & 4,Tue,Valerio,W,St`

	snapshot, err := Load(bytes.NewBufferString(content))
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Len())
}

func TestQuery(t *testing.T) {
	content := header + `
-118.2506,34.0502,N5123,Tuesday,10am-1pm,,2 & 4,Tue,Valerio,W,St
-118.2504,34.0498,N5124,Wednesday,10am-1pm,,2 & 4,Wed,Valerio,W,St
-118.9,34.2,FAR01,Monday,8am-10am,,1 & 3,Mon,Elsewhere,,Ave`

	snapshot, err := Load(bytes.NewBufferString(content))
	require.NoError(t, err)

	records, err := snapshot.Query(context.Background(), route.NewEnvelope(-118.2504, 34.0499, 200))
	require.NoError(t, err)

	require.Len(t, records, 2)
	// Nearest to the envelope center first.
	assert.Equal(t, "N5124", records[0].Route)
	assert.Equal(t, "N5123", records[1].Route)

	records, err = snapshot.Query(context.Background(), route.NewEnvelope(-117.0, 33.0, 200))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryLimit(t *testing.T) {
	var content strings.Builder
	content.WriteString(header)
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&content, "\n-118.2505,34.0501,R%02d,Tuesday,10am-1pm,,2 & 4,Tue,Valerio,W,St", i)
	}

	snapshot, err := Load(bytes.NewBufferString(content.String()))
	require.NoError(t, err)

	records, err := snapshot.Query(context.Background(), route.NewEnvelope(-118.2505, 34.0501, 200))
	require.NoError(t, err)
	assert.Len(t, records, 10)
}
