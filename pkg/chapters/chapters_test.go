package chapters

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := ParseLine("1:04:44.960 Chapter 5")
		require.NoError(t, err)
		assert.Equal(t, int64(3884960), m.Start)
		assert.Equal(t, "Chapter 5", m.Title)
	})

	t.Run("hours_may_exceed_one_digit", func(t *testing.T) {
		m, err := ParseLine("12:00:00.000 Late")
		require.NoError(t, err)
		assert.Equal(t, int64(12*3600*1000), m.Start)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, line := range []string{"0:0:00.000 x", "0:00:00 x", "00:00.000 x", "nonsense"} {
			_, err := ParseLine(line)
			require.Error(t, err, line)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		}
	})
}

func TestParseAndBuild(t *testing.T) {
	input := `
0:00:00.000 Chapter 1
0:23:20.000 Chapter 2

garbage here
0:40:30.000 Chapter 3
1:20:00.000 END
`
	marks, skipped, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, marks, 4)
	assert.Equal(t, []string{"garbage here"}, skipped)

	chapters := Build(marks)
	require.Len(t, chapters, 3)
	assert.Equal(t, Chapter{Start: 0, End: 1399999, Title: "Chapter 1"}, chapters[0])
	assert.Equal(t, Chapter{Start: 2430000, End: 4799999, Title: "Chapter 3"}, chapters[2])

	assert.Nil(t, Build(marks[:1]))
	assert.Nil(t, Build(nil))
}

func TestWrite(t *testing.T) {
	chapters := []Chapter{
		{Start: 0, End: 999, Title: "Intro"},
		{Start: 1000, End: 1999, Title: "A=B; #1"},
	}

	t.Run("fragment", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, chapters, false))
		assert.Equal(t, `[CHAPTER]
TIMEBASE=1/1000
START=0
END=999
title=Intro
[CHAPTER]
TIMEBASE=1/1000
START=1000
END=1999
title=A\=B\; \#1
`, buf.String())
	})

	t.Run("with_header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, chapters[:1], true))
		assert.True(t, strings.HasPrefix(buf.String(), MetadataHeader+"\n[CHAPTER]\n"))
	})
}
