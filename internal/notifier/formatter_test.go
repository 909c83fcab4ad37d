package notifier

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Niveshak/internal/batch"
	"Niveshak/internal/model"
	"Niveshak/internal/table"
)

func sampleResult(n int) (*batch.Result, *table.Table) {
	res := &batch.Result{ID: "id", Started: time.Date(2024, 6, 28, 15, 30, 0, 0, time.UTC), Duration: 1500 * time.Millisecond}
	for i := 0; i < n; i++ {
		sym := fmt.Sprintf("SYM%03d", i)
		if i%10 == 9 {
			res.Records = append(res.Records, model.PartialRecord(sym, errors.New("no data")))
			res.Partial++
			continue
		}
		res.Records = append(res.Records, model.SignalRecord{
			Symbol:  sym,
			Reading: &model.IndicatorReading{RSI: null.FloatFrom(55.5), ADX: null.FloatFrom(30)},
			Signal:  null.StringFrom("Strong Trend | Uptrend Rising | Within Bands"),
		})
		res.Full++
	}
	tbl, _ := table.Build(res.Records)
	return res, tbl
}

func TestFormatReport_SingleMessage(t *testing.T) {
	res, tbl := sampleResult(3)
	msgs := FormatReport("nifty&banks", res, tbl)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "nifty&amp;banks")
	assert.Contains(t, msgs[0], "full: 3")
	assert.Contains(t, msgs[0], "<pre>SYMBOL")
	assert.True(t, strings.HasSuffix(msgs[0], "</pre>"))
}

func TestFormatReport_ChunksUnderLimit(t *testing.T) {
	res, tbl := sampleResult(120)
	msgs := FormatReport("big", res, tbl)
	require.Greater(t, len(msgs), 2)

	var rows int
	for i, m := range msgs {
		assert.LessOrEqual(t, utf8.RuneCountInString(m), MaxMessageLen, "message %d", i)
		if strings.Contains(m, "<pre>") {
			assert.Contains(t, m, "<pre>SYMBOL", "header repeated in message %d", i)
			rows += strings.Count(m, "\nSYM")
		}
	}
	assert.Equal(t, 120, rows)

	last := msgs[len(msgs)-1]
	assert.Contains(t, last, "incomplete")
	assert.Contains(t, last, "SYM009: no data")
}

func TestChunkPre_SmallLimit(t *testing.T) {
	text := "HEAD\nrow1\nrow2\nrow3\n"
	msgs := ChunkPre("", text, len("<pre>HEAD\nrow1\n</pre>"))
	require.Len(t, msgs, 3)
	assert.Equal(t, "<pre>HEAD\nrow1\n</pre>", msgs[0])
	assert.Equal(t, "<pre>HEAD\nrow3\n</pre>", msgs[2])
}

func TestChunkLines(t *testing.T) {
	msgs := ChunkLines("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, msgs)
	assert.Empty(t, ChunkLines("", 10))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "Δ", clip("ΔΔ", 3))
	assert.Equal(t, "M", clip("M&amp;M", 4))
	assert.Equal(t, "", clip("abc", -1))
}

func TestFormatLists(t *testing.T) {
	out := FormatLists([]string{"auto", "nifty"})
	assert.Contains(t, out, "• auto\n")
	assert.Contains(t, out, "• nifty\n")
	assert.Equal(t, "No watchlists configured.", FormatLists(nil))
}
