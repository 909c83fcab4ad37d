package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"Niveshak/internal/batch"
	"Niveshak/internal/table"
)

// MaxMessageLen is the Telegram limit on one message. Chunks are measured
// in bytes, which never undercounts characters.
const MaxMessageLen = 4096

const (
	preOpen  = "<pre>"
	preClose = "</pre>"
)

// FormatReport renders a batch result as one or more HTML messages. The
// table is split on row boundaries and every chunk repeats the header row.
func FormatReport(watchlist string, res *batch.Result, tbl *table.Table) []string {
	var head strings.Builder
	head.WriteString(fmt.Sprintf("📊 <b>Niveshak</b> | %s | %s\n", html.EscapeString(watchlist), res.Started.Format("2006-01-02 15:04")))
	head.WriteString(fmt.Sprintf("symbols: %d | full: %d | partial: %d | timed out: %d | %s\n",
		len(res.Records), res.Full, res.Partial, res.TimedOut, res.Duration.Round(time.Millisecond)))

	msgs := ChunkPre(head.String(), tbl.Text(), MaxMessageLen)

	if failures := res.Failures(); len(failures) > 0 {
		var b strings.Builder
		b.WriteString("⚠️ <b>incomplete</b>\n")
		for _, rec := range failures {
			reason := "unknown"
			if rec.Failure != nil {
				reason = rec.Failure.Error()
			}
			b.WriteString(fmt.Sprintf("• %s: %s\n", html.EscapeString(rec.Symbol), html.EscapeString(reason)))
		}
		msgs = append(msgs, ChunkLines(b.String(), MaxMessageLen)...)
	}
	return msgs
}

// ChunkPre wraps the lines of text in <pre> blocks, each message at most
// limit bytes. The first message starts with intro; the first line of
// text is treated as a header and repeated in every block.
func ChunkPre(intro, text string, limit int) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	header, rows := lines[0], lines[1:]

	var msgs []string
	var b strings.Builder
	start := func(prefix string) {
		b.Reset()
		b.WriteString(prefix)
		b.WriteString(preOpen)
		b.WriteString(clip(header, limit-len(prefix)-len(preOpen)-len(preClose)-1))
		b.WriteString("\n")
	}
	flush := func() {
		b.WriteString(preClose)
		msgs = append(msgs, b.String())
	}

	start(intro)
	pending := 0
	for _, row := range rows {
		room := limit - b.Len() - len(preClose)
		if len(row)+1 > room && pending > 0 {
			flush()
			start("")
			pending = 0
			room = limit - b.Len() - len(preClose)
		}
		b.WriteString(clip(row, room-1))
		b.WriteString("\n")
		pending++
	}
	flush()
	return msgs
}

// ChunkLines splits plain text on line boundaries into messages of at most
// limit bytes.
func ChunkLines(text string, limit int) []string {
	var msgs []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		if b.Len()+len(line) > limit && b.Len() > 0 {
			msgs = append(msgs, b.String())
			b.Reset()
		}
		b.WriteString(clip(line, limit))
	}
	if b.Len() > 0 {
		msgs = append(msgs, b.String())
	}
	return msgs
}

// clip cuts s to at most n bytes without splitting a rune or an HTML entity.
func clip(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	if amp := strings.LastIndexByte(s[:cut], '&'); amp >= 0 && !strings.Contains(s[amp:cut], ";") {
		cut = amp
	}
	return s[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// FormatLists lists the available watchlists.
func FormatLists(names []string) string {
	if len(names) == 0 {
		return "No watchlists configured."
	}
	var b strings.Builder
	b.WriteString("📋 <b>Watchlists</b>\n\n")
	for _, n := range names {
		b.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(n)))
	}
	b.WriteString("\nSend /scan &lt;name&gt; or just the list name.")
	return b.String()
}

// FormatHelp describes the bot commands.
func FormatHelp() string {
	return "Available commands:\n• /lists - show watchlists\n• /scan &lt;name&gt; - scan a watchlist\n• &lt;name&gt; - same as /scan"
}

// FormatError reports a failed command.
func FormatError(action string, err error) string {
	return fmt.Sprintf("❌ %s failed: %s", html.EscapeString(action), html.EscapeString(err.Error()))
}
