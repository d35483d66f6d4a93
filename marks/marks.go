// Package marks defines the comment-line grammar that delimits embedded
// regions in a host document, and the operations to embed, locate, rewrite
// and remove those regions.
//
// Two region kinds exist. The metadata region holds the session Record as a
// single payload line between a start and end sentinel. Fragment regions
// hold one fragment of the current page, one comment line per payload line.
// Sentinels are recognized by exact structural match on whole lines, so
// regions of different sessions can interleave freely.
package marks

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	metaTag = "NOVEL_META"
	snipTag = "NOVEL_SNIP"
)

// Marker renders and recognizes sentinel lines using a fixed comment
// marker, e.g. "#" or "//". The host document is treated as opaque lines;
// only full standalone comment lines are ever produced.
type Marker struct {
	Comment string
}

func NewMarker(comment string) Marker {
	if comment == "" {
		comment = "#"
	}
	return Marker{Comment: comment}
}

// Region is a located area of the document. Start and End are character
// offsets into the document; End includes the region's trailing newline
// when present, so doc[:Start] + doc[End:] removes the region cleanly.
type Region struct {
	Text  string
	Start int
	End   int
}

// --- metadata region -------------------------------------------------------

// MetaBlock renders a self-contained metadata region: start sentinel, a
// guard comment, the payload line, end sentinel.
func (m Marker) MetaBlock(rec Record) string {
	lines := []string{
		m.sentinelLine(metaTag, "START", rec.ID, -1),
		m.commentLine("do not edit this block manually"),
		m.commentLine(rec.encode()),
		m.sentinelLine(metaTag, "END", rec.ID, -1),
	}
	return strings.Join(lines, "\n") + "\n"
}

// FindMeta locates the first metadata region of the document. The record is
// parsed tolerantly: every comment line of the region is tried as a
// payload, then the fixed third line, and as a last resort a record holding
// only the sentinel's session id is returned, so Strip can still operate on
// documents with a mangled payload.
func (m Marker) FindMeta(doc string) (Record, Region, bool) {
	lines, starts := docLines(doc)
	startIdx := -1
	var id string
	for i, line := range lines {
		sent, ok := m.parseSentinel(line)
		if !ok || sent.tag != metaTag {
			continue
		}
		if !sent.end {
			if startIdx < 0 {
				startIdx = i
				id = sent.id
			}
			continue
		}
		if startIdx >= 0 && sent.id == id {
			region := Region{
				Start: starts[startIdx],
				End:   starts[i+1],
			}
			region.Text = doc[region.Start:region.End]
			return m.parseRecord(lines[startIdx:i+1], id), region, true
		}
	}
	return Record{}, Region{}, false
}

func (m Marker) parseRecord(regionLines []string, id string) Record {
	// tolerant scan over the region body
	for _, line := range regionLines[1 : len(regionLines)-1] {
		payload, ok := m.commentPayload(line)
		if !ok {
			continue
		}
		if rec, ok := decodeRecord(payload); ok {
			return rec
		}
	}
	// fixed-line fallback: the payload is written on the third line
	if len(regionLines) > 2 {
		line := regionLines[2]
		if i := strings.IndexByte(line, '{'); i >= 0 {
			if rec, ok := decodeRecord(line[i:]); ok {
				return rec
			}
		}
	}
	return Record{ID: id}
}

// RewriteMeta returns the region text with only the payload line replaced.
// Sentinels and the guard line stay untouched, so the region keeps its
// physical shape across updates.
func (m Marker) RewriteMeta(regionText string, rec Record) string {
	trailingNL := strings.HasSuffix(regionText, "\n")
	lines := strings.Split(strings.TrimSuffix(regionText, "\n"), "\n")

	idx := -1
	for i := 1; i < len(lines)-1; i++ {
		payload, ok := m.commentPayload(lines[i])
		if !ok {
			continue
		}
		if _, ok := decodeRecord(payload); ok {
			idx = i
			break
		}
	}
	if idx < 0 && len(lines) > 2 {
		idx = 2
	}
	if idx >= 0 {
		lines[idx] = m.commentLine(rec.encode())
	}

	out := strings.Join(lines, "\n")
	if trailingNL {
		out += "\n"
	}
	return out
}

// --- fragment regions ------------------------------------------------------

// SnipBlock renders one fragment region. Every payload line becomes one
// comment line; blank payload lines render as the bare comment marker. An
// empty fragment renders no body lines at all, so concatenating decoded
// bodies always reconstructs the page exactly.
func (m Marker) SnipBlock(id string, index int, body []string) string {
	lines := make([]string, 0, len(body)+2)
	lines = append(lines, m.sentinelLine(snipTag, "START", id, index))
	for _, ln := range body {
		if strings.TrimSpace(ln) == "" {
			lines = append(lines, m.Comment)
		} else {
			lines = append(lines, m.commentLine(ln))
		}
	}
	lines = append(lines, m.sentinelLine(snipTag, "END", id, index))
	return strings.Join(lines, "\n") + "\n"
}

// ReplaceSnips rewrites the body of every fragment region of the session in
// place, keyed by fragment index into bodies. Regions of other sessions and
// regions whose index has no entry in bodies are left untouched. The
// returned indices report which regions were actually rewritten.
func (m Marker) ReplaceSnips(doc string, id string, bodies [][]string) (string, []int) {
	lines, _ := docLines(doc)
	trailingNL := strings.HasSuffix(doc, "\n")

	out := make([]string, 0, len(lines))
	var replaced []int
	for i := 0; i < len(lines); i++ {
		sent, ok := m.parseSentinel(lines[i])
		if !ok || sent.tag != snipTag || sent.end || sent.id != id || sent.snip >= len(bodies) {
			out = append(out, lines[i])
			continue
		}
		endIdx := m.findSnipEnd(lines, i+1, id, sent.snip)
		if endIdx < 0 {
			// unterminated region, treat the sentinel as an ordinary line
			out = append(out, lines[i])
			continue
		}
		block := m.SnipBlock(id, sent.snip, bodies[sent.snip])
		out = append(out, strings.Split(strings.TrimSuffix(block, "\n"), "\n")...)
		replaced = append(replaced, sent.snip)
		i = endIdx
	}

	text := strings.Join(out, "\n")
	if trailingNL {
		text += "\n"
	}
	return text, replaced
}

// RemoveSnips deletes every fragment region of the session, start sentinel
// through end sentinel inclusive.
func (m Marker) RemoveSnips(doc string, id string) string {
	lines, _ := docLines(doc)
	trailingNL := strings.HasSuffix(doc, "\n")

	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		sent, ok := m.parseSentinel(lines[i])
		if !ok || sent.tag != snipTag || sent.end || sent.id != id {
			out = append(out, lines[i])
			continue
		}
		endIdx := m.findSnipEnd(lines, i+1, id, sent.snip)
		if endIdx < 0 {
			out = append(out, lines[i])
			continue
		}
		i = endIdx
	}

	text := strings.Join(out, "\n")
	if trailingNL {
		text += "\n"
	}
	return text
}

// SnipBodies reads back the fragment bodies of a session, keyed by fragment
// index, decoding comment lines back to payload lines. Concatenating the
// bodies in index order yields the currently embedded page.
func (m Marker) SnipBodies(doc string, id string) map[int][]string {
	lines, _ := docLines(doc)
	out := make(map[int][]string)
	for i := 0; i < len(lines); i++ {
		sent, ok := m.parseSentinel(lines[i])
		if !ok || sent.tag != snipTag || sent.end || sent.id != id {
			continue
		}
		endIdx := m.findSnipEnd(lines, i+1, id, sent.snip)
		if endIdx < 0 {
			continue
		}
		var body []string
		for _, line := range lines[i+1 : endIdx] {
			body = append(body, m.decodeBodyLine(line))
		}
		out[sent.snip] = body
		i = endIdx
	}
	return out
}

// commentLine renders a payload as a standalone comment line.
func (m Marker) commentLine(payload string) string {
	return m.Comment + " " + payload
}

// commentPayload extracts the payload of a standalone comment line.
func (m Marker) commentPayload(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), m.Comment)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func (m Marker) decodeBodyLine(line string) string {
	if strings.TrimSpace(line) == m.Comment {
		return ""
	}
	if payload, ok := strings.CutPrefix(line, m.Comment+" "); ok {
		return payload
	}
	return strings.TrimPrefix(line, m.Comment)
}

func (m Marker) findSnipEnd(lines []string, from int, id string, snip int) int {
	for i := from; i < len(lines); i++ {
		sent, ok := m.parseSentinel(lines[i])
		if ok && sent.tag == snipTag && sent.end && sent.id == id && sent.snip == snip {
			return i
		}
	}
	return -1
}

// --- sentinel lines --------------------------------------------------------

type sentinel struct {
	tag     string
	end     bool
	id      string
	snip    int
	hasSnip bool
}

func (m Marker) sentinelLine(tag string, kind string, id string, snip int) string {
	if snip < 0 {
		return fmt.Sprintf("%s <<<%s %s id=%s >>>", m.Comment, tag, kind, id)
	}
	return fmt.Sprintf("%s <<<%s %s id=%s snip=%d >>>", m.Comment, tag, kind, id, snip)
}

func (m Marker) parseSentinel(line string) (sentinel, bool) {
	var sent sentinel

	s := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(s, m.Comment)
	if !ok {
		return sent, false
	}
	s = strings.TrimSpace(rest)
	s, ok = strings.CutPrefix(s, "<<<")
	if !ok {
		return sent, false
	}
	s, ok = strings.CutSuffix(s, ">>>")
	if !ok {
		return sent, false
	}

	fields := strings.Fields(s)
	if len(fields) < 3 {
		return sent, false
	}

	sent.tag = fields[0]
	if sent.tag != metaTag && sent.tag != snipTag {
		return sent, false
	}

	switch fields[1] {
	case "START":
	case "END":
		sent.end = true
	default:
		return sent, false
	}

	for _, field := range fields[2:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return sent, false
		}
		switch key {
		case "id":
			if !isIDToken(value) {
				return sent, false
			}
			sent.id = value
		case "snip":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return sent, false
			}
			sent.snip = n
			sent.hasSnip = true
		default:
			return sent, false
		}
	}

	if sent.id == "" {
		return sent, false
	}
	if sent.tag == snipTag && !sent.hasSnip {
		return sent, false
	}
	return sent, true
}

// session ids are tokens of hex digits and hyphens
func isIDToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

// docLines splits doc into lines while recording each line's start offset.
// starts has one extra trailing entry so starts[i+1] is always the offset
// just past line i's newline.
func docLines(doc string) (lines []string, starts []int) {
	pos := 0
	for {
		starts = append(starts, pos)
		if pos >= len(doc) {
			break
		}
		idx := strings.IndexByte(doc[pos:], '\n')
		if idx < 0 {
			lines = append(lines, doc[pos:])
			starts = append(starts, len(doc))
			break
		}
		lines = append(lines, doc[pos:pos+idx])
		pos += idx + 1
	}
	return lines, starts
}
