package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS control bytes.
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Align is an ESC a justification mode.
type Align byte

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// FontSize is a GS ! character size. The high nibble scales width, the low
// nibble height.
type FontSize byte

const (
	FontNormal FontSize = 0x00
	FontTall   FontSize = 0x01
	FontWide   FontSize = 0x10
	FontDouble FontSize = 0x11
)

// Paper widths in characters.
const (
	Width58mm = 32
	Width80mm = 48
)

// Document accumulates an ESC/POS job. Every method appends to the job and
// returns the document so calls chain.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a job for a printer charWidth characters wide. A
// non-positive width means 58mm paper.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	return d.Init()
}

// Width returns the line width in characters.
func (d *Document) Width() int { return d.width }

func (d *Document) command(b ...byte) *Document {
	d.buf.Write(b)
	return d
}

// Init resets the printer to its power-on modes (ESC @).
func (d *Document) Init() *Document { return d.command(ESC, '@') }

// LineFeed ends the current line.
func (d *Document) LineFeed() *Document { return d.FeedLines(1) }

// FeedLines advances the paper n lines.
func (d *Document) FeedLines(n int) *Document {
	if n > 0 {
		d.buf.Write(bytes.Repeat([]byte{LF}, n))
	}
	return d
}

// SetAlign justifies the lines that follow.
func (d *Document) SetAlign(a Align) *Document { return d.command(ESC, 'a', byte(a)) }

// SetBold turns emphasized printing on or off.
func (d *Document) SetBold(on bool) *Document {
	var mode byte
	if on {
		mode = 1
	}
	return d.command(ESC, 'E', mode)
}

// SetFontSize scales the characters that follow.
func (d *Document) SetFontSize(size FontSize) *Document { return d.command(GS, '!', byte(size)) }

// Text prints s as a full line.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	return d.LineFeed()
}

// TextF prints a formatted line.
func (d *Document) TextF(format string, args ...any) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a line made of char.
func (d *Document) Separator(char byte) *Document {
	return d.Text(strings.Repeat(string(char), d.width))
}

// KeyValue prints key on the left and value flush right.
func (d *Document) KeyValue(key, value string) *Document {
	return d.Text(d.justify(key, value))
}

// ItemLine prints "qty x name" and a right-aligned total. Names that do not
// fit are truncated.
func (d *Document) ItemLine(qty, name, total string) *Document {
	prefix := qty + "x " + name
	if limit := d.width - len(total) - 1; limit > 0 && len(prefix) > limit {
		prefix = prefix[:limit]
	}
	return d.Text(d.justify(prefix, total))
}

func (d *Document) justify(left, right string) string {
	gap := max(d.width-len(left)-len(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// KickDrawer pulses the cash drawer connected to pin 2.
func (d *Document) KickDrawer() *Document { return d.command(ESC, 'p', 0x00, 0x19, 0xFA) }

// Cut cuts the paper through.
func (d *Document) Cut() *Document { return d.command(GS, 'V', 0x00) }

// PartialCut cuts the paper leaving one point attached.
func (d *Document) PartialCut() *Document { return d.command(GS, 'V', 0x01) }

// Bytes returns the job so far. The slice aliases the document's buffer.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Reset discards the job and starts a new one.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	return d.Init()
}
