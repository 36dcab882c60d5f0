package wire

import (
	"strconv"
	"strings"
)

// ParseDatagram decodes a raw UDP payload. Invalid UTF-8 is replaced, never
// fatal. Returns false for lines that don't decode to a command.
func ParseDatagram(b []byte) (Command, bool) {
	return ParseLine(strings.ToValidUTF8(string(b), "�"))
}

// ParseLine parses one protocol line into a Command. Malformed numeric
// fields or short lines drop the whole line: no command, no partial state.
func ParseLine(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	if strings.HasSuffix(line, ";") {
		line = strings.TrimRight(strings.TrimSuffix(line, ";"), " \t")
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, false
	}
	if strings.EqualFold(parts[0], "send") {
		parts = parts[1:]
		if len(parts) == 0 {
			return nil, false
		}
	}

	head := strings.ToUpper(parts[0])

	// ARC col row val1 val2
	if head == "ARC" && len(parts) >= 5 {
		c, r, ok := coords(parts[1], parts[2])
		v1, ok1 := atoi(parts[3])
		v2, ok2 := atoi(parts[4])
		if !ok || !ok1 || !ok2 {
			return nil, false
		}
		return ExtraArcs{Row: r, Col: c, Arc1: ClampValue(v1), Arc2: ClampValue(v2)}, true
	}

	// BAR row col value — the modern form. Seven or more tokens is the
	// legacy style form, which flips to (col, row):
	// BAR col row fg bg w h [frame]
	if head == "BAR" {
		if len(parts) >= 4 && len(parts) < 7 {
			r, c, ok := coords(parts[1], parts[2])
			v, okV := atoi(parts[3])
			if !ok || !okV {
				return nil, false
			}
			return BarValue{Row: r, Col: c, Value: ClampValue(v)}, true
		}
		if len(parts) >= 7 {
			c, r, ok := coords(parts[1], parts[2])
			if !ok || !pixelFields(parts[5:]) {
				return nil, false
			}
			return BarStyle{Row: r, Col: c, Fill: Color(parts[3]), Background: Color(parts[4])}, true
		}
	}

	// BARSET col row value fg bg w h [frame]
	if head == "BARSET" && len(parts) >= 8 {
		c, r, ok := coords(parts[1], parts[2])
		v, okV := atoi(parts[3])
		if !ok || !okV || !pixelFields(parts[6:]) {
			return nil, false
		}
		return BarSet{Row: r, Col: c, Value: ClampValue(v), Fill: Color(parts[4]), Background: Color(parts[5])}, true
	}

	// BARVAL col row value
	if head == "BARVAL" && len(parts) >= 4 {
		c, r, ok := coords(parts[1], parts[2])
		v, okV := atoi(parts[3])
		if !ok || !okV {
			return nil, false
		}
		return BarValue{Row: r, Col: c, Value: ClampValue(v)}, true
	}

	// ALIGN row col align
	if head == "ALIGN" && len(parts) >= 4 {
		r, c, ok := coords(parts[1], parts[2])
		if !ok {
			return nil, false
		}
		align, ok := ParseAlign(parts[3])
		if !ok {
			align = AlignLeft
		}
		return CellAlignment{Row: r, Col: c, Align: align}, true
	}

	// BG row col color
	if head == "BG" && len(parts) >= 4 {
		r, c, ok := coords(parts[1], parts[2])
		if !ok {
			return nil, false
		}
		return CellBackground{Row: r, Col: c, Color: Color(parts[3])}, true
	}

	// RING col row fgOuter fgInner bg size wOuter wInner
	if head == "RING" && len(parts) >= 9 {
		c, r, ok := coords(parts[1], parts[2])
		size, ok1 := atoi(parts[6])
		wOut, ok2 := atoi(parts[7])
		wIn, ok3 := atoi(parts[8])
		if !ok || !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		return RingStyle{
			Row: r, Col: c,
			Outer:      Color(parts[3]),
			Inner:      Color(parts[4]),
			Background: Color(parts[5]),
			SizePx:     size,
			OuterWidth: wOut,
			InnerWidth: wIn,
		}, true
	}

	// RINGVAL col row outer inner [text...]
	if head == "RINGVAL" && len(parts) >= 5 {
		c, r, ok := coords(parts[1], parts[2])
		outer, ok1 := atoi(parts[3])
		inner, ok2 := atoi(parts[4])
		if !ok || !ok1 || !ok2 {
			return nil, false
		}
		cmd := RingValue{
			Row: r, Col: c,
			OuterValue: ClampValue(outer),
			InnerValue: ClampValue(inner),
		}
		if len(parts) > 5 {
			cmd.CenterText = strings.Join(parts[5:], " ")
			cmd.HasText = true
		}
		return cmd, true
	}

	// RINGSET col row outer inner fgOuter fgInner bg size wOuter wInner
	if head == "RINGSET" && len(parts) >= 11 {
		c, r, ok := coords(parts[1], parts[2])
		outer, ok1 := atoi(parts[3])
		inner, ok2 := atoi(parts[4])
		size, ok3 := atoi(parts[8])
		wOut, ok4 := atoi(parts[9])
		wIn, ok5 := atoi(parts[10])
		if !ok || !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return nil, false
		}
		return RingSet{
			Row: r, Col: c,
			OuterValue: ClampValue(outer),
			InnerValue: ClampValue(inner),
			Outer:      Color(parts[5]),
			Inner:      Color(parts[6]),
			Background: Color(parts[7]),
			SizePx:     size,
			OuterWidth: wOut,
			InnerWidth: wIn,
		}, true
	}

	// Implicit SET: col row fg bg [align] text...
	if len(parts) >= 5 {
		c, r, ok := coords(parts[0], parts[1])
		if !ok {
			return nil, false
		}
		cmd := SetText{
			Row: r, Col: c,
			Foreground: Color(parts[2]),
			Background: Color(parts[3]),
		}
		if align, isAlign := ParseAlign(parts[4]); isAlign && len(parts) >= 6 {
			cmd.Align = align
			cmd.Text = strings.Join(parts[5:], " ")
		} else {
			cmd.Text = strings.Join(parts[4:], " ")
		}
		return cmd, true
	}

	return nil, false
}

func atoi(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// coords parses a coordinate pair in wire order.
func coords(first, second string) (int, int, bool) {
	a, ok1 := atoi(first)
	b, ok2 := atoi(second)
	return a, b, ok1 && ok2
}

// pixelFields validates the w/h[/frame] tail of the legacy bar forms. The
// values themselves are discarded — bar geometry is fixed — but a malformed
// integer still rejects the line.
func pixelFields(fields []string) bool {
	for _, f := range fields {
		if _, ok := atoi(f); !ok {
			return false
		}
	}
	return true
}
