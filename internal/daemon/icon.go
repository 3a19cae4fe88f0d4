package daemon

import (
	"bytes"
	"encoding/binary"
)

const iconSize = 16

// getClockIcon renders a 16x16 32-bit clock face as an .ico file
func getClockIcon() []byte {
	const (
		pixelBytes = iconSize * iconSize * 4
		maskBytes  = iconSize * 4 // 1 bpp rows padded to 32 bits
		headerSize = 6 + 16
		dibSize    = 40 + pixelBytes + maskBytes
	)

	var buf bytes.Buffer
	le := func(v interface{}) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	// ICONDIR
	le(uint16(0))
	le(uint16(1))
	le(uint16(1))

	// ICONDIRENTRY
	buf.WriteByte(iconSize)
	buf.WriteByte(iconSize)
	buf.WriteByte(0)
	buf.WriteByte(0)
	le(uint16(1))
	le(uint16(32))
	le(uint32(dibSize))
	le(uint32(headerSize))

	// BITMAPINFOHEADER, height doubled for the AND mask
	le(uint32(40))
	le(int32(iconSize))
	le(int32(iconSize * 2))
	le(uint16(1))
	le(uint16(32))
	le(uint32(0))
	le(uint32(pixelBytes + maskBytes))
	le(int32(0))
	le(int32(0))
	le(uint32(0))
	le(uint32(0))

	// BGRA rows, bottom-up
	for y := iconSize - 1; y >= 0; y-- {
		for x := 0; x < iconSize; x++ {
			buf.Write(clockPixel(x, y))
		}
	}
	buf.Write(make([]byte, maskBytes))

	return buf.Bytes()
}

func clockPixel(x, y int) []byte {
	const c = iconSize/2 - 1 // centre
	dx, dy := x-c, y-c
	r2 := dx*dx + dy*dy

	switch {
	case r2 > 49:
		return []byte{0, 0, 0, 0}
	case r2 > 36:
		return []byte{0x40, 0x40, 0x40, 0xff} // rim
	case dx == 0 && dy <= 0 && dy >= -5:
		return []byte{0x20, 0x20, 0x20, 0xff} // minute hand
	case dy == 0 && dx >= 0 && dx <= 3:
		return []byte{0x20, 0x20, 0xc0, 0xff} // hour hand
	default:
		return []byte{0xff, 0xff, 0xff, 0xff}
	}
}
