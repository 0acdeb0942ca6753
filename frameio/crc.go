package frameio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/astrogo/fitsio"
	"github.com/snksoft/crc"
)

// ErrChecksum is returned when the data unit does not match its DATACRC card
var ErrChecksum = errors.New("pixel data does not match " + CRCCard)

var crcTable = crc.NewTable(crc.CRC32)

// checksum is the CRC-32 of the big-endian encoding of the stored samples,
// the same bytes the data unit holds
func checksum(data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%08x", crcTable.CalculateCRC(buf.Bytes())), nil
}

func verify(data interface{}, c fitsio.Card) error {
	want, ok := c.Value.(string)
	if !ok {
		return fmt.Errorf("%w: card is %T", ErrChecksum, c.Value)
	}
	got, err := checksum(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: header %s, data %s", ErrChecksum, want, got)
	}
	return nil
}
