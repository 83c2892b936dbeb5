package onewire

// CRC8 computes the Dallas/Maxim 1-Wire CRC (polynomial x^8+x^5+x^4+1,
// reflected, zero seed) over data
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = CRC8Update(crc, b)
	}
	return crc
}

// CRC8Update folds one byte into crc
func CRC8Update(crc, b byte) byte {
	crc ^= b
	for i := 0; i < 8; i++ {
		if crc&0x01 != 0 {
			crc = (crc >> 1) ^ 0x8C
		} else {
			crc >>= 1
		}
	}
	return crc
}
