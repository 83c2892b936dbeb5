package protocol

// CRC16Update folds one byte into a running CRC-16/CCITT value.
// This matches avr-libc's _crc_ccitt_update used by the original firmware.
func CRC16Update(crc uint16, b byte) uint16 {
	b = b ^ uint8(crc&0xFF)
	b = b ^ (b << 4)
	b16 := uint16(b)
	return (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
}

// CRC16 calculates the CRC over data starting from seed
func CRC16(seed uint16, data []byte) uint16 {
	crc := seed
	for _, b := range data {
		crc = CRC16Update(crc, b)
	}
	return crc
}

// frameChecksum computes the checksum carried in a frame footer.
// The seed already covers the prefix, so only type, length and payload
// are folded in.
func frameChecksum(msgType uint16, payload []byte) uint16 {
	crc := uint16(PrefixCRC)
	crc = CRC16Update(crc, uint8(msgType&0xFF))
	crc = CRC16Update(crc, uint8(msgType>>8))
	n := uint16(len(payload))
	crc = CRC16Update(crc, uint8(n&0xFF))
	crc = CRC16Update(crc, uint8(n>>8))
	return CRC16(crc, payload)
}
