package otbuild

// Encoding helpers. All OpenType scalars are big-endian.

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}
