package scan

// LogicalBlocks converts a count of 512-byte storage blocks to 1024-byte
// logical blocks, rounding up.
func LogicalBlocks(raw int64) int64 {
	return raw/2 + raw%2
}

// sizeBlocks is the number of 512-byte blocks needed to hold size bytes.
func sizeBlocks(size int64) int64 {
	return (size + 511) / 512
}
