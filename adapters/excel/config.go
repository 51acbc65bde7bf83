package excel

// Config controls how raw files are read
type Config struct {
	// Comma is the field delimiter for delimited text
	Comma rune
	// Sheet selects a worksheet by name; empty means the first sheet
	Sheet string
	// MaxLineBytes bounds a single line of plain text
	MaxLineBytes int
}

// DefaultConfig returns the reader defaults
func DefaultConfig() Config {
	return Config{
		Comma:        ',',
		MaxLineBytes: 16 * 1024 * 1024,
	}
}
