package ports

// ConfigParser decodes raw configuration bytes into a struct.
type ConfigParser interface {
	// Parse decodes data into out, which must be a pointer.
	Parse(data []byte, out any) error
	// ParseFile reads path and decodes it into out.
	ParseFile(path string, out any) error
}
