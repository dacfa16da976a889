package integrations

// ImageData is one downloaded page image.
type ImageData struct {
	Content     []byte
	ContentType string
	Index       int
}

// CoverData is a cover image for the generated book.
type CoverData struct {
	Content     []byte
	ContentType string
}

// Processor rewrites page images before they are packed.
type Processor interface {
	Process(img ImageData) (ImageData, error)
}
