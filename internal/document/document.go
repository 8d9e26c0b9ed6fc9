package document

// Document is the extraction result for one uploaded agreement file.
type Document struct {
	Title  string // From metadata or filename
	Format string // "pdf", "docx", "xlsx", ...
	Text   string // Full extracted text

	// Structural metadata; zero when the format has no such notion.
	PageCount      int
	ParagraphCount int
	TableCount     int
	SheetCount     int
}

// Empty reports whether extraction yielded no usable text.
func (d *Document) Empty() bool {
	if d == nil {
		return true
	}
	for _, r := range d.Text {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' && r != '\f' {
			return false
		}
	}
	return true
}
