package config

// TextDocument is a document's text and and metadata.
type TextDocument struct {
	name string
	uri  string
	text string
}

// NewTextDocument creates a TextDocument for a client URI. The document is
// named when it is stored.
func NewTextDocument(uri, text string) TextDocument {
	return TextDocument{
		uri:  uri,
		text: text,
	}
}

// URI returns the URI for the text document.
func (td *TextDocument) URI() string {
	return td.uri
}

// Name returns the source unit name of the text document.
func (td *TextDocument) Name() string {
	return td.name
}

func (td *TextDocument) String() string {
	return td.text
}
