package domain

// Part is one piece of content returned by a generator. It is one of TextPart, InlineImagePart or OtherPart.
type Part interface {
	isPart()
}

type TextPart struct {
	Text string
}

// InlineImagePart carries image bytes embedded in the response. Base64 is set when Data is still
// base64 text rather than raw image bytes.
type InlineImagePart struct {
	Data     []byte
	MIMEType string
	Base64   bool
}

type OtherPart struct {
	Kind string
}

func (TextPart) isPart()        {}
func (InlineImagePart) isPart() {}
func (OtherPart) isPart()       {}

// FirstInlineImage returns the first inline image in parts, in order.
func FirstInlineImage(parts []Part) (InlineImagePart, bool) {
	for _, p := range parts {
		if img, ok := p.(InlineImagePart); ok && len(img.Data) > 0 {
			return img, true
		}
	}

	return InlineImagePart{}, false
}
