package domain

import (
	"encoding/json"
	"fmt"
)

// ContentElementType discriminates the two element variants of a view.
type ContentElementType string

const (
	// ContentElementText is a plain text fragment.
	ContentElementText ContentElementType = "text"

	// ContentElementImage is an image referenced by URL.
	ContentElementImage ContentElementType = "image"
)

// ContentElement is a tagged union of a text fragment or an image reference.
// It serializes as {"type":"text","text":...} or {"type":"image","url":...}.
type ContentElement struct {
	Type ContentElementType `json:"type"`
	Text string             `json:"text,omitempty"`
	URL  string             `json:"url,omitempty"`
}

// TextElement builds a text content element.
func TextElement(text string) ContentElement {
	return ContentElement{Type: ContentElementText, Text: text}
}

// ImageElement builds an image content element.
func ImageElement(url string) ContentElement {
	return ContentElement{Type: ContentElementImage, URL: url}
}

// Validate checks that the element's discriminator matches its payload.
func (e ContentElement) Validate() error {
	switch e.Type {
	case ContentElementText:
		if e.Text == "" {
			return fmt.Errorf("%w: text element without text", ErrInvalidContent)
		}
	case ContentElementImage:
		if e.URL == "" {
			return fmt.Errorf("%w: image element without url", ErrInvalidContent)
		}
	default:
		return fmt.Errorf("%w: unknown element type %q", ErrInvalidContent, e.Type)
	}
	return nil
}

// View is an ordered sequence of content elements making up one side of a
// card, or its hint.
type View []ContentElement

// Validate checks every element of the view.
func (v View) Validate() error {
	for i, e := range v {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CardContent is the optional content payload of a default card: a hint and
// the front/back views. Any of the three may be empty.
type CardContent struct {
	Hint  View `json:"hint,omitempty"`
	Front View `json:"front,omitempty"`
	Back  View `json:"back,omitempty"`
}

// Validate checks all three views.
func (c *CardContent) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Hint.Validate(); err != nil {
		return fmt.Errorf("hint: %w", err)
	}
	if err := c.Front.Validate(); err != nil {
		return fmt.Errorf("front: %w", err)
	}
	if err := c.Back.Validate(); err != nil {
		return fmt.Errorf("back: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the content, or nil for nil content.
func (c *CardContent) Clone() *CardContent {
	if c == nil {
		return nil
	}
	clone := &CardContent{
		Hint:  append(View(nil), c.Hint...),
		Front: append(View(nil), c.Front...),
		Back:  append(View(nil), c.Back...),
	}
	return clone
}

// MarshalContent serializes content for storage. Nil content becomes nil.
func MarshalContent(c *CardContent) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return raw, nil
}

// UnmarshalContent deserializes stored content. Empty input yields nil.
func UnmarshalContent(raw []byte) (*CardContent, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var c CardContent
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return &c, nil
}
