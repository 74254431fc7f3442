package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentElementValidate(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		element ContentElement
		wantErr bool
	}{
		{"text element", TextElement("hello"), false},
		{"image element", ImageElement("https://example.com/a.png"), false},
		{"text element without text", ContentElement{Type: ContentElementText}, true},
		{"image element without url", ContentElement{Type: ContentElementImage}, true},
		{"unknown type", ContentElement{Type: "video", URL: "x"}, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.element.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidContent)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestContentElementWireShape(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(TextElement("Paris"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","text":"Paris"}`, string(raw))

	raw, err = json.Marshal(ImageElement("https://example.com/p.jpg"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"image","url":"https://example.com/p.jpg"}`, string(raw))
}

func TestCardContentValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, (*CardContent)(nil).Validate())

	valid := &CardContent{
		Front: View{TextElement("front")},
		Back:  View{TextElement("back")},
	}
	require.NoError(t, valid.Validate())

	broken := &CardContent{Back: View{{Type: ContentElementText}}}
	require.ErrorIs(t, broken.Validate(), ErrInvalidContent)
}

func TestCardContentClone(t *testing.T) {
	t.Parallel()
	assert.Nil(t, (*CardContent)(nil).Clone())

	original := &CardContent{
		Hint:  View{TextElement("hint")},
		Front: View{TextElement("front")},
		Back:  View{TextElement("back"), ImageElement("https://example.com/b.png")},
	}
	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Back[0] = TextElement("changed")
	assert.Equal(t, "back", original.Back[0].Text)
}

func TestMarshalContentRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := MarshalContent(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	parsed, err := UnmarshalContent(nil)
	require.NoError(t, err)
	assert.Nil(t, parsed)

	original := &CardContent{
		Hint:  View{TextElement("capital")},
		Front: View{TextElement("France?")},
		Back:  View{TextElement("Paris")},
	}
	raw, err = MarshalContent(original)
	require.NoError(t, err)

	parsed, err = UnmarshalContent(raw)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestUnmarshalContentRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := UnmarshalContent([]byte("{not json"))
	require.ErrorIs(t, err, ErrInvalidContent)
}
