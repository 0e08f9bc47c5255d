package core

import (
	"bytes"
	"encoding/base64"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	m := &EmailMessage{
		To:           []mail.Address{{Address: "editor@test.ilm"}},
		TemplateName: "content_review",
		TemplateData: map[string]string{"Title": "Adab of seeking knowledge", "AuthorName": "Yusuf", "ContentID": "42"},
	}
	require.NoError(t, m.Render())
	assert.Contains(t, m.TextContent, `"Adab of seeking knowledge" by Yusuf was submitted for review.`)
	assert.Contains(t, m.TextContent, "/content/42")
	assert.NotEmpty(t, m.HTMLContent)
	assert.True(t, m.HasRecipients())
	assert.True(t, m.HasContent())

	plain := &EmailMessage{BodyStr: "hello"}
	require.NoError(t, plain.Render())
	assert.Equal(t, "hello", plain.TextContent)
	assert.Empty(t, plain.HTMLContent)

	unknown := &EmailMessage{TemplateName: "nope"}
	require.NoError(t, unknown.Render())
	assert.False(t, unknown.HasContent())
}

func TestEmailMessage_Attach(t *testing.T) {
	m := &EmailMessage{}
	require.NoError(t, m.Attach(strings.NewReader("bismillah"), "note.txt"))
	require.NoError(t, m.Attach(bytes.NewReader([]byte{0x25, 0x50, 0x44, 0x46}), "book.pdf", "application/pdf"))

	require.True(t, m.HasAttachments())
	require.Len(t, m.Attachments, 2)
	assert.Equal(t, "note.txt", m.Attachments[0].Filename)
	assert.Equal(t, "text/plain; charset=utf-8", m.Attachments[0].ContentType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("bismillah")), m.Attachments[0].Content.String())
	assert.Equal(t, "application/pdf", m.Attachments[1].ContentType)
}
