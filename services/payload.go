package services

import (
	"fmt"
	"os"
	"strings"

	"EvergreenShareAPI/models"

	"github.com/h2non/filetype"
)

// PayloadBuilder assembles the outgoing payload for one post/account pair.
type PayloadBuilder struct {
	posts PostSource
}

func NewPayloadBuilder(posts PostSource) *PayloadBuilder {
	return &PayloadBuilder{posts: posts}
}

func (b *PayloadBuilder) Prepare(postID, accountID string) (*models.SharePayload, error) {
	post, err := b.posts.GetPost(postID)
	if err != nil {
		return nil, fmt.Errorf("preparing post %s: %w", postID, err)
	}

	payload := &models.SharePayload{
		PostID:    post.ID,
		AccountID: accountID,
		Content:   shareText(post),
		URL:       post.URL,
		MediaPath: post.MediaPath,
	}
	if post.MediaPath != "" {
		payload.MediaMime = sniffMime(post.MediaPath)
	}
	return payload, nil
}

func shareText(post *models.Post) string {
	text := strings.TrimSpace(post.Title)
	if text == "" {
		text = strings.TrimSpace(post.Content)
	}
	if len(text) > 280 {
		text = text[:277] + "..."
	}
	return text
}

// sniffMime detects the attachment type from its magic bytes. Detection
// failures leave the mime empty; publishers that need media decide for
// themselves.
func sniffMime(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := f.Read(head)
	if err != nil || n == 0 {
		return ""
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}
