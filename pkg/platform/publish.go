package platform

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/access"
	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/ledger"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/posts"
)

// PublishRequest is the transient value object a publish call consumes.
type PublishRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	MediaURL  string `json:"mediaUrl,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Paid      bool   `json:"paid"`
	Price     string `json:"price,omitempty"`
}

// PostMetadata is the document pinned alongside a post's content. Its
// identifier travels on-chain inside the post data.
type PostMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Timestamp   int64  `json:"timestamp"`
	ContentHash string `json:"contentHash"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	MediaType   string `json:"mediaType,omitempty"`
	Sealed      bool   `json:"sealed,omitempty"`
	SealTag     string `json:"sealTag,omitempty"`
}

// postData is the JSON string written on-chain at publish time.
type postData struct {
	ContentHash  string `json:"contentHash"`
	MetadataHash string `json:"metadataHash"`
}

// DisclosedContent is the resolved result of a disclosure: the raw
// record from the access engine plus the fetched plaintext body and
// metadata.
type DisclosedContent struct {
	Record   access.ContentRecord `json:"record"`
	Body     string               `json:"body"`
	Metadata PostMetadata         `json:"metadata"`
}

// Publish pins the post's content and metadata, publishes the resulting
// references on-chain, and optimistically inserts the new post into the
// local sequence while a background refresh confirms it.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (posts.Post, error) {
	if req.Body == "" {
		return posts.Post{}, errors.NewValidationError("body", "must not be empty", req.Body)
	}

	gw := c.currentGateway()
	if gw == nil {
		return posts.Post{}, errors.NewGatewayUnavailableError("no active session")
	}
	session := gw.Session()

	payload := []byte(req.Body)
	sealed := false
	sealTag := ""
	if req.Paid && c.sealer != nil {
		sealTag = uuid.NewString()
		var err error
		payload, err = c.sealer.Seal(sealTag, payload)
		if err != nil {
			return posts.Post{}, err
		}
		sealed = true
	}

	contentHash, err := c.pinner.PinContent(ctx, "content", payload)
	if err != nil {
		return posts.Post{}, err
	}

	now := time.Now().UTC()
	meta := PostMetadata{
		Title:       req.Title,
		Author:      session.Account,
		Timestamp:   now.Unix(),
		ContentHash: contentHash,
		MediaURL:    req.MediaURL,
		MediaType:   req.MediaType,
		Sealed:      sealed,
		SealTag:     sealTag,
	}
	metadataHash, err := c.pinner.PinJSON(ctx, "metadata", meta)
	if err != nil {
		return posts.Post{}, err
	}

	data, err := json.Marshal(postData{ContentHash: contentHash, MetadataHash: metadataHash})
	if err != nil {
		return posts.Post{}, errors.Wrap(err, "failed to encode post data")
	}

	var (
		postID      string
		contentType = ledger.ContentFree
		price       = "0"
	)
	if req.Paid {
		contentType = ledger.ContentPaid
		price = req.Price
		postID, err = gw.PublishPaid(ctx, string(data), req.Price)
	} else {
		postID, err = gw.PublishFree(ctx, string(data))
	}
	if err != nil {
		return posts.Post{}, err
	}

	preview := c.sync.ApplyPublished(ledger.PostInfo{
		ID:          postID,
		Author:      session.Account,
		ContentType: contentType,
		Price:       price,
		Timestamp:   now,
	})
	c.logger.ComponentInfo(logging.ComponentClient, "post published",
		zap.String("post", postID),
		zap.String("type", contentType.String()),
	)
	c.notify(Event{Type: EventPosts, Payload: c.sync.Posts()})
	go c.backgroundRefresh()
	return preview, nil
}

// Disclose runs the access check for a post and resolves the disclosed
// reference into plaintext content from storage.
func (c *Client) Disclose(ctx context.Context, postID string, force bool) (DisclosedContent, error) {
	rec, err := c.engine.Disclose(ctx, postID, force)
	if err != nil {
		return DisclosedContent{}, err
	}
	c.notifyDisclosure(postID)

	var data postData
	if err := json.Unmarshal([]byte(rec.Content), &data); err != nil {
		return DisclosedContent{}, errors.Wrap(err, "malformed post data")
	}

	metaBytes, err := c.pinner.Fetch(ctx, data.MetadataHash)
	if err != nil {
		return DisclosedContent{}, err
	}
	var meta PostMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return DisclosedContent{}, errors.Wrap(err, "malformed post metadata")
	}

	body, err := c.pinner.Fetch(ctx, data.ContentHash)
	if err != nil {
		return DisclosedContent{}, err
	}
	if meta.Sealed {
		if c.sealer == nil {
			return DisclosedContent{}, errors.New("post is sealed but no seal key is configured")
		}
		body, err = c.sealer.Open(meta.SealTag, body)
		if err != nil {
			return DisclosedContent{}, err
		}
	}

	return DisclosedContent{Record: rec, Body: string(body), Metadata: meta}, nil
}

func (c *Client) notifyDisclosure(postID string) {
	if post, err := c.sync.Get(postID); err == nil {
		c.notify(Event{Type: EventDisclosure, Payload: post})
	}
}
