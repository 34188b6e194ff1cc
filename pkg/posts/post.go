package posts

import (
	"time"

	"github.com/CreonHQ/creon/pkg/ledger"
	"github.com/CreonHQ/creon/pkg/wallet"
)

// DisclosureState tracks whether a post's content may be shown to the
// active viewer.
type DisclosureState string

const (
	StateLocked   DisclosureState = "locked"
	StatePending  DisclosureState = "pending"
	StateUnlocked DisclosureState = "unlocked"
)

// Post is the locally known view of one on-chain post. Preview marks an
// optimistic entry created at publish time that the next refresh will
// confirm or replace.
type Post struct {
	ID          string             `json:"id"`
	Author      string             `json:"author"`
	ContentType ledger.ContentType `json:"contentType"`
	Price       string             `json:"price"`
	CreatedAt   time.Time          `json:"createdAt"`
	Disclosure  DisclosureState    `json:"disclosure"`
	Preview     bool               `json:"preview,omitempty"`
}

// fromInfo builds a Post from a ledger read, resolving the initial
// disclosure state for the given viewer. Free posts start unlocked, and
// so do the viewer's own paid posts.
func fromInfo(info ledger.PostInfo, viewer string) Post {
	p := Post{
		ID:          info.ID,
		Author:      info.Author,
		ContentType: info.ContentType,
		Price:       info.Price,
		CreatedAt:   info.Timestamp,
		Disclosure:  StateLocked,
	}
	if info.ContentType == ledger.ContentFree || wallet.EqualAddresses(info.Author, viewer) {
		p.Disclosure = StateUnlocked
	}
	return p
}
