package domain

// CollectionKind identifies one of the two logical item sets fetched from
// the user's vault.
type CollectionKind string

const (
	// CollectionGroups is the chat-group collection.
	CollectionGroups CollectionKind = "groups"
	// CollectionMessages is the chat-message collection.
	CollectionMessages CollectionKind = "messages"
)

// Vault schema identifiers. The exact URLs are part of the upstream wire
// contract and must not change.
const (
	groupSchemaURL   = "https://common.schemas.verida.io/social/chat/group/v0.1.0/schema.json"
	messageSchemaURL = "https://common.schemas.verida.io/social/chat/message/v0.1.0/schema.json"
)

// SchemaURL returns the vault datastore schema identifier for the kind.
func (k CollectionKind) SchemaURL() string {
	if k == CollectionGroups {
		return groupSchemaURL
	}
	return messageSchemaURL
}

// SchemaFragment returns the substring used to attribute universal-search
// hits to this collection.
func (k CollectionKind) SchemaFragment() string {
	if k == CollectionGroups {
		return "chat/group"
	}
	return "chat/message"
}

// Item is one group or message as returned by the vault. No schema is
// assumed beyond "may contain string-valued fields at any key or one level
// of nesting".
type Item map[string]any

// PlaceholderItems synthesizes n empty items, used when only a count is
// known and raw items are not required downstream.
func PlaceholderItems(n int) []Item {
	if n <= 0 {
		return []Item{}
	}
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{}
	}
	return items
}

// ScoreResult is the final outcome of one scoring invocation.
type ScoreResult struct {
	Score    float64
	Title    string
	DID      string
	Groups   int
	Messages int
	Keywords KeywordReport
	HasData  bool
}
