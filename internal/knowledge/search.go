package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philippgille/chromem-go"

	"github.com/vozlegal/intake/internal/errors"
)

// EmbedFunc turns text into an embedding vector, usually backed by the
// model router.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Index is an optional in-memory semantic index over the knowledge base.
// Embeddings are provided externally; chromem only stores and queries.
type Index struct {
	collection *chromem.Collection
	embed      EmbedFunc
	count      int
}

// NewIndex embeds every entry in the base and stores it. The index is
// immutable after construction.
func NewIndex(ctx context.Context, base *Base, embed EmbedFunc) (*Index, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection("knowledge", nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create knowledge collection")
	}

	idx := &Index{collection: collection, embed: embed}

	for _, agentType := range base.Types() {
		for _, entry := range base.Get(agentType) {
			vector, err := embed(ctx, entry.Topic+": "+entry.Content)
			if err != nil {
				return nil, errors.Wrap(err, "embed knowledge entry")
			}

			doc := chromem.Document{
				ID:        fmt.Sprintf("%s/%s", agentType, entry.Topic),
				Metadata:  map[string]string{"agent": string(agentType), "topic": entry.Topic},
				Embedding: vector,
				Content:   entry.Content,
			}
			if err := collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
				return nil, errors.Wrap(err, "index knowledge entry")
			}
			idx.count++
		}
	}

	slog.Info("Knowledge index built", "entries", idx.count)
	return idx, nil
}

// Search returns the entries most similar to the query, best first.
func (i *Index) Search(ctx context.Context, query string, topK int) ([]Entry, error) {
	if i.count == 0 {
		return nil, nil
	}
	if topK > i.count {
		topK = i.count
	}

	vector, err := i.embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	results, err := i.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "query knowledge index")
	}

	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, Entry{Topic: r.Metadata["topic"], Content: r.Content})
	}
	return entries, nil
}
