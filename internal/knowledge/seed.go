package knowledge

import (
	"context"
	"fmt"

	"github.com/ppiankov/brandguard/internal/embedding"
	"github.com/ppiankov/brandguard/internal/model"
)

// SeedSource marks chunks that came from the built-in fallback corpus
const SeedSource = "seed"

var seedDocs = []struct {
	id       string
	category model.Category
	text     string
}{
	{
		id:       "seed_brand_1",
		category: model.CategoryBrand,
		text: "Our brand voice is confident and approachable. We talk to readers as peers, " +
			"not as authorities. Use active voice and concrete examples, and avoid jargon " +
			"unless the audience uses it every day.",
	},
	{
		id:       "seed_brand_2",
		category: model.CategoryBrand,
		text: "Calls to action name a specific benefit. Instead of 'Learn more', say " +
			"'See how teams cut review time by 50%'. Every CTA answers the reader's question: " +
			"what is in it for me?",
	},
	{
		id:       "seed_product_1",
		category: model.CategoryProduct,
		text: "The platform helps teams manage workforce identity. Features include single sign-on, " +
			"adaptive MFA and a universal directory with integrations for existing workflows. " +
			"Over 18,000 customers trust the platform for identity management.",
	},
	{
		id:       "seed_product_2",
		category: model.CategoryProduct,
		text: "Acme Identity secures workforce access. Fortune 500 customers reported 75% reduction " +
			"in identity-related security incidents. Deploys in under a day.",
	},
}

// SeedChunks embeds the built-in fallback corpus: two brand chunks and two product chunks
func SeedChunks(ctx context.Context, embedder embedding.Embedder) ([]model.Chunk, error) {
	chunks := make([]model.Chunk, 0, len(seedDocs))
	for _, d := range seedDocs {
		vec, err := embedder.Embed(ctx, d.text)
		if err != nil {
			return nil, fmt.Errorf("embed seed chunk %s: %w", d.id, err)
		}
		chunks = append(chunks, model.Chunk{
			ID:        d.id,
			Text:      d.text,
			Source:    SeedSource,
			Category:  d.category,
			Embedding: vec,
		})
	}
	return chunks, nil
}

// SeedIfEmpty loads the fallback corpus into store when it holds no chunks.
// It reports whether seeding happened.
func SeedIfEmpty(ctx context.Context, store *Store) (bool, error) {
	if store.Len() > 0 {
		return false, nil
	}
	chunks, err := SeedChunks(ctx, store.Embedder())
	if err != nil {
		return false, err
	}
	if _, err := store.Add(chunks...); err != nil {
		return false, err
	}
	return true, nil
}
