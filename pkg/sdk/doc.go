// Package vocabsearch embeds the vocabulary search engine in a Go program.
//
// The client loads a dataset of vocabulary descriptions, indexes it in memory
// and answers faceted full-text queries. Selection sets (e.g. favorites) are
// persisted to an embedded BadgerDB or to Redis/Valkey.
//
//	client, _ := vocabsearch.New(ctx,
//	    vocabsearch.WithSource("https://example.org/vocabs.json"),
//	    vocabsearch.WithBadger("data/selections"),
//	)
//	defer client.Close()
//	_, _ = client.Rebuild(ctx)
//
//	page, _ := client.Search().
//	    Term("bildung").
//	    Facet(vocabsearch.FacetEducationalLevel, "Primarstufe").
//	    SortBy("title", vocabsearch.Asc).
//	    Do(ctx)
//
//	selected, _ := client.Selection("favorites").Toggle(ctx, page.Items[0].ID)
package vocabsearch
