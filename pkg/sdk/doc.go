// Package dupdex provides an embedded Go client for the dupdex duplicate
// detection engine backed by Redis.
//
// The client wires the full detection stack in-process: item storage,
// embedding generation, semantic search and the three-stage duplicate
// cascade (exact, structural, semantic).
//
//	client, _ := dupdex.New(ctx,
//	    dupdex.WithRedis("localhost:6379", ""),
//	    dupdex.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	item, _ := client.Items("user-1").Create(ctx, "Meeting notes ...")
//	report := client.Duplicates("user-1").Check(ctx, "draft", "Meeting notes ...")
//	hits, _ := client.Search("user-1").Query(ctx, "quarterly planning", 0.8, 10)
//
// All services are scoped to a single owner; items of different owners
// never see each other in search or dedup results.
package dupdex
