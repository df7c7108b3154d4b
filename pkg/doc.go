// Package pkg provides the core libraries for impactgraph.
//
// # Overview
//
// impactgraph keeps a deduplicated database of projects identified by their
// social account, and shows who follows whom among them as a filtered,
// force-directed graph. The pkg directory is organized into three areas:
//
//  1. Building the database: [handle], [integrations], [resolve], [store],
//     [importer]
//  2. Showing the database: [graph], [graph/transform], [layout], [render],
//     [pipeline]
//  3. Shared infrastructure: [cache], [config], [errors], [observability],
//     [buildinfo], [entity]
//
// # Architecture
//
// The data flow through impactgraph:
//
//	CSV export / single project
//	         ↓
//	    [importer] (parse rows, insert each independently)
//	         ↓
//	    [store] (normalize handle, resolve, dedupe by id, persist)
//	         ↓
//	    [pipeline] (build graph → k-core → spring layout → attributes)
//	         ↓
//	    Cytoscape elements / SVG / PDF / PNG
//
// # Quick Start
//
//	c, _ := cache.NewFileCache(dir)
//	client := twitter.NewClient(c, twitter.Options{Token: token})
//	db := store.New(
//	    store.NewFileBackend("impactgraph.json", store.FileOptions{}),
//	    resolve.New(client, resolve.Options{}),
//	    store.Options{Logger: logger},
//	)
//	defer db.Close()
//
//	// 1. Import projects
//	projects, _, _ := importer.ReadCSV(f)
//	summary := importer.New(db, logger).Run(ctx, projects)
//
//	// 2. Compute display elements
//	result, _ := pipeline.NewRunner(db, c, nil, logger).Elements(ctx, pipeline.Options{K: 5})
//
// # Testing
//
//	go test ./pkg/...
//
// The mongo backend tests need a server and are skipped unless
// IMPACTGRAPH_MONGO_URI is set.
package pkg
