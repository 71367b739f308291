package knowledge

// defaultEntries is the built-in knowledge table used when the store is
// opened with seeding enabled and the table is empty.
var defaultEntries = []Entry{
	// Programming
	{
		Category: CategoryProgramming,
		Title:    "Caching strategies",
		Content:  "Caching in TypeScript or Go services usually starts with an in-memory map guarded by a TTL. Memoize pure functions, prefer LRU eviction for bounded caches, and invalidate on write rather than on read to avoid serving stale data.",
		Topics:   []string{"caching", "performance", "typescript"},
	},
	{
		Category: CategoryProgramming,
		Title:    "Error handling",
		Content:  "Wrap errors with context at each layer and decide once, at the boundary, whether to log or return. Sentinel errors are for callers that branch; everything else should be an opaque wrapped error.",
		Topics:   []string{"errors", "golang"},
	},
	{
		Category: CategoryProgramming,
		Title:    "Concurrency basics",
		Content:  "Share memory by communicating: prefer channels for hand-off and mutexes for guarding state. Every goroutine needs a defined exit path, usually a context cancellation.",
		Topics:   []string{"concurrency", "goroutines"},
	},
	{
		Category: CategoryProgramming,
		Title:    "Testing pyramid",
		Content:  "Keep most tests at the unit level with table-driven cases, a thinner layer of component tests with real collaborators, and a handful of end-to-end scenarios that exercise the full pipeline.",
		Topics:   []string{"testing"},
	},
	{
		Category: CategoryProgramming,
		Title:    "API versioning",
		Content:  "Version at the surface, not the core: additive changes need no version bump, breaking changes get a new major path, and deprecations ship with a sunset date.",
		Topics:   []string{"api", "compatibility"},
	},

	// Design
	{
		Category: CategoryDesign,
		Title:    "Interface segregation",
		Content:  "Accept interfaces, return structs. Define interfaces where they are consumed, keep them to one or two methods, and let implementations live far from their consumers.",
		Topics:   []string{"architecture", "interfaces"},
	},
	{
		Category: CategoryDesign,
		Title:    "Pipeline architecture",
		Content:  "Linear pipelines with typed hand-off contracts between stages are easier to reason about than event soups. Fan out inside a stage, fan back in before the next one.",
		Topics:   []string{"architecture", "pipeline"},
	},
	{
		Category: CategoryDesign,
		Title:    "Dependency injection",
		Content:  "Construct dependencies explicitly at the composition root and pass them down. Module-level singletons make tests order-dependent and hide lifecycle bugs.",
		Topics:   []string{"architecture", "testing"},
	},

	// Data
	{
		Category: CategoryData,
		Title:    "Index selection",
		Content:  "Index the columns your queries filter and sort by, in that order. A btree index serves range scans; a hash index only ever serves equality.",
		Topics:   []string{"databases", "performance"},
	},
	{
		Category: CategoryData,
		Title:    "Schema migrations",
		Content:  "Make every migration forward-only and reversible by a new migration, never by editing history. Expand, migrate, contract: add the new column, backfill, then drop the old one.",
		Topics:   []string{"databases", "migrations"},
	},
	{
		Category: CategoryData,
		Title:    "Data retention",
		Content:  "Decide retention per table up front: transcript-style data is bounded and evicted, derived aggregates are rebuilt, and audit data is append-only with archival.",
		Topics:   []string{"databases", "retention"},
	},
}
