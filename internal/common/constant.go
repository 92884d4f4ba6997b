package common

// RepoTable is the relational table holding repository records.
const RepoTable = "repo"

// CollectionPath is the external address of the whole repo collection.
// Single records are addressed as CollectionPath + "/{id}".
const CollectionPath = "repos"

// Defaults applied when a repo is created without the corresponding field.
const (
	DefaultPriority = 10
	DefaultMaxAge   = 0
	DefaultVersion  = 0
)
