package raindrop

// CollectionRef is the nested collection reference shape the Raindrop.io API
// expects in request bodies and returns inside bookmark records.
type CollectionRef struct {
	ID int64 `json:"$id"`
}

// Bookmark is a single raindrop: a saved link with its metadata.
type Bookmark struct {
	ID         int64          `json:"_id"`
	Link       string         `json:"link"`
	Title      string         `json:"title,omitempty"`
	Excerpt    string         `json:"excerpt,omitempty"`
	Note       string         `json:"note,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Collection *CollectionRef `json:"collection,omitempty"`
	Important  bool           `json:"important,omitempty"`
	Created    string         `json:"created,omitempty"`
	LastUpdate string         `json:"lastUpdate,omitempty"`
}

// Collection is a named, optionally nested folder grouping bookmarks.
type Collection struct {
	ID          int64          `json:"_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Public      bool           `json:"public"`
	View        string         `json:"view,omitempty"`
	Parent      *CollectionRef `json:"parent,omitempty"`
	Count       int            `json:"count"`
}

// Tag is a server-side aggregate: the tag name with its usage count.
type Tag struct {
	Name  string `json:"_id"`
	Count int    `json:"count"`
}

// Collection view modes accepted by the API.
const (
	ViewList    = "list"
	ViewSimple  = "simple"
	ViewGrid    = "grid"
	ViewMasonry = "masonry"
)

// Sort keys accepted by SearchBookmarks.
const (
	SortNewest     = "-created"
	SortOldest     = "created"
	SortManual     = "sort"
	SortTitleAsc   = "title"
	SortTitleDesc  = "-title"
	SortDomainAsc  = "domain"
	SortDomainDesc = "-domain"
)

// Well-known collection ids. Zero doubles as the "all collections" search
// scope; -1 is the unsorted scope on search and Trash on create.
const (
	CollectionUnsorted int64 = 0
	CollectionTrash    int64 = -1
)

// SearchFilter narrows a bookmark search. The zero value searches everything:
// Collection 0 means "all collections". Only set fields become query
// parameters; an unset field is never sent as an explicit empty value.
type SearchFilter struct {
	Query      string
	Collection int64
	Tags       []string
	Sort       string
	Page       int
	PerPage    int // server caps the effective value at 50
}

// SearchResult is one page of matching bookmarks plus the total match count.
type SearchResult struct {
	Items      []Bookmark `json:"items"`
	TotalCount int        `json:"count"`
}

// CreateBookmarkParams describes a bookmark to create. Link is the only
// required field; a Collection of 0 is left to the server default (Unsorted).
type CreateBookmarkParams struct {
	Link       string
	Title      string
	Excerpt    string
	Note       string
	Tags       []string
	Collection int64
	Important  bool
}

// UpdateBookmarkParams is a partial update: nil fields are not sent and never
// overwrite remote state. A non-nil field is always sent, including explicit
// zero values (Collection 0, Important false).
type UpdateBookmarkParams struct {
	Link       *string
	Title      *string
	Excerpt    *string
	Note       *string
	Tags       *[]string
	Collection *int64
	Important  *bool
}

// CreateCollectionParams describes a collection to create. Title is required;
// a Parent of 0 creates a root collection.
type CreateCollectionParams struct {
	Title       string
	Description string
	Public      bool
	View        string
	Parent      int64
}

// UpdateCollectionParams is a partial update with the same nil-means-omit
// semantics as UpdateBookmarkParams.
type UpdateCollectionParams struct {
	Title       *string
	Description *string
	Public      *bool
	View        *string
	Parent      *int64
}
