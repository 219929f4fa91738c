package mcp

// Tool names, in catalogue order.
const (
	toolGetBookmark      = "get-bookmark"
	toolSearchBookmarks  = "search-bookmarks"
	toolCreateBookmark   = "create-bookmark"
	toolUpdateBookmark   = "update-bookmark"
	toolDeleteBookmark   = "delete-bookmark"
	toolListCollections  = "list-collections"
	toolGetCollection    = "get-collection"
	toolCreateCollection = "create-collection"
	toolUpdateCollection = "update-collection"
	toolDeleteCollection = "delete-collection"
	toolListTags         = "list-tags"
	toolRenameTag        = "rename-tag"
	toolDeleteTag        = "delete-tag"
	toolGetUser          = "get-user"
)

func toolNames() []string {
	return []string{
		toolGetBookmark, toolSearchBookmarks, toolCreateBookmark,
		toolUpdateBookmark, toolDeleteBookmark, toolListCollections,
		toolGetCollection, toolCreateCollection, toolUpdateCollection,
		toolDeleteCollection, toolListTags, toolRenameTag, toolDeleteTag,
		toolGetUser,
	}
}

// toolDefinitions is the static catalogue returned by tools/list. The schemas
// document the contract for callers; the dispatcher does not re-derive
// validation from them.
func toolDefinitions() []map[string]interface{} {
	idProp := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc}
	}
	strProp := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	boolProp := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "boolean", "description": desc}
	}
	tagsProp := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": desc,
		}
	}
	viewProp := map[string]interface{}{
		"type":        "string",
		"enum":        []string{"list", "simple", "grid", "masonry"},
		"description": "Collection view mode",
	}
	sortProp := map[string]interface{}{
		"type":        "string",
		"enum":        []string{"-created", "created", "sort", "title", "-title", "domain", "-domain"},
		"description": "Sort order (-created = newest first)",
	}

	return []map[string]interface{}{
		{
			"name":        toolGetBookmark,
			"description": "Get a single bookmark by its id.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idProp("Bookmark id"),
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        toolSearchBookmarks,
			"description": "Search bookmarks. All filters are optional; with no filters the newest bookmarks across all collections are returned.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query":      strProp("Free-text search query"),
					"collection": idProp("Collection scope: 0 = all collections (default), -1 = Unsorted, else a specific collection id"),
					"tags":       tagsProp("Only return bookmarks carrying all of these tags"),
					"sort":       sortProp,
					"page":       idProp("Page number, 0-indexed"),
					"perPage":    idProp("Results per page (server caps at 50)"),
				},
			},
		},
		{
			"name":        toolCreateBookmark,
			"description": "Create a bookmark. Only the link is required; Raindrop.io auto-parses title and metadata from the page.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"link":       strProp("URL to bookmark"),
					"title":      strProp("Title (otherwise parsed from the page)"),
					"excerpt":    strProp("Short excerpt or description"),
					"note":       strProp("Personal note"),
					"tags":       tagsProp("Tags to attach"),
					"collection": idProp("Target collection id (omit or 0 for Unsorted)"),
					"important":  boolProp("Mark as favorite"),
				},
				"required": []string{"link"},
			},
		},
		{
			"name":        toolUpdateBookmark,
			"description": "Update a bookmark. Only the provided fields are changed; omitted fields keep their current value.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":         idProp("Bookmark id"),
					"link":       strProp("New URL"),
					"title":      strProp("New title"),
					"excerpt":    strProp("New excerpt"),
					"note":       strProp("New note"),
					"tags":       tagsProp("New tag set (replaces all existing tags)"),
					"collection": idProp("Move to this collection id (0 = Unsorted)"),
					"important":  boolProp("Favorite flag"),
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        toolDeleteBookmark,
			"description": "Delete a bookmark by its id.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idProp("Bookmark id"),
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        toolListCollections,
			"description": "List all collections.",
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			"name":        toolGetCollection,
			"description": "Get a single collection by its id.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idProp("Collection id"),
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        toolCreateCollection,
			"description": "Create a collection. Title is required.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":       strProp("Collection title"),
					"description": strProp("Collection description"),
					"public":      boolProp("Make the collection publicly visible"),
					"view":        viewProp,
					"parent":      idProp("Parent collection id for nesting"),
				},
				"required": []string{"title"},
			},
		},
		{
			"name":        toolUpdateCollection,
			"description": "Update a collection. Only the provided fields are changed.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":          idProp("Collection id"),
					"title":       strProp("New title"),
					"description": strProp("New description"),
					"public":      boolProp("Public visibility"),
					"view":        viewProp,
					"parent":      idProp("New parent collection id"),
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        toolDeleteCollection,
			"description": "Delete a collection. Its bookmarks are moved to Unsorted, not deleted.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idProp("Collection id"),
				},
				"required": []string{"id"},
			},
		},
		{
			"name":        toolListTags,
			"description": "List all tags with their usage counts.",
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			"name":        toolRenameTag,
			"description": "Rename a tag across every bookmark.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"oldName": strProp("Current tag name"),
					"newName": strProp("New tag name"),
				},
				"required": []string{"oldName", "newName"},
			},
		},
		{
			"name":        toolDeleteTag,
			"description": "Remove a tag from every bookmark.",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": strProp("Tag name to remove"),
				},
				"required": []string{"name"},
			},
		},
		{
			"name":        toolGetUser,
			"description": "Get the authenticated Raindrop.io account details.",
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
