package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"raindrop-mcp/internal/raindrop"
)

// Per-tool argument structures. The raw argument bag is parsed into exactly
// one of these at the protocol boundary; a malformed shape yields a structured
// validation error instead of a confusing downstream failure. Pointer fields
// on the update tools distinguish "absent" from an explicit zero.

type getBookmarkArgs struct {
	ID int64 `json:"id"`
}

type searchBookmarksArgs struct {
	Query      string   `json:"query"`
	Collection int64    `json:"collection"`
	Tags       []string `json:"tags"`
	Sort       string   `json:"sort"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
}

type createBookmarkArgs struct {
	Link       string   `json:"link"`
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Note       string   `json:"note"`
	Tags       []string `json:"tags"`
	Collection int64    `json:"collection"`
	Important  bool     `json:"important"`
}

type updateBookmarkArgs struct {
	ID         int64     `json:"id"`
	Link       *string   `json:"link"`
	Title      *string   `json:"title"`
	Excerpt    *string   `json:"excerpt"`
	Note       *string   `json:"note"`
	Tags       *[]string `json:"tags"`
	Collection *int64    `json:"collection"`
	Important  *bool     `json:"important"`
}

type deleteBookmarkArgs struct {
	ID int64 `json:"id"`
}

type getCollectionArgs struct {
	ID int64 `json:"id"`
}

type createCollectionArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	View        string `json:"view"`
	Parent      int64  `json:"parent"`
}

type updateCollectionArgs struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Public      *bool   `json:"public"`
	View        *string `json:"view"`
	Parent      *int64  `json:"parent"`
}

type deleteCollectionArgs struct {
	ID int64 `json:"id"`
}

type renameTagArgs struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

type deleteTagArgs struct {
	Name string `json:"name"`
}

// parseArgs fills dst from the raw argument bag. A nil/empty bag is treated as
// an empty object so tools without required arguments work with no "arguments"
// key at all.
func parseArgs(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	return json.Unmarshal(raw, dst)
}

func invalidArgsResult(tool string, err error) *CallResult {
	return errorResult(fmt.Sprintf(
		"Invalid arguments for %s: %v. Fix the arguments before retrying.", tool, err))
}

// dispatch routes one tool call to the matching client operation and shapes
// the outcome: JSON for value-returning operations, a short confirmation for
// void ones, and the client's classified message verbatim on failure.
func (s *Server) dispatch(ctx context.Context, name string, raw json.RawMessage) *CallResult {
	switch name {
	case toolGetBookmark:
		var a getBookmarkArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.render(s.service.GetBookmark(ctx, a.ID))

	case toolSearchBookmarks:
		var a searchBookmarksArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.render(s.service.SearchBookmarks(ctx, raindrop.SearchFilter{
			Query:      a.Query,
			Collection: a.Collection,
			Tags:       a.Tags,
			Sort:       a.Sort,
			Page:       a.Page,
			PerPage:    a.PerPage,
		}))

	case toolCreateBookmark:
		var a createBookmarkArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.render(s.service.CreateBookmark(ctx, raindrop.CreateBookmarkParams{
			Link:       a.Link,
			Title:      a.Title,
			Excerpt:    a.Excerpt,
			Note:       a.Note,
			Tags:       a.Tags,
			Collection: a.Collection,
			Important:  a.Important,
		}))

	case toolUpdateBookmark:
		var a updateBookmarkArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.render(s.service.UpdateBookmark(ctx, a.ID, raindrop.UpdateBookmarkParams{
			Link:       a.Link,
			Title:      a.Title,
			Excerpt:    a.Excerpt,
			Note:       a.Note,
			Tags:       a.Tags,
			Collection: a.Collection,
			Important:  a.Important,
		}))

	case toolDeleteBookmark:
		var a deleteBookmarkArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.confirm(s.service.DeleteBookmark(ctx, a.ID),
			fmt.Sprintf("Bookmark %d deleted.", a.ID))

	case toolListCollections:
		return s.render(s.service.ListCollections(ctx))

	case toolGetCollection:
		var a getCollectionArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.render(s.service.GetCollection(ctx, a.ID))

	case toolCreateCollection:
		var a createCollectionArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.render(s.service.CreateCollection(ctx, raindrop.CreateCollectionParams{
			Title:       a.Title,
			Description: a.Description,
			Public:      a.Public,
			View:        a.View,
			Parent:      a.Parent,
		}))

	case toolUpdateCollection:
		var a updateCollectionArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.render(s.service.UpdateCollection(ctx, a.ID, raindrop.UpdateCollectionParams{
			Title:       a.Title,
			Description: a.Description,
			Public:      a.Public,
			View:        a.View,
			Parent:      a.Parent,
		}))

	case toolDeleteCollection:
		var a deleteCollectionArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.confirm(s.service.DeleteCollection(ctx, a.ID),
			fmt.Sprintf("Collection %d deleted. Its bookmarks were moved to Unsorted.", a.ID))

	case toolListTags:
		return s.render(s.service.ListTags(ctx))

	case toolRenameTag:
		var a renameTagArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.confirm(s.service.RenameTag(ctx, a.OldName, a.NewName),
			fmt.Sprintf("Tag %q renamed to %q across all bookmarks.", a.OldName, a.NewName))

	case toolDeleteTag:
		var a deleteTagArgs
		if err := parseArgs(raw, &a); err != nil {
			return invalidArgsResult(name, err)
		}
		return s.confirm(s.service.DeleteTag(ctx, a.Name),
			fmt.Sprintf("Tag %q removed from all bookmarks.", a.Name))

	case toolGetUser:
		return s.render(s.service.GetCurrentUser(ctx))

	default:
		return unknownToolResult(name)
	}
}

// render shapes a value-returning operation: indented JSON on success, the
// classified error message on failure.
func (s *Server) render(value interface{}, err error) *CallResult {
	if err != nil {
		return errorResult(err.Error())
	}
	out, merr := json.MarshalIndent(value, "", "  ")
	if merr != nil {
		return errorResult(fmt.Sprintf("Failed to serialize the result: %v", merr))
	}
	return textResult(string(out))
}

// confirm shapes a void operation: a short confirmation sentence on success.
func (s *Server) confirm(err error, confirmation string) *CallResult {
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(confirmation)
}
