package api

import (
	"context"
	"fmt"
	"net/url"
)

// Entity names one kind of resource the API serves.
type Entity string

const (
	EntityMangaList     Entity = "manga.list"
	EntityMangaDetail   Entity = "manga.detail"
	EntityChapterList   Entity = "chapter.list"
	EntityChapterDetail Entity = "chapter.detail"
)

// Route is the path template of an entity. List routes may carry an empty
// or null payload; object routes may not.
type Route struct {
	Path string
	List bool
}

// Routes maps every entity to its path template. Templates take
// path-escaped identifiers through fmt verbs.
var Routes = map[Entity]Route{
	EntityMangaList:     {Path: "/manga/list", List: true},
	EntityMangaDetail:   {Path: "/manga/detail/%s"},
	EntityChapterList:   {Path: "/chapter/%s/list", List: true},
	EntityChapterDetail: {Path: "/chapter/detail/%s"},
}

// Meta is the pagination block sent alongside list payloads.
type Meta struct {
	Page        int `json:"page"`
	PageSize    int `json:"page_size"`
	TotalPage   int `json:"total_page"`
	TotalRecord int `json:"total_record"`
}

// Envelope is the wrapper around every response.
type Envelope[T any] struct {
	Retcode int    `json:"retcode"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
	Meta    *Meta  `json:"meta"`
}

// Path renders the route for entity with ids filled in.
func Path(entity Entity, ids ...string) (string, error) {
	route, ok := Routes[entity]
	if !ok {
		return "", fmt.Errorf("api: unknown entity %q", entity)
	}
	if len(ids) == 0 {
		return route.Path, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		if id == "" {
			return "", fmt.Errorf("api: empty identifier for %s", entity)
		}
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(route.Path, args...), nil
}

// Fetch requests entity and unwraps its envelope. A non-zero retcode is
// returned as *APIError and the payload is never handed back alongside an
// error.
func Fetch[T any](ctx context.Context, c *Client, entity Entity, params url.Values, ids ...string) (T, Meta, error) {
	var zero T

	path, err := Path(entity, ids...)
	if err != nil {
		return zero, Meta{}, err
	}

	var env Envelope[T]
	if err := c.Get(ctx, path, params, &env); err != nil {
		return zero, Meta{}, fmt.Errorf("%s: %w", entity, err)
	}
	if env.Retcode != 0 {
		return zero, Meta{}, fmt.Errorf("%s: %w", entity, &APIError{Code: env.Retcode, Message: env.Message})
	}

	var meta Meta
	if env.Meta != nil {
		meta = *env.Meta
	}
	if env.Data == nil {
		if Routes[entity].List {
			return zero, meta, nil
		}
		return zero, Meta{}, fmt.Errorf("%s: %w: missing data", entity, ErrMalformed)
	}
	return *env.Data, meta, nil
}
